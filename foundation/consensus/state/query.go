package state

import (
	"fmt"

	"github.com/ardanlabs/consensus/foundation/consensus/archive"
	"github.com/ardanlabs/consensus/foundation/consensus/block"
)

// QueryLatest represents a query of the latest round in the archive.
const QueryLatest = int(^uint(0) >> 1)

// NodeState represents the observable state of one node.
type NodeState struct {
	NodeID int
	Height uint64
	Tip    string
	Depth  int
}

// =============================================================================

// RetrieveGenesis returns a copy of the genesis block every chain grows
// from.
func (s *State) RetrieveGenesis() block.Block {
	return block.Genesis()
}

// RetrieveNodeStates returns the observable state of every node in node
// order.
func (s *State) RetrieveNodeStates() []NodeState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	states := make([]NodeState, len(s.nodes))
	for i, n := range s.nodes {
		states[i] = NodeState{
			NodeID: n.ID(),
			Height: n.Height(),
			Tip:    n.Tip().ID,
			Depth:  n.Depth(),
		}
	}

	return states
}

// RetrieveChain returns a copy of the specified node's chain from genesis
// to tip.
func (s *State) RetrieveChain(nodeID int) ([]block.Block, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, n := range s.nodes {
		if n.ID() == nodeID {
			return n.Chain(), nil
		}
	}

	return nil, fmt.Errorf("node %d: %w", nodeID, ErrNodeNotFound)
}

// QueryRounds returns the archived records for the specified inclusive
// round range. The range is clamped to the rounds that have completed, so a
// range that reaches past the archive returns what exists and a range that
// misses it entirely returns nothing.
func (s *State) QueryRounds(from int, to int) ([]archive.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	latest := s.current - 1

	if from == QueryLatest {
		from = latest
		to = from
	}

	if to == QueryLatest {
		to = latest
	}

	if from < 0 {
		from = 0
	}

	if to > latest {
		to = latest
	}

	var records []archive.Record
	for i := from; i <= to; i++ {
		data, err := s.archive.GetRound(i)
		if err != nil {
			return nil, fmt.Errorf("round %d: %w", i, err)
		}

		records = append(records, data.Records...)
	}

	return records, nil
}

// CurrentRound returns the number of rounds completed so far.
func (s *State) CurrentRound() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.current
}

// Rounds returns the number of rounds the simulation is configured to run
// on its own.
func (s *State) Rounds() int {
	return s.rounds
}

// Converged reports whether every node carries the same tip height and
// identifier right now.
func (s *State) Converged() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tip := s.nodes[0].Tip()
	for _, n := range s.nodes[1:] {
		t := n.Tip()
		if t.Height != tip.Height || t.ID != tip.ID {
			return false
		}
	}

	return true
}
