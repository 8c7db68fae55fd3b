// Package state is the core API for the simulation and implements all the
// business rules and processing.
package state

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"

	"github.com/ardanlabs/consensus/foundation/consensus/archive"
	"github.com/ardanlabs/consensus/foundation/consensus/node"
	"github.com/ardanlabs/consensus/foundation/consensus/round"
	"github.com/ardanlabs/consensus/foundation/consensus/selector"
)

// ErrNodeNotFound is returned when a query names a node that is not part of
// the simulated network.
var ErrNodeNotFound = errors.New("node not found")

// EventHandler defines a function that is called when events occur during
// the processing of the simulation.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by
// any package providing support for running rounds in the background.
type Worker interface {
	Shutdown()
	SignalRunRounds(count int)
}

// =============================================================================

// Config represents the configuration required to start the simulation.
type Config struct {
	Nodes     []*node.Node
	Rounds    int
	Selector  selector.Func
	Rand      *rand.Rand
	Archive   archive.Storage
	EvHandler EventHandler
}

// State manages the simulated network: the ordered node set, the round
// engine that mutates it, and the archive that records every round.
type State struct {
	mu        sync.RWMutex
	nodes     []*node.Node
	engine    *round.Engine
	archive   archive.Storage
	evHandler EventHandler
	rounds    int
	current   int

	Worker Worker
}

// New constructs a new state value to manage the simulation.
func New(cfg Config) (*State, error) {
	if len(cfg.Nodes) == 0 {
		return nil, errors.New("at least one node is required")
	}

	if cfg.Archive == nil {
		return nil, errors.New("an archive is required")
	}

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	engine, err := round.New(round.Config{
		Selector:  cfg.Selector,
		Rand:      cfg.Rand,
		EvHandler: round.EventHandler(ev),
	})
	if err != nil {
		return nil, err
	}

	// Every simulation starts the nodes from genesis, so records left over
	// from a previous run would lie about their history.
	if err := cfg.Archive.Reset(); err != nil {
		return nil, fmt.Errorf("resetting archive: %w", err)
	}

	state := State{
		nodes:     cfg.Nodes,
		engine:    engine,
		archive:   cfg.Archive,
		evHandler: ev,
		rounds:    cfg.Rounds,
	}

	return &state, nil
}

// Shutdown cleanly brings the simulation down.
func (s *State) Shutdown() error {
	s.evHandler("state: shutdown: started")
	defer s.evHandler("state: shutdown: completed")

	// Make sure the database file is properly closed.
	defer func() {
		s.archive.Close()
	}()

	// Stop any background round processing.
	if s.Worker != nil {
		s.Worker.Shutdown()
	}

	return nil
}

// =============================================================================

// RunRound executes one round of the agreement process across all nodes,
// archives one record per node, and advances the round counter. Rounds are
// strictly sequential; the lock also keeps queries from observing a half
// finished round.
func (s *State) RunRound() ([]archive.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	num := s.current

	s.evHandler("state: RunRound: started: round[%d]", num)
	defer s.evHandler("state: RunRound: completed: round[%d]", num)

	s.engine.Run(s.nodes)

	records := make([]archive.Record, len(s.nodes))
	for i, n := range s.nodes {
		records[i] = archive.Record{
			Round:  num,
			NodeID: n.ID(),
			Height: n.Height(),
			Hash:   n.Tip().ID,
		}
	}

	if err := s.archive.Write(archive.RoundData{Round: num, Records: records}); err != nil {
		return nil, fmt.Errorf("archiving round %d: %w", num, err)
	}

	s.current++

	return records, nil
}
