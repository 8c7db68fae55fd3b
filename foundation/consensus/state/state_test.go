package state_test

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/ardanlabs/consensus/foundation/consensus/archive"
	"github.com/ardanlabs/consensus/foundation/consensus/archive/memory"
	"github.com/ardanlabs/consensus/foundation/consensus/block"
	"github.com/ardanlabs/consensus/foundation/consensus/node"
	"github.com/ardanlabs/consensus/foundation/consensus/selector"
	"github.com/ardanlabs/consensus/foundation/consensus/state"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

func newTestState(t *testing.T, nodeCount int, rounds int) *state.State {
	t.Helper()

	rnd := rand.New(rand.NewSource(7))

	pick, err := selector.Retrieve(selector.StrategyUniform)
	if err != nil {
		t.Fatalf("retrieving selector: %v", err)
	}

	gen := block.NewGenerator(rnd)
	nodes := make([]*node.Node, nodeCount)
	for i := range nodes {
		nodes[i] = node.New(i, gen)
	}

	arch, err := memory.New()
	if err != nil {
		t.Fatalf("creating archive: %v", err)
	}

	st, err := state.New(state.Config{
		Nodes:    nodes,
		Rounds:   rounds,
		Selector: pick,
		Rand:     rnd,
		Archive:  arch,
	})
	if err != nil {
		t.Fatalf("creating state: %v", err)
	}

	return st
}

func TestRunRound(t *testing.T) {
	t.Log("Given the need to run rounds and archive the results.")
	{
		t.Logf("\tTest 0:\tWhen running 5 rounds over a 5 node network.")
		{
			st := newTestState(t, 5, 5)
			defer st.Shutdown()

			for i := 0; i < 5; i++ {
				records, err := st.RunRound()
				if err != nil {
					t.Fatalf("\t%s\tTest 0:\tShould be able to run round %d: %v", failed, i, err)
				}

				if len(records) != 5 {
					t.Fatalf("\t%s\tTest 0:\tShould archive one record per node: got %d.", failed, len(records))
				}

				for _, r := range records {
					if r.Round != i {
						t.Fatalf("\t%s\tTest 0:\tShould stamp records with round %d: got %d.", failed, i, r.Round)
					}
					if r.Height != uint64(i+1) {
						t.Fatalf("\t%s\tTest 0:\tShould end round %d at height %d: node %d at %d.", failed, i, i+1, r.NodeID, r.Height)
					}
				}

				if !st.Converged() {
					t.Fatalf("\t%s\tTest 0:\tShould end round %d converged.", failed, i)
				}
			}
			t.Logf("\t%s\tTest 0:\tShould archive one record per node per round.", success)
			t.Logf("\t%s\tTest 0:\tShould end every round converged.", success)

			if st.CurrentRound() != 5 {
				t.Fatalf("\t%s\tTest 0:\tShould have completed 5 rounds: got %d.", failed, st.CurrentRound())
			}
			if st.Rounds() != 5 {
				t.Fatalf("\t%s\tTest 0:\tShould report the configured schedule: got %d.", failed, st.Rounds())
			}
			t.Logf("\t%s\tTest 0:\tShould track the round counters.", success)
		}
	}
}

func TestQueries(t *testing.T) {
	t.Log("Given the need to query the simulation and its archive.")
	{
		t.Logf("\tTest 0:\tWhen querying after 5 completed rounds.")
		{
			st := newTestState(t, 5, 5)
			defer st.Shutdown()

			for i := 0; i < 5; i++ {
				if _, err := st.RunRound(); err != nil {
					t.Fatalf("\t%s\tTest 0:\tShould be able to run round %d: %v", failed, i, err)
				}
			}

			records, err := st.QueryRounds(0, state.QueryLatest)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to query all rounds: %v", failed, err)
			}
			if len(records) != 25 {
				t.Fatalf("\t%s\tTest 0:\tShould return 25 records for all rounds: got %d.", failed, len(records))
			}
			t.Logf("\t%s\tTest 0:\tShould return every record for the full range.", success)

			records, err = st.QueryRounds(state.QueryLatest, state.QueryLatest)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to query the latest round: %v", failed, err)
			}
			if len(records) != 5 {
				t.Fatalf("\t%s\tTest 0:\tShould return 5 records for the latest round: got %d.", failed, len(records))
			}
			for _, r := range records {
				if r.Round != 4 {
					t.Fatalf("\t%s\tTest 0:\tShould only return round 4 records: got %d.", failed, r.Round)
				}
			}
			t.Logf("\t%s\tTest 0:\tShould return the latest round on request.", success)

			records, err = st.QueryRounds(2, 3)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to query a subrange: %v", failed, err)
			}
			if len(records) != 10 {
				t.Fatalf("\t%s\tTest 0:\tShould return 10 records for rounds 2 and 3: got %d.", failed, len(records))
			}
			t.Logf("\t%s\tTest 0:\tShould honor an inclusive subrange.", success)

			records, err = st.QueryRounds(10, 20)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould tolerate a range past the archive: %v", failed, err)
			}
			if len(records) != 0 {
				t.Fatalf("\t%s\tTest 0:\tShould return nothing past the archive: got %d.", failed, len(records))
			}
			t.Logf("\t%s\tTest 0:\tShould return nothing past the archive.", success)

			chain, err := st.RetrieveChain(3)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to retrieve a chain: %v", failed, err)
			}
			if len(chain) != 6 || chain[0].ID != block.GenesisID {
				t.Fatalf("\t%s\tTest 0:\tShould walk the chain from genesis to tip: len %d.", failed, len(chain))
			}
			t.Logf("\t%s\tTest 0:\tShould walk the chain from genesis to tip.", success)

			if _, err := st.RetrieveChain(99); !errors.Is(err, state.ErrNodeNotFound) {
				t.Fatalf("\t%s\tTest 0:\tShould report an unknown node: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould report an unknown node.", success)

			genesis := st.RetrieveGenesis()
			if genesis.Height != 0 || genesis.ID != block.GenesisID {
				t.Fatalf("\t%s\tTest 0:\tShould expose the genesis block: %s", failed, genesis)
			}
			t.Logf("\t%s\tTest 0:\tShould expose the genesis block.", success)

			states := st.RetrieveNodeStates()
			if len(states) != 5 {
				t.Fatalf("\t%s\tTest 0:\tShould report the state of every node: got %d.", failed, len(states))
			}
			for i, ns := range states {
				if ns.NodeID != i || ns.Height != 5 || ns.Depth != 6 {
					t.Fatalf("\t%s\tTest 0:\tShould report node %d in order: got id %d height %d depth %d.", failed, i, ns.NodeID, ns.Height, ns.Depth)
				}
			}
			t.Logf("\t%s\tTest 0:\tShould report the state of every node in order.", success)
		}
	}
}

func TestNew(t *testing.T) {
	t.Log("Given the need to validate the simulation configuration.")
	{
		t.Logf("\tTest 0:\tWhen constructing with missing dependencies.")
		{
			rnd := rand.New(rand.NewSource(7))

			pick, err := selector.Retrieve(selector.StrategyUniform)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould find the uniform strategy: %v", failed, err)
			}

			arch, err := memory.New()
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to create the archive: %v", failed, err)
			}

			nodes := []*node.Node{node.New(0, block.NewGenerator(rnd))}

			if _, err := state.New(state.Config{Rounds: 1, Selector: pick, Rand: rnd, Archive: arch}); err == nil {
				t.Fatalf("\t%s\tTest 0:\tShould reject a network with no nodes.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould reject a network with no nodes.", success)

			if _, err := state.New(state.Config{Nodes: nodes, Rounds: 1, Selector: pick, Rand: rnd}); err == nil {
				t.Fatalf("\t%s\tTest 0:\tShould reject a missing archive.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould reject a missing archive.", success)

			if _, err := state.New(state.Config{Nodes: nodes, Rounds: 1, Rand: rnd, Archive: arch}); err == nil {
				t.Fatalf("\t%s\tTest 0:\tShould reject a missing selector.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould reject a missing selector.", success)
		}

		t.Logf("\tTest 1:\tWhen constructing over an archive holding old rounds.")
		{
			rnd := rand.New(rand.NewSource(7))

			pick, err := selector.Retrieve(selector.StrategyUniform)
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould find the uniform strategy: %v", failed, err)
			}

			arch, err := memory.New()
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to create the archive: %v", failed, err)
			}

			stale := archive.RoundData{Round: 0, Records: []archive.Record{{Round: 0, NodeID: 9, Height: 9, Hash: "stale"}}}
			if err := arch.Write(stale); err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to seed the archive: %v", failed, err)
			}

			nodes := []*node.Node{node.New(0, block.NewGenerator(rnd))}

			if _, err := state.New(state.Config{Nodes: nodes, Rounds: 1, Selector: pick, Rand: rnd, Archive: arch}); err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to construct the state: %v", failed, err)
			}

			if _, err := arch.GetRound(0); err == nil {
				t.Fatalf("\t%s\tTest 1:\tShould reset the archive on construction.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould reset the archive on construction.", success)
		}
	}
}
