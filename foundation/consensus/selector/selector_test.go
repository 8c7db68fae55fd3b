package selector_test

import (
	"math/rand"
	"testing"

	"github.com/ardanlabs/consensus/foundation/consensus/block"
	"github.com/ardanlabs/consensus/foundation/consensus/selector"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func candidates(count int) []block.Block {
	gen := block.NewGenerator(rand.New(rand.NewSource(9)))

	blocks := make([]block.Block, count)
	for i := range blocks {
		blocks[i] = gen.New(1, block.GenesisID)
	}

	return blocks
}

func TestRetrieve(t *testing.T) {
	t.Log("Given the need to validate strategy lookup.")
	{
		t.Logf("\tTest 0:\tWhen looking up strategies by name.")
		{
			if _, err := selector.Retrieve(selector.StrategyUniform); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould find the uniform strategy: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould find the uniform strategy.", success)

			if _, err := selector.Retrieve("Uniform"); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould match names regardless of case: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould match names regardless of case.", success)

			if _, err := selector.Retrieve("lucky-dip"); err == nil {
				t.Fatalf("\t%s\tTest 0:\tShould reject an unknown strategy.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould reject an unknown strategy.", success)
		}
	}
}

func TestUniform(t *testing.T) {
	t.Log("Given the need to validate the uniform strategy.")
	{
		t.Logf("\tTest 0:\tWhen picking from a candidate list.")
		{
			pick, err := selector.Retrieve(selector.StrategyUniform)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould find the uniform strategy: %v", failed, err)
			}

			rnd := rand.New(rand.NewSource(3))
			cands := candidates(4)

			seen := make(map[string]bool)
			for i := 0; i < 200; i++ {
				b, ok := pick(rnd, cands)
				if !ok {
					t.Fatalf("\t%s\tTest 0:\tShould pick a block from a non-empty list.", failed)
				}
				seen[b.ID] = true
			}
			t.Logf("\t%s\tTest 0:\tShould pick a block from a non-empty list.", success)

			for _, c := range cands {
				if !seen[c.ID] {
					t.Fatalf("\t%s\tTest 0:\tShould reach every candidate over many picks: missed %s", failed, block.ShortID(c.ID))
				}
			}
			t.Logf("\t%s\tTest 0:\tShould reach every candidate over many picks.", success)

			if _, ok := pick(rnd, nil); ok {
				t.Fatalf("\t%s\tTest 0:\tShould not pick from an empty list.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould not pick from an empty list.", success)
		}
	}
}

func TestFirst(t *testing.T) {
	t.Log("Given the need to validate the first strategy.")
	{
		t.Logf("\tTest 0:\tWhen picking from a candidate list.")
		{
			pick, err := selector.Retrieve(selector.StrategyFirst)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould find the first strategy: %v", failed, err)
			}

			rnd := rand.New(rand.NewSource(3))
			cands := candidates(4)

			b, ok := pick(rnd, cands)
			if !ok || b.ID != cands[0].ID {
				t.Fatalf("\t%s\tTest 0:\tShould always pick the first candidate.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould always pick the first candidate.", success)

			if _, ok := pick(rnd, nil); ok {
				t.Fatalf("\t%s\tTest 0:\tShould not pick from an empty list.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould not pick from an empty list.", success)
		}
	}
}
