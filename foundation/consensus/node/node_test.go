package node_test

import (
	"math/rand"
	"testing"

	"github.com/ardanlabs/consensus/foundation/consensus/block"
	"github.com/ardanlabs/consensus/foundation/consensus/node"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func newGenerator() block.Generator {
	return block.NewGenerator(rand.New(rand.NewSource(1)))
}

func TestChainStart(t *testing.T) {
	t.Log("Given the need to validate a node starts from genesis.")
	{
		t.Logf("\tTest 0:\tWhen constructing a new node.")
		{
			n := node.New(3, newGenerator())

			if n.ID() != 3 {
				t.Fatalf("\t%s\tTest 0:\tShould carry the specified id: got %d", failed, n.ID())
			}
			t.Logf("\t%s\tTest 0:\tShould carry the specified id.", success)

			if n.Height() != 0 || n.Depth() != 1 {
				t.Fatalf("\t%s\tTest 0:\tShould hold only genesis: height %d depth %d", failed, n.Height(), n.Depth())
			}
			t.Logf("\t%s\tTest 0:\tShould hold only genesis.", success)

			if n.Tip().ID != block.GenesisID {
				t.Fatalf("\t%s\tTest 0:\tShould have the genesis block as the tip: got %s", failed, n.Tip().ID)
			}
			t.Logf("\t%s\tTest 0:\tShould have the genesis block as the tip.", success)
		}
	}
}

func TestAppend(t *testing.T) {
	gen := newGenerator()

	type table struct {
		name   string
		build  func(n *node.Node) block.Block
		want   bool
		height uint64
	}

	tt := []table{
		{
			name: "extends-tip",
			build: func(n *node.Node) block.Block {
				return gen.New(n.Height()+1, n.Tip().ID)
			},
			want:   true,
			height: 1,
		},
		{
			name: "wrong-height",
			build: func(n *node.Node) block.Block {
				return gen.New(n.Height()+2, n.Tip().ID)
			},
			want:   false,
			height: 0,
		},
		{
			name: "wrong-parent",
			build: func(n *node.Node) block.Block {
				return gen.New(n.Height()+1, "deadbeef-0000-0000-0000-000000000000")
			},
			want:   false,
			height: 0,
		},
	}

	t.Log("Given the need to validate the append guard.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen appending a %s block.", testID, tst.name)
			{
				f := func(t *testing.T) {
					n := node.New(0, gen)

					if got := n.Append(tst.build(n)); got != tst.want {
						t.Fatalf("\t%s\tTest %d:\tShould report %v from the append.", failed, testID, tst.want)
					}
					t.Logf("\t%s\tTest %d:\tShould report %v from the append.", success, testID, tst.want)

					if n.Height() != tst.height {
						t.Fatalf("\t%s\tTest %d:\tShould leave the chain at height %d: got %d", failed, testID, tst.height, n.Height())
					}
					t.Logf("\t%s\tTest %d:\tShould leave the chain at height %d.", success, testID, tst.height)
				}

				t.Run(tst.name, f)
			}
		}
	}
}

func TestRollback(t *testing.T) {
	t.Log("Given the need to validate the rollback guard.")
	{
		t.Logf("\tTest 0:\tWhen rolling back a grown chain.")
		{
			gen := newGenerator()
			n := node.New(0, gen)

			n.Append(gen.New(1, n.Tip().ID))
			n.Append(gen.New(2, n.Tip().ID))

			n.Rollback()
			if n.Height() != 1 {
				t.Fatalf("\t%s\tTest 0:\tShould remove the tip: height %d", failed, n.Height())
			}
			t.Logf("\t%s\tTest 0:\tShould remove the tip.", success)

			n.Rollback()
			n.Rollback()
			n.Rollback()

			if n.Height() != 0 || n.Depth() != 1 || n.Tip().ID != block.GenesisID {
				t.Fatalf("\t%s\tTest 0:\tShould never remove genesis: height %d depth %d", failed, n.Height(), n.Depth())
			}
			t.Logf("\t%s\tTest 0:\tShould never remove genesis.", success)
		}
	}
}

func TestPropose(t *testing.T) {
	t.Log("Given the need to validate proposals do not change the chain.")
	{
		t.Logf("\tTest 0:\tWhen proposing candidate blocks.")
		{
			n := node.New(0, newGenerator())

			p1 := n.Propose()
			p2 := n.Propose()

			if n.Height() != 0 || n.Depth() != 1 {
				t.Fatalf("\t%s\tTest 0:\tShould leave the chain untouched: height %d depth %d", failed, n.Height(), n.Depth())
			}
			t.Logf("\t%s\tTest 0:\tShould leave the chain untouched.", success)

			if p1.Height != 1 || p1.ParentID != n.Tip().ID {
				t.Fatalf("\t%s\tTest 0:\tShould extend the current tip: %s", failed, p1)
			}
			t.Logf("\t%s\tTest 0:\tShould extend the current tip.", success)

			if p1.ID == p2.ID {
				t.Fatalf("\t%s\tTest 0:\tShould give every proposal a fresh identifier.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould give every proposal a fresh identifier.", success)

			if ok := n.Append(p2); !ok {
				t.Fatalf("\t%s\tTest 0:\tShould be able to append a proposal.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to append a proposal.", success)
		}
	}
}

func TestChainCopy(t *testing.T) {
	t.Log("Given the need to validate the chain accessor returns a copy.")
	{
		t.Logf("\tTest 0:\tWhen mutating the returned chain.")
		{
			gen := newGenerator()
			n := node.New(0, gen)
			n.Append(gen.New(1, n.Tip().ID))

			chain := n.Chain()
			chain[0] = block.Block{Height: 99, ID: "junk"}

			if n.Chain()[0].ID != block.GenesisID {
				t.Fatalf("\t%s\tTest 0:\tShould not expose the node's own backing array.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould not expose the node's own backing array.", success)

			if len(chain) != 2 {
				t.Fatalf("\t%s\tTest 0:\tShould return the full chain: len %d", failed, len(chain))
			}
			t.Logf("\t%s\tTest 0:\tShould return the full chain.", success)
		}
	}
}
