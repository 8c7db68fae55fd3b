// Package node maintains one simulated participant's copy of the chain and
// the guarded operations that grow and shrink it.
package node

import (
	"github.com/ardanlabs/consensus/foundation/consensus/block"
)

// Node represents one logical participant in the simulated network. It owns
// an ordered chain of blocks whose first entry is always a clone of the
// shared genesis block. The chain changes only through Append and Rollback;
// both are silent no-ops when their guard fails.
type Node struct {
	id    int
	gen   block.Generator
	chain []block.Block
}

// New constructs a node with the specified id whose chain starts from a
// clone of the fixed genesis block.
func New(id int, gen block.Generator) *Node {
	return &Node{
		id:    id,
		gen:   gen,
		chain: []block.Block{block.Genesis()},
	}
}

// ID returns the node's stable identifier.
func (n *Node) ID() int {
	return n.id
}

// Height returns the height of the chain tip.
func (n *Node) Height() uint64 {
	return n.chain[len(n.chain)-1].Height
}

// Tip returns the last block of the chain.
func (n *Node) Tip() block.Block {
	return n.chain[len(n.chain)-1]
}

// Depth returns the number of blocks on the chain including genesis.
func (n *Node) Depth() int {
	return len(n.chain)
}

// Chain returns a copy of the node's chain from genesis to tip.
func (n *Node) Chain() []block.Block {
	chain := make([]block.Block, len(n.chain))
	copy(chain, n.chain)

	return chain
}

// Propose produces a candidate block extending the node's current tip. The
// node itself is not changed; proposing is a read of the tip plus a fresh
// identifier.
func (n *Node) Propose() block.Block {
	tip := n.Tip()

	return n.gen.New(tip.Height+1, tip.ID)
}

// Append adds the block to the chain iff it extends the current tip: the
// height must be exactly one above the tip and the parent must be the tip's
// identifier. The return reports whether the append happened; a rejected
// block is not an error.
func (n *Node) Append(b block.Block) bool {
	tip := n.Tip()
	if b.Height != tip.Height+1 || b.ParentID != tip.ID {
		return false
	}

	n.chain = append(n.chain, b)

	return true
}

// Rollback removes the chain tip. The genesis block is never removable, so
// a rollback on a chain holding only genesis does nothing.
func (n *Node) Rollback() {
	if len(n.chain) > 1 {
		n.chain = n.chain[:len(n.chain)-1]
	}
}
