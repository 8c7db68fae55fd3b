package round

import (
	"github.com/ardanlabs/consensus/foundation/consensus/block"
	"github.com/ardanlabs/consensus/foundation/consensus/node"
)

// propose asks every node for a candidate block extending its own tip. No
// node has seen any other node's proposal when this phase completes.
func (e *Engine) propose(nodes []*node.Node) []block.Block {
	proposals := make([]block.Block, 0, len(nodes))

	for _, n := range nodes {
		p := n.Propose()
		e.evHandler("round: propose: node[%d]: %s", n.ID(), p)

		proposals = append(proposals, p)
	}

	return proposals
}

// selectOrCorrect walks the nodes in order and has each one either take a
// proposed block or correct itself when it has fallen behind. Candidates
// are filtered by height alone, so a node can pick a block whose parent
// does not match its own tip; the append then rejects it and the node does
// not grow this round. A node processed later in the order sees the growth
// already made by the nodes before it.
func (e *Engine) selectOrCorrect(nodes []*node.Node, proposals []block.Block) {
	for _, n := range nodes {
		next := n.Height() + 1

		var candidates []block.Block
		for _, p := range proposals {
			if p.Height == next {
				candidates = append(candidates, p)
			}
		}

		if len(candidates) > 0 {
			chosen, ok := e.pick(e.rnd, candidates)
			if !ok {
				continue
			}

			if n.Append(chosen) {
				e.evHandler("round: selectOrCorrect: node[%d]: appended %s", n.ID(), chosen)
				continue
			}

			e.evHandler("round: selectOrCorrect: node[%d]: rejected %s: parent does not match tip[%s]", n.ID(), chosen, block.ShortID(n.Tip().ID))
			continue
		}

		// No candidate exists at this node's next height. If the network
		// has moved past this node, discard the tip so the node can take
		// the majority block during reconciliation.
		if maxH := maxHeight(nodes); maxH > n.Height() {
			e.evHandler("round: selectOrCorrect: node[%d]: behind network: height[%d] max[%d]: rolling back", n.ID(), n.Height(), maxH)
			n.Rollback()
		}
	}
}

// =============================================================================

// tally carries the majority aggregates for a single round.
type tally struct {
	height uint64
	hash   string
}

// aggregate counts the nodes at each height and, at the winning height, the
// nodes on each tip identifier. Ties break to the value seen first while
// scanning the nodes in order, which keeps the outcome reproducible for a
// fixed node ordering. The ok return is false when there are no nodes to
// count.
func (e *Engine) aggregate(nodes []*node.Node) (tally, bool) {
	if len(nodes) == 0 {
		return tally{}, false
	}

	heightCounts := make(map[uint64]int)
	for _, n := range nodes {
		heightCounts[n.Height()]++
	}

	var majorityHeight uint64
	best := 0
	for _, n := range nodes {
		if count := heightCounts[n.Height()]; count > best {
			best = count
			majorityHeight = n.Height()
		}
	}

	hashCounts := make(map[string]int)
	for _, n := range nodes {
		if n.Height() == majorityHeight {
			hashCounts[n.Tip().ID]++
		}
	}

	var majorityHash string
	best = 0
	for _, n := range nodes {
		if n.Height() != majorityHeight {
			continue
		}

		if count := hashCounts[n.Tip().ID]; count > best {
			best = count
			majorityHash = n.Tip().ID
		}
	}

	e.evHandler("round: aggregate: majority: height[%d] hash[%s]", majorityHeight, block.ShortID(majorityHash))

	return tally{height: majorityHeight, hash: majorityHash}, true
}

// reconcile brings every node that is behind the majority, or sitting on a
// conflicting tip at the majority height, onto the majority block. The
// adopted block keeps the reference height and identifier but records the
// adopting node's own tip as its parent; see block.Adopted.
func (e *Engine) reconcile(nodes []*node.Node, tly tally) {
	ref, found := e.reference(nodes, tly)
	if !found {
		e.evHandler("round: reconcile: no node carries the majority tip: height[%d] hash[%s]", tly.height, block.ShortID(tly.hash))
		return
	}

	for _, n := range nodes {
		switch {
		case n.Height() < tly.height:

			// Trim any history sitting at or above the majority height
			// before adopting. Genesis always stays.
			for n.Height() >= tly.height && n.Depth() > 1 {
				n.Rollback()
			}

			if n.Height()+1 == ref.Height {
				adopted := block.Adopted(ref, n.Tip().ID)
				if n.Append(adopted) {
					e.evHandler("round: reconcile: node[%d]: caught up: adopted %s", n.ID(), adopted)
				}
			}

		case n.Height() == tly.height && n.Tip().ID != tly.hash:
			e.evHandler("round: reconcile: node[%d]: conflicting tip[%s] at majority height: adopting[%s]", n.ID(), block.ShortID(n.Tip().ID), block.ShortID(tly.hash))
			n.Rollback()

			if n.Height()+1 == ref.Height {
				adopted := block.Adopted(ref, n.Tip().ID)
				n.Append(adopted)
			}
		}
	}
}

// reference locates the tip of the first node in order that carries the
// majority height and hash.
func (e *Engine) reference(nodes []*node.Node, tly tally) (block.Block, bool) {
	for _, n := range nodes {
		if n.Height() == tly.height && n.Tip().ID == tly.hash {
			return n.Tip(), true
		}
	}

	return block.Block{}, false
}

// maxHeight returns the highest tip across all nodes as they stand right
// now, including any growth already made this round.
func maxHeight(nodes []*node.Node) uint64 {
	var maxH uint64
	for _, n := range nodes {
		if h := n.Height(); h > maxH {
			maxH = h
		}
	}

	return maxH
}
