// Package selector provides the different algorithms a node can use to
// pick one block from a set of candidate proposals.
package selector

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/ardanlabs/consensus/foundation/consensus/block"
)

// List of the selection strategies that can be configured.
const (
	StrategyUniform = "uniform"
	StrategyFirst   = "first"
)

// Map of selection strategies with functions.
var strategies = map[string]Func{
	StrategyUniform: uniformSelect,
	StrategyFirst:   firstSelect,
}

// Func defines a function that picks a single block from the candidate
// list. The list keeps proposal order and the boolean reports whether a
// block was chosen; no block is chosen from an empty list. Implementations
// draw any randomness they need from the provided source.
type Func func(rnd *rand.Rand, candidates []block.Block) (block.Block, bool)

// Retrieve returns the specified selection strategy function. The name
// match is not case sensitive.
func Retrieve(strategy string) (Func, error) {
	fn, exists := strategies[strings.ToLower(strategy)]
	if !exists {
		return nil, fmt.Errorf("strategy %q does not exist", strategy)
	}

	return fn, nil
}

// =============================================================================

// uniformSelect picks over the candidate list at random, each candidate
// with equal probability.
func uniformSelect(rnd *rand.Rand, candidates []block.Block) (block.Block, bool) {
	if len(candidates) == 0 {
		return block.Block{}, false
	}

	return candidates[rnd.Intn(len(candidates))], true
}

// firstSelect picks the first candidate in proposal order. Runs using this
// strategy are fully determined by the node ordering.
func firstSelect(rnd *rand.Rand, candidates []block.Block) (block.Block, bool) {
	if len(candidates) == 0 {
		return block.Block{}, false
	}

	return candidates[0], true
}
