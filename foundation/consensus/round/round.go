// Package round implements one round of the chain-agreement process: block
// proposal, candidate selection, fall-behind self-correction, and
// majority-based reconciliation across an ordered set of nodes.
package round

import (
	"errors"
	"math/rand"
	"time"

	"github.com/ardanlabs/consensus/foundation/consensus/node"
	"github.com/ardanlabs/consensus/foundation/consensus/selector"
)

// EventHandler defines a function that is called when events occur during
// the processing of a round.
type EventHandler func(v string, args ...any)

// =============================================================================

// Config represents the dependencies required to run rounds.
type Config struct {
	Selector  selector.Func
	Rand      *rand.Rand
	EvHandler EventHandler
}

// Engine runs rounds of the agreement process over a set of nodes. The
// engine holds no per-round state; everything a round needs is built inside
// Run and discarded when Run returns.
type Engine struct {
	pick      selector.Func
	rnd       *rand.Rand
	evHandler EventHandler
}

// New constructs an engine for running rounds. A nil Rand falls back to a
// clock-seeded source, which makes runs non-reproducible.
func New(cfg Config) (*Engine, error) {
	if cfg.Selector == nil {
		return nil, errors.New("selector function is required")
	}

	rnd := cfg.Rand
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	return &Engine{
		pick:      cfg.Selector,
		rnd:       rnd,
		evHandler: ev,
	}, nil
}

// Run executes a single round against the specified nodes, mutating them in
// place. The four phases run strictly in order and each phase completes
// across all nodes before the next starts. Node order matters: it drives
// candidate collection, the visibility of partial progress, and every
// tie-break. Run never fails; every edge condition degrades to a no-op for
// the affected nodes.
func (e *Engine) Run(nodes []*node.Node) {
	e.evHandler("round: run: started: nodes[%d]", len(nodes))
	defer e.evHandler("round: run: completed")

	proposals := e.propose(nodes)

	e.selectOrCorrect(nodes, proposals)

	tly, ok := e.aggregate(nodes)
	if !ok {
		return
	}

	e.reconcile(nodes, tly)
}
