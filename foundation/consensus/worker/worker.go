// Package worker implements the background process that drives the
// simulation: a single goroutine runs rounds serially, on a timer or on
// demand, and publishes the per-node results for live observers.
package worker

import (
	"sync"
	"time"

	"github.com/ardanlabs/consensus/foundation/consensus/state"
	"github.com/ardanlabs/consensus/foundation/events"
)

// Worker manages the round running workflow for the simulation. This
// implements the state.Worker interface.
type Worker struct {
	state     *state.State
	evts      *events.Events
	wg        sync.WaitGroup
	ticker    *time.Ticker
	shut      chan struct{}
	runRounds chan int
	evHandler state.EventHandler
}

// Run creates a worker, registers it with the state package, and starts the
// goroutine that owns round execution. Rounds never run concurrently; both
// the timer and operator signals funnel into the one goroutine.
func Run(st *state.State, evts *events.Events, roundInterval time.Duration, evHandler state.EventHandler) {
	w := Worker{
		state:     st,
		evts:      evts,
		ticker:    time.NewTicker(roundInterval),
		shut:      make(chan struct{}),
		runRounds: make(chan int, 1),
		evHandler: evHandler,
	}

	// Register this worker with the state package.
	st.Worker = &w

	// Load the set of operations needed to run.
	operations := []func(){
		w.roundOperations,
	}

	// Set waitgroup to match the number of G's needed for the set
	// of operations we have.
	g := len(operations)
	w.wg.Add(g)

	// Don't return until all G's are up and running.
	hasStarted := make(chan bool)

	// Start all the operational G's.
	for _, op := range operations {
		go func(op func()) {
			defer w.wg.Done()
			hasStarted <- true
			op()
		}(op)
	}

	// Wait for the G's to report they are running.
	for i := 0; i < g; i++ {
		<-hasStarted
	}
}

// Shutdown terminates the goroutine performing work.
func (w *Worker) Shutdown() {
	w.evHandler("worker: shutdown: started")
	defer w.evHandler("worker: shutdown: completed")

	w.evHandler("worker: shutdown: stop ticker")
	w.ticker.Stop()

	w.evHandler("worker: shutdown: terminate goroutines")
	close(w.shut)
	w.wg.Wait()
}

// SignalRunRounds asks the worker to run the specified number of rounds on
// top of whatever the schedule would run. The signal is dropped when a
// previous request is still pending.
func (w *Worker) SignalRunRounds(count int) {
	select {
	case w.runRounds <- count:
		w.evHandler("worker: SignalRunRounds: rounds[%d] signaled", count)
	default:
		w.evHandler("worker: SignalRunRounds: signal pending: request dropped")
	}
}

// =============================================================================

// isShutdown is used to test if a shutdown has been signaled.
func (w *Worker) isShutdown() bool {
	select {
	case <-w.shut:
		return true
	default:
		return false
	}
}
