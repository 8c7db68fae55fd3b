package worker

import (
	"github.com/ardanlabs/consensus/foundation/events"
)

// roundOperations drives the simulation forward one round at a time. The
// ticker advances the configured schedule; operator signals run extra
// rounds past it.
func (w *Worker) roundOperations() {
	w.evHandler("worker: roundOperations: G started")
	defer w.evHandler("worker: roundOperations: G completed")

	for {
		select {
		case <-w.ticker.C:
			if w.isShutdown() {
				continue
			}

			if w.state.CurrentRound() < w.state.Rounds() {
				w.runRoundOperation()
			}

		case count := <-w.runRounds:
			for i := 0; i < count && !w.isShutdown(); i++ {
				w.runRoundOperation()
			}

		case <-w.shut:
			w.evHandler("worker: roundOperations: received shut signal")
			return
		}
	}
}

// runRoundOperation executes one round and publishes the resulting per-node
// records to any event subscribers.
func (w *Worker) runRoundOperation() {
	w.evHandler("worker: runRoundOperation: started")
	defer w.evHandler("worker: runRoundOperation: completed")

	records, err := w.state.RunRound()
	if err != nil {
		w.evHandler("worker: runRoundOperation: ERROR: %s", err)
		return
	}

	for _, r := range records {
		w.evts.Send(events.Event{
			Round:  r.Round,
			NodeID: r.NodeID,
			Height: r.Height,
			Hash:   r.Hash,
		})
	}

	if w.state.CurrentRound() == w.state.Rounds() {
		w.evHandler("worker: runRoundOperation: schedule complete: rounds[%d]", w.state.Rounds())
	}
}
