package public

import (
	"github.com/ardanlabs/consensus/foundation/consensus/state"
)

// nodeState represents one node's view of the chain.
type nodeState struct {
	NodeID int    `json:"node_id"`
	Height uint64 `json:"height"`
	Tip    string `json:"tip"`
	Depth  int    `json:"depth"`
}

func toNodeState(ns state.NodeState) nodeState {
	return nodeState{
		NodeID: ns.NodeID,
		Height: ns.Height,
		Tip:    ns.Tip,
		Depth:  ns.Depth,
	}
}

// status represents the progress of the simulation.
type status struct {
	CurrentRound int         `json:"current_round"`
	TotalRounds  int         `json:"total_rounds"`
	Converged    bool        `json:"converged"`
	Nodes        []nodeState `json:"nodes"`
}

// runRequest asks for extra rounds to be run beyond the configured
// schedule.
type runRequest struct {
	Rounds int `json:"rounds" validate:"required,gte=1,lte=1000"`
}

// runResponse reports what was signaled.
type runResponse struct {
	Status       string `json:"status"`
	Rounds       int    `json:"rounds"`
	CurrentRound int    `json:"current_round"`
}
