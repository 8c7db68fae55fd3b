// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	v1 "github.com/ardanlabs/consensus/business/web/v1"
	"github.com/ardanlabs/consensus/foundation/consensus/state"
	"github.com/ardanlabs/consensus/foundation/events"
	"github.com/ardanlabs/consensus/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of public endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Events handles a web socket to provide round results to a client as the
// simulation progresses.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	// Need this to handle CORS on the websocket.
	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	// This upgrades the HTTP connection to a websocket connection.
	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	h.Log.Infow("websocket open", "path", "/v1/events", "traceid", v.TraceID)

	// Set the pong handler to identify if a web socket connection is
	// broken.
	pong := func(appData string) error {
		h.Log.Infow("websocket received pong", "path", "/v1/events", "traceid", v.TraceID)
		return nil
	}
	c.SetPongHandler(pong)

	// Register this websocket connection so it can receive round events.
	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	// Setting a ticker to send a ping message over the websocket.
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case event, wd := <-ch:

			// If the channel is closed, release the websocket.
			if !wd {
				return nil
			}

			if err := c.WriteJSON(event); err != nil {
				return nil
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// Genesis returns the genesis block every chain grows from.
func (h Handlers) Genesis(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	gen := h.State.RetrieveGenesis()
	return web.Respond(ctx, w, gen, http.StatusOK)
}

// Status returns the progress of the simulation and every node's view of
// the chain.
func (h Handlers) Status(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	states := h.State.RetrieveNodeStates()

	nodes := make([]nodeState, len(states))
	for i, ns := range states {
		nodes[i] = toNodeState(ns)
	}

	status := status{
		CurrentRound: h.State.CurrentRound(),
		TotalRounds:  h.State.Rounds(),
		Converged:    h.State.Converged(),
		Nodes:        nodes,
	}

	return web.Respond(ctx, w, status, http.StatusOK)
}

// Nodes returns the observable state of every node in node order.
func (h Handlers) Nodes(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	states := h.State.RetrieveNodeStates()

	nodes := make([]nodeState, len(states))
	for i, ns := range states {
		nodes[i] = toNodeState(ns)
	}

	return web.Respond(ctx, w, nodes, http.StatusOK)
}

// ChainByNode returns the full chain held by the specified node.
func (h Handlers) ChainByNode(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	nodeID, err := strconv.Atoi(web.Param(r, "node"))
	if err != nil {
		return v1.NewRequestError(fmt.Errorf("invalid node id format: %w", err), http.StatusBadRequest)
	}

	chain, err := h.State.RetrieveChain(nodeID)
	if err != nil {
		if errors.Is(err, state.ErrNodeNotFound) {
			return v1.NewRequestError(err, http.StatusNotFound)
		}
		return fmt.Errorf("unable to retrieve chain: %w", err)
	}

	return web.Respond(ctx, w, chain, http.StatusOK)
}

// Rounds returns the archived per-node records for all completed rounds or
// for the specified inclusive range.
func (h Handlers) Rounds(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	from := 0
	if fromStr := web.Param(r, "from"); fromStr != "" {
		if fromStr == "latest" {
			from = state.QueryLatest
		} else {
			v, err := strconv.Atoi(fromStr)
			if err != nil {
				return v1.NewRequestError(fmt.Errorf("invalid from round: %w", err), http.StatusBadRequest)
			}
			from = v
		}
	}

	to := state.QueryLatest
	if toStr := web.Param(r, "to"); toStr != "" && toStr != "latest" {
		v, err := strconv.Atoi(toStr)
		if err != nil {
			return v1.NewRequestError(fmt.Errorf("invalid to round: %w", err), http.StatusBadRequest)
		}
		to = v
	}

	records, err := h.State.QueryRounds(from, to)
	if err != nil {
		return fmt.Errorf("unable to query rounds: %w", err)
	}

	if len(records) == 0 {
		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}

	return web.Respond(ctx, w, records, http.StatusOK)
}

// RunRounds asks the worker to run extra rounds on top of the configured
// schedule.
func (h Handlers) RunRounds(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var run runRequest
	if err := web.Decode(r, &run); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}

	h.State.Worker.SignalRunRounds(run.Rounds)

	resp := runResponse{
		Status:       "rounds signaled",
		Rounds:       run.Rounds,
		CurrentRound: h.State.CurrentRound(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}
