// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"github.com/ardanlabs/consensus/app/services/sim/handlers/v1/public"
	"github.com/ardanlabs/consensus/foundation/consensus/state"
	"github.com/ardanlabs/consensus/foundation/events"
	"github.com/ardanlabs/consensus/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log   *zap.SugaredLogger
	State *state.State
	Evts  *events.Events
}

// PublicRoutes binds all the version 1 public routes.
func PublicRoutes(app *web.App, cfg Config) {
	pbl := public.Handlers{
		Log:   cfg.Log,
		State: cfg.State,
		WS:    websocket.Upgrader{},
		Evts:  cfg.Evts,
	}

	app.Handle(http.MethodGet, version, "/events", pbl.Events)
	app.Handle(http.MethodGet, version, "/genesis", pbl.Genesis)
	app.Handle(http.MethodGet, version, "/status", pbl.Status)
	app.Handle(http.MethodGet, version, "/nodes/list", pbl.Nodes)
	app.Handle(http.MethodGet, version, "/chains/list/:node", pbl.ChainByNode)
	app.Handle(http.MethodGet, version, "/rounds/list", pbl.Rounds)
	app.Handle(http.MethodGet, version, "/rounds/list/:from/:to", pbl.Rounds)
	app.Handle(http.MethodPost, version, "/sim/run", pbl.RunRounds)
}
