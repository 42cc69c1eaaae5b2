// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"github.com/ardanlabs/ledger/app/services/node/handlers/v1/public"
	"github.com/ardanlabs/ledger/business/web/mid"
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/events"
	"github.com/ardanlabs/ledger/foundation/web"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log   *zap.SugaredLogger
	Chain *database.Chain
	Evts  *events.Events
}

// PublicRoutes binds all the version 1 public routes.
func PublicRoutes(app *web.App, cfg Config) {
	pbl := public.Handlers{
		Log:   cfg.Log,
		Chain: cfg.Chain,
		Evts:  cfg.Evts,
	}

	app.Handle(http.MethodGet, version, "/events", pbl.Events)
	app.Handle(http.MethodGet, version, "/genesis", pbl.Genesis, mid.Cors("*"))
	app.Handle(http.MethodGet, version, "/blocks/list", pbl.Blocks, mid.Cors("*"))
	app.Handle(http.MethodGet, version, "/blocks/:number", pbl.BlockByNumber, mid.Cors("*"))
	app.Handle(http.MethodGet, version, "/blocks/:number/proof/:index", pbl.Proof, mid.Cors("*"))
	app.Handle(http.MethodPost, version, "/blocks/add", pbl.AddBlock, mid.Cors("*"))
	app.Handle(http.MethodPost, version, "/blocks/propose", pbl.ProposeBlock, mid.Cors("*"))
	app.Handle(http.MethodGet, version, "/chain/verify", pbl.Verify, mid.Cors("*"))
}
