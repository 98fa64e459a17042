package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/syrixgg/ops-hub/internal/assets"
	"github.com/syrixgg/ops-hub/internal/coach"
	"github.com/syrixgg/ops-hub/internal/dispatch"
	"github.com/syrixgg/ops-hub/internal/hub"
	"github.com/syrixgg/ops-hub/internal/store"
	"github.com/syrixgg/ops-hub/internal/ws"
	"go.uber.org/zap"
)

type Deps struct {
	Hub      *hub.Hub
	Store    store.Store
	Dispatch *dispatch.Dispatcher
	Coach    *coach.Client
	Assets   *assets.Client
	Log      *zap.Logger
}

func SetupRoutes(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", Healthz)
	r.Get("/state", GetState(d))

	r.Post("/shouts", PostShout(d))
	r.Post("/absences", PostAbsence(d))
	r.Post("/matches", PostMatch(d))

	r.Post("/dossiers", PostDossier(d))
	r.Put("/dossiers/{id}/intel", PutIntel(d))
	r.Delete("/dossiers/{id}", DeleteDossier(d))

	r.Post("/pins", PostPin(d))
	r.Delete("/pins/{id}", DeletePin(d))
	r.Get("/pins", GetPins(d))

	r.Post("/veto/toggle", PostVetoToggle(d))
	r.Post("/veto/reset", PostVetoReset(d))

	r.Post("/coach/ask", PostCoachAsk(d))
	r.Post("/coach/refine", PostCoachRefine(d))

	r.Get("/assets/maps", GetMaps(d))
	r.Get("/assets/agents", GetAgents(d))

	r.Get("/ws", ws.Handler(ws.Deps{
		Hub:      d.Hub,
		Store:    d.Store,
		Dispatch: d.Dispatch,
		Coach:    d.Coach,
		Log:      d.Log,
	}))

	return r
}
