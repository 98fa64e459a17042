package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/syrixgg/ops-hub/internal/dispatch"
	"github.com/syrixgg/ops-hub/internal/hub"
	"github.com/syrixgg/ops-hub/internal/records"
	"github.com/syrixgg/ops-hub/internal/store"
	"github.com/syrixgg/ops-hub/internal/veto"
	"go.uber.org/zap"
)

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// GetState returns the current hub view, mainly for debugging and
// non-websocket consumers.
func GetState(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reply := make(chan hub.View, 1)
		d.Hub.Inbox() <- hub.GetView{Reply: reply}
		writeJSON(w, http.StatusOK, <-reply)
	}
}

func PostShout(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Author string `json:"author"`
			Text   string `json:"text"`
		}
		if !decode(w, r, &body) {
			return
		}
		if err := d.Dispatch.PostShout(r.Context(), body.Author, body.Text); err != nil {
			writeError(w, d.Log, err)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}
}

func PostAbsence(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			User  string `json:"user"`
			Start string `json:"start"`
			End   string `json:"end"`
		}
		if !decode(w, r, &body) {
			return
		}
		if err := d.Dispatch.RegisterAbsence(r.Context(), body.User, body.Start, body.End); err != nil {
			writeError(w, d.Log, err)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}
}

func PostMatch(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Opponent string `json:"opponent"`
			Date     string `json:"date"`
			Map      string `json:"map"`
			Result   string `json:"result"`
		}
		if !decode(w, r, &body) {
			return
		}
		if err := d.Dispatch.AddMatch(r.Context(), body.Opponent, body.Date, body.Map, body.Result); err != nil {
			writeError(w, d.Log, err)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}
}

func PostDossier(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Name string `json:"name"`
		}
		if !decode(w, r, &body) {
			return
		}
		id, err := d.Dispatch.AddDossier(r.Context(), body.Name)
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		writeJSON(w, http.StatusCreated, struct {
			ID string `json:"id"`
		}{ID: id})
	}
}

func PutIntel(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Map  string `json:"map"`
			Text string `json:"text"`
		}
		if !decode(w, r, &body) {
			return
		}
		if err := d.Dispatch.SaveMapIntel(r.Context(), chi.URLParam(r, "id"), body.Map, body.Text); err != nil {
			writeError(w, d.Log, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func DeleteDossier(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Dispatch.DeleteDossier(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeError(w, d.Log, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func PostPin(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var pin records.LineupPin
		if !decode(w, r, &pin) {
			return
		}
		id, err := d.Dispatch.DropPin(r.Context(), pin)
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		writeJSON(w, http.StatusCreated, struct {
			ID string `json:"id"`
		}{ID: id})
	}
}

func DeletePin(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Dispatch.DeletePin(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeError(w, d.Log, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// GetPins lists lineup pins, scoped to one map via ?map=.
func GetPins(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var filter *store.Filter
		if mapName := r.URL.Query().Get("map"); mapName != "" {
			filter = &store.Filter{Field: "map", Value: mapName}
		}
		docs, err := d.Store.List(r.Context(), records.CollectionLineups, filter)
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		writeJSON(w, http.StatusOK, records.PinsFromDocs(docs))
	}
}

func PostVetoToggle(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Map string `json:"map"`
		}
		if !decode(w, r, &body) {
			return
		}
		if err := d.Dispatch.ToggleVeto(r.Context(), body.Map); err != nil {
			writeError(w, d.Log, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func PostVetoReset(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Dispatch.ResetVeto(r.Context()); err != nil {
			writeError(w, d.Log, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func PostCoachAsk(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Query       string `json:"query"`
			Instruction string `json:"instruction"`
		}
		if !decode(w, r, &body) {
			return
		}
		writeJSON(w, http.StatusOK, struct {
			Text string `json:"text"`
		}{Text: d.Coach.Ask(r.Context(), body.Query, body.Instruction)})
	}
}

func PostCoachRefine(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Message string `json:"message"`
		}
		if !decode(w, r, &body) {
			return
		}
		writeJSON(w, http.StatusOK, struct {
			Text string `json:"text"`
		}{Text: d.Coach.RefineMessage(r.Context(), body.Message)})
	}
}

func GetMaps(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		maps, err := d.Assets.MapImages(r.Context())
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		writeJSON(w, http.StatusOK, maps)
	}
}

func GetAgents(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		agents, err := d.Assets.Agents(r.Context())
		if err != nil {
			writeError(w, d.Log, err)
			return
		}
		writeJSON(w, http.StatusOK, agents)
	}
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errBody{Error: "bad json"})
		return false
	}
	return true
}

type errBody struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, log *zap.Logger, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, dispatch.ErrEmptyText),
		errors.Is(err, dispatch.ErrBadCoords),
		errors.Is(err, veto.ErrUnknownMap):
		status = http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	}
	if status == http.StatusInternalServerError {
		log.Error("request failed", zap.Error(err))
	}
	writeJSON(w, status, errBody{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
