package ws

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"github.com/syrixgg/ops-hub/internal/canvas"
	"github.com/syrixgg/ops-hub/internal/coach"
	"github.com/syrixgg/ops-hub/internal/dispatch"
	"github.com/syrixgg/ops-hub/internal/form"
	"github.com/syrixgg/ops-hub/internal/hub"
	"github.com/syrixgg/ops-hub/internal/records"
	"github.com/syrixgg/ops-hub/internal/store"
	"github.com/syrixgg/ops-hub/internal/syncer"
	"github.com/syrixgg/ops-hub/internal/types"
	"go.uber.org/zap"
)

// aicoachInstruction is the persona for free-form coach queries.
const aicoachInstruction = "You are 'S-HUB AI', the elite tactical coach for Team Syrix. Provide expert-level esports analysis."

type Deps struct {
	Hub      *hub.Hub
	Store    store.Store
	Dispatch *dispatch.Dispatcher
	Coach    *coach.Client
	Log      *zap.Logger
}

// DefaultTab is where a fresh session lands.
const DefaultTab = "dashboard"

// session is the per-connection selection state. It is touched only by
// the reader loop; switching maps resets the planning parts to defaults.
type session struct {
	name        string
	tab         string
	selectedMap string
	opponent    string // selected dossier id
	draft       string // chat composer text
	brush       string
	surface     canvas.Surface
	pinForm     form.PinForm

	// mapGen is bumped on map change; advisory reply goroutines compare
	// it against the value captured at dispatch and drop stale replies.
	// Atomic because those goroutines outlive the reader-loop iteration.
	mapGen atomic.Int64
}

func Handler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("name")
		if name == "" {
			name = "SRX_" + randID(4)
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		out := make(chan types.ServerMessage, 16)
		send := func(msg types.ServerMessage) {
			select {
			case out <- msg:
			case <-ctx.Done():
			}
		}

		// View-state snapshots from the hub.
		hubOut := make(chan hub.Snapshot, 8)
		clientID := randID(6)
		d.Hub.Inbox() <- hub.Join{ClientID: clientID, Outbox: hubOut}
		defer func() { d.Hub.Inbox() <- hub.Leave{ClientID: clientID} }()
		go func() {
			for snap := range hubOut {
				send(types.ServerMessage{Type: "StateSnapshot", Version: snap.Version, State: &snap.State})
			}
		}()

		// Per-session lineup view, bound to the selected map. Rebinding
		// on map change closes the old subscription first; Close on any
		// exit path via defer.
		binding := syncer.NewBinding(d.Store, func(mapName string, pins []records.LineupPin) {
			send(types.ServerMessage{Type: "Lineups", Map: mapName, Pins: pins})
		})
		defer binding.Close()

		sess := &session{
			name:        name,
			tab:         DefaultTab,
			selectedMap: records.MapPool[0],
			brush:       canvas.DefaultBrush,
		}
		if err := binding.Rebind(ctx, sess.selectedMap); err != nil {
			d.Log.Error("initial lineup bind failed", zap.Error(err))
			send(types.ServerMessage{Type: "Error", Error: "lineup view unavailable"})
		}

		// Writer goroutine: the only goroutine that touches the conn
		// for writes.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case msg := <-out:
					payload, _ := json.Marshal(msg)
					wctx, wcancel := context.WithTimeout(ctx, 3*time.Second)
					_ = conn.Write(wctx, websocket.MessageText, payload)
					wcancel()
				}
			}
		}()

		// Reader loop
		for {
			rctx, rcancel := context.WithTimeout(ctx, 5*time.Minute)
			_, data, err := conn.Read(rctx)
			rcancel()
			if err != nil {
				// Treat clean close/going-away as normal:
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					return
				}
				// Otherwise, just exit (hub.Leave and binding.Close in defers):
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				send(types.ServerMessage{Type: "Error", Error: "bad json"})
				continue
			}

			d.handle(ctx, sess, binding, cm, send)
		}
	}
}

func (d Deps) handle(ctx context.Context, sess *session, binding *syncer.Binding, cm types.ClientMessage, send func(types.ServerMessage)) {
	fail := func(err error) {
		d.Log.Warn("command failed", zap.String("type", cm.Type), zap.String("tab", sess.tab), zap.Error(err))
		send(types.ServerMessage{Type: "Error", Error: err.Error()})
	}
	ack := func(text string) {
		send(types.ServerMessage{Type: "Ack", Text: text})
	}

	switch cm.Type {
	case "SelectTab":
		if cm.Tab == "" {
			cm.Tab = DefaultTab
		}
		sess.tab = cm.Tab

	case "SelectOpponent":
		sess.opponent = cm.DossierID

	case "SetDraft":
		sess.draft = cm.Text

	case "PostShout":
		// An empty text posts the current composer draft.
		text := cm.Text
		if text == "" {
			text = sess.draft
		}
		if err := d.Dispatch.PostShout(ctx, sess.name, text); err != nil {
			fail(err)
			return
		}
		sess.draft = ""

	case "RegisterAbsence":
		if err := d.Dispatch.RegisterAbsence(ctx, sess.name, cm.Start, cm.End); err != nil {
			fail(err)
			return
		}
		ack("Absence Logged")

	case "AddMatch":
		if err := d.Dispatch.AddMatch(ctx, cm.Opponent, cm.Date, cm.Map, cm.Result); err != nil {
			fail(err)
			return
		}
		ack("Match Logged")

	case "AddDossier":
		if _, err := d.Dispatch.AddDossier(ctx, cm.Name); err != nil {
			fail(err)
			return
		}
		ack("Dossier Created")

	case "SaveIntel":
		id := cm.DossierID
		if id == "" {
			id = sess.opponent
		}
		if err := d.Dispatch.SaveMapIntel(ctx, id, cm.Map, cm.Text); err != nil {
			fail(err)
			return
		}
		ack("Dossier Updated")

	case "DeleteDossier":
		if err := d.Dispatch.DeleteDossier(ctx, cm.DossierID); err != nil {
			fail(err)
			return
		}
		ack("Dossier Removed")

	case "BeginPin":
		// Capture the click; the title arrives with SubmitPin.
		x, y := canvas.NormalizePercent(cm.X, cm.Y, cm.RectW, cm.RectH)
		if err := sess.pinForm.Begin(x, y); err != nil {
			fail(err)
		}

	case "SubmitPin":
		x, y, err := sess.pinForm.Submit()
		if err != nil {
			fail(err)
			return
		}
		pin := records.LineupPin{
			Map:    sess.selectedMap,
			X:      x,
			Y:      y,
			Title:  cm.Title,
			URL:    cm.URL,
			Author: sess.name,
		}
		if _, err := d.Dispatch.DropPin(ctx, pin); err != nil {
			fail(err)
			return
		}
		ack("Pin Dropped")

	case "CancelPin":
		if err := sess.pinForm.Cancel(); err != nil {
			fail(err)
		}

	case "DropPin":
		x, y := canvas.NormalizePercent(cm.X, cm.Y, cm.RectW, cm.RectH)
		pin := records.LineupPin{
			Map:    sess.selectedMap,
			X:      x,
			Y:      y,
			Title:  cm.Title,
			URL:    cm.URL,
			Author: sess.name,
		}
		if _, err := d.Dispatch.DropPin(ctx, pin); err != nil {
			fail(err)
			return
		}
		ack("Pin Dropped")

	case "DeletePin":
		if err := d.Dispatch.DeletePin(ctx, cm.PinID); err != nil {
			fail(err)
			return
		}
		ack("Pin Removed")

	case "ToggleVeto":
		if err := d.Dispatch.ToggleVeto(ctx, cm.Map); err != nil {
			fail(err)
		}

	case "ResetVeto":
		if err := d.Dispatch.ResetVeto(ctx); err != nil {
			fail(err)
			return
		}
		ack("Veto Board Reset")

	case "SelectMap":
		if err := binding.Rebind(ctx, cm.Map); err != nil {
			fail(err)
			return
		}
		// Logical-view change: planning state back to defaults.
		sess.selectedMap = cm.Map
		sess.surface.Clear()
		sess.brush = canvas.DefaultBrush
		_ = sess.pinForm.Cancel() // abandon any half-finished placement
		sess.mapGen.Add(1)

	case "PointerDown":
		if cm.Color != "" {
			sess.brush = cm.Color
		}
		sess.surface.PointerDown(sess.brush, canvas.ToCanvas(cm.X, cm.Y, cm.RectW, cm.RectH))
	case "PointerMove":
		sess.surface.PointerMove(canvas.ToCanvas(cm.X, cm.Y, cm.RectW, cm.RectH))
	case "PointerUp":
		sess.surface.PointerUp()
	case "ClearCanvas":
		sess.surface.Clear()

	case "AskCoach":
		if strings.TrimSpace(cm.Text) == "" {
			fail(dispatch.ErrEmptyText)
			return
		}
		instruction := cm.Instruction
		if instruction == "" {
			instruction = aicoachInstruction
		}
		go func() {
			send(types.ServerMessage{Type: "Advice", Text: d.Coach.Ask(ctx, cm.Text, instruction)})
		}()

	case "MapInsight":
		mapName := sess.selectedMap
		gen := sess.mapGen.Load()
		go func() {
			text := d.Coach.MapInsight(ctx, mapName)
			if sess.mapGen.Load() != gen {
				// The map changed while the coach was thinking.
				return
			}
			send(types.ServerMessage{Type: "Advice", Map: mapName, Text: text})
		}()

	case "RefineDraft":
		if strings.TrimSpace(cm.Text) == "" {
			fail(dispatch.ErrEmptyText)
			return
		}
		go func() {
			send(types.ServerMessage{Type: "Refined", Text: d.Coach.RefineMessage(ctx, cm.Text)})
		}()

	default:
		send(types.ServerMessage{Type: "Error", Error: "unknown type"})
	}
}

func randID(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}
