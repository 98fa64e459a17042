package hub

import (
	"context"

	"github.com/syrixgg/ops-hub/internal/records"
	"github.com/syrixgg/ops-hub/internal/veto"
	"go.uber.org/zap"
)

type Msg interface{ isHubMsg() }

type Join struct {
	ClientID string
	Outbox   chan Snapshot // where this client wants to receive snapshots
}

func (Join) isHubMsg() {}

type Leave struct{ ClientID string }

func (Leave) isHubMsg() {}

type Shutdown struct{}

func (Shutdown) isHubMsg() {}

type GetView struct {
	Reply chan View
}

func (GetView) isHubMsg() {}

// Slot updates from the subscription layer. Each carries the full latest
// set for its collection and overwrites the slot wholesale.

type SetRoster struct{ Members []records.RosterMember }
type SetMatches struct{ Matches []records.MatchRecord }
type SetChat struct{ Messages []records.ChatMessage }
type SetAbsences struct{ Absences []records.AbsenceRecord }
type SetDossiers struct{ Dossiers []records.OpponentDossier }
type SetVeto struct{ Board veto.Board }

func (SetRoster) isHubMsg()   {}
func (SetMatches) isHubMsg()  {}
func (SetChat) isHubMsg()     {}
func (SetAbsences) isHubMsg() {}
func (SetDossiers) isHubMsg() {}
func (SetVeto) isHubMsg()     {}

// State is one slot per logical collection, always the complete current
// set — consumers never see deltas.
type State struct {
	Roster   []records.RosterMember    `json:"roster"`
	Matches  []records.MatchRecord     `json:"matches"`
	Chat     []records.ChatMessage     `json:"chat"`
	Absences []records.AbsenceRecord   `json:"absences"`
	Dossiers []records.OpponentDossier `json:"dossiers"`
	Veto     veto.Board                `json:"veto"`
}

type Snapshot struct {
	Version int
	State   State
}

type View struct {
	Version    int
	NumClients int
	State      State
}

// Hub is the view-state store: a single goroutine owns the slots and
// fans versioned snapshots out to joined clients.
type Hub struct {
	inbox   chan Msg
	state   State
	version int
	clients map[string]chan Snapshot
	log     *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewHub(parent context.Context, log *zap.Logger) *Hub {
	ctx, cancel := context.WithCancel(parent)

	h := &Hub{
		inbox:   make(chan Msg, 64), // Small buffer
		state:   State{Veto: veto.Board{}},
		clients: make(map[string]chan Snapshot),
		log:     log,
		ctx:     ctx,
		cancel:  cancel,
	}

	go h.loop()
	return h
}

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case Join:
				// Register client + send current snapshot immediately
				h.clients[msg.ClientID] = msg.Outbox
				msg.Outbox <- Snapshot{Version: h.version, State: h.state}

			case Leave:
				// Close the outbox so the client's pump goroutine
				// terminates; absent means it was already dropped.
				if ch, ok := h.clients[msg.ClientID]; ok {
					close(ch)
					delete(h.clients, msg.ClientID)
				}

			case SetRoster:
				h.state.Roster = msg.Members
				h.bump()
			case SetMatches:
				h.state.Matches = msg.Matches
				h.bump()
			case SetChat:
				h.state.Chat = msg.Messages
				h.bump()
			case SetAbsences:
				h.state.Absences = msg.Absences
				h.bump()
			case SetDossiers:
				h.state.Dossiers = msg.Dossiers
				h.bump()
			case SetVeto:
				h.state.Veto = msg.Board
				h.bump()

			case GetView:
				// test-only: reflect internal state without data races
				msg.Reply <- View{
					Version:    h.version,
					NumClients: len(h.clients),
					State:      h.state,
				}

			case Shutdown:
				h.shutdown()
				return
			}
		}
	}
}

func (h *Hub) bump() {
	h.version++
	h.broadcast(Snapshot{Version: h.version, State: h.state})
}

func (h *Hub) shutdown() {
	for id, ch := range h.clients {
		close(ch) // Tell client no more snapshots
		delete(h.clients, id)
	}
	h.cancel()
}

func (h *Hub) broadcast(snap Snapshot) {
	for id, ch := range h.clients {
		select {
		case ch <- snap:
			//ok
		default:
			// Client is slow/full - drop them.
			h.log.Warn("dropping slow client", zap.String("client_id", id))
			close(ch)
			delete(h.clients, id)
		}
	}
}

// Expose the inbox so tests or the sync/ws layers can send messages.
func (h *Hub) Inbox() chan<- Msg { return h.inbox }
