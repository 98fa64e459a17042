package types

import (
	"github.com/syrixgg/ops-hub/internal/hub"
	"github.com/syrixgg/ops-hub/internal/records"
)

// ClientMessage is everything a dashboard client can send over the
// websocket. Type selects the command; the other fields are filled as
// that command needs them (see pkg/types for the protocol notes).
type ClientMessage struct {
	Type string `json:"type"`

	Text        string `json:"text,omitempty"`
	Instruction string `json:"instruction,omitempty"`

	Tab       string `json:"tab,omitempty"`
	Map       string `json:"map,omitempty"`
	Opponent  string `json:"opponent,omitempty"`
	Date      string `json:"date,omitempty"`
	Result    string `json:"result,omitempty"`
	Start     string `json:"start,omitempty"`
	End       string `json:"end,omitempty"`
	Name      string `json:"name,omitempty"`
	DossierID string `json:"dossier_id,omitempty"`
	PinID     string `json:"pin_id,omitempty"`
	Title     string `json:"title,omitempty"`
	URL       string `json:"url,omitempty"`

	// Pointer coordinates inside the rendered rect, for drawing and pin
	// placement. The server rescales into canvas/percent space.
	X     float64 `json:"x,omitempty"`
	Y     float64 `json:"y,omitempty"`
	RectW float64 `json:"rect_w,omitempty"`
	RectH float64 `json:"rect_h,omitempty"`
	Color string  `json:"color,omitempty"`
}

type ServerMessage struct {
	Type    string     `json:"type"` // "StateSnapshot" | "Lineups" | "Advice" | "Refined" | "Ack" | "Error"
	Version int        `json:"version,omitempty"`
	State   *hub.State `json:"state,omitempty"`

	Map  string              `json:"map,omitempty"`
	Pins []records.LineupPin `json:"pins,omitempty"`

	Text  string `json:"text,omitempty"`
	Error string `json:"error,omitempty"`
}
