package types

// Client -> Server (websocket, JSON; type selects the command)
//
// SelectTab:
//   tab: string // "" falls back to "dashboard"
//
// SelectOpponent:
//   dossier_id: string
//
// SetDraft: // chat composer text, kept server-side per session
//   text: string
//
// PostShout: // empty text posts (and clears) the current draft
//   text: string
//
// RegisterAbsence:
//   start: string // RFC3339 or YYYY-MM-DD
//   end: string
//
// AddMatch:
//   opponent: string
//   date: string
//   map: string
//   result: string // "" while upcoming
//
// AddDossier:
//   name: string
//
// SaveIntel:
//   dossier_id: string // "" falls back to the selected opponent
//   map: string
//   text: string
//
// DeleteDossier:
//   dossier_id: string
//
// BeginPin: // captures the click; idle -> awaiting-input
//   x, y, rect_w, rect_h: number
//
// SubmitPin: // completes the pending placement
//   title: string
//   url: string // optional clip link
//
// CancelPin: {} // abandons the pending placement
//
// DropPin: // one-shot alternative to the Begin/Submit flow
//   title: string
//   url: string
//   x, y, rect_w, rect_h: number
//
// DeletePin:
//   pin_id: string
//
// ToggleVeto: // neutral -> ban -> pick -> neutral
//   map: string
//
// ResetVeto: {}
//
// SelectMap: // rebinds the lineup feed; resets drawing + brush
//   map: string
//
// PointerDown / PointerMove / PointerUp / ClearCanvas:
//   x, y, rect_w, rect_h: number
//   color: string // PointerDown only, "#rrggbb"
//
// AskCoach:
//   text: string
//   instruction: string // optional persona override
//
// MapInsight: {} // uses the session's selected map
//
// RefineDraft:
//   text: string

// Server -> Client
//
// StateSnapshot:
//   version: number
//   state: { roster, matches, chat, absences, dossiers, veto }
//   // always the complete current set, never a delta
//
// Lineups:
//   map: string
//   pins: LineupPin[]
//
// Advice: // async; a MapInsight reply for a map that is no longer
//   map: string // selected is dropped server-side, never delivered
//   text: string
//
// Refined:
//   text: string
//
// Ack:
//   text: string // e.g. "Pin Dropped"
//
// Error:
//   error: string
