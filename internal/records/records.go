// Package records maps raw store documents onto the typed schema the
// dashboard works with. Absent or malformed fields are substituted with
// defined defaults; decoding is never fatal.
package records

import (
	"sort"
	"time"

	"github.com/syrixgg/ops-hub/internal/store"
)

// Logical collection names, scoped by the store under the app namespace.
const (
	CollectionRoster   = "roster"
	CollectionMatches  = "events"
	CollectionChat     = "shoutbox"
	CollectionAbsences = "leaves"
	CollectionDossiers = "warroom"
	CollectionLineups  = "lineups"
	CollectionGeneral  = "general"

	VetoDocID = "map_veto"
)

// MapPool is the fixed competitive map pool.
var MapPool = []string{
	"Ascent", "Bind", "Breeze", "Fracture", "Haven", "Icebox",
	"Lotus", "Pearl", "Split", "Sunset", "Abyss",
}

// AgentNames is the fixed playable-character list.
var AgentNames = []string{
	"Jett", "Raze", "Reyna", "Yoru", "Phoenix", "Neon", "Iso", "Vyse",
	"Omen", "Astra", "Brimstone", "Viper", "Harbor", "Clove", "Sova",
	"Fade", "Skye", "Breach", "KAY/O", "Gekko", "Killjoy", "Cypher",
	"Sage", "Chamber", "Deadlock",
}

const (
	DefaultAuthor = "Unknown"
	DefaultRole   = "MEMBER"
)

// TimeLayout is how server-assigned timestamps and match dates are stored.
const TimeLayout = time.RFC3339

type RosterMember struct {
	ID   string `json:"id"` // display handle
	Role string `json:"role"`
	PFP  string `json:"pfp,omitempty"`
}

type MatchRecord struct {
	ID       string `json:"id"`
	Opponent string `json:"opponent"`
	Date     string `json:"date"`
	Map      string `json:"map"`
	Result   string `json:"result"`
}

type ChatMessage struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type AbsenceRecord struct {
	ID    string `json:"id"`
	User  string `json:"user"`
	Start string `json:"start"`
	End   string `json:"end"`
}

type OpponentDossier struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Threat   string            `json:"threat"`
	MapIntel map[string]string `json:"map_intel"`
}

type LineupPin struct {
	ID     string  `json:"id"`
	Map    string  `json:"map"`
	X      float64 `json:"x"` // percent of the map image, 0-100
	Y      float64 `json:"y"`
	Title  string  `json:"title"`
	URL    string  `json:"url"`
	Author string  `json:"author"`
}

func RosterFromDoc(d store.Document) RosterMember {
	return RosterMember{
		ID:   d.ID,
		Role: str(d.Data, "role", DefaultRole),
		PFP:  str(d.Data, "pfp", ""),
	}
}

func MatchFromDoc(d store.Document) MatchRecord {
	return MatchRecord{
		ID:       d.ID,
		Opponent: str(d.Data, "opponent", "Enemy"),
		Date:     str(d.Data, "date", ""),
		Map:      str(d.Data, "map", "TBD"),
		Result:   str(d.Data, "result", ""),
	}
}

func ChatFromDoc(d store.Document) ChatMessage {
	return ChatMessage{
		ID:        d.ID,
		Author:    str(d.Data, "author", DefaultAuthor),
		Text:      str(d.Data, "text", ""),
		CreatedAt: timeOf(d.Data, "createdAt"),
	}
}

func AbsenceFromDoc(d store.Document) AbsenceRecord {
	return AbsenceRecord{
		ID:    d.ID,
		User:  str(d.Data, "user", DefaultAuthor),
		Start: str(d.Data, "start", ""),
		End:   str(d.Data, "end", ""),
	}
}

func DossierFromDoc(d store.Document) OpponentDossier {
	intel := map[string]string{}
	if raw, ok := d.Data["mapIntel"].(map[string]any); ok {
		for k, v := range raw {
			if s, ok := v.(string); ok {
				intel[k] = s
			}
		}
	}
	return OpponentDossier{
		ID:       d.ID,
		Name:     str(d.Data, "name", "Unnamed"),
		Threat:   str(d.Data, "threat", "Medium"),
		MapIntel: intel,
	}
}

func PinFromDoc(d store.Document) LineupPin {
	return LineupPin{
		ID:     d.ID,
		Map:    str(d.Data, "map", ""),
		X:      num(d.Data, "x"),
		Y:      num(d.Data, "y"),
		Title:  str(d.Data, "title", ""),
		URL:    str(d.Data, "url", ""),
		Author: str(d.Data, "author", DefaultAuthor),
	}
}

// Snapshot mappers. Sorting is applied here because the store guarantees
// no delivery order of its own.

func RosterFromDocs(docs []store.Document) []RosterMember {
	out := make([]RosterMember, 0, len(docs))
	for _, d := range docs {
		out = append(out, RosterFromDoc(d))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// MatchesFromDocs returns matches sorted by date descending.
func MatchesFromDocs(docs []store.Document) []MatchRecord {
	out := make([]MatchRecord, 0, len(docs))
	for _, d := range docs {
		out = append(out, MatchFromDoc(d))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return matchTime(out[i].Date).After(matchTime(out[j].Date))
	})
	return out
}

// ChatFromDocs returns messages sorted by creation time descending.
func ChatFromDocs(docs []store.Document) []ChatMessage {
	out := make([]ChatMessage, 0, len(docs))
	for _, d := range docs {
		out = append(out, ChatFromDoc(d))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func AbsencesFromDocs(docs []store.Document) []AbsenceRecord {
	out := make([]AbsenceRecord, 0, len(docs))
	for _, d := range docs {
		out = append(out, AbsenceFromDoc(d))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func DossiersFromDocs(docs []store.Document) []OpponentDossier {
	out := make([]OpponentDossier, 0, len(docs))
	for _, d := range docs {
		out = append(out, DossierFromDoc(d))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func PinsFromDocs(docs []store.Document) []LineupPin {
	out := make([]LineupPin, 0, len(docs))
	for _, d := range docs {
		out = append(out, PinFromDoc(d))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func str(m map[string]any, key, fallback string) string {
	if v, ok := m[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

func num(m map[string]any, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return 0
	}
}

func timeOf(m map[string]any, key string) time.Time {
	s, ok := m[key].(string)
	if !ok {
		return time.Time{}
	}
	ts, err := time.Parse(TimeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return ts
}

// matchTime parses a match date for ordering; unparseable dates sort last.
func matchTime(s string) time.Time {
	for _, layout := range []string{TimeLayout, "2006-01-02"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts
		}
	}
	return time.Time{}
}
