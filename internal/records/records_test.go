package records

import (
	"testing"
	"time"

	"github.com/syrixgg/ops-hub/internal/store"
)

func TestChatFromDocs_SortedByCreationDescending(t *testing.T) {
	base := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	docs := []store.Document{
		{ID: "a", Data: map[string]any{"text": "oldest", "author": "vex", "createdAt": base.Format(TimeLayout)}},
		{ID: "b", Data: map[string]any{"text": "newest", "author": "vex", "createdAt": base.Add(2 * time.Minute).Format(TimeLayout)}},
		{ID: "c", Data: map[string]any{"text": "middle", "author": "vex", "createdAt": base.Add(time.Minute).Format(TimeLayout)}},
	}

	// Delivery order from the store is unspecified; sort must not depend on it.
	msgs := ChatFromDocs(docs)
	want := []string{"newest", "middle", "oldest"}
	for i, w := range want {
		if msgs[i].Text != w {
			t.Fatalf("position %d: want %q, got %q", i, w, msgs[i].Text)
		}
	}
}

func TestMatchesFromDocs_SortedByDateDescending(t *testing.T) {
	docs := []store.Document{
		{ID: "1", Data: map[string]any{"opponent": "LOUD", "date": "2026-01-10"}},
		{ID: "2", Data: map[string]any{"opponent": "Fnatic", "date": "2026-03-02"}},
		{ID: "3", Data: map[string]any{"opponent": "DRX", "date": "2026-02-11"}},
	}

	matches := MatchesFromDocs(docs)
	want := []string{"Fnatic", "DRX", "LOUD"}
	for i, w := range want {
		if matches[i].Opponent != w {
			t.Fatalf("position %d: want %q, got %q", i, w, matches[i].Opponent)
		}
	}
}

func TestDefaultsForMissingFields(t *testing.T) {
	msg := ChatFromDoc(store.Document{ID: "m1", Data: map[string]any{}})
	if msg.Author != DefaultAuthor {
		t.Fatalf("want author %q, got %q", DefaultAuthor, msg.Author)
	}
	if msg.Text != "" {
		t.Fatalf("want empty text, got %q", msg.Text)
	}
	if !msg.CreatedAt.IsZero() {
		t.Fatalf("want zero time, got %v", msg.CreatedAt)
	}

	member := RosterFromDoc(store.Document{ID: "srx_zed", Data: map[string]any{}})
	if member.Role != DefaultRole {
		t.Fatalf("want role %q, got %q", DefaultRole, member.Role)
	}
	if member.ID != "srx_zed" {
		t.Fatalf("handle is the document id; got %q", member.ID)
	}
}

func TestDossierFromDoc_IntelMap(t *testing.T) {
	doc := store.Document{ID: "d1", Data: map[string]any{
		"name": "Fnatic",
		"mapIntel": map[string]any{
			"Bind":  "rush B",
			"Haven": "slow defaults",
			"bogus": 42, // non-string intel is dropped, not fatal
		},
	}}

	dossier := DossierFromDoc(doc)
	if dossier.Threat != "Medium" {
		t.Fatalf("want default threat Medium, got %q", dossier.Threat)
	}
	if len(dossier.MapIntel) != 2 || dossier.MapIntel["Bind"] != "rush B" {
		t.Fatalf("unexpected intel map: %+v", dossier.MapIntel)
	}
}

func TestPinFromDoc_Coordinates(t *testing.T) {
	pin := PinFromDoc(store.Document{ID: "p1", Data: map[string]any{
		"map": "Haven", "x": 50.0, "y": 42.5, "title": "viper wall",
	}})
	if pin.X != 50 || pin.Y != 42.5 {
		t.Fatalf("coordinates mangled: %+v", pin)
	}
	if pin.Author != DefaultAuthor {
		t.Fatalf("want default author, got %q", pin.Author)
	}
}
