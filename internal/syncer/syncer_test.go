package syncer

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/syrixgg/ops-hub/internal/hub"
	"github.com/syrixgg/ops-hub/internal/records"
	"github.com/syrixgg/ops-hub/internal/store"
	"github.com/syrixgg/ops-hub/internal/veto"
	"go.uber.org/zap"
)

func recvMsg(t *testing.T, ch <-chan hub.Msg, within time.Duration) hub.Msg {
	t.Helper()
	select {
	case m := <-ch:
		return m
	case <-time.After(within):
		t.Fatalf("timed out waiting for hub message")
		return nil // unreachable
	}
}

// waitFor drains hub messages until one matches, so tests don't depend
// on relative ordering across subscriptions.
func waitFor(t *testing.T, ch <-chan hub.Msg, match func(hub.Msg) bool) hub.Msg {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case m := <-ch:
			if match(m) {
				return m
			}
		case <-deadline:
			t.Fatalf("no matching hub message arrived")
			return nil // unreachable
		}
	}
}

func TestManager_FeedsTypedSnapshotsIntoHubInbox(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st := store.NewMemory()
	inbox := make(chan hub.Msg, 64)
	m := NewManager(st, inbox, zap.NewNop())

	done := make(chan struct{})
	go func() { defer close(done); _ = m.Run(ctx) }()

	// Initial load counts as a change: all six feeds deliver a snapshot.
	seen := map[string]bool{}
	for i := 0; i < 6; i++ {
		switch recvMsg(t, inbox, time.Second).(type) {
		case hub.SetRoster:
			seen["roster"] = true
		case hub.SetMatches:
			seen["matches"] = true
		case hub.SetChat:
			seen["chat"] = true
		case hub.SetAbsences:
			seen["absences"] = true
		case hub.SetDossiers:
			seen["dossiers"] = true
		case hub.SetVeto:
			seen["veto"] = true
		}
	}
	if len(seen) != 6 {
		t.Fatalf("want all six initial snapshots, got %+v", seen)
	}

	if _, err := st.Add(ctx, records.CollectionChat, map[string]any{
		"author": "vex", "text": "scrim at 6",
	}); err != nil {
		t.Fatalf("add: %v", err)
	}

	msg := waitFor(t, inbox, func(m hub.Msg) bool {
		c, ok := m.(hub.SetChat)
		return ok && len(c.Messages) == 1
	})
	if msg.(hub.SetChat).Messages[0].Text != "scrim at 6" {
		t.Fatalf("chat snapshot: %+v", msg)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Run did not return after cancel")
	}
	if n := st.ActiveSubscriptions(); n != 0 {
		t.Fatalf("subscriptions leaked after Run returned: %d", n)
	}
}

func TestManager_VetoSingleton(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st := store.NewMemory()
	if err := st.Set(ctx, records.CollectionGeneral, records.VetoDocID, map[string]any{
		"Haven": "ban",
	}); err != nil {
		t.Fatalf("set: %v", err)
	}

	inbox := make(chan hub.Msg, 64)
	go func() { _ = NewManager(st, inbox, zap.NewNop()).Run(ctx) }()

	msg := waitFor(t, inbox, func(m hub.Msg) bool {
		v, ok := m.(hub.SetVeto)
		return ok && len(v.Board) > 0
	})
	if msg.(hub.SetVeto).Board.StatusOf("Haven") != veto.StatusBan {
		t.Fatalf("veto board: %+v", msg)
	}
}

func TestBinding_RebindClosesPreviousFirst(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()

	var mu sync.Mutex
	var delivered []string // map names seen by the callback
	b := NewBinding(st, func(mapName string, _ []records.LineupPin) {
		mu.Lock()
		defer mu.Unlock()
		delivered = append(delivered, mapName)
	})
	defer b.Close()

	for _, mapName := range []string{"Haven", "Bind", "Ascent"} {
		if err := b.Rebind(ctx, mapName); err != nil {
			t.Fatalf("rebind %s: %v", mapName, err)
		}
		if n := st.ActiveSubscriptions(); n != 1 {
			t.Fatalf("after rebind to %s: want exactly 1 subscription, got %d", mapName, n)
		}
	}

	// Once Rebind returns, no delivery for an earlier filter can start.
	// Discard anything delivered while those filters were still current.
	mu.Lock()
	delivered = nil
	mu.Unlock()

	// A write for a previously bound map must not reach the callback.
	if _, err := st.Add(ctx, records.CollectionLineups, map[string]any{
		"map": "Haven", "title": "stale",
	}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := st.Add(ctx, records.CollectionLineups, map[string]any{
		"map": "Ascent", "title": "current",
	}); err != nil {
		t.Fatalf("add: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		mu.Lock()
		sawCurrent := false
		for _, m := range delivered {
			if m == "Haven" || m == "Bind" {
				mu.Unlock()
				t.Fatalf("delivery for stale filter %q", m)
			}
			if m == "Ascent" {
				sawCurrent = true
			}
		}
		mu.Unlock()
		if sawCurrent {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("current map delivery never arrived")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestBinding_CloseStopsDeliveryAndReleasesSubscription(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()

	got := make(chan string, 8)
	b := NewBinding(st, func(mapName string, _ []records.LineupPin) { got <- mapName })

	if err := b.Rebind(ctx, "Haven"); err != nil {
		t.Fatalf("rebind: %v", err)
	}
	select {
	case <-got: // initial empty snapshot
	case <-time.After(time.Second):
		t.Fatalf("initial snapshot never delivered")
	}

	b.Close()
	b.Close() // idempotent

	if n := st.ActiveSubscriptions(); n != 0 {
		t.Fatalf("subscription leaked after Close: %d", n)
	}

	if _, err := st.Add(ctx, records.CollectionLineups, map[string]any{"map": "Haven"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	select {
	case m := <-got:
		t.Fatalf("delivery after Close: %q", m)
	case <-time.After(100 * time.Millisecond):
	}
}
