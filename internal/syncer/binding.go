package syncer

import (
	"context"
	"sync"

	"github.com/syrixgg/ops-hub/internal/records"
	"github.com/syrixgg/ops-hub/internal/store"
)

// PinsFunc receives the latest pin set for the bound map. It must not
// call back into the Binding.
type PinsFunc func(mapName string, pins []records.LineupPin)

// Binding is a per-view lineup subscription keyed by the selected map.
// Rebinding closes the previous subscription before opening the next, so
// at any instant at most one subscription exists, and no delivery ever
// references a map that is no longer current.
type Binding struct {
	store   store.Store
	deliver PinsFunc

	mu  sync.Mutex
	gen int
	sub *store.Subscription
}

func NewBinding(st store.Store, deliver PinsFunc) *Binding {
	return &Binding{store: st, deliver: deliver}
}

// Rebind switches the binding to mapName. Once it returns, no delivery
// for any previously bound map will start.
func (b *Binding) Rebind(ctx context.Context, mapName string) error {
	b.mu.Lock()
	b.gen++
	gen := b.gen
	if b.sub != nil {
		b.sub.Close()
		b.sub = nil
	}
	b.mu.Unlock()

	sub, err := b.store.Subscribe(ctx, records.CollectionLineups, &store.Filter{
		Field: "map",
		Value: mapName,
	})
	if err != nil {
		return err
	}

	b.mu.Lock()
	if b.gen != gen {
		// Another Rebind or Close won the race while we were opening.
		b.mu.Unlock()
		sub.Close()
		return nil
	}
	b.sub = sub
	b.mu.Unlock()

	go func() {
		for docs := range sub.C {
			// Deliver under the lock so a stale pump can never start a
			// delivery after Rebind/Close has returned.
			b.mu.Lock()
			if b.gen != gen {
				b.mu.Unlock()
				return
			}
			b.deliver(mapName, records.PinsFromDocs(docs))
			b.mu.Unlock()
		}
	}()
	return nil
}

// Close releases the current subscription. Safe to call repeatedly.
func (b *Binding) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.gen++
	if b.sub != nil {
		b.sub.Close()
		b.sub = nil
	}
}
