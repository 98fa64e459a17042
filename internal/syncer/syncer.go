// Package syncer owns subscription lifecycle: it opens one live store
// subscription per logical view, decodes raw documents into typed
// records, and feeds the hub's view-state slots. Subscriptions are
// closed on teardown on every exit path.
package syncer

import (
	"context"
	"sync"

	"github.com/syrixgg/ops-hub/internal/hub"
	"github.com/syrixgg/ops-hub/internal/records"
	"github.com/syrixgg/ops-hub/internal/store"
	"github.com/syrixgg/ops-hub/internal/veto"
	"go.uber.org/zap"
)

// Manager pumps the six shared collections into the hub.
type Manager struct {
	store store.Store
	inbox chan<- hub.Msg
	log   *zap.Logger
}

func NewManager(st store.Store, inbox chan<- hub.Msg, log *zap.Logger) *Manager {
	return &Manager{store: st, inbox: inbox, log: log}
}

// Run blocks until ctx is cancelled. Every subscription it opens is
// closed before it returns.
func (m *Manager) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	feeds := []struct {
		collection string
		toMsg      func([]store.Document) hub.Msg
	}{
		{records.CollectionRoster, func(d []store.Document) hub.Msg {
			return hub.SetRoster{Members: records.RosterFromDocs(d)}
		}},
		{records.CollectionMatches, func(d []store.Document) hub.Msg {
			return hub.SetMatches{Matches: records.MatchesFromDocs(d)}
		}},
		{records.CollectionChat, func(d []store.Document) hub.Msg {
			return hub.SetChat{Messages: records.ChatFromDocs(d)}
		}},
		{records.CollectionAbsences, func(d []store.Document) hub.Msg {
			return hub.SetAbsences{Absences: records.AbsencesFromDocs(d)}
		}},
		{records.CollectionDossiers, func(d []store.Document) hub.Msg {
			return hub.SetDossiers{Dossiers: records.DossiersFromDocs(d)}
		}},
		{records.CollectionGeneral, func(d []store.Document) hub.Msg {
			return hub.SetVeto{Board: vetoBoard(d)}
		}},
	}

	var wg sync.WaitGroup
	for _, feed := range feeds {
		sub, err := m.store.Subscribe(ctx, feed.collection, nil)
		if err != nil {
			// Tear down whatever opened before bailing.
			cancel()
			wg.Wait()
			return err
		}

		wg.Add(1)
		go func(collection string, sub *store.Subscription, toMsg func([]store.Document) hub.Msg) {
			defer wg.Done()
			defer sub.Close()
			for {
				select {
				case <-ctx.Done():
					return
				case docs, ok := <-sub.C:
					if !ok {
						return
					}
					m.log.Debug("snapshot", zap.String("collection", collection), zap.Int("docs", len(docs)))
					select {
					case m.inbox <- toMsg(docs):
					case <-ctx.Done():
						return
					}
				}
			}
		}(feed.collection, sub, feed.toMsg)
	}

	<-ctx.Done()
	wg.Wait()
	return ctx.Err()
}

// vetoBoard extracts the veto singleton from the general collection.
func vetoBoard(docs []store.Document) veto.Board {
	for _, d := range docs {
		if d.ID == records.VetoDocID {
			return veto.FromDoc(d)
		}
	}
	return veto.Board{}
}
