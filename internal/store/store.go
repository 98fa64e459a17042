// Package store is the document-store boundary: named collections of
// schemaless documents with live snapshot subscriptions. Writes are
// last-write-wins; there are no transactions across collections.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var ErrNotFound = errors.New("document not found")

// Document is one record in a collection. Data holds the raw decoded
// fields; typed mapping happens in the records package.
type Document struct {
	ID   string
	Data map[string]any
}

// Filter is an optional equality constraint on one top-level field.
type Filter struct {
	Field string
	Value any
}

func (f *Filter) matches(data map[string]any) bool {
	if f == nil {
		return true
	}
	v, ok := data[f.Field]
	if !ok {
		return false
	}
	return fmt.Sprint(v) == fmt.Sprint(f.Value)
}

type Store interface {
	// Add creates a document under a store-generated id.
	Add(ctx context.Context, collection string, data map[string]any) (string, error)
	// Set overwrites the whole document, creating it if absent.
	Set(ctx context.Context, collection, id string, data map[string]any) error
	// Update merges the given fields at the top level only.
	Update(ctx context.Context, collection, id string, partial map[string]any) error
	Delete(ctx context.Context, collection, id string) error
	Get(ctx context.Context, collection, id string) (Document, error)
	List(ctx context.Context, collection string, filter *Filter) ([]Document, error)
	// Subscribe opens a live snapshot stream for a collection/filter. The
	// full current matching set is delivered immediately and again after
	// every observed change. Delivery order across collections is
	// unspecified; stale intermediate snapshots may be coalesced away.
	Subscribe(ctx context.Context, collection string, filter *Filter) (*Subscription, error)
}

// Subscription is a channel-based snapshot stream. C is closed after
// Close; Close is safe to call more than once and from any goroutine.
type Subscription struct {
	C <-chan []Document

	once  sync.Once
	close func()
}

func newSubscription(ch chan []Document, closeFn func()) *Subscription {
	return &Subscription{C: ch, close: closeFn}
}

func (s *Subscription) Close() {
	s.once.Do(s.close)
}

// push delivers the latest snapshot with latest-wins coalescing: if the
// consumer has not drained the previous snapshot it is replaced, never
// blocking the writer. Callers must serialize push against close.
func push(ch chan []Document, docs []Document) {
	for {
		select {
		case ch <- docs:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
