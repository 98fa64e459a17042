package store

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Memory is an in-process Store used in development and throughout the
// test suite. All operations and subscription notifications happen under
// one mutex, so each subscriber observes every write in order.
type Memory struct {
	mu          sync.Mutex
	collections map[string]map[string]map[string]any
	subs        map[int]*memorySub
	nextSub     int
}

type memorySub struct {
	collection string
	filter     *Filter
	ch         chan []Document
	closed     bool
}

func NewMemory() *Memory {
	return &Memory{
		collections: make(map[string]map[string]map[string]any),
		subs:        make(map[int]*memorySub),
	}
}

func (m *Memory) coll(name string) map[string]map[string]any {
	c, ok := m.collections[name]
	if !ok {
		c = make(map[string]map[string]any)
		m.collections[name] = c
	}
	return c
}

func (m *Memory) Add(_ context.Context, collection string, data map[string]any) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.NewString()
	m.coll(collection)[id] = cloneDoc(data)
	m.notify(collection)
	return id, nil
}

func (m *Memory) Set(_ context.Context, collection, id string, data map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.coll(collection)[id] = cloneDoc(data)
	m.notify(collection)
	return nil
}

func (m *Memory) Update(_ context.Context, collection, id string, partial map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.coll(collection)[id]
	if !ok {
		return ErrNotFound
	}
	for k, v := range partial {
		doc[k] = cloneValue(v)
	}
	m.notify(collection)
	return nil
}

func (m *Memory) Delete(_ context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.coll(collection), id)
	m.notify(collection)
	return nil
}

func (m *Memory) Get(_ context.Context, collection, id string) (Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.coll(collection)[id]
	if !ok {
		return Document{}, ErrNotFound
	}
	return Document{ID: id, Data: cloneDoc(data)}, nil
}

func (m *Memory) List(_ context.Context, collection string, filter *Filter) ([]Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot(collection, filter), nil
}

func (m *Memory) Subscribe(_ context.Context, collection string, filter *Filter) (*Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := m.nextSub
	m.nextSub++
	sub := &memorySub{
		collection: collection,
		filter:     filter,
		ch:         make(chan []Document, 1),
	}
	m.subs[key] = sub
	push(sub.ch, m.snapshot(collection, filter))

	closeFn := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if sub.closed {
			return
		}
		sub.closed = true
		delete(m.subs, key)
		close(sub.ch)
	}
	return newSubscription(sub.ch, closeFn), nil
}

// ActiveSubscriptions reports how many live subscriptions exist.
// Test-only: lets lifecycle tests assert no subscription leaks.
func (m *Memory) ActiveSubscriptions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs)
}

// snapshot and notify require m.mu.
func (m *Memory) snapshot(collection string, filter *Filter) []Document {
	docs := []Document{}
	for id, data := range m.coll(collection) {
		if filter.matches(data) {
			docs = append(docs, Document{ID: id, Data: cloneDoc(data)})
		}
	}
	return docs
}

// cloneDoc deep-copies nested maps and slices so stored documents never
// alias data held by callers in either direction.
func cloneDoc(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneDoc(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

func (m *Memory) notify(collection string) {
	for _, sub := range m.subs {
		if sub.collection != collection || sub.closed {
			continue
		}
		push(sub.ch, m.snapshot(collection, sub.filter))
	}
}
