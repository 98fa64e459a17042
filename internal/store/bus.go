package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Bus distributes "collection changed" notifications between the writer
// path and live subscriptions. The Postgres store publishes after every
// acknowledged write; with the Redis bus that includes writes made by
// other server instances.
type Bus interface {
	Publish(ctx context.Context, collection string) error
	// Listen registers fn to run on every notification. The returned
	// cancel is exactly-once; no new invocations start after it is called.
	Listen(fn func(collection string)) (cancel func())
}

// MemoryBus is the single-process Bus.
type MemoryBus struct {
	mu        sync.Mutex
	listeners map[int]func(string)
	next      int
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{listeners: make(map[int]func(string))}
}

func (b *MemoryBus) Publish(_ context.Context, collection string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, fn := range b.listeners {
		fn(collection)
	}
	return nil
}

func (b *MemoryBus) Listen(fn func(string)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	key := b.next
	b.next++
	b.listeners[key] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.listeners, key)
		})
	}
}

// RedisBus carries change notifications over a Redis pub/sub channel so
// every server instance observes every write.
type RedisBus struct {
	client  *redis.Client
	channel string
}

func NewRedisBus(redisURL, namespace string) (*RedisBus, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &RedisBus{client: client, channel: namespace + ":changes"}, nil
}

func (b *RedisBus) Publish(ctx context.Context, collection string) error {
	if err := b.client.Publish(ctx, b.channel, collection).Err(); err != nil {
		return fmt.Errorf("publish change: %w", err)
	}
	return nil
}

func (b *RedisBus) Listen(fn func(string)) func() {
	sub := b.client.Subscribe(context.Background(), b.channel)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case msg, ok := <-sub.Channel():
				if !ok {
					return
				}
				fn(msg.Payload)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			_ = sub.Close()
		})
	}
}

func (b *RedisBus) Close() error {
	return b.client.Close()
}
