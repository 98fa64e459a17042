package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestMemoryBus_PublishReachesListeners(t *testing.T) {
	b := NewMemoryBus()

	got := make(chan string, 1)
	cancel := b.Listen(func(c string) { got <- c })
	defer cancel()

	if err := b.Publish(context.Background(), "roster"); err != nil {
		t.Fatalf("publish: %v", err)
	}
	select {
	case c := <-got:
		if c != "roster" {
			t.Fatalf("want roster, got %q", c)
		}
	case <-time.After(time.Second):
		t.Fatalf("listener never fired")
	}

	cancel()
	cancel() // exactly-once semantics, second call is a no-op

	if err := b.Publish(context.Background(), "events"); err != nil {
		t.Fatalf("publish: %v", err)
	}
	select {
	case c := <-got:
		t.Fatalf("cancelled listener fired with %q", c)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRedisBus_RoundTrip(t *testing.T) {
	s := miniredis.RunT(t)

	b, err := NewRedisBus("redis://"+s.Addr(), "syrix-pro-ops")
	if err != nil {
		t.Fatalf("NewRedisBus: %v", err)
	}
	defer b.Close()

	got := make(chan string, 1)
	cancel := b.Listen(func(c string) { got <- c })
	defer cancel()

	// Give the pub/sub subscription a moment to register.
	time.Sleep(50 * time.Millisecond)

	if err := b.Publish(context.Background(), "warroom"); err != nil {
		t.Fatalf("publish: %v", err)
	}
	select {
	case c := <-got:
		if c != "warroom" {
			t.Fatalf("want warroom, got %q", c)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("notification never arrived")
	}
}

func TestRedisBus_BadURL(t *testing.T) {
	if _, err := NewRedisBus("not-a-url", "syrix-pro-ops"); err == nil {
		t.Fatalf("expected error for malformed url")
	}
}
