package events_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reasonchain/core/pkg/events"
)

func TestSubscribersInvokedInPriorityOrder(t *testing.T) {
	bus := events.New(events.DefaultConfig(), zerolog.Nop())

	var mu sync.Mutex
	var order []int

	bus.Subscribe([]events.EventType{events.EventSessionCreated}, 1, nil, events.HandlerFunc(func(ctx context.Context, ev *events.Event) error {
		mu.Lock()
		order = append(order, 1)
		mu.Unlock()
		return nil
	}))
	bus.Subscribe([]events.EventType{events.EventSessionCreated}, 10, nil, events.HandlerFunc(func(ctx context.Context, ev *events.Event) error {
		mu.Lock()
		order = append(order, 10)
		mu.Unlock()
		return nil
	}))

	bus.Emit(context.Background(), &events.Event{Type: events.EventSessionCreated})
	assert.Equal(t, []int{10, 1}, order)
}

func TestHandlerFailureIsolatedPerSubscriber(t *testing.T) {
	cfg := events.DefaultConfig()
	bus := events.New(cfg, zerolog.Nop())

	var secondCalled bool
	bus.Subscribe([]events.EventType{events.EventSessionCreated}, 10, nil, events.HandlerFunc(func(ctx context.Context, ev *events.Event) error {
		return errors.New("boom")
	}))
	bus.Subscribe([]events.EventType{events.EventSessionCreated}, 1, nil, events.HandlerFunc(func(ctx context.Context, ev *events.Event) error {
		secondCalled = true
		return nil
	}))

	bus.Emit(context.Background(), &events.Event{Type: events.EventSessionCreated})
	assert.True(t, secondCalled)
}

func TestHandlerTimeoutDoesNotBlockEmitter(t *testing.T) {
	cfg := events.DefaultConfig()
	cfg.HandlerTimeout = 10 * time.Millisecond
	bus := events.New(cfg, zerolog.Nop())

	bus.Subscribe([]events.EventType{events.EventSessionCreated}, 1, nil, events.HandlerFunc(func(ctx context.Context, ev *events.Event) error {
		<-ctx.Done()
		return ctx.Err()
	}))

	done := make(chan struct{})
	go func() {
		bus.Emit(context.Background(), &events.Event{Type: events.EventSessionCreated})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("emit blocked past handler timeout")
	}
}

func TestHistoryBoundedDiscardsOldest(t *testing.T) {
	cfg := events.DefaultConfig()
	cfg.MaxHistorySize = 2
	bus := events.New(cfg, zerolog.Nop())

	bus.Emit(context.Background(), &events.Event{Type: events.EventSessionCreated, ID: "e1"})
	bus.Emit(context.Background(), &events.Event{Type: events.EventSessionCreated, ID: "e2"})
	bus.Emit(context.Background(), &events.Event{Type: events.EventSessionCreated, ID: "e3"})

	hist := bus.History()
	require.Len(t, hist, 2)
	assert.Equal(t, "e2", hist[0].ID)
	assert.Equal(t, "e3", hist[1].ID)
}

func TestFilterExcludesNonMatchingEvents(t *testing.T) {
	bus := events.New(events.DefaultConfig(), zerolog.Nop())
	var called bool
	bus.Subscribe([]events.EventType{events.EventSessionUpdated}, 1,
		func(ev *events.Event) bool { return ev.SessionID == "s1" },
		events.HandlerFunc(func(ctx context.Context, ev *events.Event) error {
			called = true
			return nil
		}))

	bus.Emit(context.Background(), &events.Event{Type: events.EventSessionUpdated, SessionID: "s2"})
	assert.False(t, called)

	bus.Emit(context.Background(), &events.Event{Type: events.EventSessionUpdated, SessionID: "s1"})
	assert.True(t, called)
}
