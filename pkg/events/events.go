// Package events implements the EventBus capability: typed lifecycle
// events, priority-ordered subscribers invoked inline with per-handler
// timeout and retry, and a bounded ring history. Grounded on the
// teacher's pkg/events/events.go Broker/Subscriber shape, generalized
// from channel-based async fan-out to synchronous, priority-ordered
// dispatch because the spec requires the emitter to observe handler
// outcomes and bound them by a deadline rather than fire-and-forget.
package events

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const component = "events"

// EventType is a closed set of lifecycle events.
type EventType string

const (
	EventSessionCreated      EventType = "session_created"
	EventSessionUpdated      EventType = "session_updated"
	EventSessionCompleted    EventType = "session_completed"
	EventSessionFailed       EventType = "session_failed"
	EventHealthCheckFailed   EventType = "health_check_failed"
	EventRecoveryStarted     EventType = "recovery_started"
	EventRecoverySucceeded   EventType = "recovery_succeeded"
	EventRecoveryFailed      EventType = "recovery_failed"
	EventClientConnected     EventType = "client_connected"
	EventClientDisconnected  EventType = "client_disconnected"
	EventLockAcquired        EventType = "lock_acquired"
	EventLockReleased        EventType = "lock_released"
	EventLockConflict        EventType = "lock_conflict"
	EventRestorationStarted  EventType = "restoration_started"
	EventRestorationFinished EventType = "restoration_finished"
)

// Event is one record on the bus.
type Event struct {
	ID        string
	Type      EventType
	Timestamp time.Time
	SessionID string
	Data      map[string]interface{}
}

// NewEventID generates an event id following the spec grammar
// event_<epochMs>_<9 random base36 chars>.
func NewEventID(nowMs int64) string {
	const base36Digits = "0123456789abcdefghijklmnopqrstuvwxyz"
	suffix := make([]byte, 9)
	for i := range suffix {
		suffix[i] = base36Digits[rand.Intn(len(base36Digits))]
	}
	return fmt.Sprintf("event_%d_%s", nowMs, suffix)
}

// Handler is invoked for a matching event.
type Handler interface {
	Handle(ctx context.Context, ev *Event) error
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(ctx context.Context, ev *Event) error

func (f HandlerFunc) Handle(ctx context.Context, ev *Event) error { return f(ctx, ev) }

// Filter optionally narrows which events a subscription receives
// beyond its declared event types.
type Filter func(ev *Event) bool

type subscription struct {
	id         int
	eventTypes map[EventType]bool
	priority   int
	filter     Filter
	handler    Handler
	enabled    bool
	failures   int
}

// Config tunes bus behavior.
type Config struct {
	HandlerTimeout time.Duration
	MaxRetries     int
	RetryDelay     time.Duration
	MaxHistorySize int
}

// DefaultConfig matches spec.md's configuration surface defaults.
func DefaultConfig() Config {
	return Config{HandlerTimeout: 5 * time.Second, MaxRetries: 0, RetryDelay: time.Second, MaxHistorySize: 1000}
}

// Bus is the EventBus implementation.
type Bus struct {
	mu            sync.Mutex
	subscriptions []*subscription
	nextID        int
	history       []*Event
	cfg           Config
	log           zerolog.Logger
	nowFn         func() time.Time
}

// New returns a ready-to-use Bus.
func New(cfg Config, log zerolog.Logger) *Bus {
	return &Bus{cfg: cfg, log: log, nowFn: time.Now}
}

// Subscribe registers a handler for eventTypes at the given priority
// (higher runs first). Returns a subscription id usable with
// Unsubscribe.
func (b *Bus) Subscribe(eventTypes []EventType, priority int, filter Filter, handler Handler) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	set := make(map[EventType]bool, len(eventTypes))
	for _, t := range eventTypes {
		set[t] = true
	}
	b.nextID++
	sub := &subscription{id: b.nextID, eventTypes: set, priority: priority, filter: filter, handler: handler, enabled: true}
	b.subscriptions = append(b.subscriptions, sub)
	sort.SliceStable(b.subscriptions, func(i, j int) bool {
		return b.subscriptions[i].priority > b.subscriptions[j].priority
	})
	return sub.id
}

// Unsubscribe removes a subscription by id.
func (b *Bus) Unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subscriptions {
		if s.id == id {
			b.subscriptions = append(b.subscriptions[:i], b.subscriptions[i+1:]...)
			return
		}
	}
}

// Emit appends ev to history (every emitted event is recorded; there is
// no per-event suppression) and invokes matching,
// enabled subscribers in descending priority order, sequentially. Each
// handler is bounded by HandlerTimeout and retried up to MaxRetries
// with linearly scaled backoff. Handler failures are isolated per
// subscriber and never fail the emitter.
func (b *Bus) Emit(ctx context.Context, ev *Event) {
	if ev.ID == "" {
		ev.ID = NewEventID(b.nowFn().UnixMilli())
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = b.nowFn()
	}

	b.mu.Lock()
	b.appendHistoryLocked(ev)
	subs := make([]*subscription, len(b.subscriptions))
	copy(subs, b.subscriptions)
	b.mu.Unlock()

	for _, sub := range subs {
		if !sub.enabled || !sub.eventTypes[ev.Type] {
			continue
		}
		if sub.filter != nil && !sub.filter(ev) {
			continue
		}
		b.invoke(ctx, sub, ev)
	}
}

func (b *Bus) appendHistoryLocked(ev *Event) {
	max := b.cfg.MaxHistorySize
	if max <= 0 {
		max = 1000
	}
	b.history = append(b.history, ev)
	if len(b.history) > max {
		// overflow discards oldest, not newest
		b.history = b.history[len(b.history)-max:]
	}
}

func (b *Bus) invoke(ctx context.Context, sub *subscription, ev *Event) {
	timeout := b.cfg.HandlerTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	attempts := b.cfg.MaxRetries + 1

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, timeout)
		err := runHandler(callCtx, sub.handler, ev)
		cancel()
		if err == nil {
			return
		}
		lastErr = err
		if attempt < attempts {
			time.Sleep(b.cfg.RetryDelay * time.Duration(attempt))
		}
	}

	b.mu.Lock()
	sub.failures++
	b.mu.Unlock()
	b.log.Warn().Err(lastErr).Str("eventType", string(ev.Type)).Msg("event handler failed")
}

// runHandler invokes handler and converts a context deadline into an
// error so timeouts count as handler failures.
func runHandler(ctx context.Context, h Handler, ev *Event) error {
	done := make(chan error, 1)
	go func() {
		done <- h.Handle(ctx, ev)
	}()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// History returns a snapshot of the bounded event ring, oldest first.
func (b *Bus) History() []*Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*Event, len(b.history))
	copy(out, b.history)
	return out
}

// SetEnabled toggles a subscription without removing it.
func (b *Bus) SetEnabled(id int, enabled bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, s := range b.subscriptions {
		if s.id == id {
			s.enabled = enabled
			return
		}
	}
}

// SubscriberCount returns the number of registered subscriptions.
func (b *Bus) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscriptions)
}
