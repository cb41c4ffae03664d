// Package events implements EventBus: a closed set of typed lifecycle
// events, priority-ordered subscriptions invoked inline with a
// per-handler timeout and retry budget, and a bounded history ring that
// discards the oldest event on overflow.
package events
