package manager

import "github.com/reasonchain/core/pkg/events"

const (
	eventSessionCreated   = events.EventSessionCreated
	eventSessionUpdated   = events.EventSessionUpdated
	eventSessionCompleted = events.EventSessionCompleted
	eventSessionFailed    = events.EventSessionFailed
	eventLockConflict     = events.EventLockConflict
)
