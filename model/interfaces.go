package model

import "time"

// Invoker executes a named action with a payload against the platform. It is
// the single execution surface for both event-triggered and scheduled work.
type Invoker interface {
	Invoke(actionType string, payload map[string]any) (string, error)
}

// RoleDirectory answers current role membership, needed to keep role
// assignment idempotent under re-dispatch.
type RoleDirectory interface {
	HasRole(guildID, userID, roleID string) (bool, error)
}

// MessageSource fetches recent channel history for pattern scanning.
type MessageSource interface {
	FetchRecent(channelID string, limit int, after, before *time.Time) ([]Message, error)
}

// ChannelLogger mirrors notable engine activity to a log channel. Implemented
// over the Discord session; a no-op implementation is fine for tests.
type ChannelLogger interface {
	Log(level, module, operation, detail string)
}
