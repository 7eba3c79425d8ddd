// Package watcher turns file system activity into coalesced change batches.
package watcher

import (
	"time"
)

// EventType represents the type of file system event
type EventType int

const (
	EventCreate EventType = iota
	EventModify
	EventDelete
	EventRename
)

// Event represents a file system event on a repo-relative path
type Event struct {
	Type      EventType
	Path      string
	Timestamp time.Time
}

// String returns a string representation of the event type
func (e EventType) String() string {
	switch e {
	case EventCreate:
		return "create"
	case EventModify:
		return "modify"
	case EventDelete:
		return "delete"
	case EventRename:
		return "rename"
	default:
		return "unknown"
	}
}

// IsRemoval reports whether the event means the path no longer exists.
// A rename only reports the old name, so it counts as a removal.
func (e EventType) IsRemoval() bool {
	return e == EventDelete || e == EventRename
}

// Sink receives events. Implementations must not block.
type Sink func(Event)

// Config contains watcher configuration
type Config struct {
	Enabled    bool `json:"enabled" mapstructure:"enabled"`
	DebounceMs int  `json:"debounceMs" mapstructure:"debounceMs"`
	QueueSize  int  `json:"queueSize" mapstructure:"queueSize"`
}

// DefaultConfig returns the default watcher configuration
func DefaultConfig() Config {
	return Config{
		Enabled:    true,
		DebounceMs: 500,
		QueueSize:  1024,
	}
}

// Debounce returns the quiet period as a duration.
func (c Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}
