package engine

import (
	"time"

	"github.com/hochfrequenz/nudge/internal/domain"
)

// EventType identifies what happened in the engine.
type EventType int

const (
	// EventFired is emitted after a reminder fired and its record was written.
	EventFired EventType = iota
	// EventProgress is emitted once per countdown tick.
	EventProgress
	// EventCompleted is emitted when the session consumed its total duration.
	EventCompleted
	// EventStopped is emitted on an explicit stop.
	EventStopped
)

// Event is a push update for subscribers (TUI, SSE, websocket).
type Event struct {
	Type     EventType
	Snapshot Snapshot
	Record   *domain.Record
	At       time.Time
}

// Snapshot is an immutable view of the engine state. JSON field names match
// the status polling surface.
type Snapshot struct {
	Running        bool   `json:"running"`
	Status         string `json:"status"`
	Count          int    `json:"count"`
	ElapsedSec     int    `json:"elapsed"`
	TotalSec       int    `json:"total"`
	NextInSec      int    `json:"next_in"`
	PendingWaitSec int    `json:"pending_wait"`
	Progress       int    `json:"progress"`
}
