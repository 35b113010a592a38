package draft

import (
	"log/slog"

	"github.com/draftlens/draftlens/internal/layout"
)

// EventKind is the closed set of change notifications the detector emits.
type EventKind string

const (
	EventMapChanged    EventKind = "map-changed"
	EventBanUpdated    EventKind = "ban-updated"
	EventPlayerUpdated EventKind = "player-updated"
	EventPassDone      EventKind = "pass-done"
	EventError         EventKind = "detection-error"
)

// Event is one incremental change notification.
type Event struct {
	Kind EventKind        `json:"kind"`
	Team layout.TeamColor `json:"team,omitempty"`
	Slot int              `json:"slot,omitempty"`
	Map  string           `json:"map,omitempty"`
	// Success accompanies pass-done.
	Success bool   `json:"success,omitempty"`
	Message string `json:"message,omitempty"`
}

const eventBuffer = 64

// emit delivers without blocking; a consumer that stopped draining loses
// events rather than stalling detection.
func (d *Detector) emit(e Event) {
	select {
	case d.events <- e:
	default:
		slog.Warn("event channel full, dropping", "kind", e.Kind)
	}
}

// Events returns the detector's notification stream.
func (d *Detector) Events() <-chan Event {
	return d.events
}
