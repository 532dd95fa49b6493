package event

import (
	"time"
)

// Type identifies a lifecycle event
type Type int

const (
	// TypeRegistered signals an element's resource entered the table
	// Trigger: creation resolved and committed | Name: element
	TypeRegistered Type = iota

	// TypeRemoved signals an element left the table
	// Trigger: teardown, null commit, or identity change | Name: element
	TypeRemoved

	// TypeBarrierUp signals the readiness barrier flipped false -> true
	// Trigger: every declared element registered | Name: ""
	TypeBarrierUp

	// TypeBarrierDown signals the readiness barrier flipped true -> false
	// Trigger: element removed or new declaration pending | Name: ""
	TypeBarrierDown

	// TypeDriverStarted signals the frame driver began ticking
	TypeDriverStarted

	// TypeDriverStopped signals the frame driver halted
	// Trigger: barrier down or runtime close
	TypeDriverStopped

	// TypeCreationFailed signals a factory returned an error
	// Trigger: create goroutine | Name: element | Err: factory error
	TypeCreationFailed
)

// String returns the event type name for logs and debug output
func (t Type) String() string {
	switch t {
	case TypeRegistered:
		return "registered"
	case TypeRemoved:
		return "removed"
	case TypeBarrierUp:
		return "barrier_up"
	case TypeBarrierDown:
		return "barrier_down"
	case TypeDriverStarted:
		return "driver_started"
	case TypeDriverStopped:
		return "driver_stopped"
	case TypeCreationFailed:
		return "creation_failed"
	default:
		return "unknown"
	}
}

// Event carries one lifecycle transition with metadata
type Event struct {
	Type      Type
	Name      string // Element name, empty for barrier and driver events
	Err       error  // Non-nil only for TypeCreationFailed
	Frame     int64
	Timestamp time.Time
}
