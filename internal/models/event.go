package models

import (
	"time"

	"github.com/google/uuid"
)

// EventType tags the kind of hazard. The set is open ended: sensors may
// send tags we do not know, those fall through to the default radius.
type EventType string

const (
	EventSmoke   EventType = "smoke"
	EventQuake   EventType = "quake"
	EventTerror  EventType = "terror"
	EventNormal  EventType = "normal"
	EventUnknown EventType = "unknown"
)

// Severity of a hazard event as reported by the sensor or reporter.
type Severity string

const (
	SeverityLight    Severity = "light"
	SeverityStrong   Severity = "strong"
	SeverityReported Severity = "reported"
	SeverityAbsent   Severity = ""
)

// Event is the single active hazard event. At most one event is active
// at a time; when Active is false every other field is zero.
type Event struct {
	ID           uuid.UUID `json:"id"`
	Active       bool      `json:"active"`
	Type         EventType `json:"type"`
	Severity     Severity  `json:"severity"`
	Latitude     *float64  `json:"latitude"`
	Longitude    *float64  `json:"longitude"`
	OpenedAt     time.Time `json:"opened_at"`
	ReporterID   string    `json:"reporter_id"`
	ReporterName string    `json:"reporter_name"`
	Description  string    `json:"description,omitempty"`
}

// HasOrigin reports whether the event carries origin coordinates.
// A reporter-opened event starts without them until the reporter
// shares a location.
func (e Event) HasOrigin() bool {
	return e.Latitude != nil && e.Longitude != nil
}

// IsHazard reports whether the event type warrants a location
// request round. Informational tags only get a broadcast.
func (t EventType) IsHazard() bool {
	switch t {
	case EventSmoke, EventQuake, EventTerror:
		return true
	}
	return false
}
