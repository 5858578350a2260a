// Package eventstate owns the single mutable hazard event. All
// mutation goes through State methods behind one lock, so "open event"
// and the paired registry updates are never observed torn.
package eventstate

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/shenikar/hazard_alert_relay/internal/models"
)

// ErrOriginAlreadySet is returned by SetOrigin when the event already
// carries coordinates.
var ErrOriginAlreadySet = errors.New("event origin already set")

// ErrNoActiveEvent is returned by SetOrigin and Describe when no event
// is active.
var ErrNoActiveEvent = errors.New("no active event")

// NoActiveEventLabel is the fixed label shown while no event is active.
const NoActiveEventLabel = "no active event"

// OpenParams carries everything needed to open an event.
type OpenParams struct {
	Type         models.EventType
	Severity     models.Severity
	Latitude     *float64
	Longitude    *float64
	ReporterID   string
	ReporterName string
	Description  string
}

// State holds the singleton event behind an RWMutex.
type State struct {
	mu    sync.RWMutex
	clock clockwork.Clock
	ev    models.Event
}

// New creates an empty (inactive) state. Pass nil to use the real clock.
func New(clock clockwork.Clock) *State {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &State{clock: clock}
}

// Open overwrites the event with the given parameters, stamps the
// current time and allocates a fresh event id. Routing type=normal to
// Close instead is the caller's job.
func (s *State) Open(p OpenParams) models.Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ev = models.Event{
		ID:           uuid.New(),
		Active:       true,
		Type:         p.Type,
		Severity:     p.Severity,
		Latitude:     p.Latitude,
		Longitude:    p.Longitude,
		OpenedAt:     s.clock.Now(),
		ReporterID:   p.ReporterID,
		ReporterName: p.ReporterName,
		Description:  p.Description,
	}
	return s.ev
}

// Close resets every field in one critical section and returns the
// event that was closed. Closing an inactive state is a no-op.
func (s *State) Close() models.Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	closed := s.ev
	s.ev = models.Event{}
	return closed
}

// SetOrigin supplies coordinates for a reporter-opened event that
// started without them. Legal only while active and unset.
func (s *State) SetOrigin(lat, lon float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ev.Active {
		return ErrNoActiveEvent
	}
	if s.ev.HasOrigin() {
		return ErrOriginAlreadySet
	}
	s.ev.Latitude = &lat
	s.ev.Longitude = &lon
	return nil
}

// Describe sets the free-text description of the active event.
func (s *State) Describe(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ev.Active {
		return ErrNoActiveEvent
	}
	s.ev.Description = text
	return nil
}

// Snapshot returns a consistent copy of the current event.
func (s *State) Snapshot() models.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ev
}

// Label returns a human-readable one-liner for notifications and the
// dashboard.
func (s *State) Label() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.ev.Active {
		return NoActiveEventLabel
	}

	label := string(s.ev.Type)
	if s.ev.Severity != models.SeverityAbsent {
		label = fmt.Sprintf("%s (%s)", label, s.ev.Severity)
	}
	label = fmt.Sprintf("%s reported %s", label, s.ev.OpenedAt.Format("15:04"))
	if s.ev.ReporterName != "" {
		label = fmt.Sprintf("%s by %s", label, s.ev.ReporterName)
	}
	if s.ev.Description != "" {
		label = fmt.Sprintf("%s: %s", label, s.ev.Description)
	}
	return label
}
