package eventstate

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/shenikar/hazard_alert_relay/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(f float64) *float64 { return &f }

func TestOpen_StampsClockAndID(t *testing.T) {
	frozen := time.Date(2026, 3, 14, 12, 4, 0, 0, time.UTC)
	state := New(clockwork.NewFakeClockAt(frozen))

	ev := state.Open(OpenParams{
		Type:         models.EventQuake,
		Severity:     models.SeverityStrong,
		Latitude:     ptr(31.0),
		Longitude:    ptr(35.0),
		ReporterID:   "sensor-7",
		ReporterName: "sensor-7",
	})

	assert.True(t, ev.Active)
	assert.NotEqual(t, uuid.Nil, ev.ID)
	assert.Equal(t, frozen, ev.OpenedAt)
	assert.Equal(t, models.EventQuake, ev.Type)
	assert.Equal(t, ev, state.Snapshot())
}

func TestOpen_OverwritesPreviousEvent(t *testing.T) {
	state := New(nil)

	first := state.Open(OpenParams{Type: models.EventSmoke, Severity: models.SeverityLight})
	second := state.Open(OpenParams{Type: models.EventQuake, Severity: models.SeverityStrong})

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, models.EventQuake, state.Snapshot().Type)
}

func TestClose_ClearsAllFieldsAtomically(t *testing.T) {
	state := New(nil)
	state.Open(OpenParams{
		Type:         models.EventSmoke,
		Severity:     models.SeverityLight,
		Latitude:     ptr(32.0),
		Longitude:    ptr(34.8),
		ReporterID:   "device-1",
		ReporterName: "device-1",
		Description:  "smoke in the hallway",
	})

	closed := state.Close()
	assert.True(t, closed.Active)
	assert.Equal(t, models.EventSmoke, closed.Type)

	ev := state.Snapshot()
	assert.False(t, ev.Active)
	assert.Equal(t, models.EventType(""), ev.Type)
	assert.Equal(t, models.SeverityAbsent, ev.Severity)
	assert.Nil(t, ev.Latitude)
	assert.Nil(t, ev.Longitude)
	assert.Empty(t, ev.ReporterID)
	assert.Empty(t, ev.ReporterName)
	assert.Empty(t, ev.Description)
	assert.True(t, ev.OpenedAt.IsZero())
}

func TestSetOrigin(t *testing.T) {
	state := New(nil)

	// No active event.
	assert.ErrorIs(t, state.SetOrigin(32.0, 34.8), ErrNoActiveEvent)

	// Reporter event without coordinates.
	state.Open(OpenParams{Type: models.EventTerror, Severity: models.SeverityReported, ReporterID: "42"})
	require.NoError(t, state.SetOrigin(32.0, 34.8))

	ev := state.Snapshot()
	require.True(t, ev.HasOrigin())
	assert.Equal(t, 32.0, *ev.Latitude)
	assert.Equal(t, 34.8, *ev.Longitude)

	// Second attempt is rejected.
	assert.ErrorIs(t, state.SetOrigin(1, 1), ErrOriginAlreadySet)
}

func TestDescribe(t *testing.T) {
	state := New(nil)
	assert.ErrorIs(t, state.Describe("nothing yet"), ErrNoActiveEvent)

	state.Open(OpenParams{Type: models.EventTerror, Severity: models.SeverityReported})
	require.NoError(t, state.Describe("suspicious package"))
	assert.Equal(t, "suspicious package", state.Snapshot().Description)
}

func TestLabel(t *testing.T) {
	frozen := time.Date(2026, 3, 14, 12, 4, 0, 0, time.UTC)
	state := New(clockwork.NewFakeClockAt(frozen))

	assert.Equal(t, NoActiveEventLabel, state.Label())

	state.Open(OpenParams{
		Type:         models.EventQuake,
		Severity:     models.SeverityStrong,
		ReporterName: "sensor-7",
	})
	assert.Equal(t, "quake (strong) reported 12:04 by sensor-7", state.Label())

	state.Close()
	assert.Equal(t, NoActiveEventLabel, state.Label())
}
