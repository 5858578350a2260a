package policy

import (
	"testing"

	"github.com/shenikar/hazard_alert_relay/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestRadiusKm_Table(t *testing.T) {
	p := Default()

	tests := []struct {
		name     string
		ev       models.Event
		expected float64
	}{
		{"inactive", models.Event{Active: false, Type: models.EventQuake}, 0},
		{"smoke", models.Event{Active: true, Type: models.EventSmoke, Severity: models.SeverityLight}, 0.2},
		{"quake strong", models.Event{Active: true, Type: models.EventQuake, Severity: models.SeverityStrong}, 120},
		{"quake light", models.Event{Active: true, Type: models.EventQuake, Severity: models.SeverityLight}, 35},
		{"quake no severity", models.Event{Active: true, Type: models.EventQuake}, 35},
		{"terror", models.Event{Active: true, Type: models.EventTerror, Severity: models.SeverityReported}, 10},
		{"unknown tag", models.Event{Active: true, Type: models.EventType("flood")}, 1.0},
		{"unknown", models.Event{Active: true, Type: models.EventUnknown}, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, p.RadiusKm(tt.ev))
		})
	}
}

func TestRadiusKm_Configured(t *testing.T) {
	p := Policy{SmokeKm: 0.5, QuakeStrongKm: 200, QuakeKm: 50, ReportedKm: 15, DefaultKm: 2}

	assert.Equal(t, 0.5, p.RadiusKm(models.Event{Active: true, Type: models.EventSmoke}))
	assert.Equal(t, 200.0, p.RadiusKm(models.Event{Active: true, Type: models.EventQuake, Severity: models.SeverityStrong}))
	assert.Equal(t, 2.0, p.RadiusKm(models.Event{Active: true, Type: models.EventType("meteor")}))
}
