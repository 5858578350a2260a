// Package policy maps a hazard event to its notification radius.
package policy

import (
	"github.com/shenikar/hazard_alert_relay/internal/models"
)

// Policy holds the configured notification radii in kilometers.
// Values come from the environment at startup and are not editable at
// runtime.
type Policy struct {
	SmokeKm       float64
	QuakeStrongKm float64
	QuakeKm       float64
	ReportedKm    float64
	DefaultKm     float64
}

// Default returns the stock radius table.
func Default() Policy {
	return Policy{
		SmokeKm:       0.2,
		QuakeStrongKm: 120,
		QuakeKm:       35,
		ReportedKm:    10,
		DefaultKm:     1.0,
	}
}

// RadiusKm returns the danger radius for the given event. An inactive
// event has radius 0. Unrecognized type tags fall back to DefaultKm.
func (p Policy) RadiusKm(ev models.Event) float64 {
	if !ev.Active {
		return 0
	}

	switch ev.Type {
	case models.EventSmoke:
		return p.SmokeKm
	case models.EventQuake:
		if ev.Severity == models.SeverityStrong {
			return p.QuakeStrongKm
		}
		return p.QuakeKm
	case models.EventTerror:
		return p.ReportedKm
	}
	return p.DefaultKm
}
