package v1

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// HazardReportRequest is the sensor payload. Status and Message are
// the field names older sensor firmware sends for type and description.
// The type and level tags are open ended: unrecognized values are
// accepted and fall through to the default radius downstream.
// @Description Sensor hazard report payload
type HazardReportRequest struct {
	Type        string   `json:"type"`
	Level       string   `json:"level"`
	EventLat    *float64 `json:"event_lat" validate:"omitempty,latitude"`
	EventLon    *float64 `json:"event_lon" validate:"omitempty,longitude"`
	DeviceID    string   `json:"device_id,omitempty"`
	Description string   `json:"description,omitempty"`

	// Legacy field names, used only when the canonical ones are absent.
	Status  string `json:"status,omitempty"`
	Message string `json:"message,omitempty"`
}

// UnmarshalJSON decodes the report with per-field tolerance on the
// coordinates: a non-numeric event_lat or event_lon becomes null
// instead of failing the whole body.
func (r *HazardReportRequest) UnmarshalJSON(data []byte) error {
	type raw struct {
		Type        string          `json:"type"`
		Level       string          `json:"level"`
		EventLat    json.RawMessage `json:"event_lat"`
		EventLon    json.RawMessage `json:"event_lon"`
		DeviceID    string          `json:"device_id"`
		Description string          `json:"description"`
		Status      string          `json:"status"`
		Message     string          `json:"message"`
	}
	var in raw
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	*r = HazardReportRequest{
		Type:        in.Type,
		Level:       in.Level,
		EventLat:    coerceCoord(in.EventLat),
		EventLon:    coerceCoord(in.EventLon),
		DeviceID:    in.DeviceID,
		Description: in.Description,
		Status:      in.Status,
		Message:     in.Message,
	}
	return nil
}

// coerceCoord parses a JSON value as a float, returning nil for
// anything that is not a number.
func coerceCoord(raw json.RawMessage) *float64 {
	if len(raw) == 0 {
		return nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil
	}
	return &f
}

// EventResponse describes the current event and its danger radius.
// @Description Current hazard event with computed danger radius
type EventResponse struct {
	ID          *uuid.UUID `json:"id,omitempty"`
	Active      bool       `json:"active"`
	Type        string     `json:"type,omitempty"`
	Level       string     `json:"level,omitempty"`
	Latitude    *float64   `json:"latitude,omitempty"`
	Longitude   *float64   `json:"longitude,omitempty"`
	OpenedAt    *time.Time `json:"opened_at,omitempty"`
	Reporter    string     `json:"reporter,omitempty"`
	Description string     `json:"description,omitempty"`
	RadiusKm    float64    `json:"radius_km"`
	Label       string     `json:"label"`
}

// UserStatusResponse is one user's classification entry.
// @Description Classification entry for a single user
type UserStatusResponse struct {
	UserID     string     `json:"user_id"`
	Name       string     `json:"name"`
	Status     string     `json:"status"`
	DistanceKm *float64   `json:"distance_km,omitempty"`
	LocatedAt  *time.Time `json:"located_at,omitempty"`
}

// StatusResponse is the full dashboard report.
// @Description Full classification report for the dashboard
type StatusResponse struct {
	Event   EventResponse        `json:"event"`
	Danger  []UserStatusResponse `json:"danger"`
	Safe    []UserStatusResponse `json:"safe"`
	Pending []UserStatusResponse `json:"pending"`
}

// StatsResponse carries the recent location-check statistic.
// @Description Distinct users checked within the configured window
type StatsResponse struct {
	UserCount int `json:"user_count"`
}

// WebhookResponse acknowledges a chat update. The webhook always
// answers 200 so the chat platform does not retry; ok signals whether
// the update was applied.
type WebhookResponse struct {
	OK bool `json:"ok"`
}
