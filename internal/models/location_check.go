package models

import (
	"time"
)

// LocationCheck is an audit record of a single user location share and
// the danger verdict it produced.
type LocationCheck struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	IsDanger  bool      `json:"is_danger"`
	CheckedAt time.Time `json:"checked_at"`
}
