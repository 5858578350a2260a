package models

import (
	"strings"
	"time"
)

// User is a registered chat account. The ID is the messaging chat id
// as a string, stable per account. Users are created on first contact
// and never deleted.
type User struct {
	ID        string     `json:"id"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Latitude  *float64   `json:"latitude"`
	Longitude *float64   `json:"longitude"`
	LocatedAt *time.Time `json:"located_at"`
	Pending   bool       `json:"pending"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// DisplayName returns the name shown on the dashboard and in
// notification texts.
func (u *User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.ID
	}
	return name
}

// HasLocation reports whether the user has shared a location at least once.
func (u *User) HasLocation() bool {
	return u.Latitude != nil && u.Longitude != nil
}
