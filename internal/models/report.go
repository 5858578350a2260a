package models

// HazardReport is a normalized inbound sensor report. Handlers fill it
// from the wire DTO; every field is optional in practice, missing
// values fall back to zero values (type "unknown" downstream).
type HazardReport struct {
	Type        EventType
	Severity    Severity
	Latitude    *float64
	Longitude   *float64
	DeviceID    string
	Description string
}

// ChatMessage is a normalized inbound chat update: either a text (which
// may be a command) or a shared location, never both.
type ChatMessage struct {
	ChatID    int64
	FirstName string
	LastName  string
	Text      string
	Location  *Coordinates
}

// Coordinates is a latitude/longitude pair in degrees.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}
