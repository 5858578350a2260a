// Package classifier partitions registered users into danger, safe and
// awaiting-response buckets for the current hazard event.
package classifier

import (
	"github.com/shenikar/hazard_alert_relay/internal/geo"
	"github.com/shenikar/hazard_alert_relay/internal/models"
	"github.com/shenikar/hazard_alert_relay/internal/policy"
)

// Status is the per-user danger classification.
type Status string

const (
	StatusDanger  Status = "danger"
	StatusSafe    Status = "safe"
	StatusPending Status = "pending"
)

// Result is one user's classification. DistanceKm is nil when there is
// no usable data (no event, no origin yet, or no user fix): a safe
// result with a nil distance means "unknown", not "confirmed outside
// the radius".
type Result struct {
	User       *models.User
	Status     Status
	DistanceKm *float64
}

// Report is the full partition plus the event and radius it was
// computed against.
type Report struct {
	Event    models.Event
	RadiusKm float64
	Danger   []Result
	Safe     []Result
	Pending  []Result
}

// ClassifyUser classifies a single user against the event. Pending
// wins over everything, then missing data means safe-unknown, then
// distance against the policy radius.
func ClassifyUser(ev models.Event, pol policy.Policy, user *models.User) Result {
	if user.Pending {
		return Result{User: user, Status: StatusPending}
	}

	if !ev.Active || !ev.HasOrigin() || !user.HasLocation() {
		return Result{User: user, Status: StatusSafe}
	}

	d := geo.DistanceKm(*user.Latitude, *user.Longitude, *ev.Latitude, *ev.Longitude)
	status := StatusSafe
	if d <= pol.RadiusKm(ev) {
		status = StatusDanger
	}
	return Result{User: user, Status: status, DistanceKm: &d}
}

// Classify runs ClassifyUser over a registry snapshot. Single O(n)
// pass, no shared state between users.
func Classify(ev models.Event, pol policy.Policy, users []*models.User) Report {
	report := Report{
		Event:    ev,
		RadiusKm: pol.RadiusKm(ev),
	}

	for _, u := range users {
		res := ClassifyUser(ev, pol, u)
		switch res.Status {
		case StatusDanger:
			report.Danger = append(report.Danger, res)
		case StatusPending:
			report.Pending = append(report.Pending, res)
		default:
			report.Safe = append(report.Safe, res)
		}
	}
	return report
}
