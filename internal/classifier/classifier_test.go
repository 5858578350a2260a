package classifier

import (
	"testing"

	"github.com/shenikar/hazard_alert_relay/internal/models"
	"github.com/shenikar/hazard_alert_relay/internal/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(f float64) *float64 { return &f }

func located(id string, lat, lon float64) *models.User {
	return &models.User{ID: id, Latitude: ptr(lat), Longitude: ptr(lon)}
}

func activeEvent(t models.EventType, s models.Severity, lat, lon float64) models.Event {
	return models.Event{Active: true, Type: t, Severity: s, Latitude: ptr(lat), Longitude: ptr(lon)}
}

func TestClassifyUser_PendingWinsOverDistance(t *testing.T) {
	pol := policy.Default()
	ev := activeEvent(models.EventSmoke, models.SeverityLight, 32.0, 34.8)

	// User standing at the event origin, but still pending.
	u := located("1", 32.0, 34.8)
	u.Pending = true

	res := ClassifyUser(ev, pol, u)
	assert.Equal(t, StatusPending, res.Status)
	assert.Nil(t, res.DistanceKm)

	// Pending without any location.
	res = ClassifyUser(ev, pol, &models.User{ID: "2", Pending: true})
	assert.Equal(t, StatusPending, res.Status)
}

func TestClassifyUser_SafeUnknownCases(t *testing.T) {
	pol := policy.Default()

	// Event inactive.
	res := ClassifyUser(models.Event{}, pol, located("1", 32.0, 34.8))
	assert.Equal(t, StatusSafe, res.Status)
	assert.Nil(t, res.DistanceKm)

	// No user fix.
	ev := activeEvent(models.EventSmoke, models.SeverityLight, 32.0, 34.8)
	res = ClassifyUser(ev, pol, &models.User{ID: "2"})
	assert.Equal(t, StatusSafe, res.Status)
	assert.Nil(t, res.DistanceKm)

	// Reporter event without origin coordinates yet.
	noOrigin := models.Event{Active: true, Type: models.EventTerror, Severity: models.SeverityReported}
	res = ClassifyUser(noOrigin, pol, located("3", 32.0, 34.8))
	assert.Equal(t, StatusSafe, res.Status)
	assert.Nil(t, res.DistanceKm)
}

func TestClassifyUser_SmokeAtOrigin(t *testing.T) {
	pol := policy.Default()
	ev := activeEvent(models.EventSmoke, models.SeverityLight, 32.0, 34.8)

	res := ClassifyUser(ev, pol, located("1", 32.0, 34.8))
	assert.Equal(t, StatusDanger, res.Status)
	require.NotNil(t, res.DistanceKm)
	assert.Equal(t, 0.0, *res.DistanceKm)
}

func TestClassifyUser_QuakeRadii(t *testing.T) {
	pol := policy.Default()
	// ~33 km north of the epicenter.
	user := located("1", 31.3, 35.0)

	strong := activeEvent(models.EventQuake, models.SeverityStrong, 31.0, 35.0)
	res := ClassifyUser(strong, pol, user)
	assert.Equal(t, StatusDanger, res.Status) // 33 km < 120 km

	light := activeEvent(models.EventQuake, models.SeverityLight, 31.0, 35.0)
	res = ClassifyUser(light, pol, user)
	assert.Equal(t, StatusDanger, res.Status) // 33 km < 35 km
	require.NotNil(t, res.DistanceKm)
	assert.InDelta(t, 33.4, *res.DistanceKm, 0.5)

	// ~44 km away is outside the 35 km light radius.
	far := located("2", 31.4, 35.0)
	res = ClassifyUser(light, pol, far)
	assert.Equal(t, StatusSafe, res.Status)
	require.NotNil(t, res.DistanceKm) // confirmed outside, not unknown
}

func TestClassify_Partition(t *testing.T) {
	pol := policy.Default()
	ev := activeEvent(models.EventQuake, models.SeverityStrong, 31.0, 35.0)

	pending := &models.User{ID: "p", Pending: true}
	near := located("d", 31.3, 35.0)
	noFix := &models.User{ID: "s"}

	report := Classify(ev, pol, []*models.User{pending, near, noFix})

	assert.Equal(t, 120.0, report.RadiusKm)
	require.Len(t, report.Pending, 1)
	require.Len(t, report.Danger, 1)
	require.Len(t, report.Safe, 1)
	assert.Equal(t, "p", report.Pending[0].User.ID)
	assert.Equal(t, "d", report.Danger[0].User.ID)
	assert.Equal(t, "s", report.Safe[0].User.ID)
}

func TestClassify_AllPendingAfterOpen(t *testing.T) {
	// openEvent followed by setAllPending(true): nobody may be
	// classified by distance, whatever their stale coordinates say.
	pol := policy.Default()
	ev := activeEvent(models.EventSmoke, models.SeverityLight, 32.0, 34.8)

	users := []*models.User{
		{ID: "1", Pending: true, Latitude: ptr(32.0), Longitude: ptr(34.8)},
		{ID: "2", Pending: true},
		{ID: "3", Pending: true, Latitude: ptr(40.0), Longitude: ptr(20.0)},
	}

	report := Classify(ev, pol, users)
	assert.Len(t, report.Pending, 3)
	assert.Empty(t, report.Danger)
	assert.Empty(t, report.Safe)
}

func TestClassify_EmptyRegistry(t *testing.T) {
	report := Classify(models.Event{}, policy.Default(), nil)
	assert.Empty(t, report.Danger)
	assert.Empty(t, report.Safe)
	assert.Empty(t, report.Pending)
	assert.Equal(t, 0.0, report.RadiusKm)
}
