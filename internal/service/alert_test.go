package service_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/shenikar/hazard_alert_relay/internal/classifier"
	"github.com/shenikar/hazard_alert_relay/internal/eventstate"
	"github.com/shenikar/hazard_alert_relay/internal/models"
	"github.com/shenikar/hazard_alert_relay/internal/notifier"
	notifier_mocks "github.com/shenikar/hazard_alert_relay/internal/notifier/mocks"
	"github.com/shenikar/hazard_alert_relay/internal/observability"
	"github.com/shenikar/hazard_alert_relay/internal/policy"
	"github.com/shenikar/hazard_alert_relay/internal/service"
	"github.com/shenikar/hazard_alert_relay/internal/service/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// testAlertService exposes the event state alongside the service so tests
// can seed and inspect it from outside the service package.
type testAlertService struct {
	service.AlertService
	state *eventstate.State
}

// newTestAlertService builds a service instance around mocks, a fake
// clock and test-only metrics.
func newTestAlertService(t *testing.T) (*testAlertService, *mocks.MockUserRepository, *notifier_mocks.MockPublisher) {
	ctrl := gomock.NewController(t)
	repoMock := mocks.NewMockUserRepository(ctrl)
	pubMock := notifier_mocks.NewMockPublisher(ctrl)

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // keep test output quiet

	clock := clockwork.NewFakeClockAt(time.Date(2025, 3, 14, 12, 4, 0, 0, time.UTC))
	state := eventstate.New(clock)
	metrics := observability.NewMetricsForTesting()

	svc := service.NewAlertService(repoMock, state, policy.Default(), pubMock, logger, metrics, 60)
	return &testAlertService{AlertService: svc, state: state}, repoMock, pubMock
}

func ptr(v float64) *float64 { return &v }

func TestReportHazard_Quake_OpensEventAndFansOut(t *testing.T) {
	svc, repoMock, pubMock := newTestAlertService(t)
	ctx := context.Background()

	report := &models.HazardReport{
		Type:      models.EventQuake,
		Severity:  models.SeverityStrong,
		Latitude:  ptr(55.75),
		Longitude: ptr(37.61),
		DeviceID:  "sensor-7",
	}

	repoMock.EXPECT().SetAllPending(ctx, true).Return(nil).Times(1)
	// "abc" is not a chat id and must be skipped by the fan-out.
	repoMock.EXPECT().All(ctx).Return([]*models.User{
		{ID: "100"},
		{ID: "abc"},
	}, nil).Times(1)
	pubMock.EXPECT().
		Publish(ctx, gomock.Cond(func(x any) bool {
			n, ok := x.(notifier.Notification)
			if !ok {
				return false
			}
			return n.ChatID == 100 && n.RequestLocation
		})).
		Return(nil).
		Times(1)

	view, err := svc.ReportHazard(ctx, report)

	require.NoError(t, err)
	assert.True(t, view.Event.Active)
	assert.Equal(t, models.EventQuake, view.Event.Type)
	assert.Equal(t, models.SeverityStrong, view.Event.Severity)
	assert.Equal(t, 120.0, view.RadiusKm)
	assert.Contains(t, view.Label, "quake (strong)")
	assert.Contains(t, view.Label, "12:04")
	assert.Contains(t, view.Label, "sensor-7")
}

func TestReportHazard_Normal_ClosesEventAndClearsPending(t *testing.T) {
	svc, repoMock, pubMock := newTestAlertService(t)
	ctx := context.Background()

	svc.state.Open(eventstate.OpenParams{Type: models.EventSmoke})

	repoMock.EXPECT().SetAllPending(ctx, false).Return(nil).Times(1)
	repoMock.EXPECT().All(ctx).Return([]*models.User{{ID: "100"}}, nil).Times(1)
	pubMock.EXPECT().
		Publish(ctx, notifier.Notification{ChatID: 100, Text: notifier.AllClearText()}).
		Return(nil).
		Times(1)

	view, err := svc.ReportHazard(ctx, &models.HazardReport{Type: models.EventNormal})

	require.NoError(t, err)
	assert.False(t, view.Event.Active)
	assert.Equal(t, 0.0, view.RadiusKm)
	assert.Equal(t, eventstate.NoActiveEventLabel, view.Label)
}

func TestReportHazard_EmptyType_InformationalBroadcastOnly(t *testing.T) {
	svc, repoMock, pubMock := newTestAlertService(t)
	ctx := context.Background()

	// Non-hazard tags never touch the pending flags.
	repoMock.EXPECT().All(ctx).Return([]*models.User{{ID: "100"}}, nil).Times(1)
	pubMock.EXPECT().
		Publish(ctx, gomock.Cond(func(x any) bool {
			n, ok := x.(notifier.Notification)
			if !ok {
				return false
			}
			return n.ChatID == 100 && !n.RequestLocation
		})).
		Return(nil).
		Times(1)

	view, err := svc.ReportHazard(ctx, &models.HazardReport{})

	require.NoError(t, err)
	assert.True(t, view.Event.Active)
	assert.Equal(t, models.EventUnknown, view.Event.Type)
	assert.Equal(t, 1.0, view.RadiusKm)
}

func TestReportHazard_PendingUpdateFails(t *testing.T) {
	svc, repoMock, _ := newTestAlertService(t)
	ctx := context.Background()

	repoMock.EXPECT().SetAllPending(ctx, true).Return(errors.New("db down")).Times(1)

	_, err := svc.ReportHazard(ctx, &models.HazardReport{Type: models.EventSmoke})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not mark users pending")
}

func TestHandleChatMessage_StartCommand(t *testing.T) {
	svc, repoMock, pubMock := newTestAlertService(t)
	ctx := context.Background()

	repoMock.EXPECT().
		Upsert(ctx, gomock.Cond(func(x any) bool {
			u, ok := x.(*models.User)
			if !ok {
				return false
			}
			return u.ID == "100" && u.FirstName == "Ana"
		})).
		Return(nil).
		Times(1)
	pubMock.EXPECT().
		Publish(ctx, notifier.Notification{ChatID: 100, Text: notifier.WelcomeText()}).
		Return(nil).
		Times(1)

	err := svc.HandleChatMessage(ctx, &models.ChatMessage{ChatID: 100, FirstName: "Ana", Text: "/start"})

	require.NoError(t, err)
}

func TestHandleChatMessage_UnrecognizedText(t *testing.T) {
	svc, repoMock, pubMock := newTestAlertService(t)
	ctx := context.Background()

	repoMock.EXPECT().Upsert(ctx, gomock.Any()).Return(nil).Times(1)
	pubMock.EXPECT().
		Publish(ctx, notifier.Notification{ChatID: 100, Text: notifier.UnrecognizedText()}).
		Return(nil).
		Times(1)

	err := svc.HandleChatMessage(ctx, &models.ChatMessage{ChatID: 100, Text: "what is going on"})

	require.NoError(t, err)
}

func TestHandleChatMessage_Location_DangerClassification(t *testing.T) {
	svc, repoMock, pubMock := newTestAlertService(t)
	ctx := context.Background()

	svc.state.Open(eventstate.OpenParams{
		Type:      models.EventQuake,
		Severity:  models.SeverityStrong,
		Latitude:  ptr(55.75),
		Longitude: ptr(37.61),
	})

	repoMock.EXPECT().Upsert(ctx, gomock.Any()).Return(nil).Times(1)
	repoMock.EXPECT().RecordLocation(ctx, "100", 55.76, 37.62).Return(nil).Times(1)
	repoMock.EXPECT().GetByID(ctx, "100").Return(&models.User{
		ID:        "100",
		Latitude:  ptr(55.76),
		Longitude: ptr(37.62),
	}, nil).Times(1)
	repoMock.EXPECT().
		SaveLocationCheck(ctx, gomock.Cond(func(x any) bool {
			c, ok := x.(*models.LocationCheck)
			if !ok {
				return false
			}
			return c.UserID == "100" && c.IsDanger
		})).
		Return(nil).
		Times(1)
	pubMock.EXPECT().
		Publish(ctx, gomock.Cond(func(x any) bool {
			n, ok := x.(notifier.Notification)
			if !ok {
				return false
			}
			return n.ChatID == 100 && strings.Contains(n.Text, "danger zone")
		})).
		Return(nil).
		Times(1)

	err := svc.HandleChatMessage(ctx, &models.ChatMessage{
		ChatID:   100,
		Location: &models.Coordinates{Latitude: 55.76, Longitude: 37.62},
	})

	require.NoError(t, err)
}

func TestHandleChatMessage_Location_AuditFailureIsNotFatal(t *testing.T) {
	svc, repoMock, pubMock := newTestAlertService(t)
	ctx := context.Background()

	repoMock.EXPECT().Upsert(ctx, gomock.Any()).Return(nil).Times(1)
	repoMock.EXPECT().RecordLocation(ctx, "100", 10.0, 20.0).Return(nil).Times(1)
	repoMock.EXPECT().GetByID(ctx, "100").Return(&models.User{
		ID:        "100",
		Latitude:  ptr(10.0),
		Longitude: ptr(20.0),
	}, nil).Times(1)
	repoMock.EXPECT().SaveLocationCheck(ctx, gomock.Any()).Return(errors.New("db down")).Times(1)
	pubMock.EXPECT().Publish(ctx, gomock.Any()).Return(nil).Times(1)

	err := svc.HandleChatMessage(ctx, &models.ChatMessage{
		ChatID:   100,
		Location: &models.Coordinates{Latitude: 10.0, Longitude: 20.0},
	})

	require.NoError(t, err)
}

func TestHandleChatMessage_Location_ReporterSuppliesOrigin(t *testing.T) {
	svc, repoMock, pubMock := newTestAlertService(t)
	ctx := context.Background()

	svc.state.Open(eventstate.OpenParams{
		Type:       models.EventTerror,
		Severity:   models.SeverityReported,
		ReporterID: "100",
	})

	repoMock.EXPECT().Upsert(ctx, gomock.Any()).Return(nil).Times(1)
	repoMock.EXPECT().RecordLocation(ctx, "100", 55.75, 37.61).Return(nil).Times(1)
	repoMock.EXPECT().GetByID(ctx, "100").Return(&models.User{
		ID:        "100",
		Latitude:  ptr(55.75),
		Longitude: ptr(37.61),
	}, nil).Times(1)
	repoMock.EXPECT().SaveLocationCheck(ctx, gomock.Any()).Return(nil).Times(1)
	pubMock.EXPECT().Publish(ctx, gomock.Any()).Return(nil).Times(1)

	err := svc.HandleChatMessage(ctx, &models.ChatMessage{
		ChatID:   100,
		Location: &models.Coordinates{Latitude: 55.75, Longitude: 37.61},
	})

	require.NoError(t, err)
	ev := svc.state.Snapshot()
	require.True(t, ev.HasOrigin())
	assert.Equal(t, 55.75, *ev.Latitude)
	assert.Equal(t, 37.61, *ev.Longitude)
}

func TestHandleChatMessage_ReportCommand_OpensEventWithoutOrigin(t *testing.T) {
	svc, repoMock, pubMock := newTestAlertService(t)
	ctx := context.Background()

	repoMock.EXPECT().Upsert(ctx, gomock.Any()).Return(nil).Times(1)
	repoMock.EXPECT().SetAllPending(ctx, true).Return(nil).Times(1)
	repoMock.EXPECT().All(ctx).Return([]*models.User{{ID: "100"}}, nil).Times(1)
	// One fan-out push plus the confirmation to the reporter.
	pubMock.EXPECT().
		Publish(ctx, gomock.Cond(func(x any) bool {
			n, ok := x.(notifier.Notification)
			if !ok {
				return false
			}
			return n.ChatID == 100 && n.RequestLocation
		})).
		Return(nil).
		Times(2)

	err := svc.HandleChatMessage(ctx, &models.ChatMessage{ChatID: 100, FirstName: "Ana", Text: "/report"})

	require.NoError(t, err)
	ev := svc.state.Snapshot()
	assert.True(t, ev.Active)
	assert.Equal(t, models.EventTerror, ev.Type)
	assert.Equal(t, models.SeverityReported, ev.Severity)
	assert.Equal(t, "100", ev.ReporterID)
	assert.False(t, ev.HasOrigin())
}

func TestHandleChatMessage_DescribeCommand_ReporterOnly(t *testing.T) {
	svc, repoMock, pubMock := newTestAlertService(t)
	ctx := context.Background()

	svc.state.Open(eventstate.OpenParams{
		Type:       models.EventTerror,
		Severity:   models.SeverityReported,
		ReporterID: "200",
	})

	repoMock.EXPECT().Upsert(ctx, gomock.Any()).Return(nil).Times(1)
	pubMock.EXPECT().
		Publish(ctx, gomock.Cond(func(x any) bool {
			n, ok := x.(notifier.Notification)
			if !ok {
				return false
			}
			return n.ChatID == 100 && strings.Contains(n.Text, "no open report")
		})).
		Return(nil).
		Times(1)

	err := svc.HandleChatMessage(ctx, &models.ChatMessage{ChatID: 100, Text: "/describe smoke near the station"})

	require.NoError(t, err)
	assert.Empty(t, svc.state.Snapshot().Description)
}

func TestStatus_PendingWinsOverStoredLocation(t *testing.T) {
	svc, repoMock, _ := newTestAlertService(t)
	ctx := context.Background()

	svc.state.Open(eventstate.OpenParams{
		Type:      models.EventQuake,
		Severity:  models.SeverityStrong,
		Latitude:  ptr(55.75),
		Longitude: ptr(37.61),
	})

	repoMock.EXPECT().All(ctx).Return([]*models.User{
		{ID: "100", Pending: true, Latitude: ptr(55.75), Longitude: ptr(37.61)},
		{ID: "200", Latitude: ptr(10.0), Longitude: ptr(10.0)},
	}, nil).Times(1)

	view, err := svc.Status(ctx)

	require.NoError(t, err)
	require.Len(t, view.Pending, 1)
	assert.Equal(t, "100", view.Pending[0].User.ID)
	require.Len(t, view.Safe, 1)
	assert.Equal(t, classifier.StatusSafe, view.Safe[0].Status)
	assert.Empty(t, view.Danger)
	assert.Contains(t, view.Label, "quake")
}

func TestStats_PassesConfiguredWindow(t *testing.T) {
	svc, repoMock, _ := newTestAlertService(t)
	ctx := context.Background()

	repoMock.EXPECT().GetLocationCheckStats(ctx, 60).Return(42, nil).Times(1)

	count, err := svc.Stats(ctx)

	require.NoError(t, err)
	assert.Equal(t, 42, count)
}
