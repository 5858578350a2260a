package service

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/shenikar/hazard_alert_relay/internal/bot"
	"github.com/shenikar/hazard_alert_relay/internal/classifier"
	"github.com/shenikar/hazard_alert_relay/internal/eventstate"
	"github.com/shenikar/hazard_alert_relay/internal/models"
	"github.com/shenikar/hazard_alert_relay/internal/notifier"
	"github.com/shenikar/hazard_alert_relay/internal/observability"
	"github.com/shenikar/hazard_alert_relay/internal/policy"
	"github.com/sirupsen/logrus"
)

// UserRepository is the contract for the durable user registry.
type UserRepository interface {
	Upsert(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	All(ctx context.Context) ([]*models.User, error)
	SetAllPending(ctx context.Context, pending bool) error
	RecordLocation(ctx context.Context, id string, lat, lon float64) error
	SaveLocationCheck(ctx context.Context, check *models.LocationCheck) error
	GetLocationCheckStats(ctx context.Context, minutes int) (int, error)
}

// EventView is the event snapshot served to the polling sensor.
type EventView struct {
	Event    models.Event
	RadiusKm float64
	Label    string
}

// StatusView is the full classification report for the dashboard.
type StatusView struct {
	classifier.Report
	Label string
}

// AlertService is the contract for the hazard relay business logic.
type AlertService interface {
	ReportHazard(ctx context.Context, report *models.HazardReport) (EventView, error)
	HandleChatMessage(ctx context.Context, msg *models.ChatMessage) error
	EventSnapshot(ctx context.Context) EventView
	Status(ctx context.Context) (*StatusView, error)
	Stats(ctx context.Context) (int, error)
}

type alertService struct {
	repo      UserRepository
	state     *eventstate.State
	policy    policy.Policy
	publisher notifier.Publisher
	logger    *logrus.Logger
	metrics   *observability.Metrics

	// Serializes event open/close with the paired bulk pending update,
	// so "open event + mark all pending" is observed atomically.
	mu sync.Mutex

	statsWindowMinutes int
}

func NewAlertService(repo UserRepository, state *eventstate.State, pol policy.Policy, publisher notifier.Publisher, logger *logrus.Logger, metrics *observability.Metrics, statsWindowMinutes int) AlertService {
	return &alertService{
		repo:               repo,
		state:              state,
		policy:             pol,
		publisher:          publisher,
		logger:             logger,
		metrics:            metrics,
		statsWindowMinutes: statsWindowMinutes,
	}
}

// ReportHazard applies an inbound sensor report. type=normal closes the
// current event; hazard types open one and start a location-request
// round; other tags open the event and broadcast informationally.
func (s *alertService) ReportHazard(ctx context.Context, report *models.HazardReport) (EventView, error) {
	if report.Type == "" {
		report.Type = models.EventUnknown
	}
	log := s.logger.WithFields(logrus.Fields{
		"service": "alert",
		"method":  "ReportHazard",
		"type":    report.Type,
		"level":   report.Severity,
		"device":  report.DeviceID,
	})
	log.Info("Applying hazard report")
	s.metrics.ReportsReceived.WithLabelValues(string(report.Type)).Inc()

	if report.Type == models.EventNormal {
		if err := s.closeEvent(ctx); err != nil {
			return s.EventSnapshot(ctx), fmt.Errorf("service: could not close event: %w", err)
		}
		return s.EventSnapshot(ctx), nil
	}

	s.mu.Lock()
	ev := s.state.Open(eventstate.OpenParams{
		Type:         report.Type,
		Severity:     report.Severity,
		Latitude:     report.Latitude,
		Longitude:    report.Longitude,
		ReporterID:   report.DeviceID,
		ReporterName: report.DeviceID,
		Description:  report.Description,
	})
	var pendingErr error
	if report.Type.IsHazard() {
		pendingErr = s.repo.SetAllPending(ctx, true)
	}
	s.mu.Unlock()

	s.metrics.EventActive.Set(1)
	if pendingErr != nil {
		log.WithError(pendingErr).Error("Failed to mark all users pending")
		return s.EventSnapshot(ctx), fmt.Errorf("service: could not mark users pending: %w", pendingErr)
	}

	label := s.state.Label()
	if ev.Type.IsHazard() {
		s.fanOut(ctx, notifier.RequestLocationText(label), true)
	} else {
		s.fanOut(ctx, notifier.InformationalText(label), false)
	}

	log.WithField("event_id", ev.ID).Info("Hazard event opened")
	return s.EventSnapshot(ctx), nil
}

// closeEvent clears the event, resets every pending flag and broadcasts
// the all-clear.
func (s *alertService) closeEvent(ctx context.Context) error {
	log := s.logger.WithFields(logrus.Fields{
		"service": "alert",
		"method":  "closeEvent",
	})

	s.mu.Lock()
	closed := s.state.Close()
	err := s.repo.SetAllPending(ctx, false)
	s.mu.Unlock()

	s.metrics.EventActive.Set(0)
	if err != nil {
		log.WithError(err).Error("Failed to clear pending flags")
		return err
	}

	s.fanOut(ctx, notifier.AllClearText(), false)
	log.WithField("was_active", closed.Active).Info("Event closed")
	return nil
}

// HandleChatMessage applies one inbound chat update: a shared location
// or a command.
func (s *alertService) HandleChatMessage(ctx context.Context, msg *models.ChatMessage) error {
	userID := strconv.FormatInt(msg.ChatID, 10)
	log := s.logger.WithFields(logrus.Fields{
		"service": "alert",
		"method":  "HandleChatMessage",
		"user_id": userID,
	})

	user := &models.User{ID: userID, FirstName: msg.FirstName, LastName: msg.LastName}
	if err := s.repo.Upsert(ctx, user); err != nil {
		log.WithError(err).Error("Failed to upsert user")
		return fmt.Errorf("service: could not upsert user: %w", err)
	}

	if msg.Location != nil {
		return s.handleLocation(ctx, userID, msg)
	}

	cmd := bot.Parse(msg.Text)
	switch cmd.Kind {
	case bot.KindStart:
		s.queue(ctx, msg.ChatID, notifier.WelcomeText(), false)
	case bot.KindHelp:
		s.queue(ctx, msg.ChatID, notifier.HelpText(), false)
	case bot.KindReportHazard:
		return s.openChatReport(ctx, userID, user.DisplayName(), msg.ChatID)
	case bot.KindDescribe:
		s.describeEvent(ctx, userID, cmd.Payload, msg.ChatID)
	case bot.KindCloseEvent:
		return s.closeEvent(ctx)
	default:
		log.WithField("text", msg.Text).Debug("Unrecognized chat text")
		s.queue(ctx, msg.ChatID, notifier.UnrecognizedText(), false)
	}
	return nil
}

// handleLocation records the user's location, supplies the event origin
// when the reporter of an origin-less event shares theirs, classifies
// the single user and queues the personalized result.
func (s *alertService) handleLocation(ctx context.Context, userID string, msg *models.ChatMessage) error {
	log := s.logger.WithFields(logrus.Fields{
		"service": "alert",
		"method":  "handleLocation",
		"user_id": userID,
	})
	loc := msg.Location

	ev := s.state.Snapshot()
	if ev.Active && !ev.HasOrigin() && ev.ReporterID == userID {
		if err := s.state.SetOrigin(loc.Latitude, loc.Longitude); err != nil {
			log.WithError(err).Warn("Failed to set event origin from reporter location")
		} else {
			log.Info("Event origin set from reporter location")
		}
	}

	if err := s.repo.RecordLocation(ctx, userID, loc.Latitude, loc.Longitude); err != nil {
		log.WithError(err).Error("Failed to record location")
		return fmt.Errorf("service: could not record location: %w", err)
	}
	s.metrics.LocationUpdates.Inc()

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		log.WithError(err).Error("Failed to load user after location update")
		return fmt.Errorf("service: could not load user: %w", err)
	}

	ev = s.state.Snapshot()
	res := classifier.ClassifyUser(ev, s.policy, user)

	check := &models.LocationCheck{
		UserID:    userID,
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
		IsDanger:  res.Status == classifier.StatusDanger,
	}
	if err := s.repo.SaveLocationCheck(ctx, check); err != nil {
		// Audit only, classification still goes out.
		log.WithError(err).Warn("Failed to save location check")
	}

	s.queue(ctx, msg.ChatID, notifier.ClassificationText(res, ev, s.state.Label()), false)
	log.WithField("status", res.Status).Info("Location classified")
	return nil
}

// openChatReport opens a reporter-type event without coordinates: the
// origin arrives later, through the reporter's own location share.
func (s *alertService) openChatReport(ctx context.Context, userID, displayName string, chatID int64) error {
	log := s.logger.WithFields(logrus.Fields{
		"service": "alert",
		"method":  "openChatReport",
		"user_id": userID,
	})

	s.mu.Lock()
	ev := s.state.Open(eventstate.OpenParams{
		Type:         models.EventTerror,
		Severity:     models.SeverityReported,
		ReporterID:   userID,
		ReporterName: displayName,
	})
	err := s.repo.SetAllPending(ctx, true)
	s.mu.Unlock()

	s.metrics.EventActive.Set(1)
	s.metrics.ReportsReceived.WithLabelValues(string(models.EventTerror)).Inc()
	if err != nil {
		log.WithError(err).Error("Failed to mark all users pending")
		return fmt.Errorf("service: could not mark users pending: %w", err)
	}

	s.fanOut(ctx, notifier.RequestLocationText(s.state.Label()), true)
	s.queue(ctx, chatID, notifier.ReportOpenedText(), true)

	log.WithField("event_id", ev.ID).Info("Chat-reported event opened")
	return nil
}

// describeEvent attaches free text to the open event. Only the reporter
// may describe it.
func (s *alertService) describeEvent(ctx context.Context, userID, text string, chatID int64) {
	ev := s.state.Snapshot()
	if !ev.Active || ev.ReporterID != userID {
		s.queue(ctx, chatID, "There is no open report of yours to describe.", false)
		return
	}
	if err := s.state.Describe(text); err != nil {
		s.logger.WithError(err).Warn("Failed to set event description")
		return
	}
	s.queue(ctx, chatID, "Description added to your report.", false)
}

// EventSnapshot returns the current event with its computed radius.
func (s *alertService) EventSnapshot(ctx context.Context) EventView {
	ev := s.state.Snapshot()
	return EventView{
		Event:    ev,
		RadiusKm: s.policy.RadiusKm(ev),
		Label:    s.state.Label(),
	}
}

// Status classifies the whole registry for the dashboard.
func (s *alertService) Status(ctx context.Context) (*StatusView, error) {
	users, err := s.repo.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: could not list users: %w", err)
	}
	report := classifier.Classify(s.state.Snapshot(), s.policy, users)
	return &StatusView{Report: report, Label: s.state.Label()}, nil
}

// Stats returns the distinct users with a location check inside the
// configured window.
func (s *alertService) Stats(ctx context.Context) (int, error) {
	count, err := s.repo.GetLocationCheckStats(ctx, s.statsWindowMinutes)
	if err != nil {
		return 0, fmt.Errorf("service: could not get location check stats: %w", err)
	}
	return count, nil
}

// fanOut queues one notification per registered user. A failed queue
// push for one user never stops the batch.
func (s *alertService) fanOut(ctx context.Context, text string, requestLocation bool) {
	users, err := s.repo.All(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list users for fan-out")
		return
	}
	for _, u := range users {
		chatID, err := strconv.ParseInt(u.ID, 10, 64)
		if err != nil {
			s.logger.WithField("user_id", u.ID).Warn("User id is not a chat id, skipping")
			continue
		}
		s.queue(ctx, chatID, text, requestLocation)
	}
}

// queue publishes one notification, logging instead of failing: sends
// are best effort by contract.
func (s *alertService) queue(ctx context.Context, chatID int64, text string, requestLocation bool) {
	n := notifier.Notification{ChatID: chatID, Text: text, RequestLocation: requestLocation}
	if err := s.publisher.Publish(ctx, n); err != nil {
		s.logger.WithError(err).WithField("chat_id", chatID).Error("Failed to queue notification")
		return
	}
	s.metrics.NotificationsQueued.Inc()
}
