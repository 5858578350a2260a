package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/redis/go-redis/v9"
	"github.com/shenikar/hazard_alert_relay/internal/config"
	"github.com/shenikar/hazard_alert_relay/internal/observability"
	"github.com/sirupsen/logrus"
)

// Worker drains the notification queue and delivers messages through
// the Telegram Bot API. Delivery is best effort: one failed send never
// aborts the batch, and a missing bot credential turns every send into
// a logged no-op.
type Worker struct {
	redisClient *redis.Client
	api         *tgbotapi.BotAPI
	logger      *logrus.Logger
	cfg         *config.Config
	metrics     *observability.Metrics
}

// NewWorker creates a delivery worker. api may be nil when no bot
// token is configured.
func NewWorker(redisClient *redis.Client, api *tgbotapi.BotAPI, logger *logrus.Logger, cfg *config.Config, metrics *observability.Metrics) *Worker {
	return &Worker{
		redisClient: redisClient,
		api:         api,
		logger:      logger,
		cfg:         cfg,
		metrics:     metrics,
	}
}

// Start launches the queue-draining goroutine.
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info("Starting notification worker...")
	go func() {
		for {
			select {
			case <-ctx.Done():
				w.logger.Info("Stopping notification worker.")
				return
			default:
				// BRPOP with 0 blocks until an element arrives.
				result, err := w.redisClient.BRPop(ctx, 0, notificationQueueKey).Result()
				if err != nil {
					if errors.Is(err, context.Canceled) {
						continue
					}
					w.logger.WithError(err).Error("Failed to pop notification from Redis")
					time.Sleep(w.cfg.NotifyBaseDelay)
					continue
				}

				// result[0] is the key, result[1] the payload.
				var n Notification
				if err := json.Unmarshal([]byte(result[1]), &n); err != nil {
					w.logger.WithError(err).Error("Failed to unmarshal notification from Redis")
					continue
				}

				w.deliver(n)
			}
		}
	}()
}

func (w *Worker) deliver(n Notification) {
	log := w.logger.WithField("chat_id", n.ChatID)

	if w.api == nil {
		log.Warn("Bot token is not configured. Dropping notification.")
		return
	}

	msg := tgbotapi.NewMessage(n.ChatID, n.Text)
	if n.RequestLocation {
		keyboard := tgbotapi.NewReplyKeyboard(
			tgbotapi.NewKeyboardButtonRow(
				tgbotapi.NewKeyboardButtonLocation("Share my location"),
			),
		)
		keyboard.OneTimeKeyboard = true
		msg.ReplyMarkup = keyboard
	}

	maxRetries := w.cfg.NotifyMaxRetries
	delay := w.cfg.NotifyBaseDelay

	for i := 0; i < maxRetries; i++ {
		if _, err := w.api.Send(msg); err != nil {
			log.WithError(err).Warnf("Failed to send notification. Retrying in %v. Retries left: %d", delay, maxRetries-1-i)
			time.Sleep(delay)
			delay *= 2
			continue
		}
		w.metrics.NotificationsSent.Inc()
		log.Debug("Notification delivered.")
		return
	}

	w.metrics.NotificationsFailed.Inc()
	log.Errorf("Failed to deliver notification after %d retries.", maxRetries)
}
