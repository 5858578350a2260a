package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shenikar/hazard_alert_relay/internal/config"
	"github.com/shenikar/hazard_alert_relay/internal/eventstate"
	v1 "github.com/shenikar/hazard_alert_relay/internal/handler/http/v1"
	"github.com/shenikar/hazard_alert_relay/internal/notifier"
	"github.com/shenikar/hazard_alert_relay/internal/observability"
	"github.com/shenikar/hazard_alert_relay/internal/policy"
	"github.com/shenikar/hazard_alert_relay/internal/repository"
	"github.com/shenikar/hazard_alert_relay/internal/service"
	"github.com/shenikar/hazard_alert_relay/pkg/logger"
	"github.com/shenikar/hazard_alert_relay/pkg/postgres"
	redisclient "github.com/shenikar/hazard_alert_relay/pkg/redis"
	"github.com/sirupsen/logrus"

	_ "github.com/shenikar/hazard_alert_relay/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title Hazard Alert Relay API
// @version 1.0
// @description Location-based hazard notification relay.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey SensorSecret
// @in header
// @name X-SECRET
func runMigrations(cfg *config.Config, log *logrus.Logger) error {
	log.Info("Running database migrations...")

	migrationURL := cfg.DatabaseURL
	if !strings.HasPrefix(migrationURL, "pgx5://") {
		migrationURL = strings.Replace(migrationURL, "postgres://", "pgx5://", 1)
	}

	m, err := migrate.New(
		"file://migrations",
		migrationURL,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("Database migrations applied successfully")
	return nil
}

// newBotAPI builds the Telegram client. An empty token is allowed: the
// relay then runs with delivery disabled, which the worker logs.
func newBotAPI(cfg *config.Config, log *logrus.Logger) *tgbotapi.BotAPI {
	if cfg.TelegramToken == "" {
		log.Warn("TELEGRAM_TOKEN is empty, outbound notifications are disabled")
		return nil
	}

	client := &http.Client{Timeout: cfg.NotifyTimeout}
	api, err := tgbotapi.NewBotAPIWithClient(cfg.TelegramToken, tgbotapi.APIEndpoint, client)
	if err != nil {
		log.WithError(err).Fatal("Failed to create Telegram bot client")
	}
	log.WithField("bot", api.Self.UserName).Info("Telegram bot client ready")
	return api
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	log := logger.New(cfg.LogLevel)

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := runMigrations(cfg, log); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	dbpool, err := postgres.NewPostgresDB(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer dbpool.Close()
	log.Info("Successfully connected to PostgreSQL")

	redisClient, err := redisclient.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Info("Successfully connected to Redis")

	metrics := observability.NewMetrics()

	botAPI := newBotAPI(cfg, log)

	// Notification queue: publisher feeds it, worker drains it.
	publisher := notifier.NewRedisPublisher(redisClient)
	worker := notifier.NewWorker(redisClient, botAPI, log, cfg, metrics)
	worker.Start(ctx)

	userRepo := repository.NewUserRepository(dbpool)

	pol := policy.Policy{
		SmokeKm:       cfg.SmokeRadiusKm,
		QuakeStrongKm: cfg.QuakeStrongRadiusKm,
		QuakeKm:       cfg.QuakeRadiusKm,
		ReportedKm:    cfg.ReportedRadiusKm,
		DefaultKm:     cfg.DefaultRadiusKm,
	}
	state := eventstate.New(nil)

	alertService := service.NewAlertService(userRepo, state, pol, publisher, log, metrics, cfg.StatsTimeWindowMinutes)

	handler := v1.NewHandler(alertService, log, cfg)

	router := gin.Default()
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)

	// Human-facing dashboard and operational surfaces.
	router.GET("/status", handler.StatusPage)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	serverAddr := fmt.Sprintf(":%s", cfg.HTTPPort)

	srv := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Error starting HTTP server: %v", err)
		}
	}()
	log.Infof("HTTP server started on port %s", cfg.HTTPPort)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Received shutdown signal, shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Info("Server gracefully stopped")
}
