package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	DatabaseURL string `env:"DATABASE_URL"`
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Redis Config
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD"`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Telegram bot credential. Empty token degrades every outbound
	// notification to a logged no-op.
	TelegramToken string `env:"TELEGRAM_TOKEN"`

	// Shared secret expected in the X-SECRET header of sensor reports.
	// Empty leaves the alert endpoint open.
	SensorSecret string `env:"SENSOR_SECRET"`

	// Radius policy, kilometers.
	SmokeRadiusKm       float64 `env:"SMOKE_RADIUS_KM" envDefault:"0.2"`
	QuakeStrongRadiusKm float64 `env:"QUAKE_STRONG_RADIUS_KM" envDefault:"120"`
	QuakeRadiusKm       float64 `env:"QUAKE_RADIUS_KM" envDefault:"35"`
	ReportedRadiusKm    float64 `env:"REPORTED_RADIUS_KM" envDefault:"10"`
	DefaultRadiusKm     float64 `env:"DEFAULT_RADIUS_KM" envDefault:"1.0"`

	// Outbound notification delivery.
	NotifyTimeout    time.Duration `env:"NOTIFY_TIMEOUT" envDefault:"15s"`
	NotifyMaxRetries int           `env:"NOTIFY_MAX_RETRIES" envDefault:"3"`
	NotifyBaseDelay  time.Duration `env:"NOTIFY_BASE_DELAY" envDefault:"1s"`

	// Stats Config
	StatsTimeWindowMinutes int `env:"STATS_TIME_WINDOW_MINUTES" envDefault:"60"`
}

// LoadConfig loads configuration from environment variables and an
// optional .env file.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := &Config{
		DatabaseURL:            os.Getenv("DATABASE_URL"),
		HTTPPort:               getEnv("HTTP_PORT", "8080"),
		LogLevel:               getEnv("LOG_LEVEL", "info"),
		RedisAddr:              getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass:              os.Getenv("REDIS_PASSWORD"),
		RedisDB:                getEnvAsInt("REDIS_DB", 0),
		TelegramToken:          os.Getenv("TELEGRAM_TOKEN"),
		SensorSecret:           os.Getenv("SENSOR_SECRET"),
		SmokeRadiusKm:          getEnvAsFloat("SMOKE_RADIUS_KM", 0.2),
		QuakeStrongRadiusKm:    getEnvAsFloat("QUAKE_STRONG_RADIUS_KM", 120),
		QuakeRadiusKm:          getEnvAsFloat("QUAKE_RADIUS_KM", 35),
		ReportedRadiusKm:       getEnvAsFloat("REPORTED_RADIUS_KM", 10),
		DefaultRadiusKm:        getEnvAsFloat("DEFAULT_RADIUS_KM", 1.0),
		NotifyTimeout:          getEnvAsDuration("NOTIFY_TIMEOUT", 15*time.Second),
		NotifyMaxRetries:       getEnvAsInt("NOTIFY_MAX_RETRIES", 3),
		NotifyBaseDelay:        getEnvAsDuration("NOTIFY_BASE_DELAY", time.Second),
		StatsTimeWindowMinutes: getEnvAsInt("STATS_TIME_WINDOW_MINUTES", 60),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	return cfg, nil
}

// getEnv returns the environment variable value or a default.
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt returns the environment variable value as int or a default.
func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsFloat returns the environment variable value as float64 or a default.
func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvAsDuration returns the environment variable value as time.Duration or a default.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if durationValue, err := time.ParseDuration(value); err == nil {
			return durationValue
		}
	}
	return defaultValue
}
