package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/hazard")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 0.2, cfg.SmokeRadiusKm)
	assert.Equal(t, 120.0, cfg.QuakeStrongRadiusKm)
	assert.Equal(t, 35.0, cfg.QuakeRadiusKm)
	assert.Equal(t, 10.0, cfg.ReportedRadiusKm)
	assert.Equal(t, 1.0, cfg.DefaultRadiusKm)
	assert.Equal(t, 15*time.Second, cfg.NotifyTimeout)
	assert.Equal(t, 3, cfg.NotifyMaxRetries)
	assert.Equal(t, 60, cfg.StatsTimeWindowMinutes)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/hazard")
	t.Setenv("SMOKE_RADIUS_KM", "0.5")
	t.Setenv("QUAKE_STRONG_RADIUS_KM", "200")
	t.Setenv("NOTIFY_TIMEOUT", "5s")
	t.Setenv("SENSOR_SECRET", "s3cret")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 0.5, cfg.SmokeRadiusKm)
	assert.Equal(t, 200.0, cfg.QuakeStrongRadiusKm)
	assert.Equal(t, 5*time.Second, cfg.NotifyTimeout)
	assert.Equal(t, "s3cret", cfg.SensorSecret)
}

func TestLoadConfig_InvalidNumbersFallBack(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/hazard")
	t.Setenv("SMOKE_RADIUS_KM", "not-a-number")
	t.Setenv("REDIS_DB", "also-not")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 0.2, cfg.SmokeRadiusKm)
	assert.Equal(t, 0, cfg.RedisDB)
}

func TestLoadConfig_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}
