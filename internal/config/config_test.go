package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 2*time.Second, cfg.ScanCooldown)
	assert.Equal(t, 90*time.Second, cfg.StalenessThreshold)
	assert.Equal(t, 10*time.Second, cfg.SweepInterval)
	assert.Equal(t, 15*time.Minute, cfg.GracePeriod)
	assert.Empty(t, cfg.RedisAddr)
	assert.Equal(t, "presence:liveness", cfg.LivenessChannel)
	assert.False(t, cfg.SeedDemo)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SCAN_COOLDOWN", "500ms")
	t.Setenv("STALENESS_THRESHOLD", "2m")
	t.Setenv("LATE_GRACE_PERIOD", "0s")
	t.Setenv("SEED_DEMO", "true")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "3")

	cfg := Load()
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 500*time.Millisecond, cfg.ScanCooldown)
	assert.Equal(t, 2*time.Minute, cfg.StalenessThreshold)
	assert.Equal(t, time.Duration(0), cfg.GracePeriod)
	assert.True(t, cfg.SeedDemo)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 3, cfg.RedisDB)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("SCAN_COOLDOWN", "soon")
	t.Setenv("SEED_DEMO", "maybe")
	t.Setenv("REDIS_DB", "three")

	cfg := Load()
	assert.Equal(t, 2*time.Second, cfg.ScanCooldown)
	assert.False(t, cfg.SeedDemo)
	assert.Equal(t, 0, cfg.RedisDB)
}
