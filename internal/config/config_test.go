package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	assert.Equal(t, 16, cfg.Ingest.WorkerQueueSize)
	assert.Equal(t, 3, cfg.Ingest.MaxJobAttempts)
	assert.Equal(t, time.Minute, cfg.Ingest.RateWindow)
	assert.Equal(t, 30*time.Second, cfg.Ingest.ShutdownTimeout)

	// 已配置的值不被兜底覆盖
	cfg = &Config{Ingest: IngestConfig{
		WorkerQueueSize: 8,
		MaxJobAttempts:  5,
		RateWindow:      30 * time.Second,
		ShutdownTimeout: time.Minute,
	}}
	applyDefaults(cfg)
	assert.Equal(t, 8, cfg.Ingest.WorkerQueueSize)
	assert.Equal(t, 5, cfg.Ingest.MaxJobAttempts)
	assert.Equal(t, 30*time.Second, cfg.Ingest.RateWindow)
	assert.Equal(t, time.Minute, cfg.Ingest.ShutdownTimeout)
}

func TestOverrideFromEnv(t *testing.T) {
	t.Setenv("NAMUS_AUTH_TOKEN", "env-namus-token")
	t.Setenv("POSTGRES_DSN", "host=db user=app dbname=reunia")

	cfg := &Config{
		Postgres: PostgresConfig{DSN: "host=localhost"},
		Sources: map[string]SourceConfig{
			"namus": {AuthToken: "yaml-token"},
			"fbi":   {},
		},
	}
	overrideFromEnv(cfg)

	assert.Equal(t, "env-namus-token", cfg.Sources["namus"].AuthToken)
	assert.Equal(t, "host=db user=app dbname=reunia", cfg.Postgres.DSN)
	assert.Empty(t, cfg.Sources["fbi"].AuthToken)
}
