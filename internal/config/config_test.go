package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("CONFIG_PATH", path)
}

func TestLoadAppliesDefaults(t *testing.T) {
	writeConfig(t, `
api:
  host: 0.0.0.0
`)
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.API.Port)
	assert.Equal(t, 15*time.Second, cfg.API.ReadTimeout)
	assert.Equal(t, "engagehub", cfg.Kafka.ClientID)
	assert.InDelta(t, 10.0, cfg.Trust.Max, 1e-9)
	assert.InDelta(t, 0.5, cfg.Trust.RatingWeight, 1e-9)
	assert.Equal(t, 256, cfg.Invite.QueueSize)
	assert.Equal(t, 5*time.Minute, cfg.Report.CacheTTL)
}

func TestLoadOverrides(t *testing.T) {
	writeConfig(t, `
api:
  port: 9090
kafka:
  enabled: true
  brokers: ["localhost:9092"]
trust:
  min: 0
  max: 100
  rating_weight: 5
`)
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.API.Port)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.InDelta(t, 100.0, cfg.Trust.Max, 1e-9)
	require.NoError(t, cfg.Validate())
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "nope.yaml"))
	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg := &Config{}
		cfg.applyDefaults()
		return cfg
	}

	cfg := base()
	assert.NoError(t, cfg.Validate())

	cfg = base()
	cfg.API.Port = 70000
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.API.EnableCORS = true
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Kafka.Enabled = true
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Kafka.Enabled = true
	cfg.Kafka.Brokers = []string{"not-a-broker"}
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Redis.Enabled = true
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Trust.Max = cfg.Trust.Min
	assert.Error(t, cfg.Validate())
}
