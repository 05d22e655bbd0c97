package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Server config
	assert.Equal(t, "8600", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)

	// Fetch config
	assert.Equal(t, 30, cfg.Fetch.TimeoutSeconds)
	assert.Equal(t, "structured-data-scraper/1.0", cfg.Fetch.UserAgent)
	assert.Equal(t, int64(10*1024*1024), cfg.Fetch.MaxBodyBytes)
	assert.Equal(t, 3, cfg.Fetch.RetryMax)

	// Crawl config
	assert.Equal(t, 4, cfg.Crawl.Workers)
	assert.Equal(t, 100, cfg.Crawl.MaxPages)
	assert.Equal(t, 256, cfg.Crawl.QueueCapacity)

	// Sink config
	assert.Equal(t, "./datasets", cfg.Sink.Dir)
	assert.True(t, cfg.Sink.Compress)

	// Logging config
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)

	// Rate limit config
	assert.Equal(t, 100, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 200, cfg.RateLimit.Burst)
	assert.True(t, cfg.RateLimit.Enabled)
}

func TestDefaultValidates(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoadOrDefault(t *testing.T) {
	cfg := LoadOrDefault()

	assert.NotNil(t, cfg)
	assert.Equal(t, "8600", cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"PORT":                  "9100",
		"HOST":                  "127.0.0.1",
		"FETCH_TIMEOUT_SECONDS": "10",
		"FETCH_USER_AGENT":      "test-agent/2.0",
		"FETCH_HOST_RPS":        "5",
		"FETCH_HOST_BURST":      "10",
		"CRAWL_WORKERS":         "8",
		"CRAWL_MAX_PAGES":       "25",
		"SINK_DIR":              "/tmp/out",
		"SINK_COMPRESS":         "false",
		"LOG_LEVEL":             "debug",
		"LOG_DEV":               "true",
		"RATE_LIMIT_ENABLED":    "false",
	}

	for key, value := range envVars {
		os.Setenv(key, value)
	}
	defer func() {
		for key := range envVars {
			os.Unsetenv(key)
		}
	}()

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 10, cfg.Fetch.TimeoutSeconds)
	assert.Equal(t, "test-agent/2.0", cfg.Fetch.UserAgent)
	assert.Equal(t, 5, cfg.Fetch.HostRPS)
	assert.Equal(t, 10, cfg.Fetch.HostBurst)
	assert.Equal(t, 8, cfg.Crawl.Workers)
	assert.Equal(t, 25, cfg.Crawl.MaxPages)
	assert.Equal(t, "/tmp/out", cfg.Sink.Dir)
	assert.False(t, cfg.Sink.Compress)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)
	assert.False(t, cfg.RateLimit.Enabled)
}

func TestValidateRejectsBadRanges(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero timeout", func(c *Config) { c.Fetch.TimeoutSeconds = 0 }},
		{"negative body cap", func(c *Config) { c.Fetch.MaxBodyBytes = -1 }},
		{"zero rps", func(c *Config) { c.Fetch.HostRPS = 0 }},
		{"zero workers", func(c *Config) { c.Crawl.Workers = 0 }},
		{"zero max pages", func(c *Config) { c.Crawl.MaxPages = 0 }},
		{"zero queue", func(c *Config) { c.Crawl.QueueCapacity = 0 }},
		{"empty sink dir", func(c *Config) { c.Sink.Dir = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
