package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "http://localhost:5000/api/v1", cfg.API.BaseURL())
	assert.Equal(t, SessionStoreFile, cfg.Session.Store)
	assert.Equal(t, 10, cfg.Listing.DefaultPageSize)
	assert.Equal(t, 1500*time.Millisecond, cfg.Forms.SuccessRedirectDelay)
	assert.Equal(t, 30*time.Second, cfg.Monitor.Interval)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("API_ORIGIN", "https://erp.example.edu/")
	t.Setenv("API_PREFIX", "api/v2/")
	t.Setenv("SESSION_STORE", "REDIS")
	t.Setenv("MONITOR_INTERVAL", "off")
	t.Setenv("DEFAULT_PAGE_SIZE", "-3")
	t.Setenv("ALLOWED_ORIGINS", " https://ops.example.edu, ,http://localhost:3000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://erp.example.edu/api/v2", cfg.API.BaseURL())
	assert.Equal(t, SessionStoreRedis, cfg.Session.Store)
	assert.Equal(t, time.Duration(0), cfg.Monitor.Interval)
	assert.Equal(t, 10, cfg.Listing.DefaultPageSize)
	assert.Equal(t, []string{"https://ops.example.edu", "http://localhost:3000"}, cfg.CORS.AllowedOrigins)
}

func TestLoadRejectsUnknownStore(t *testing.T) {
	t.Setenv("SESSION_STORE", "cookie")
	_, err := Load()
	require.Error(t, err)
}

func TestParseMonitorInterval(t *testing.T) {
	for raw, want := range map[string]time.Duration{
		"off": 0,
		"10s": 10 * time.Second,
		"30s": 30 * time.Second,
		"60s": time.Minute,
	} {
		got, err := ParseMonitorInterval(raw)
		require.NoError(t, err)
		assert.Equal(t, want, got, raw)
	}

	_, err := ParseMonitorInterval("15s")
	assert.Error(t, err)
}
