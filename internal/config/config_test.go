package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	require.Equal(t, "8080", cfg.ServerPort)
	require.Equal(t, 5*time.Minute, cfg.UserCacheTTL)
	require.Equal(t, 12*time.Hour, cfg.SessionTTL)
	require.Empty(t, cfg.AutomationURL)
	require.Empty(t, cfg.NATSURL)
	require.Equal(t, "info", cfg.LogLevel)
	require.False(t, cfg.TracingEnabled)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("USER_CACHE_TTL", "90s")
	t.Setenv("SESSION_TTL", "6h")
	t.Setenv("AUTOMATION_WEBHOOK_URL", "https://hooks.example.com/relay")
	t.Setenv("RATE_LIMIT_REQUESTS", "10")
	t.Setenv("TRACING_ENABLED", "true")

	cfg := Load()

	require.Equal(t, "9999", cfg.ServerPort)
	require.Equal(t, 90*time.Second, cfg.UserCacheTTL)
	require.Equal(t, 6*time.Hour, cfg.SessionTTL)
	require.Equal(t, "https://hooks.example.com/relay", cfg.AutomationURL)
	require.Equal(t, 10, cfg.RateLimitRequests)
	require.True(t, cfg.TracingEnabled)
}

func TestLoad_MalformedValuesFallBack(t *testing.T) {
	t.Setenv("USER_CACHE_TTL", "soon")
	t.Setenv("RATE_LIMIT_REQUESTS", "lots")

	cfg := Load()

	require.Equal(t, 5*time.Minute, cfg.UserCacheTTL)
	require.Equal(t, 120, cfg.RateLimitRequests)
}
