package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 3, cfg.Server.LingerSecs)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 5, cfg.Cache.TTLMinutes)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL())
	assert.Equal(t, 1000, cfg.Cache.MaxEntries)
	assert.Equal(t, 10, cfg.Search.PerProviderLimit)
	assert.Equal(t, 10, cfg.Search.ProviderTimeoutSecs)
	assert.Equal(t, 25, cfg.Enrich.YieldMS)
	assert.Equal(t, "https://api.github.com", cfg.GitHub.BaseURL)
	assert.Equal(t, 1.0, cfg.Nominatim.RPS)
	assert.Empty(t, cfg.Intent.AnthropicKey)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("UNISEARCH_SERVER_PORT", "9999")
	t.Setenv("UNISEARCH_CACHE_TTL_MINUTES", "30")
	t.Setenv("UNISEARCH_GITHUB_TOKEN", "ghp_test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, 30, cfg.Cache.TTLMinutes)
	assert.Equal(t, "ghp_test", cfg.GitHub.Token)
}

func TestInitLogger_BadLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "loud", Format: "json"})
	assert.Error(t, err)
}
