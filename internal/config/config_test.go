package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"HTTP_PORT", "MAX_UPLOAD_BYTES", "PROVIDER_REQUEST_TIMEOUT",
		"REDIS_ADDRESS", "RATE_LIMIT_PER_MINUTE", "USAGE_SINK_ENABLED", "USAGE_SINK_S3_PREFIX",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, int64(16<<20), cfg.MaxUploadBytes)
	assert.Equal(t, 60*time.Second, cfg.Provider.RequestTimeout)
	assert.Empty(t, cfg.Redis.Address)
	assert.Zero(t, cfg.RateLimit.PerMinute)
	assert.False(t, cfg.UsageSink.Enabled)
	assert.Equal(t, "usage/", cfg.UsageSink.S3Prefix)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("MAX_UPLOAD_BYTES", "1048576")
	t.Setenv("PROVIDER_REQUEST_TIMEOUT", "90s")
	t.Setenv("ANTHROPIC_API_KEY", "a-key")
	t.Setenv("ANTHROPIC_MODEL", "claude-3-opus-20240229")
	t.Setenv("AZURE_OPENAI_ENDPOINT", "https://example.openai.azure.com")
	t.Setenv("REDIS_ADDRESS", "localhost:6379")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "30")
	t.Setenv("USAGE_SINK_ENABLED", "true")
	t.Setenv("USAGE_SINK_S3_BUCKET", "usage-bucket")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.Equal(t, int64(1<<20), cfg.MaxUploadBytes)
	assert.Equal(t, 90*time.Second, cfg.Provider.RequestTimeout)
	assert.Equal(t, "a-key", cfg.Provider.AnthropicAPIKey)
	assert.Equal(t, "claude-3-opus-20240229", cfg.Provider.AnthropicModel)
	assert.Equal(t, "https://example.openai.azure.com", cfg.Provider.AzureEndpoint)
	assert.Equal(t, "localhost:6379", cfg.Redis.Address)
	assert.Equal(t, 30, cfg.RateLimit.PerMinute)
	assert.True(t, cfg.UsageSink.Enabled)
	assert.Equal(t, "usage-bucket", cfg.UsageSink.S3Bucket)
}

func TestLoadMalformedValuesFallBack(t *testing.T) {
	t.Setenv("MAX_UPLOAD_BYTES", "not-a-number")
	t.Setenv("PROVIDER_REQUEST_TIMEOUT", "soon")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "many")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, int64(16<<20), cfg.MaxUploadBytes)
	assert.Equal(t, 60*time.Second, cfg.Provider.RequestTimeout)
	assert.Zero(t, cfg.RateLimit.PerMinute)
}
