package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setTokens(t *testing.T) {
	t.Setenv("UBER_API_TOKEN", "u")
	t.Setenv("LYFT_API_TOKEN", "l")
	t.Setenv("BOLT_API_TOKEN", "b")
}

func TestLoadDefaults(t *testing.T) {
	setTokens(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "https://nominatim.openstreetmap.org", cfg.NominatimURL)
	assert.Equal(t, "https://router.project-osrm.org", cfg.OSRMURL)
	assert.Equal(t, "https://api.uber.com", cfg.Uber.URL)
	assert.Equal(t, "ride.quotes", cfg.KafkaTopic)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.False(t, cfg.MockProviders)
}

func TestLoadOverrides(t *testing.T) {
	setTokens(t)
	t.Setenv("PORT", "9090")
	t.Setenv("HTTP_TIMEOUT", "3s")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("SUGGESTION_CACHE_SIZE", "64")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 3*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 64, cfg.SuggestionCacheSize)
}

func TestLoadRequiresTokensUnlessMocked(t *testing.T) {
	t.Setenv("UBER_API_TOKEN", "")
	t.Setenv("LYFT_API_TOKEN", "")
	t.Setenv("BOLT_API_TOKEN", "")

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("MOCK_PROVIDERS", "true")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.MockProviders)
}

func TestLoadRejectsBadValues(t *testing.T) {
	setTokens(t)

	t.Setenv("HTTP_TIMEOUT", "soon")
	_, err := Load()
	assert.ErrorContains(t, err, "HTTP_TIMEOUT")

	t.Setenv("HTTP_TIMEOUT", "")
	t.Setenv("APP_ENV", "moon")
	_, err = Load()
	assert.Error(t, err)
}
