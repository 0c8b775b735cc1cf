package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/notebot/internal/config"
)

func validConfig() config.Config {
	return config.Config{
		Addr:              ":8080",
		DBPath:            "test.db",
		LogLevel:          "INFO",
		TelegramToken:     "123:abc",
		TelegramAPIURL:    "https://api.telegram.org",
		WebhookSecret:     "s3cret",
		ReviewLimit:       5,
		ReviewConcurrency: 4,
		DeliveryTimeout:   10 * time.Second,
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_EmptyAddr(t *testing.T) {
	cfg := validConfig()
	cfg.Addr = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ADDR cannot be empty")
}

func TestValidate_MissingSecrets(t *testing.T) {
	cfg := validConfig()
	cfg.TelegramToken = ""
	cfg.WebhookSecret = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TELEGRAM_BOT_TOKEN cannot be empty")
	assert.Contains(t, err.Error(), "FUNCTION_SECRET cannot be empty")
}

func TestValidate_ReviewBounds(t *testing.T) {
	cfg := validConfig()
	cfg.ReviewLimit = 0
	cfg.ReviewConcurrency = -1

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REVIEW_LIMIT must be at least 1")
	assert.Contains(t, err.Error(), "REVIEW_CONCURRENCY must be at least 1")
}

func TestValidate_BadAPIURL(t *testing.T) {
	cfg := validConfig()
	cfg.TelegramAPIURL = "not a url"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TELEGRAM_API_URL")
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ADDR", "")
	t.Setenv("REVIEW_LIMIT", "")
	t.Setenv("DELIVERY_TIMEOUT", "")

	cfg := config.Load()
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 5, cfg.ReviewLimit)
	assert.Equal(t, 10*time.Second, cfg.DeliveryTimeout)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("ADDR", ":9090")
	t.Setenv("REVIEW_LIMIT", "12")
	t.Setenv("REVIEW_CONCURRENCY", "oops")
	t.Setenv("DELIVERY_TIMEOUT", "3s")

	cfg := config.Load()
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, 12, cfg.ReviewLimit)
	assert.Equal(t, 4, cfg.ReviewConcurrency, "invalid ints fall back to the default")
	assert.Equal(t, 3*time.Second, cfg.DeliveryTimeout)
}
