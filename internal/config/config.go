package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr              string
	DBPath            string
	LogLevel          string
	TelegramToken     string
	TelegramAPIURL    string
	WebhookSecret     string
	ReviewLimit       int
	ReviewConcurrency int
	DeliveryTimeout   time.Duration
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the bot still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:              envOr("ADDR", ":8080"),
		DBPath:            envOr("DB_PATH", "file:notebot.db"),
		LogLevel:          envOr("LOG_LEVEL", "INFO"),
		TelegramToken:     envOr("TELEGRAM_BOT_TOKEN", ""),
		TelegramAPIURL:    envOr("TELEGRAM_API_URL", "https://api.telegram.org"),
		WebhookSecret:     envOr("FUNCTION_SECRET", ""),
		ReviewLimit:       envIntOr("REVIEW_LIMIT", 5),
		ReviewConcurrency: envIntOr("REVIEW_CONCURRENCY", 4),
		DeliveryTimeout:   envDurationOr("DELIVERY_TIMEOUT", 10*time.Second),
	}
}

// Validate checks the configuration for values the bot cannot run with.
func (c Config) Validate() error {
	var problems []string
	if strings.TrimSpace(c.Addr) == "" {
		problems = append(problems, "ADDR cannot be empty")
	}
	if strings.TrimSpace(c.DBPath) == "" {
		problems = append(problems, "DB_PATH cannot be empty")
	}
	if c.TelegramToken == "" {
		problems = append(problems, "TELEGRAM_BOT_TOKEN cannot be empty")
	}
	if c.WebhookSecret == "" {
		problems = append(problems, "FUNCTION_SECRET cannot be empty")
	}
	if u, err := url.Parse(c.TelegramAPIURL); err != nil || u.Scheme == "" || u.Host == "" {
		problems = append(problems, fmt.Sprintf("TELEGRAM_API_URL is not a valid URL: %q", c.TelegramAPIURL))
	}
	if c.ReviewLimit < 1 {
		problems = append(problems, "REVIEW_LIMIT must be at least 1")
	}
	if c.ReviewConcurrency < 1 {
		problems = append(problems, "REVIEW_CONCURRENCY must be at least 1")
	}
	if c.DeliveryTimeout <= 0 {
		problems = append(problems, "DELIVERY_TIMEOUT must be positive")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

func envDurationOr(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("invalid value for %s=%q, using default %s", key, v, def)
	}
	return def
}
