package api

import (
	"context"
	"time"

	"github.com/vytor/notebot/internal/services"
)

// HealthChecker reports whether a backing store can serve requests.
type HealthChecker interface {
	Healthy(ctx context.Context) error
}

type Server struct {
	Bot           services.BotService
	DB            HealthChecker
	WebhookSecret string
	// UpdateTimeout bounds the handling of one webhook update. Zero means no limit.
	UpdateTimeout time.Duration
}
