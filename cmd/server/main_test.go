package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vytor/notebot/internal/config"
	"github.com/vytor/notebot/internal/services"
)

func TestUpdateTimeout(t *testing.T) {
	cfg := config.Config{ReviewLimit: 5, DeliveryTimeout: 2 * time.Second}
	assert.Equal(t, time.Duration(services.MaxReviewLimit+1)*2*time.Second, updateTimeout(cfg),
		"an explicit /review count may exceed the default batch")

	cfg.ReviewLimit = services.MaxReviewLimit + 10
	assert.Equal(t, time.Duration(cfg.ReviewLimit+1)*2*time.Second, updateTimeout(cfg))
}
