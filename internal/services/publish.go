package services

import (
	"context"
	"time"

	"gold-lifestyle-backend/internal/logger"
)

// publishTimeout bounds how long a request waits on the event broker.
const publishTimeout = 2 * time.Second

// publishEvent sends one event under its own deadline and only logs
// failures. A slow broker costs a request at most timeout.
func publishEvent(ctx context.Context, pub EventPublisher, timeout time.Duration, log *logger.Logger, event, key string, payload map[string]interface{}) {
	if pub == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := pub.Publish(ctx, event, key, payload); err != nil {
		log.Warn("failed to publish %s for %s: %v", event, key, err)
	}
}
