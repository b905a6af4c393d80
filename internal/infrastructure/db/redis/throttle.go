package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ResetThrottle lets one reset mail through per address per window.
// Key format: reset_throttle:<email>
type ResetThrottle struct {
	client *redis.Client
	window time.Duration
}

func NewResetThrottle(client *redis.Client, window time.Duration) *ResetThrottle {
	return &ResetThrottle{client: client, window: window}
}

// Allow claims the window for email. It reports false while a previous claim
// has not expired.
func (t *ResetThrottle) Allow(ctx context.Context, email string) (bool, error) {
	ok, err := t.client.SetNX(ctx, t.key(email), "1", t.window).Result()
	if err != nil {
		return false, fmt.Errorf("reset throttle: %w", err)
	}
	return ok, nil
}

func (t *ResetThrottle) key(email string) string {
	return "reset_throttle:" + email
}
