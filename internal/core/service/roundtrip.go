package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// roundTrip suspends the caller for latency, returning early when ctx is done.
// Every store operation that talks to a backend goes through it so a
// configured latency applies uniformly.
func roundTrip(ctx context.Context, latency time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if latency <= 0 {
		return nil
	}
	t := time.NewTimer(latency)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func newID() string {
	return uuid.NewString()
}

// newResetToken returns 32 random bytes, hex encoded.
func newResetToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("reset token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func utcNow() time.Time {
	return time.Now().UTC()
}
