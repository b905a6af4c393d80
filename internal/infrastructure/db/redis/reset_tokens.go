package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/doomzday403/admin-console/internal/core/domain"
)

// ResetTokenStore keeps password reset tokens in Redis.
// Key format: reset_token:<token> -> user id, expiring after the token TTL.
type ResetTokenStore struct {
	client *redis.Client
}

func NewResetTokenStore(client *redis.Client) *ResetTokenStore {
	return &ResetTokenStore{client: client}
}

func (s *ResetTokenStore) Save(ctx context.Context, token, userID string, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.key(token), userID, ttl).Err(); err != nil {
		return fmt.Errorf("save reset token: %w", err)
	}
	return nil
}

// Consume reads and deletes the token in one step so it cannot be used twice.
func (s *ResetTokenStore) Consume(ctx context.Context, token string) (string, error) {
	userID, err := s.client.GetDel(ctx, s.key(token)).Result()
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrInvalidResetToken
	}
	if err != nil {
		return "", fmt.Errorf("consume reset token: %w", err)
	}
	return userID, nil
}

func (s *ResetTokenStore) key(token string) string {
	return "reset_token:" + token
}
