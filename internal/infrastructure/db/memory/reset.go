package memory

import (
	"context"
	"sync"
	"time"

	"github.com/doomzday403/admin-console/internal/core/domain"
)

type resetEntry struct {
	userID  string
	expires time.Time
}

// ResetTokenStore keeps single-use reset tokens with an expiry.
type ResetTokenStore struct {
	mu     sync.Mutex
	now    func() time.Time
	tokens map[string]resetEntry
}

func NewResetTokenStore() *ResetTokenStore {
	return &ResetTokenStore{now: time.Now, tokens: make(map[string]resetEntry)}
}

func (s *ResetTokenStore) Save(_ context.Context, token, userID string, ttl time.Duration) error {
	s.mu.Lock()
	s.tokens[token] = resetEntry{userID: userID, expires: s.now().Add(ttl)}
	s.mu.Unlock()
	return nil
}

func (s *ResetTokenStore) Consume(_ context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.tokens[token]
	delete(s.tokens, token)
	if !ok || !s.now().Before(e.expires) {
		return "", domain.ErrInvalidResetToken
	}
	return e.userID, nil
}

// ResetThrottle lets one reset mail through per address per window.
type ResetThrottle struct {
	mu     sync.Mutex
	now    func() time.Time
	window time.Duration
	last   map[string]time.Time
}

func NewResetThrottle(window time.Duration) *ResetThrottle {
	return &ResetThrottle{now: time.Now, window: window, last: make(map[string]time.Time)}
}

func (t *ResetThrottle) Allow(_ context.Context, email string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if at, ok := t.last[email]; ok && now.Sub(at) < t.window {
		return false, nil
	}
	t.last[email] = now
	return true, nil
}
