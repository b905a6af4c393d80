package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/doomzday403/admin-console/internal/core/domain"
	"github.com/doomzday403/admin-console/internal/core/ports"
	"github.com/doomzday403/admin-console/internal/pkg/validation"
)

// Backends are the shared collaborators behind every workspace. The
// repositories are safe for concurrent use; the stores built on top of them
// are owned by one session.
type Backends struct {
	Staff         ports.StaffRepository
	Activity      ports.ActivityRepository
	Messages      ports.MessageRepository
	Notifications ports.NotificationRepository
	ResetTokens   ports.ResetTokenStore
	ResetThrottle ports.ResetThrottle
	Mail          ports.MailDispatcher
}

// Options tune store behaviour.
type Options struct {
	// Latency is added to every backend round trip.
	Latency time.Duration
	// ResetTokenTTL bounds the lifetime of a password reset token.
	ResetTokenTTL time.Duration
}

func (o Options) withDefaults() Options {
	if o.ResetTokenTTL <= 0 {
		o.ResetTokenTTL = 15 * time.Minute
	}
	return o
}

// Status is the loading/error pair every store exposes.
type Status struct {
	IsLoading bool   `json:"is_loading"`
	Error     string `json:"error,omitempty"`
}

// guarded owns one store's state. Mutations run under the lock and are
// dropped once the owning session has been closed.
type guarded[T any] struct {
	mu     sync.Mutex
	data   T
	status Status
	closed bool
}

// begin marks an operation as in flight and clears the previous error.
func (g *guarded[T]) begin() {
	g.mu.Lock()
	g.status = Status{IsLoading: true}
	g.mu.Unlock()
}

// fail records msg as the store error and returns err.
func (g *guarded[T]) fail(err error, msg string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return domain.ErrSessionClosed
	}
	g.status = Status{Error: msg}
	return err
}

// commit applies fn to the state and ends the operation.
func (g *guarded[T]) commit(fn func(*T)) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return domain.ErrSessionClosed
	}
	if fn != nil {
		fn(&g.data)
	}
	g.status.IsLoading = false
	return nil
}

// view runs fn with the lock held; fn must not retain pointers into the state.
func (g *guarded[T]) view(fn func(*T, Status)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	fn(&g.data, g.status)
}

// wait performs the backend round trip. It reports domain.ErrSessionClosed
// when the session ended in the meantime, before anything is written.
func (g *guarded[T]) wait(ctx context.Context, latency time.Duration) error {
	if err := roundTrip(ctx, latency); err != nil {
		return err
	}
	if g.isClosed() {
		return domain.ErrSessionClosed
	}
	return nil
}

func (g *guarded[T]) close() {
	g.mu.Lock()
	g.closed = true
	g.mu.Unlock()
}

func (g *guarded[T]) isClosed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.closed
}

// recordActivity appends one audit entry for actor. A failure is logged and
// does not undo the change it describes.
func recordActivity(ctx context.Context, repo ports.ActivityRepository, log zerolog.Logger, actor *domain.User, action, details string, at time.Time) *domain.ActivityLogEntry {
	origin := domain.OriginFrom(ctx)
	entry := &domain.ActivityLogEntry{
		ID:            newID(),
		ActorID:       actor.ID,
		ActorUsername: actor.Username,
		Action:        action,
		Details:       details,
		Timestamp:     at,
		IP:            origin.IP,
		UserAgent:     origin.UserAgent,
	}
	if err := repo.Append(ctx, entry); err != nil {
		log.Warn().Err(err).Str("action", action).Str("actor", actor.ID).Msg("failed to append activity entry")
		return nil
	}
	return entry
}

// sharedValidator is safe for concurrent use and reused by every store.
var sharedValidator = validation.New()
