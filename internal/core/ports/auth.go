package ports

import (
	"context"
	"time"

	"github.com/doomzday403/admin-console/internal/core/domain"
)

// ResetTokenStore keeps password reset tokens until they are used or expire.
type ResetTokenStore interface {
	Save(ctx context.Context, token, userID string, ttl time.Duration) error
	// Consume returns the owner of token and invalidates it. Unknown or
	// expired tokens yield domain.ErrInvalidResetToken.
	Consume(ctx context.Context, token string) (string, error)
}

// ResetThrottle limits how often a reset mail goes to one address.
type ResetThrottle interface {
	Allow(ctx context.Context, email string) (bool, error)
}

// Identity is the acting session identity used to attribute changes.
type Identity interface {
	CurrentUser() (*domain.User, bool)
	// UpdateUser keeps the identity in line with edits to its own roster entry.
	UpdateUser(patch domain.UserPatch)
}

// Directory resolves identifiers against the roster.
type Directory interface {
	// Lookup returns domain.ErrStaffNotFound for members that no longer exist,
	// even when a stale copy was loaded earlier.
	Lookup(ctx context.Context, id string) (*domain.StaffMember, error)
}
