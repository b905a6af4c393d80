package ports

import (
	"context"

	"github.com/doomzday403/admin-console/internal/core/domain"
)

// StaffRepository persists the roster. List preserves insertion order.
type StaffRepository interface {
	List(ctx context.Context) ([]*domain.StaffMember, error)
	FindByID(ctx context.Context, id string) (*domain.StaffMember, error)
	FindByUsername(ctx context.Context, username string) (*domain.StaffMember, error)
	FindByEmail(ctx context.Context, email string) (*domain.StaffMember, error)
	// Create returns domain.ErrStaffExists when the username or email is taken.
	Create(ctx context.Context, m *domain.StaffMember) error
	Update(ctx context.Context, m *domain.StaffMember) error
	Delete(ctx context.Context, id string) error
}

// ActivityRepository is the append-only audit trail.
type ActivityRepository interface {
	Append(ctx context.Context, e *domain.ActivityLogEntry) error
	// List returns entries newest first. An empty actorID returns every entry.
	List(ctx context.Context, actorID string) ([]*domain.ActivityLogEntry, error)
}
