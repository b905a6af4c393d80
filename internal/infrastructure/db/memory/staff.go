// Package memory holds process-local repositories. They are the default
// backend and the fixture of the service tests.
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/doomzday403/admin-console/internal/core/domain"
)

// StaffRepository keeps the roster in insertion order.
type StaffRepository struct {
	mu      sync.RWMutex
	members []*domain.StaffMember
}

func NewStaffRepository() *StaffRepository {
	return &StaffRepository{}
}

func (r *StaffRepository) List(_ context.Context) ([]*domain.StaffMember, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.StaffMember, 0, len(r.members))
	for _, m := range r.members {
		out = append(out, m.Clone())
	}
	return out, nil
}

func (r *StaffRepository) FindByID(_ context.Context, id string) (*domain.StaffMember, error) {
	return r.find(func(m *domain.StaffMember) bool { return m.ID == id })
}

func (r *StaffRepository) FindByUsername(_ context.Context, username string) (*domain.StaffMember, error) {
	return r.find(func(m *domain.StaffMember) bool { return strings.EqualFold(m.Username, username) })
}

func (r *StaffRepository) FindByEmail(_ context.Context, email string) (*domain.StaffMember, error) {
	return r.find(func(m *domain.StaffMember) bool { return strings.EqualFold(m.Email, email) })
}

func (r *StaffRepository) find(match func(*domain.StaffMember) bool) (*domain.StaffMember, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if i := slices.IndexFunc(r.members, match); i >= 0 {
		return r.members[i].Clone(), nil
	}
	return nil, domain.ErrStaffNotFound
}

func (r *StaffRepository) Create(_ context.Context, m *domain.StaffMember) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.members {
		if existing.ID == m.ID ||
			strings.EqualFold(existing.Username, m.Username) ||
			strings.EqualFold(existing.Email, m.Email) {
			return domain.ErrStaffExists
		}
	}
	r.members = append(r.members, m.Clone())
	return nil
}

func (r *StaffRepository) Update(_ context.Context, m *domain.StaffMember) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := slices.IndexFunc(r.members, func(x *domain.StaffMember) bool { return x.ID == m.ID })
	if i < 0 {
		return domain.ErrStaffNotFound
	}
	r.members[i] = m.Clone()
	return nil
}

func (r *StaffRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := slices.IndexFunc(r.members, func(x *domain.StaffMember) bool { return x.ID == id })
	if i < 0 {
		return domain.ErrStaffNotFound
	}
	r.members = slices.Delete(r.members, i, i+1)
	return nil
}

// ActivityRepository is an append-only log.
type ActivityRepository struct {
	mu      sync.RWMutex
	entries []domain.ActivityLogEntry
}

func NewActivityRepository() *ActivityRepository {
	return &ActivityRepository{}
}

func (r *ActivityRepository) Append(_ context.Context, e *domain.ActivityLogEntry) error {
	r.mu.Lock()
	r.entries = append(r.entries, *e)
	r.mu.Unlock()
	return nil
}

// List walks the log backwards so the newest entry comes first.
func (r *ActivityRepository) List(_ context.Context, actorID string) ([]*domain.ActivityLogEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.ActivityLogEntry, 0, len(r.entries))
	for i := len(r.entries) - 1; i >= 0; i-- {
		e := r.entries[i]
		if actorID != "" && e.ActorID != actorID {
			continue
		}
		out = append(out, &e)
	}
	return out, nil
}
