package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/doomzday403/admin-console/internal/core/domain"
	"github.com/doomzday403/admin-console/internal/core/ports"
	"github.com/doomzday403/admin-console/internal/pkg/metrics"
)

const (
	msgLoadStaffFailed    = "Failed to load staff members"
	msgCreateStaffFailed  = "Failed to create staff member"
	msgUpdateStaffFailed  = "Failed to update staff member"
	msgDeleteStaffFailed  = "Failed to delete staff member"
	msgChangeRoleFailed   = "Failed to change role"
	msgActivityLoadFailed = "Failed to fetch activity logs"
	msgStaffNotFound      = "Staff member not found"
	msgForbidden          = "You do not have permission to perform this action"
	msgUsernameTaken      = "Username is already taken"
	msgEmailTaken         = "Email is already in use"
)

// DirectoryState is a snapshot of the directory store.
type DirectoryState struct {
	Staff        []domain.StaffMember      `json:"staff"`
	ActivityLogs []domain.ActivityLogEntry `json:"activity_logs"`
	Status
}

type directoryData struct {
	staff    []*domain.StaffMember      // insertion order
	activity []*domain.ActivityLogEntry // newest first
}

// DirectoryStore holds the roster and the activity log as seen by one session.
// Every mutation is attributed to the session identity and enforced against
// the staff policy.
type DirectoryStore struct {
	staff    ports.StaffRepository
	activity ports.ActivityRepository
	identity ports.Identity
	opts     Options
	log      zerolog.Logger

	g guarded[directoryData]
}

func NewDirectoryStore(b Backends, identity ports.Identity, opts Options, log zerolog.Logger) *DirectoryStore {
	return &DirectoryStore{
		staff:    b.Staff,
		activity: b.Activity,
		identity: identity,
		opts:     opts.withDefaults(),
		log:      log,
	}
}

// Load replaces the roster and the activity log with the repository contents.
func (s *DirectoryStore) Load(ctx context.Context) error {
	s.g.begin()

	if err := s.g.wait(ctx, s.opts.Latency); err != nil {
		return s.g.fail(err, msgLoadStaffFailed)
	}

	staff, err := s.staff.List(ctx)
	if err != nil {
		return s.g.fail(fmt.Errorf("list staff: %w", err), msgLoadStaffFailed)
	}
	entries, err := s.activity.List(ctx, "")
	if err != nil {
		return s.g.fail(fmt.Errorf("list activity: %w", err), msgLoadStaffFailed)
	}

	return s.g.commit(func(d *directoryData) {
		d.staff = staff
		d.activity = entries
	})
}

// CreateStaffMember adds a member to the roster. Input problems, including a
// taken username or email, come back as domain.FieldErrors.
func (s *DirectoryStore) CreateStaffMember(ctx context.Context, in domain.NewStaffMember) (*domain.StaffMember, error) {
	actor, ok := s.identity.CurrentUser()
	if !ok {
		return nil, domain.ErrUnauthenticated
	}

	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if in.Role == "" {
		in.Role = domain.RoleSupport
	}

	fe := domain.FieldErrors{}
	if err := sharedValidator.Struct(in); err != nil {
		verr, ok := domain.AsFieldErrors(err)
		if !ok {
			return nil, err
		}
		fe.Merge(verr)
	}
	taken, err := s.uniqueness(ctx, in.Username, in.Email)
	if err != nil {
		return nil, err
	}
	fe.Merge(taken)
	if len(fe) > 0 {
		return nil, fe
	}

	if !domain.CanCreate(actor, in.Role) {
		return nil, domain.ErrForbidden
	}

	s.g.begin()

	if err := s.g.wait(ctx, s.opts.Latency); err != nil {
		return nil, s.g.fail(err, msgCreateStaffFailed)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, s.g.fail(fmt.Errorf("hash password: %w", err), msgCreateStaffFailed)
	}

	now := utcNow()
	member := &domain.StaffMember{
		User: domain.User{
			ID:        newID(),
			Username:  in.Username,
			Email:     in.Email,
			Role:      in.Role,
			FirstName: in.FirstName,
			LastName:  in.LastName,
			Avatar:    domain.AvatarURL(in.Username),
			CreatedAt: now,
			UpdatedAt: now,
		},
		IsActive:     true,
		CreatedBy:    actor.ID,
		Permissions:  []string{},
		Department:   in.Department,
		Position:     in.Position,
		PasswordHash: string(hash),
	}

	if err := s.staff.Create(ctx, member); err != nil {
		if errors.Is(err, domain.ErrStaffExists) {
			return nil, s.collision(ctx, in.Username, in.Email)
		}
		return nil, s.g.fail(fmt.Errorf("create staff: %w", err), msgCreateStaffFailed)
	}

	entry := recordActivity(ctx, s.activity, s.log, actor, domain.ActionCreateUser, "Created user "+member.Username, now)
	if err := s.g.commit(func(d *directoryData) {
		d.staff = append(d.staff, member.Clone())
		d.prepend(entry)
	}); err != nil {
		return nil, err
	}

	metrics.StaffMutations.WithLabelValues(domain.ActionCreateUser).Inc()
	s.log.Info().Str("actor", actor.ID).Str("user_id", member.ID).Str("role", string(member.Role)).Msg("staff member created")
	return member.Clone(), nil
}

// uniqueness reports username and email collisions against the repository,
// which other sessions write to as well.
func (s *DirectoryStore) uniqueness(ctx context.Context, username, email string) (domain.FieldErrors, error) {
	fe := domain.FieldErrors{}
	if username != "" {
		_, err := s.staff.FindByUsername(ctx, username)
		switch {
		case err == nil:
			fe["username"] = msgUsernameTaken
		case !errors.Is(err, domain.ErrStaffNotFound):
			return nil, fmt.Errorf("check username: %w", err)
		}
	}
	if email != "" {
		_, err := s.staff.FindByEmail(ctx, email)
		switch {
		case err == nil:
			fe["email"] = msgEmailTaken
		case !errors.Is(err, domain.ErrStaffNotFound):
			return nil, fmt.Errorf("check email: %w", err)
		}
	}
	return fe, nil
}

// collision turns a create that lost a uniqueness race into field errors.
func (s *DirectoryStore) collision(ctx context.Context, username, email string) error {
	fe, err := s.uniqueness(ctx, username, email)
	if err != nil || len(fe) == 0 {
		fe = domain.FieldErrors{"username": msgUsernameTaken}
	}
	if err := s.g.commit(nil); err != nil {
		return err
	}
	return fe
}

// UpdateStaffMember merges the provided fields into the member named by req.ID.
func (s *DirectoryStore) UpdateStaffMember(ctx context.Context, req domain.StaffUpdateRequest) (*domain.StaffMember, error) {
	actor, ok := s.identity.CurrentUser()
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	if err := sharedValidator.Struct(req); err != nil {
		return nil, err
	}

	s.g.begin()

	if err := s.g.wait(ctx, s.opts.Latency); err != nil {
		return nil, s.g.fail(err, msgUpdateStaffFailed)
	}

	member, err := s.find(ctx, req.ID, msgUpdateStaffFailed)
	if err != nil {
		return nil, err
	}
	if !domain.CanEdit(actor, member, req) {
		return nil, s.g.fail(domain.ErrForbidden, msgForbidden)
	}
	if req.Role != nil && *req.Role != member.Role && !domain.CanAssignRole(actor, member, *req.Role) {
		return nil, s.g.fail(domain.ErrForbidden, msgForbidden)
	}

	now := utcNow()
	member.Apply(req)
	member.UpdatedAt = now
	if err := s.staff.Update(ctx, member); err != nil {
		return nil, s.g.fail(fmt.Errorf("update staff: %w", err), msgUpdateStaffFailed)
	}

	entry := recordActivity(ctx, s.activity, s.log, actor, domain.ActionUpdateUser, "Updated user "+member.Username, now)
	if err := s.g.commit(func(d *directoryData) {
		d.replace(member.Clone())
		d.prepend(entry)
	}); err != nil {
		return nil, err
	}

	if member.ID == actor.ID {
		s.identity.UpdateUser(domain.UserPatch{FirstName: req.FirstName, LastName: req.LastName})
	}

	metrics.StaffMutations.WithLabelValues(domain.ActionUpdateUser).Inc()
	s.log.Info().Str("actor", actor.ID).Str("user_id", member.ID).Msg("staff member updated")
	return member.Clone(), nil
}

// DeleteStaffMember hard-removes a member. Messages that reference it are
// left alone and resolve to the unknown-user fallback afterwards.
func (s *DirectoryStore) DeleteStaffMember(ctx context.Context, id string) error {
	actor, ok := s.identity.CurrentUser()
	if !ok {
		return domain.ErrUnauthenticated
	}

	s.g.begin()

	if err := s.g.wait(ctx, s.opts.Latency); err != nil {
		return s.g.fail(err, msgDeleteStaffFailed)
	}

	member, err := s.find(ctx, id, msgDeleteStaffFailed)
	if err != nil {
		return err
	}
	if !domain.CanDelete(actor, member) {
		return s.g.fail(domain.ErrForbidden, msgForbidden)
	}

	if err := s.staff.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrStaffNotFound) {
			return s.g.fail(err, msgStaffNotFound)
		}
		return s.g.fail(fmt.Errorf("delete staff: %w", err), msgDeleteStaffFailed)
	}

	entry := recordActivity(ctx, s.activity, s.log, actor, domain.ActionDeleteUser, "Deleted user "+member.Username, utcNow())
	if err := s.g.commit(func(d *directoryData) {
		d.staff = slices.DeleteFunc(d.staff, func(m *domain.StaffMember) bool { return m.ID == id })
		d.prepend(entry)
	}); err != nil {
		return err
	}

	metrics.StaffMutations.WithLabelValues(domain.ActionDeleteUser).Inc()
	s.log.Info().Str("actor", actor.ID).Str("user_id", id).Msg("staff member deleted")
	return nil
}

type roleChange struct {
	Role domain.Role `json:"role" validate:"required,role"`
}

// ChangeRole moves a member to role and records the old and new role.
func (s *DirectoryStore) ChangeRole(ctx context.Context, id string, role domain.Role) (*domain.StaffMember, error) {
	actor, ok := s.identity.CurrentUser()
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	if err := sharedValidator.Struct(roleChange{Role: role}); err != nil {
		return nil, err
	}

	s.g.begin()

	if err := s.g.wait(ctx, s.opts.Latency); err != nil {
		return nil, s.g.fail(err, msgChangeRoleFailed)
	}

	member, err := s.find(ctx, id, msgChangeRoleFailed)
	if err != nil {
		return nil, err
	}
	if !domain.CanAssignRole(actor, member, role) {
		return nil, s.g.fail(domain.ErrForbidden, msgForbidden)
	}

	now := utcNow()
	old := member.Role
	member.Role = role
	member.UpdatedAt = now
	if err := s.staff.Update(ctx, member); err != nil {
		return nil, s.g.fail(fmt.Errorf("change role: %w", err), msgChangeRoleFailed)
	}

	details := fmt.Sprintf("Changed role of %s from %s to %s", member.Username, old, role)
	entry := recordActivity(ctx, s.activity, s.log, actor, domain.ActionChangeRole, details, now)
	if err := s.g.commit(func(d *directoryData) {
		d.replace(member.Clone())
		d.prepend(entry)
	}); err != nil {
		return nil, err
	}

	metrics.StaffMutations.WithLabelValues(domain.ActionChangeRole).Inc()
	s.log.Info().Str("actor", actor.ID).Str("user_id", id).Str("from", string(old)).Str("to", string(role)).Msg("role changed")
	return member.Clone(), nil
}

// find loads a member from the repository, recording a failure in state.
func (s *DirectoryStore) find(ctx context.Context, id, msg string) (*domain.StaffMember, error) {
	member, err := s.staff.FindByID(ctx, id)
	if errors.Is(err, domain.ErrStaffNotFound) {
		return nil, s.g.fail(err, msgStaffNotFound)
	}
	if err != nil {
		return nil, s.g.fail(fmt.Errorf("find staff %s: %w", id, err), msg)
	}
	return member, nil
}

// GetStaffMember looks id up in the loaded roster.
func (s *DirectoryStore) GetStaffMember(id string) (*domain.StaffMember, bool) {
	var out *domain.StaffMember
	s.g.view(func(d *directoryData, _ Status) {
		for _, m := range d.staff {
			if m.ID == id {
				out = m.Clone()
				return
			}
		}
	})
	return out, out != nil
}

// GetActivityLogs fetches the activity log, newest first. A non-empty staffID
// restricts the result to that actor; the full log held in state is only
// refreshed by an unfiltered call.
func (s *DirectoryStore) GetActivityLogs(ctx context.Context, staffID string) ([]domain.ActivityLogEntry, error) {
	s.g.begin()

	if err := s.g.wait(ctx, s.opts.Latency); err != nil {
		return nil, s.g.fail(err, msgActivityLoadFailed)
	}

	entries, err := s.activity.List(ctx, staffID)
	if err != nil {
		return nil, s.g.fail(fmt.Errorf("list activity: %w", err), msgActivityLoadFailed)
	}

	if err := s.g.commit(func(d *directoryData) {
		if staffID == "" {
			d.activity = entries
		}
	}); err != nil {
		return nil, err
	}
	return derefAll(entries), nil
}

// Lookup reads id from the repository and brings the loaded roster in line
// with it: a member created elsewhere is added, one deleted elsewhere is
// dropped.
func (s *DirectoryStore) Lookup(ctx context.Context, id string) (*domain.StaffMember, error) {
	member, err := s.staff.FindByID(ctx, id)
	if errors.Is(err, domain.ErrStaffNotFound) {
		s.sync(id, nil)
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("find staff %s: %w", id, err)
	}
	s.sync(id, member.Clone())
	return member, nil
}

// sync stores m as the roster entry for id, or removes it when m is nil. It
// leaves the store status alone.
func (s *DirectoryStore) sync(id string, m *domain.StaffMember) {
	s.g.mu.Lock()
	defer s.g.mu.Unlock()
	if s.g.closed {
		return
	}
	d := &s.g.data
	i := slices.IndexFunc(d.staff, func(x *domain.StaffMember) bool { return x.ID == id })
	switch {
	case m == nil && i >= 0:
		d.staff = slices.Delete(d.staff, i, i+1)
	case m != nil && i >= 0:
		d.staff[i] = m
	case m != nil:
		d.staff = append(d.staff, m)
	}
}

// Resolve returns display metadata for id, or the unknown-user fallback. The
// repository is authoritative; the loaded roster answers only when it cannot
// be reached.
func (s *DirectoryStore) Resolve(ctx context.Context, id string) domain.Contact {
	m, err := s.Lookup(ctx, id)
	if err != nil && !errors.Is(err, domain.ErrStaffNotFound) {
		s.log.Warn().Err(err).Str("user_id", id).Msg("resolving from the loaded roster")
		m, _ = s.GetStaffMember(id)
	}
	return domain.ContactOf(id, m)
}

// CountByRole tallies the loaded roster per role.
func (s *DirectoryStore) CountByRole() map[domain.Role]int {
	var counts map[domain.Role]int
	s.g.view(func(d *directoryData, _ Status) {
		counts = domain.CountByRole(derefAll(d.staff))
	})
	return counts
}

// RecentActivity returns at most n of the newest activity entries.
func (s *DirectoryStore) RecentActivity(n int) []domain.ActivityLogEntry {
	var out []domain.ActivityLogEntry
	s.g.view(func(d *directoryData, _ Status) {
		entries := d.activity
		if n >= 0 && len(entries) > n {
			entries = entries[:n]
		}
		out = derefAll(entries)
	})
	return out
}

// Search filters the loaded roster by username, email, name or role.
func (s *DirectoryStore) Search(query string) []domain.StaffMember {
	var out []domain.StaffMember
	s.g.view(func(d *directoryData, _ Status) {
		for _, m := range d.staff {
			if m.MatchesQuery(query) {
				out = append(out, *m.Clone())
			}
		}
	})
	return out
}

// Contacts lists the members the session identity can message.
func (s *DirectoryStore) Contacts(query string) []domain.Contact {
	me, _ := s.identity.CurrentUser()
	var out []domain.Contact
	for _, m := range s.Search(query) {
		if me != nil && m.ID == me.ID {
			continue
		}
		out = append(out, domain.ContactOf(m.ID, &m))
	}
	return out
}

// State returns a snapshot of the store.
func (s *DirectoryStore) State() DirectoryState {
	var st DirectoryState
	s.g.view(func(d *directoryData, status Status) {
		st.Staff = make([]domain.StaffMember, 0, len(d.staff))
		for _, m := range d.staff {
			st.Staff = append(st.Staff, *m.Clone())
		}
		st.ActivityLogs = derefAll(d.activity)
		st.Status = status
	})
	return st
}

// Close detaches the store from its session.
func (s *DirectoryStore) Close() {
	s.g.close()
}

func (d *directoryData) prepend(e *domain.ActivityLogEntry) {
	if e == nil {
		return
	}
	d.activity = append([]*domain.ActivityLogEntry{e}, d.activity...)
}

func (d *directoryData) replace(m *domain.StaffMember) {
	for i := range d.staff {
		if d.staff[i].ID == m.ID {
			d.staff[i] = m
			return
		}
	}
}

// derefAll copies the values behind ptrs.
func derefAll[T any](ptrs []*T) []T {
	out := make([]T, 0, len(ptrs))
	for _, p := range ptrs {
		out = append(out, *p)
	}
	return out
}
