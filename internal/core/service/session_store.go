package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/doomzday403/admin-console/internal/core/domain"
	"github.com/doomzday403/admin-console/internal/core/ports"
	"github.com/doomzday403/admin-console/internal/pkg/metrics"
)

const (
	msgInvalidCredentials = "Invalid username or password"
	msgLoginFailed        = "An error occurred during login"
	msgForgotFailed       = "Failed to process password reset request"
	msgInvalidResetToken  = "Invalid or expired reset token"
	msgResetFailed        = "Failed to reset password"
)

// SessionState is a snapshot of the session store.
type SessionState struct {
	User            *domain.User `json:"user"`
	IsAuthenticated bool         `json:"is_authenticated"`
	Status
}

type sessionData struct {
	user *domain.User
}

// SessionStore holds the authenticated identity of one session and runs the
// login and password reset flows.
type SessionStore struct {
	staff    ports.StaffRepository
	activity ports.ActivityRepository
	tokens   ports.ResetTokenStore
	throttle ports.ResetThrottle
	mail     ports.MailDispatcher
	opts     Options
	log      zerolog.Logger

	g guarded[sessionData]
}

func NewSessionStore(b Backends, opts Options, log zerolog.Logger) *SessionStore {
	return &SessionStore{
		staff:    b.Staff,
		activity: b.Activity,
		tokens:   b.ResetTokens,
		throttle: b.ResetThrottle,
		mail:     b.Mail,
		opts:     opts.withDefaults(),
		log:      log,
	}
}

// Login authenticates username and password against the roster. The outcome
// is recorded in the store state; the returned error mirrors it.
func (s *SessionStore) Login(ctx context.Context, creds domain.Credentials) error {
	s.g.begin()

	username := strings.TrimSpace(creds.Username)
	if username == "" || creds.Password == "" {
		metrics.LoginAttempts.WithLabelValues("rejected").Inc()
		return s.g.fail(domain.ErrInvalidCredentials, msgInvalidCredentials)
	}

	if err := s.g.wait(ctx, s.opts.Latency); err != nil {
		return s.g.fail(err, msgLoginFailed)
	}

	member, err := s.staff.FindByUsername(ctx, username)
	if errors.Is(err, domain.ErrStaffNotFound) {
		metrics.LoginAttempts.WithLabelValues("rejected").Inc()
		return s.g.fail(domain.ErrInvalidCredentials, msgInvalidCredentials)
	}
	if err != nil {
		s.log.Error().Err(err).Str("username", username).Msg("login lookup failed")
		return s.g.fail(fmt.Errorf("login: %w", err), msgLoginFailed)
	}
	if !member.IsActive || bcrypt.CompareHashAndPassword([]byte(member.PasswordHash), []byte(creds.Password)) != nil {
		metrics.LoginAttempts.WithLabelValues("rejected").Inc()
		return s.g.fail(domain.ErrInvalidCredentials, msgInvalidCredentials)
	}

	now := utcNow()
	member.LastLogin = &now
	if err := s.staff.Update(ctx, member); err != nil {
		s.log.Warn().Err(err).Str("user_id", member.ID).Msg("failed to persist last login")
	}

	user := member.User
	if err := s.g.commit(func(d *sessionData) { d.user = &user }); err != nil {
		return err
	}
	recordActivity(ctx, s.activity, s.log, &user, domain.ActionLogin, "User logged in", now)
	metrics.LoginAttempts.WithLabelValues("success").Inc()

	s.log.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("user logged in")
	return nil
}

// Logout clears the identity. It never fails.
func (s *SessionStore) Logout() {
	s.g.mu.Lock()
	s.g.data.user = nil
	s.g.status = Status{}
	s.g.mu.Unlock()
}

// ForgotPassword always ends in a success state. A reset mail is queued only
// when email belongs to an active member and the address is not throttled.
func (s *SessionStore) ForgotPassword(ctx context.Context, email string) error {
	s.g.begin()

	if err := s.g.wait(ctx, s.opts.Latency); err != nil {
		return s.g.fail(err, msgForgotFailed)
	}

	if err := s.issueReset(ctx, strings.TrimSpace(email)); err != nil {
		s.log.Error().Err(err).Msg("password reset request failed")
	}
	return s.g.commit(nil)
}

func (s *SessionStore) issueReset(ctx context.Context, email string) error {
	if email == "" {
		return nil
	}

	member, err := s.staff.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrStaffNotFound) {
		s.log.Debug().Msg("reset requested for unknown address")
		return nil
	}
	if err != nil {
		return fmt.Errorf("find by email: %w", err)
	}
	if !member.IsActive {
		return nil
	}

	ok, err := s.throttle.Allow(ctx, strings.ToLower(email))
	if err != nil {
		return fmt.Errorf("reset throttle: %w", err)
	}
	if !ok {
		s.log.Info().Str("user_id", member.ID).Msg("reset mail throttled")
		return nil
	}

	token, err := newResetToken()
	if err != nil {
		return err
	}
	if err := s.tokens.Save(ctx, token, member.ID, s.opts.ResetTokenTTL); err != nil {
		return fmt.Errorf("save reset token: %w", err)
	}

	s.mail.Enqueue(domain.MailMessage{
		Type: domain.MailResetPassword,
		To:   member.Email,
		Data: domain.ResetPasswordMailData{
			Name:       member.DisplayName(),
			Token:      token,
			Expiration: int(s.opts.ResetTokenTTL.Minutes()),
		},
	})
	s.log.Info().Str("user_id", member.ID).Msg("reset mail queued")
	return nil
}

// ResetPassword consumes a reset token and replaces the owner's password.
// Invalid input is reported as domain.FieldErrors without touching state.
func (s *SessionStore) ResetPassword(ctx context.Context, req domain.ResetPasswordRequest) error {
	if err := sharedValidator.Struct(req); err != nil {
		return err
	}

	s.g.begin()

	if err := s.g.wait(ctx, s.opts.Latency); err != nil {
		return s.g.fail(err, msgResetFailed)
	}

	userID, err := s.tokens.Consume(ctx, req.Token)
	if errors.Is(err, domain.ErrInvalidResetToken) {
		return s.g.fail(err, msgInvalidResetToken)
	}
	if err != nil {
		return s.g.fail(fmt.Errorf("consume reset token: %w", err), msgResetFailed)
	}

	member, err := s.staff.FindByID(ctx, userID)
	if errors.Is(err, domain.ErrStaffNotFound) {
		return s.g.fail(domain.ErrInvalidResetToken, msgInvalidResetToken)
	}
	if err != nil {
		return s.g.fail(fmt.Errorf("reset password: %w", err), msgResetFailed)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return s.g.fail(fmt.Errorf("hash password: %w", err), msgResetFailed)
	}

	now := utcNow()
	member.PasswordHash = string(hash)
	member.UpdatedAt = now
	if err := s.staff.Update(ctx, member); err != nil {
		return s.g.fail(fmt.Errorf("reset password: %w", err), msgResetFailed)
	}

	if err := s.g.commit(nil); err != nil {
		return err
	}
	recordActivity(ctx, s.activity, s.log, &member.User, domain.ActionResetPassword, "Password reset", now)
	s.log.Info().Str("user_id", member.ID).Msg("password reset")
	return nil
}

// UpdateUser merges patch into the current identity. It does nothing when no
// one is signed in.
func (s *SessionStore) UpdateUser(patch domain.UserPatch) {
	s.g.mu.Lock()
	defer s.g.mu.Unlock()
	if s.g.closed || s.g.data.user == nil {
		return
	}
	u := *s.g.data.user
	patch.Apply(&u)
	s.g.data.user = &u
}

// CurrentUser returns a copy of the signed-in identity.
func (s *SessionStore) CurrentUser() (*domain.User, bool) {
	var out *domain.User
	s.g.view(func(d *sessionData, _ Status) {
		if d.user != nil {
			u := *d.user
			out = &u
		}
	})
	return out, out != nil
}

// State returns a snapshot of the store.
func (s *SessionStore) State() SessionState {
	var st SessionState
	s.g.view(func(d *sessionData, status Status) {
		if d.user != nil {
			u := *d.user
			st.User = &u
		}
		st.IsAuthenticated = d.user != nil
		st.Status = status
	})
	return st
}

// Close detaches the store from its session. Later updates are discarded.
func (s *SessionStore) Close() {
	s.g.close()
}
