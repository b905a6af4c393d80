package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/doomzday403/admin-console/internal/core/domain"
)

// SeedOwner is the username of the seeded OWNER account.
const SeedOwner = "DD403"

// Seed fills empty repositories with the starter roster, conversations,
// notifications and activity. It does nothing when the roster has members.
// Every seeded account gets password.
func Seed(ctx context.Context, b Backends, password string, now time.Time, log zerolog.Logger) error {
	existing, err := b.Staff.List(ctx)
	if err != nil {
		return fmt.Errorf("seed: list staff: %w", err)
	}
	if len(existing) > 0 {
		log.Debug().Int("staff", len(existing)).Msg("roster present, skipping seed")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed: hash password: %w", err)
	}

	created := now.AddDate(0, 0, -30)
	member := func(id, username, email string, role domain.Role, first, last, createdBy string) *domain.StaffMember {
		return &domain.StaffMember{
			User: domain.User{
				ID:        id,
				Username:  username,
				Email:     email,
				Role:      role,
				FirstName: first,
				LastName:  last,
				Avatar:    domain.AvatarURL(username),
				CreatedAt: created,
				UpdatedAt: created,
			},
			IsActive:     true,
			CreatedBy:    createdBy,
			Permissions:  []string{},
			PasswordHash: string(hash),
		}
	}

	owner := member("1", SeedOwner, "admin@example.com", domain.RoleOwner, "Admin", "User", "")
	owner.Permissions = []string{"*"}
	manager := member("2", "manager1", "manager@example.com", domain.RoleManager, "Jane", "Doe", "1")
	manager.Department, manager.Position = "Operations", "Senior Manager"
	developer := member("3", "developer1", "developer@example.com", domain.RoleDeveloper, "John", "Smith", "2")
	developer.Department, developer.Position = "Engineering", "Senior Developer"

	for _, m := range []*domain.StaffMember{owner, manager, developer} {
		if err := b.Staff.Create(ctx, m); err != nil {
			return fmt.Errorf("seed: staff %s: %w", m.Username, err)
		}
	}

	messages := []*domain.Message{
		{
			ID: "1", SenderID: "3", SenderName: "John Smith", SenderAvatar: developer.Avatar,
			RecipientID: "1", RecipientName: "Admin User",
			Content: "The latest deployment has some issues. Can we discuss?", IsRead: true,
			CreatedAt: now.Add(-24 * time.Hour), UpdatedAt: now.Add(-24 * time.Hour),
		},
		{
			ID: "2", SenderID: "2", SenderName: "Jane Doe", SenderAvatar: manager.Avatar,
			RecipientID: "1", RecipientName: "Admin User",
			Content:   "Hello, I need help with the new project setup.",
			CreatedAt: now.Add(-2 * time.Hour), UpdatedAt: now.Add(-2 * time.Hour),
		},
		{
			ID: "3", SenderID: "1", SenderName: "Admin User", SenderAvatar: owner.Avatar,
			RecipientID: "2", RecipientName: "Jane Doe",
			Content: "I'll set up a meeting to discuss the project tomorrow.", IsRead: true,
			CreatedAt: now.Add(-time.Hour), UpdatedAt: now.Add(-time.Hour),
		},
	}
	for _, m := range messages {
		if err := b.Messages.Create(ctx, m); err != nil {
			return fmt.Errorf("seed: message %s: %w", m.ID, err)
		}
	}

	notifications := []*domain.Notification{
		{
			ID: "1", UserID: "1", Title: "New message",
			Message: "You have a new message from Jane Doe", Type: domain.NotificationInfo,
			Link: messagesLink, CreatedAt: now.Add(-2 * time.Hour),
		},
		{
			ID: "2", UserID: "1", Title: "System update",
			Message: "The system will be undergoing maintenance tonight at 2 AM", Type: domain.NotificationWarning,
			CreatedAt: now.Add(-3 * time.Hour),
		},
	}
	for _, n := range notifications {
		if err := b.Notifications.Create(ctx, n); err != nil {
			return fmt.Errorf("seed: notification %s: %w", n.ID, err)
		}
	}

	activity := []*domain.ActivityLogEntry{
		{
			ID: "2", ActorID: "2", ActorUsername: "manager1", Action: domain.ActionCreateUser,
			Details: "Created user developer1", Timestamp: now.AddDate(0, 0, -14),
			IP: "192.168.1.2", UserAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7)",
		},
		{
			ID: "1", ActorID: "1", ActorUsername: SeedOwner, Action: domain.ActionCreateUser,
			Details: "Created user manager1", Timestamp: now.AddDate(0, 0, -7),
			IP: "192.168.1.1", UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64)",
		},
		{
			ID: "3", ActorID: "1", ActorUsername: SeedOwner, Action: domain.ActionLogin,
			Details: "User logged in", Timestamp: now,
			IP: "192.168.1.1", UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64)",
		},
	}
	for _, e := range activity {
		if err := b.Activity.Append(ctx, e); err != nil {
			return fmt.Errorf("seed: activity %s: %w", e.ID, err)
		}
	}

	log.Info().Int("staff", 3).Int("messages", len(messages)).Msg("seed data loaded")
	return nil
}
