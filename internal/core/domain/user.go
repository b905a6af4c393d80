package domain

import (
	"net/url"
	"time"
)

// Role is one of the fixed staff roles.
type Role string

const (
	RoleOwner      Role = "OWNER"
	RoleManager    Role = "MANAGER"
	RoleSupervisor Role = "SUPERVISOR"
	RoleDeveloper  Role = "DEVELOPER"
	RoleSupport    Role = "SUPPORT"
)

// Roles lists every role in display order.
var Roles = []Role{RoleOwner, RoleManager, RoleSupervisor, RoleDeveloper, RoleSupport}

// Valid reports whether r belongs to the closed role set.
func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

const avatarBaseURL = "https://api.dicebear.com/7.x/shapes/svg?seed="

// AvatarURL derives the placeholder avatar reference for a username.
func AvatarURL(username string) string {
	return avatarBaseURL + url.QueryEscape(username)
}

// User models an authenticated identity.
type User struct {
	ID        string     `json:"id" bson:"_id"`
	Username  string     `json:"username" bson:"username"`
	Email     string     `json:"email" bson:"email"`
	Role      Role       `json:"role" bson:"role"`
	FirstName string     `json:"first_name,omitempty" bson:"first_name,omitempty"`
	LastName  string     `json:"last_name,omitempty" bson:"last_name,omitempty"`
	Avatar    string     `json:"avatar,omitempty" bson:"avatar,omitempty"`
	CreatedAt time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" bson:"updated_at"`
	LastLogin *time.Time `json:"last_login,omitempty" bson:"last_login,omitempty"`
}

// DisplayName is "First Last" when both names are set, otherwise the username.
func (u User) DisplayName() string {
	if u.FirstName != "" && u.LastName != "" {
		return u.FirstName + " " + u.LastName
	}
	return u.Username
}

// StaffMember is a roster entry. It carries everything a User does.
type StaffMember struct {
	User         `bson:",inline"`
	IsActive     bool     `json:"is_active" bson:"is_active"`
	CreatedBy    string   `json:"created_by" bson:"created_by"`
	Permissions  []string `json:"permissions" bson:"permissions"`
	Department   string   `json:"department,omitempty" bson:"department,omitempty"`
	Position     string   `json:"position,omitempty" bson:"position,omitempty"`
	PasswordHash string   `json:"-" bson:"password_hash"`
}

// Clone returns a copy that shares no slices or pointers with m.
func (m *StaffMember) Clone() *StaffMember {
	if m == nil {
		return nil
	}
	c := *m
	if m.Permissions != nil {
		c.Permissions = append([]string(nil), m.Permissions...)
	}
	if m.LastLogin != nil {
		t := *m.LastLogin
		c.LastLogin = &t
	}
	return &c
}

// NewStaffMember is the input of a roster create.
type NewStaffMember struct {
	Username        string `json:"username" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Role            Role   `json:"role" validate:"required,role"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" validate:"eqfield=Password"`
	Department      string `json:"department"`
	Position        string `json:"position"`
}

// StaffUpdateRequest is a shallow patch; nil fields are left untouched.
type StaffUpdateRequest struct {
	ID          string    `json:"id" validate:"required"`
	Role        *Role     `json:"role,omitempty" validate:"omitempty,role"`
	FirstName   *string   `json:"first_name,omitempty"`
	LastName    *string   `json:"last_name,omitempty"`
	IsActive    *bool     `json:"is_active,omitempty"`
	Department  *string   `json:"department,omitempty"`
	Position    *string   `json:"position,omitempty"`
	Permissions *[]string `json:"permissions,omitempty"`
}

// Apply merges the non-nil fields of req into m.
func (m *StaffMember) Apply(req StaffUpdateRequest) {
	if req.Role != nil {
		m.Role = *req.Role
	}
	if req.FirstName != nil {
		m.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		m.LastName = *req.LastName
	}
	if req.IsActive != nil {
		m.IsActive = *req.IsActive
	}
	if req.Department != nil {
		m.Department = *req.Department
	}
	if req.Position != nil {
		m.Position = *req.Position
	}
	if req.Permissions != nil {
		m.Permissions = append([]string{}, (*req.Permissions)...)
	}
}

// UserPatch is merged into the session identity by UpdateUser.
type UserPatch struct {
	Email     *string `json:"email,omitempty" validate:"omitempty,email"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Avatar    *string `json:"avatar,omitempty" validate:"omitempty,url"`
}

// Apply merges the non-nil fields of p into u.
func (p UserPatch) Apply(u *User) {
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.Avatar != nil {
		u.Avatar = *p.Avatar
	}
}

// Credentials are submitted on login.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ResetPasswordRequest completes a forgotten-password flow.
type ResetPasswordRequest struct {
	Token           string `json:"token" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" validate:"eqfield=NewPassword"`
}
