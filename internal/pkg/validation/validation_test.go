package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doomzday403/admin-console/internal/core/domain"
)

func TestStruct_NewStaffMemberFieldErrors(t *testing.T) {
	v := New()

	err := v.Struct(domain.NewStaffMember{
		Username:        "",
		Password:        "abc",
		ConfirmPassword: "abc",
		Role:            domain.RoleSupport,
	})

	fe, ok := domain.AsFieldErrors(err)
	require.True(t, ok, "expected field errors, got %v", err)
	assert.Equal(t, "Username is required", fe["username"])
	assert.Equal(t, "Password must be at least 8 characters", fe["password"])
	assert.Equal(t, "Email is required", fe["email"])
	assert.NotContains(t, fe, "confirm_password")
}

func TestStruct_MismatchAndBadEmail(t *testing.T) {
	v := New()

	err := v.Struct(domain.NewStaffMember{
		Username:        "newbie",
		Email:           "not-an-email",
		Role:            domain.RoleSupport,
		Password:        "longenough",
		ConfirmPassword: "different1",
	})

	fe, ok := domain.AsFieldErrors(err)
	require.True(t, ok)
	assert.Equal(t, "Email is invalid", fe["email"])
	assert.Equal(t, "Passwords do not match", fe["confirm_password"])
	assert.Len(t, fe, 2)
}

func TestStruct_UnknownRole(t *testing.T) {
	v := New()

	err := v.Struct(domain.NewStaffMember{
		Username:        "newbie",
		Email:           "newbie@example.com",
		Role:            domain.Role("ADMIN"),
		Password:        "longenough",
		ConfirmPassword: "longenough",
	})

	fe, ok := domain.AsFieldErrors(err)
	require.True(t, ok)
	assert.Contains(t, fe["role"], "OWNER")
}

func TestStruct_Valid(t *testing.T) {
	v := New()

	err := v.Struct(domain.NewStaffMember{
		Username:        "newbie",
		Email:           "newbie@example.com",
		Role:            domain.RoleDeveloper,
		Password:        "longenough",
		ConfirmPassword: "longenough",
	})

	assert.NoError(t, err)
}

func TestStruct_NestedAttachmentKey(t *testing.T) {
	v := New()

	err := v.Struct(domain.NewMessage{
		RecipientID: "2",
		Content:     "hi",
		Attachments: []domain.AttachmentInput{{FileName: "a.txt", FileURL: "nope"}},
	})

	fe, ok := domain.AsFieldErrors(err)
	require.True(t, ok)
	assert.Equal(t, "File URL is invalid", fe["attachments[0].file_url"])
}
