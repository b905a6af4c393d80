package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func msg(id, from, to string, at time.Time, read bool) Message {
	return Message{ID: id, SenderID: from, RecipientID: to, CreatedAt: at, UpdatedAt: at, IsRead: read}
}

func TestConversations_GroupsByCounterpartNewestFirst(t *testing.T) {
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	msgs := []Message{
		msg("1", "A", "B", base, true),
		msg("2", "B", "A", base.Add(time.Minute), false),
		msg("3", "A", "C", base.Add(2*time.Minute), true),
		msg("4", "B", "C", base.Add(3*time.Minute), false),
	}

	got := Conversations(msgs, "A")

	require.Len(t, got, 2)
	assert.Equal(t, "C", got[0].CounterpartID)
	assert.Equal(t, "3", got[0].LastMessage.ID)
	assert.Equal(t, "B", got[1].CounterpartID)
	assert.Equal(t, "2", got[1].LastMessage.ID)
	assert.Equal(t, 1, got[1].Unread)
	assert.Equal(t, 0, got[0].Unread)
}

func TestConversations_OutOfOrderInput(t *testing.T) {
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	msgs := []Message{
		msg("late", "B", "A", base.Add(time.Hour), true),
		msg("early", "A", "B", base, true),
	}

	got := Conversations(msgs, "A")

	require.Len(t, got, 1)
	assert.Equal(t, "late", got[0].LastMessage.ID)
}

func TestThread_AscendingAndScoped(t *testing.T) {
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	msgs := []Message{
		msg("3", "A", "B", base.Add(2*time.Minute), true),
		msg("1", "B", "A", base, true),
		msg("x", "A", "C", base.Add(time.Minute), true),
		msg("2", "A", "B", base.Add(time.Minute), true),
	}

	got := Thread(msgs, "A", "B")

	ids := make([]string, 0, len(got))
	for _, m := range got {
		ids = append(ids, m.ID)
	}
	assert.Equal(t, []string{"1", "2", "3"}, ids)
}

func TestUnreadCounters(t *testing.T) {
	now := time.Now()
	msgs := []Message{
		msg("1", "B", "A", now, false),
		msg("2", "B", "A", now, true),
		msg("3", "C", "A", now, false),
		msg("4", "A", "B", now, false),
	}

	assert.Equal(t, 1, UnreadFrom(msgs, "A", "B"))
	assert.Equal(t, 1, UnreadFrom(msgs, "A", "C"))
	assert.Equal(t, 2, UnreadFor(msgs, "A"))
	assert.Equal(t, 1, UnreadFor(msgs, "B"))
}

func TestContactOf_UnknownFallback(t *testing.T) {
	c := ContactOf("gone", nil)
	assert.Equal(t, "gone", c.ID)
	assert.Equal(t, UnknownUserName, c.Name)
	assert.Empty(t, c.Avatar)

	m := &StaffMember{User: User{ID: "2", Username: "manager1", FirstName: "Jane", LastName: "Doe"}}
	assert.Equal(t, "Jane Doe", ContactOf("2", m).Name)

	m.LastName = ""
	assert.Equal(t, "manager1", ContactOf("2", m).Name)
}

func TestCountByRole_IncludesEmptyRoles(t *testing.T) {
	roster := []StaffMember{
		{User: User{Role: RoleOwner}},
		{User: User{Role: RoleDeveloper}},
		{User: User{Role: RoleDeveloper}},
	}

	counts := CountByRole(roster)

	assert.Len(t, counts, len(Roles))
	assert.Equal(t, 1, counts[RoleOwner])
	assert.Equal(t, 2, counts[RoleDeveloper])
	assert.Equal(t, 0, counts[RoleSupport])
}

func TestStaffMember_MatchesQuery(t *testing.T) {
	m := StaffMember{User: User{Username: "developer1", Email: "dev@example.com", FirstName: "John", LastName: "Smith", Role: RoleDeveloper}}

	assert.True(t, m.MatchesQuery(""))
	assert.True(t, m.MatchesQuery("JOHN"))
	assert.True(t, m.MatchesQuery("smi"))
	assert.True(t, m.MatchesQuery("example.com"))
	assert.True(t, m.MatchesQuery("develop"))
	assert.False(t, m.MatchesQuery("manager"))
}

func TestFieldErrors_ErrorIsSorted(t *testing.T) {
	fe := FieldErrors{"username": "Username is required", "email": "Email is required"}

	assert.Equal(t, "validation failed: email: Email is required; username: Username is required", fe.Error())

	got, ok := AsFieldErrors(fe)
	require.True(t, ok)
	assert.Len(t, got, 2)
}
