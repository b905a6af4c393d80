package domain

import (
	"slices"
	"strings"
)

// ConversationSummary is the newest message exchanged with one counterpart.
type ConversationSummary struct {
	CounterpartID string  `json:"counterpart_id"`
	LastMessage   Message `json:"last_message"`
	Unread        int     `json:"unread"`
}

// Conversations groups the messages touching me by counterpart, keeps the
// newest message of each group and orders the groups newest first.
func Conversations(msgs []Message, me string) []ConversationSummary {
	latest := make(map[string]int)
	var out []ConversationSummary

	for _, m := range msgs {
		if !m.Involves(me) {
			continue
		}
		other := m.Counterpart(me)
		idx, seen := latest[other]
		if !seen {
			latest[other] = len(out)
			out = append(out, ConversationSummary{CounterpartID: other, LastMessage: m})
		} else if m.CreatedAt.After(out[idx].LastMessage.CreatedAt) {
			out[idx].LastMessage = m
		}
		if !m.IsRead && m.RecipientID == me {
			out[latest[other]].Unread++
		}
	}

	slices.SortStableFunc(out, func(a, b ConversationSummary) int {
		return b.LastMessage.CreatedAt.Compare(a.LastMessage.CreatedAt)
	})
	return out
}

// Thread returns every message exchanged between me and other, oldest first.
func Thread(msgs []Message, me, other string) []Message {
	var out []Message
	for _, m := range msgs {
		if (m.SenderID == me && m.RecipientID == other) || (m.SenderID == other && m.RecipientID == me) {
			out = append(out, m)
		}
	}
	slices.SortStableFunc(out, func(a, b Message) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return out
}

// UnreadFrom counts unread messages sent by other to me.
func UnreadFrom(msgs []Message, me, other string) int {
	n := 0
	for _, m := range msgs {
		if !m.IsRead && m.SenderID == other && m.RecipientID == me {
			n++
		}
	}
	return n
}

// UnreadFor counts unread messages addressed to userID.
func UnreadFor(msgs []Message, userID string) int {
	n := 0
	for _, m := range msgs {
		if !m.IsRead && m.RecipientID == userID {
			n++
		}
	}
	return n
}

// UnreadNotifications counts notifications not yet read.
func UnreadNotifications(ns []Notification) int {
	n := 0
	for _, x := range ns {
		if !x.IsRead {
			n++
		}
	}
	return n
}

// UnknownUserName is shown for identifiers that no longer resolve.
const UnknownUserName = "Unknown User"

// Contact is the display metadata of an identity.
type Contact struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
	Role   Role   `json:"role,omitempty"`
}

// ContactOf builds a Contact for id from m, falling back to Unknown User when m is nil.
func ContactOf(id string, m *StaffMember) Contact {
	if m == nil {
		return Contact{ID: id, Name: UnknownUserName}
	}
	return Contact{ID: m.ID, Name: m.DisplayName(), Avatar: m.Avatar, Role: m.Role}
}

// CountByRole tallies the roster per role. Every role is present in the result.
func CountByRole(roster []StaffMember) map[Role]int {
	counts := make(map[Role]int, len(Roles))
	for _, r := range Roles {
		counts[r] = 0
	}
	for _, m := range roster {
		counts[m.Role]++
	}
	return counts
}

// MatchesQuery reports whether m matches a case-insensitive search on
// username, email, first name, last name or role.
func (m StaffMember) MatchesQuery(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	for _, field := range []string{m.Username, m.Email, m.FirstName, m.LastName, string(m.Role)} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}
