package domain

import (
	"context"
	"time"
)

// Activity actions written by the stores.
const (
	ActionCreateUser    = "CREATE_USER"
	ActionUpdateUser    = "UPDATE_USER"
	ActionDeleteUser    = "DELETE_USER"
	ActionChangeRole    = "CHANGE_ROLE"
	ActionLogin         = "LOGIN"
	ActionResetPassword = "RESET_PASSWORD"
)

// ActivityLogEntry is one append-only audit record. ActorUsername is copied
// at write time and is not kept in sync with the roster.
type ActivityLogEntry struct {
	ID            string    `json:"id" bson:"_id"`
	ActorID       string    `json:"actor_id" bson:"actor_id"`
	ActorUsername string    `json:"actor_username" bson:"actor_username"`
	Action        string    `json:"action" bson:"action"`
	Details       string    `json:"details" bson:"details"`
	Timestamp     time.Time `json:"timestamp" bson:"timestamp"`
	IP            string    `json:"ip,omitempty" bson:"ip,omitempty"`
	UserAgent     string    `json:"user_agent,omitempty" bson:"user_agent,omitempty"`
}

// Origin is the network metadata of the request that triggered an action.
type Origin struct {
	IP        string
	UserAgent string
}

type originKey struct{}

// WithOrigin attaches o to ctx so activity entries can record it.
func WithOrigin(ctx context.Context, o Origin) context.Context {
	return context.WithValue(ctx, originKey{}, o)
}

// OriginFrom returns the origin stored by WithOrigin, if any.
func OriginFrom(ctx context.Context) Origin {
	o, _ := ctx.Value(originKey{}).(Origin)
	return o
}
