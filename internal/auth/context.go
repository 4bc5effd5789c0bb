package auth

import (
	"context"

	"github.com/google/uuid"
)

// UserContext holds the authenticated owner. Every customer, order and gate
// row carries the owner's id in user_id.
type UserContext struct {
	UserID      uuid.UUID
	DisplayName string
	Email       string
}

// OwnerID is the value stored in user_id columns.
func (u *UserContext) OwnerID() string {
	return u.UserID.String()
}

type contextKey string

const userContextKey contextKey = "userContext"

// WithUserContext adds user context to the context
func WithUserContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// FromContext extracts user context from the context
func FromContext(ctx context.Context) (*UserContext, bool) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	return user, ok && user != nil
}

// OwnerFromContext returns the owner id of the authenticated user, or "" when unauthenticated.
func OwnerFromContext(ctx context.Context) string {
	if user, ok := FromContext(ctx); ok {
		return user.OwnerID()
	}
	return ""
}
