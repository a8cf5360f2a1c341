package auth

import (
	"context"

	"github.com/crvarsha0102/HabiTrack/internal/user"
)

type contextKey struct{}

var userKey contextKey

// WithUser returns a copy of ctx carrying the authenticated user.
func WithUser(ctx context.Context, u *user.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// UserFromContext returns the authenticated user stored by the auth
// middleware, or nil if the request is anonymous.
func UserFromContext(ctx context.Context) *user.User {
	u, _ := ctx.Value(userKey).(*user.User)
	return u
}
