package auth

import (
	"context"

	"github.com/vidtube/backend/internal/models"
)

type identityKey struct{}

// WithIdentity attaches the authenticated user to ctx.
func WithIdentity(ctx context.Context, user models.User) context.Context {
	return context.WithValue(ctx, identityKey{}, user)
}

// IdentityFromContext returns the authenticated user attached by the auth guard.
func IdentityFromContext(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(identityKey{}).(models.User)
	return user, ok && user.ID != ""
}
