package context

import (
	"context"

	"github.com/mkrupp/storefront/internal/domain"
)

const contextKeyUser = contextKey("user")

// UserFromContext extracts the authenticated user from the context.
// Returns the user and true if present, or nil and false if not present.
func UserFromContext(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(contextKeyUser).(*domain.User)

	return user, ok
}

// WithUser creates a new context carrying the authenticated user.
// The session gate attaches the resolved user before invoking the wrapped handler.
func WithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, contextKeyUser, user)
}
