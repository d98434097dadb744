package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/mkrupp/storefront/internal/domain"
	context_ "github.com/mkrupp/storefront/internal/infra/context"
	"github.com/mkrupp/storefront/internal/infra/logging"
)

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "session"

// SessionResolver validates a session token and resolves it to the bound user.
type SessionResolver interface {
	// ResolveSession verifies the token and loads the user it is bound to.
	// Returns domain.ErrInvalidSession if the token does not verify or the
	// user no longer resolves.
	ResolveSession(ctx context.Context, token string) (*domain.User, error)
}

// MissingSessionPolicy decides how a route answers a request that carries no
// session cookie at all. Page views redirect to a login entry point while
// API-style actions fail outright; the policy is per-route, not uniform.
type MissingSessionPolicy func(w http.ResponseWriter, r *http.Request)

// RedirectTo returns a policy that redirects to the given login entry point.
func RedirectTo(url string) MissingSessionPolicy {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, url, http.StatusFound)
	}
}

// Deny returns a policy that rejects the request with 401 Unauthorized.
func Deny() MissingSessionPolicy {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
	}
}

// SessionMiddleware creates the session gate guarding a protected route.
// A request without a session cookie is handled by the onMissing policy.
// A cookie that does not resolve to a user, or resolves to a user whose role
// does not match requiredRole, is rejected with 403. An empty requiredRole
// admits any authenticated user. On success the resolved user is attached to
// the request context and the wrapped handler is invoked.
func SessionMiddleware(
	next http.Handler,
	sessions SessionResolver,
	requiredRole domain.Role,
	onMissing MissingSessionPolicy,
	log logging.Logger,
) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil || cookie.Value == "" {
			log.DebugContext(r.Context(), "no session cookie")
			onMissing(w, r)

			return
		}

		user, err := sessions.ResolveSession(r.Context(), cookie.Value)
		if err != nil {
			if !errors.Is(err, domain.ErrInvalidSession) {
				log.ErrorContext(r.Context(), "resolve session failed", "error", err)
			}

			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)

			return
		}

		if requiredRole != "" && user.Role != requiredRole {
			log.WarnContext(r.Context(), "role mismatch", logging.Group("user",
				"id", user.ID,
				"role", string(user.Role),
				"required", string(requiredRole),
			))
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)

			return
		}

		next.ServeHTTP(w, r.WithContext(context_.WithUser(r.Context(), user)))
	})
}
