package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mkrupp/storefront/internal/domain"
	context_ "github.com/mkrupp/storefront/internal/infra/context"
	"github.com/mkrupp/storefront/internal/infra/logging"
	http_ "github.com/mkrupp/storefront/internal/infra/transport/http"
)

// mockSessionResolver resolves a single well-known token to a fixed user.
type mockSessionResolver struct {
	token string
	user  *domain.User
}

func (m *mockSessionResolver) ResolveSession(_ context.Context, token string) (*domain.User, error) {
	if token != m.token {
		return nil, domain.ErrInvalidSession
	}

	return m.user, nil
}

func TestSessionMiddleware(t *testing.T) {
	t.Parallel()

	sessions := &mockSessionResolver{
		token: "valid-token",
		user: &domain.User{
			ID:       1,
			Username: "alice",
			Role:     domain.RoleSeller,
		},
	}

	tests := []struct {
		name         string
		cookie       string
		requiredRole domain.Role
		onMissing    http_.MissingSessionPolicy
		wantStatus   int
		wantLocation string
		wantNext     bool
	}{
		{
			name:         "no cookie redirect policy",
			requiredRole: domain.RoleSeller,
			onMissing:    http_.RedirectTo("/login/seller"),
			wantStatus:   http.StatusFound,
			wantLocation: "/login/seller",
		},
		{
			name:         "no cookie deny policy",
			requiredRole: domain.RoleSeller,
			onMissing:    http_.Deny(),
			wantStatus:   http.StatusUnauthorized,
		},
		{
			name:         "invalid token",
			cookie:       "garbage",
			requiredRole: domain.RoleSeller,
			onMissing:    http_.Deny(),
			wantStatus:   http.StatusForbidden,
		},
		{
			name:         "role mismatch",
			cookie:       "valid-token",
			requiredRole: domain.RoleCustomer,
			onMissing:    http_.Deny(),
			wantStatus:   http.StatusForbidden,
		},
		{
			name:         "valid session matching role",
			cookie:       "valid-token",
			requiredRole: domain.RoleSeller,
			onMissing:    http_.Deny(),
			wantStatus:   http.StatusOK,
			wantNext:     true,
		},
		{
			name:       "valid session any role",
			cookie:     "valid-token",
			onMissing:  http_.Deny(),
			wantStatus: http.StatusOK,
			wantNext:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var (
				nextCalled bool
				gotUser    *domain.User
			)

			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
				gotUser, _ = context_.UserFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			handler := http_.SessionMiddleware(
				next,
				sessions,
				tt.requiredRole,
				tt.onMissing,
				logging.NewNopLogger(),
			)

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: http_.SessionCookieName, Value: tt.cookie})
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			if tt.wantLocation != "" {
				if loc := rec.Header().Get("Location"); loc != tt.wantLocation {
					t.Errorf("Location = %q, want %q", loc, tt.wantLocation)
				}
			}

			if nextCalled != tt.wantNext {
				t.Errorf("next called = %v, want %v", nextCalled, tt.wantNext)
			}

			if tt.wantNext {
				if gotUser == nil || gotUser.Username != "alice" {
					t.Errorf("user in context = %+v, want alice", gotUser)
				}
			}
		})
	}
}
