package catalogsvc_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/mkrupp/storefront/internal/domain"
	http_ "github.com/mkrupp/storefront/internal/infra/transport/http"
	"github.com/mkrupp/storefront/internal/svc/catalogsvc"
)

// mockSessionResolver maps fixed tokens to fixed users.
type mockSessionResolver struct {
	users map[string]*domain.User
}

func (m *mockSessionResolver) ResolveSession(_ context.Context, token string) (*domain.User, error) {
	user, ok := m.users[token]
	if !ok {
		return nil, domain.ErrInvalidSession
	}

	return user, nil
}

func setupTestTransport(t *testing.T) (*mux.Router, *mockProductRepository) {
	t.Helper()

	svc, products, _ := setupTestService(t)

	sessions := &mockSessionResolver{users: map[string]*domain.User{
		"seller-token":   {ID: 1, Username: "alice", Role: domain.RoleSeller},
		"seller2-token":  {ID: 2, Username: "bob", Role: domain.RoleSeller},
		"customer-token": {ID: 3, Username: "carol", Role: domain.RoleCustomer},
	}}

	router := mux.NewRouter()
	catalogsvc.NewHTTPTransport(svc, sessions).RegisterRoutes(router)

	return router, products
}

func doForm(router *mux.Router, method, path, token string, form url.Values) *httptest.ResponseRecorder {
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	if token != "" {
		req.AddCookie(&http.Cookie{Name: http_.SessionCookieName, Value: token})
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	return rec
}

func TestHTTPTransport_Gates(t *testing.T) {
	t.Parallel()

	router, _ := setupTestTransport(t)

	tests := []struct {
		name         string
		method       string
		path         string
		token        string
		wantStatus   int
		wantLocation string
	}{
		{
			name:         "seller panel without session redirects",
			method:       http.MethodGet,
			path:         "/seller/panel",
			wantStatus:   http.StatusFound,
			wantLocation: "/login/seller",
		},
		{
			name:         "customer panel without session redirects",
			method:       http.MethodGet,
			path:         "/customer/panel",
			wantStatus:   http.StatusFound,
			wantLocation: "/login/customer",
		},
		{
			name:       "update without session denied outright",
			method:     http.MethodPut,
			path:       "/update_product/1",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "customer cannot reach seller panel",
			method:     http.MethodGet,
			path:       "/seller/panel",
			token:      "customer-token",
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "seller cannot reach customer panel",
			method:     http.MethodGet,
			path:       "/customer/panel",
			token:      "seller-token",
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "stale token rejected",
			method:     http.MethodGet,
			path:       "/seller/panel",
			token:      "expired",
			wantStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := doForm(router, tt.method, tt.path, tt.token, nil)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			if tt.wantLocation != "" {
				if loc := rec.Header().Get("Location"); loc != tt.wantLocation {
					t.Errorf("Location = %q, want %q", loc, tt.wantLocation)
				}
			}
		})
	}
}

func TestHTTPTransport_AddProduct(t *testing.T) {
	t.Parallel()

	router, _ := setupTestTransport(t)

	valid := url.Values{
		"name":     {"widget"},
		"price":    {"9.99"},
		"quantity": {"10"},
	}

	if rec := doForm(router, http.MethodPost, "/add_product", "seller-token", valid); rec.Code != http.StatusCreated {
		t.Fatalf("add status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}

	tests := []struct {
		name       string
		form       url.Values
		wantStatus int
	}{
		{
			name:       "duplicate name",
			form:       valid,
			wantStatus: http.StatusConflict,
		},
		{
			name: "missing price",
			form: url.Values{
				"name":     {"gadget"},
				"quantity": {"10"},
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "unparsable price",
			form: url.Values{
				"name":     {"gadget"},
				"price":    {"cheap"},
				"quantity": {"10"},
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "negative quantity",
			form: url.Values{
				"name":     {"gadget"},
				"price":    {"1.00"},
				"quantity": {"-3"},
			},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doForm(router, http.MethodPost, "/add_product", "seller-token", tt.form)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestHTTPTransport_UpdateProduct(t *testing.T) {
	t.Parallel()

	router, products := setupTestTransport(t)
	ctx := context.Background()

	id, err := products.CreateProduct(ctx, "widget", "original", decimal.RequireFromString("9.99"), 10, 1)
	if err != nil {
		t.Fatalf("CreateProduct() error = %v", err)
	}

	// An empty price field counts as absent rather than invalid.
	rec := doForm(router, http.MethodPut, "/update_product/1", "seller-token", url.Values{
		"name":  {"super widget"},
		"price": {""},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	got, err := products.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}

	if got.Name != "super widget" || got.Description != "original" || !got.Price.Equal(decimal.RequireFromString("9.99")) {
		t.Errorf("product after update = %+v", got)
	}

	tests := []struct {
		name       string
		path       string
		token      string
		form       url.Values
		wantStatus int
	}{
		{
			name:       "other seller gets not found",
			path:       "/update_product/1",
			token:      "seller2-token",
			form:       url.Values{"name": {"stolen"}},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "missing product",
			path:       "/update_product/999",
			token:      "seller-token",
			form:       url.Values{"name": {"ghost"}},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "unparsable price",
			path:       "/update_product/1",
			token:      "seller-token",
			form:       url.Values{"price": {"cheap"}},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doForm(router, http.MethodPut, tt.path, tt.token, tt.form)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestHTTPTransport_CustomerPanel(t *testing.T) {
	t.Parallel()

	router, products := setupTestTransport(t)
	ctx := context.Background()

	if _, err := products.CreateProduct(ctx, "widget", "", decimal.RequireFromString("9.99"), 10, 1); err != nil {
		t.Fatalf("CreateProduct() error = %v", err)
	}

	rec := doForm(router, http.MethodGet, "/customer/panel", "customer-token", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	if body := rec.Body.String(); !strings.Contains(body, `"widget"`) || !strings.Contains(body, `"9.99"`) {
		t.Errorf("body = %s", body)
	}
}
