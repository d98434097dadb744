package authsvc

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mkrupp/storefront/internal/domain"
	"github.com/mkrupp/storefront/internal/infra/logging"
	http_ "github.com/mkrupp/storefront/internal/infra/transport/http"
)

// HTTPTransport handles the unauthenticated HTTP surface: home page,
// registration and login per role, and logout.
type HTTPTransport struct {
	authSvc *AuthService
	log     logging.Logger
}

// NewHTTPTransport creates a new HTTPTransport for the auth service.
func NewHTTPTransport(authSvc *AuthService) *HTTPTransport {
	return &HTTPTransport{
		authSvc: authSvc,
		log:     logging.GetLogger("svc.authsvc.http_transport"),
	}
}

// RegisterRoutes registers the auth routes on the given router:
// - GET  /                 : home page
// - GET  /register/{role}  : registration form descriptor
// - POST /register/{role}  : register, redirect to the role's login page
// - GET  /login/{role}     : login form descriptor
// - POST /login/{role}     : login, set session cookie, redirect to panel
// - GET  /logout           : clear session cookie, redirect home.
func (ht *HTTPTransport) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/", ht.HandleHome).Methods(http.MethodGet)
	router.HandleFunc("/register/{role:seller|customer}", ht.HandleRegisterForm).Methods(http.MethodGet)
	router.HandleFunc("/register/{role:seller|customer}", ht.HandleRegister).Methods(http.MethodPost)
	router.HandleFunc("/login/{role:seller|customer}", ht.HandleLoginForm).Methods(http.MethodGet)
	router.HandleFunc("/login/{role:seller|customer}", ht.HandleLogin).Methods(http.MethodPost)
	router.HandleFunc("/logout", ht.HandleLogout).Methods(http.MethodGet)
}

// HandleHome serves the home page.
func (ht *HTTPTransport) HandleHome(w http.ResponseWriter, r *http.Request) {
	http_.WriteJSON(w, http.StatusOK, map[string]string{
		"registerSeller":   "/register/seller",
		"registerCustomer": "/register/customer",
		"loginSeller":      "/login/seller",
		"loginCustomer":    "/login/customer",
	})
}

// HandleRegisterForm describes the registration form for the role in the path.
func (ht *HTTPTransport) HandleRegisterForm(w http.ResponseWriter, r *http.Request) {
	http_.WriteJSON(w, http.StatusOK, map[string]any{
		"action": r.URL.Path,
		"fields": []string{"username", "password", "email"},
	})
}

// HandleLoginForm describes the login form for the role in the path.
func (ht *HTTPTransport) HandleLoginForm(w http.ResponseWriter, r *http.Request) {
	http_.WriteJSON(w, http.StatusOK, map[string]any{
		"action": r.URL.Path,
		"fields": []string{"username", "password"},
	})
}

// HandleRegister processes registration requests.
// Expects form parameters: username, password, email.
func (ht *HTTPTransport) HandleRegister(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleRegister(w, r)
}

func (ht *HTTPTransport) handleRegister(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "register failed", "error", err)
		} else {
			log.DebugContext(ctx, "user registered")
		}
	}(r.Context())

	role, err := domain.ParseRole(mux.Vars(r)["role"])
	if err != nil {
		http_.WriteError(w, http.StatusNotFound, "unknown role")

		return fmt.Errorf("parse role: %w", err)
	}

	if err := r.ParseForm(); err != nil {
		http_.WriteError(w, http.StatusBadRequest, "malformed form")

		return fmt.Errorf("parse form: %w", err)
	}

	_, err = ht.authSvc.Register(r.Context(),
		role,
		r.FormValue("username"),
		r.FormValue("password"),
		r.FormValue("email"),
	)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMissingField):
			http_.WriteError(w, http.StatusBadRequest, "missing required fields")
		case errors.Is(err, domain.ErrUserAlreadyExists):
			http_.WriteError(w, http.StatusConflict, "username already taken")
		default:
			http_.WriteError(w, http.StatusInternalServerError, "internal error")
		}

		return fmt.Errorf("register: %w", err)
	}

	http.Redirect(w, r, "/login/"+string(role), http.StatusSeeOther)

	return nil
}

// HandleLogin processes login requests.
// Expects form parameters: username, password.
// On success it sets the session cookie and redirects to the role's panel.
func (ht *HTTPTransport) HandleLogin(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleLogin(w, r)
}

func (ht *HTTPTransport) handleLogin(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "login failed", "error", err)
		} else {
			log.DebugContext(ctx, "user logged in")
		}
	}(r.Context())

	role, err := domain.ParseRole(mux.Vars(r)["role"])
	if err != nil {
		http_.WriteError(w, http.StatusNotFound, "unknown role")

		return fmt.Errorf("parse role: %w", err)
	}

	if err := r.ParseForm(); err != nil {
		http_.WriteError(w, http.StatusBadRequest, "malformed form")

		return fmt.Errorf("parse form: %w", err)
	}

	token, err := ht.authSvc.Login(r.Context(),
		role,
		r.FormValue("username"),
		r.FormValue("password"),
	)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMissingField):
			http_.WriteError(w, http.StatusBadRequest, "missing username or password")
		case errors.Is(err, domain.ErrInvalidCredentials):
			http_.WriteError(w, http.StatusUnauthorized, "invalid username or password")
		default:
			http_.WriteError(w, http.StatusInternalServerError, "internal error")
		}

		return fmt.Errorf("login: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     http_.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ht.authSvc.Config.SessionDuration),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	panel := "/customer/panel"
	if role == domain.RoleSeller {
		panel = "/seller/panel"
	}

	http.Redirect(w, r, panel, http.StatusSeeOther)

	return nil
}

// HandleLogout clears the session cookie and redirects home.
// Logging out without a session is not an error; the handler is idempotent.
func (ht *HTTPTransport) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     http_.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, "/", http.StatusSeeOther)
}
