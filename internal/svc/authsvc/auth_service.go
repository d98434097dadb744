package authsvc

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mkrupp/storefront/internal/domain"
	"github.com/mkrupp/storefront/internal/infra/logging"
	"github.com/mkrupp/storefront/internal/repo/user"
)

// AuthConfig contains configuration parameters for the authentication service.
type AuthConfig struct {
	// SigningKeyFile is the path to the RSA private key file
	SigningKeyFile string `env:"SIGNING_KEY_FILE" default:"var/storage/marketsvc.key"`

	// SessionDuration is the validity duration of session tokens in seconds
	SessionDuration int64 `env:"SESSION_DURATION" default:"3600"` // 1h

	// BcryptCost is the bcrypt work factor used when hashing passwords
	BcryptCost int `env:"BCRYPT_COST" default:"10"`
}

// AuthService registers and authenticates marketplace accounts per role and
// issues the signed session tokens the session gate verifies.
type AuthService struct {
	Config     AuthConfig
	Users      user.Repository
	Log        logging.Logger
	SigningKey *rsa.PrivateKey
}

// NewAuthService creates a new AuthService with the given user repository and
// configuration. Returns an error if the signing key cannot be loaded.
func NewAuthService(users user.Repository, cfg AuthConfig) (*AuthService, error) {
	log := logging.GetLogger("svc.authsvc.auth_service")

	signingKey, err := GetPrivateKey(cfg.SigningKeyFile)
	if err != nil {
		return nil, fmt.Errorf("get private key: %w", err)
	}

	return &AuthService{
		Config:     cfg,
		Users:      users,
		Log:        log,
		SigningKey: signingKey,
	}, nil
}

// Register creates a new account with the given role.
// The password is bcrypt-hashed before storage. Returns the new user's id.
// Returns domain.ErrMissingField when any field is empty and
// domain.ErrUserAlreadyExists when the username is taken by any role.
func (s *AuthService) Register(
	ctx context.Context,
	role domain.Role,
	username, password, email string,
) (_ int64, err error) {
	log := s.Log.With(logging.Group("user", "username", username, "role", string(role)))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "register user failed", "error", err)
		} else {
			log.DebugContext(ctx, "user registered")
		}
	}()

	if username == "" || password == "" || email == "" {
		return 0, domain.ErrMissingField
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), s.Config.BcryptCost)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}

	id, err := s.Users.CreateUser(ctx, username, passwordHash, email, role)
	if err != nil {
		return 0, fmt.Errorf("create user: %w", err)
	}

	return id, nil
}

// Login authenticates a user against the given role and issues a signed
// session token. Returns domain.ErrMissingField when username or password is
// empty and domain.ErrInvalidCredentials when no user with that username and
// role exists or the password does not verify.
func (s *AuthService) Login(
	ctx context.Context,
	role domain.Role,
	username, password string,
) (_ string, err error) {
	log := s.Log.With(logging.Group("user", "username", username, "role", string(role)))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "login failed", "error", err)
		} else {
			log.DebugContext(ctx, "login successful")
		}
	}()

	if username == "" || password == "" {
		return "", domain.ErrMissingField
	}

	account, err := s.Users.GetByUsernameAndRole(ctx, username, role)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", errors.Join(domain.ErrInvalidCredentials, err)
		}

		return "", fmt.Errorf("get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword(account.PasswordHash, []byte(password)); err != nil {
		return "", domain.ErrInvalidCredentials
	}

	now := time.Now()
	expiry := now.Add(time.Duration(s.Config.SessionDuration * int64(time.Second)))
	session := domain.Session{
		UserID:    account.ID,
		Role:      account.Role,
		IssuedAt:  now.Unix(),
		ExpiresAt: expiry.Unix(),
	}

	log = log.With(logging.Group("session",
		"userId", session.UserID,
		"exp", expiry.UTC().Format(time.RFC3339),
		"iat", now.UTC().Format(time.RFC3339),
	))

	sessionBytes, err := json.Marshal(session)
	if err != nil {
		return "", fmt.Errorf("marshal session: %w", err)
	}

	hashed := sha256.Sum256(sessionBytes)

	signature, err := rsa.SignPSS(rand.Reader, s.SigningKey, crypto.SHA256, hashed[:], nil)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}

	return base64.URLEncoding.EncodeToString(append(sessionBytes, signature...)), nil
}

// ResolveSession verifies a session token and resolves the user it is bound
// to. The stored role must still match the role the token was issued for.
// Returns domain.ErrInvalidSession for any verification failure.
func (s *AuthService) ResolveSession(ctx context.Context, token string) (_ *domain.User, err error) {
	log := s.Log

	defer func() {
		if err != nil {
			log.DebugContext(ctx, "resolve session failed", "error", err)
		}
	}()

	session, err := VerifySessionToken(token, &s.SigningKey.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("verify session token: %w", err)
	}

	account, err := s.Users.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, errors.Join(domain.ErrInvalidSession, err)
		}

		return nil, fmt.Errorf("get user: %w", err)
	}

	if account.Role != session.Role {
		return nil, domain.ErrInvalidSession
	}

	return account, nil
}
