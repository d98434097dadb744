package user

import (
	"context"

	"github.com/mkrupp/storefront/internal/domain"
)

// Repository defines the interface for user persistence.
type Repository interface {
	// CreateUser adds a new user and returns its assigned id.
	// Returns domain.ErrUserAlreadyExists if the username is taken by any
	// user of any role.
	CreateUser(ctx context.Context, username string, passwordHash []byte, email string, role domain.Role) (int64, error)

	// GetByUsernameAndRole retrieves the user with the given username and role.
	// Returns domain.ErrUserNotFound if no such user exists.
	GetByUsernameAndRole(ctx context.Context, username string, role domain.Role) (*domain.User, error)

	// GetByID retrieves a user by its id.
	// Returns domain.ErrUserNotFound if no such user exists.
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}
