package domain

import "errors"

var (
	// ErrUserAlreadyExists is returned when trying to create a user with an existing username.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrUserNotFound is returned when looking up a non-existent user.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials is returned when the username/password/role combination is incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrMissingField is returned when a required input field is empty.
	ErrMissingField = errors.New("missing required field")
	// ErrUnknownRole is returned when a role string is neither seller nor customer.
	ErrUnknownRole = errors.New("unknown role")
)

// Role distinguishes the two kinds of marketplace accounts.
type Role string

const (
	// RoleSeller marks accounts that list products and see incoming orders.
	RoleSeller Role = "seller"
	// RoleCustomer marks accounts that browse the catalog and place orders.
	RoleCustomer Role = "customer"
)

// ParseRole converts a role string into a Role.
// Returns ErrUnknownRole for anything but "seller" or "customer".
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleSeller:
		return RoleSeller, nil
	case RoleCustomer:
		return RoleCustomer, nil
	default:
		return "", ErrUnknownRole
	}
}

// User represents a registered marketplace account.
// Usernames are unique across all users regardless of role.
type User struct {
	ID           int64  // Unique identifier, store-assigned
	Username     string // Login username, globally unique
	PasswordHash []byte // Hashed password, never plaintext
	Email        string // Contact address
	Role         Role   // seller or customer
	CreatedAt    int64  // Unix timestamp of account creation
}
