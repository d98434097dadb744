package domain

import "errors"

var (
	// ErrInvalidSession is returned when a session token's signature is bad,
	// the token has expired, or the bound user no longer resolves.
	ErrInvalidSession = errors.New("invalid session")
	// ErrUnauthorized is returned when an authenticated user lacks the role a route requires.
	ErrUnauthorized = errors.New("unauthorized")
)

// Session is the signed payload that proves a request originates from an
// authenticated user of a given role.
type Session struct {
	UserID    int64 `json:"userId"`    // Authenticated user's id
	Role      Role  `json:"role"`      // Role the user authenticated as
	IssuedAt  int64 `json:"issuedAt"`  // Unix timestamp when the session was issued
	ExpiresAt int64 `json:"expiresAt"` // Unix timestamp when the session expires
}
