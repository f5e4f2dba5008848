package auth

import (
	"errors"
	"time"
)

// User represents a registered operative account.
type User struct {
	ID             int64     `json:"id"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"` // never serialised
	CreatedAt      time.Time `json:"created_at"`
}

// Identity is the authenticated principal attached to a request.
type Identity struct {
	UserID int64  `json:"id"`
	Email  string `json:"email"`
}

// Sentinel errors for the auth package.
var (
	ErrUserNotFound       = errors.New("auth: user not found")
	ErrEmailExists        = errors.New("auth: email already registered")
	ErrInvalidCredentials = errors.New("auth: invalid email or password")
	ErrMissingCredentials = errors.New("auth: email and password are required")
	ErrPasswordTooLong    = errors.New("auth: password exceeds 72 bytes")

	// ErrTokenInvalid is the parent of every verification failure except expiry.
	ErrTokenInvalid          = errors.New("auth: invalid token")
	ErrTokenMalformed        = errors.New("auth: malformed token")
	ErrTokenSignatureInvalid = errors.New("auth: token signature invalid")
	ErrTokenExpired          = errors.New("auth: token expired")
)
