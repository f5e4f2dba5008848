package auth

import (
	"context"
	"errors"
	"fmt"
)

// Service implements signup and login on top of a user store.
type Service struct {
	users  UserRepository
	hasher *Hasher
	tokens *TokenService
}

// NewService wires a Service from its collaborators.
func NewService(users UserRepository, hasher *Hasher, tokens *TokenService) *Service {
	return &Service{users: users, hasher: hasher, tokens: tokens}
}

// Signup registers a new operative.
func (s *Service) Signup(ctx context.Context, email, password string) (*User, error) {
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}
	if len(password) > MaxPasswordBytes {
		return nil, ErrPasswordTooLong
	}

	digest, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &User{Email: email, HashedPassword: digest}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrEmailExists) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("signup: %w", err)
	}
	return user, nil
}

// Login verifies credentials and returns a signed access token.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", ErrMissingCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("login: %w", err)
	}

	if !s.hasher.Verify(password, user.HashedPassword) {
		return "", ErrInvalidCredentials
	}

	return s.tokens.Issue(user.ID, user.Email)
}

// Resolve confirms that the subject of claims still exists with the same
// email. Any mismatch is ErrUserNotFound.
func (s *Service) Resolve(ctx context.Context, claims *Claims) (Identity, error) {
	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return Identity{}, ErrUserNotFound
		}
		return Identity{}, fmt.Errorf("resolving token subject: %w", err)
	}
	if user.Email != claims.Email {
		return Identity{}, ErrUserNotFound
	}
	return Identity{UserID: user.ID, Email: user.Email}, nil
}

// Tokens returns the token service used to issue and verify tokens.
func (s *Service) Tokens() *TokenService {
	return s.tokens
}
