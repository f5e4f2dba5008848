package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nerrad567/gadgetd/internal/auth"
)

// credentialsRequest is the request body for register and login.
type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginResponse is the response body for POST /auth/login.
type loginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

const (
	msgMissingCredentials = "email and password are required in the body"
	msgPasswordTooLong    = "password must be at most 72 bytes"
)

// handleRegister creates an operative account.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, msgMissingCredentials)
		return
	}

	user, err := s.auth.Signup(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrMissingCredentials):
			writeBadRequest(w, msgMissingCredentials)
		case errors.Is(err, auth.ErrPasswordTooLong):
			writeBadRequest(w, msgPasswordTooLong)
		case errors.Is(err, auth.ErrEmailExists):
			writeConflict(w, "email already registered")
		default:
			s.logger.Error("registering user failed", "error", err, "request_id", requestID(r.Context()))
			writeInternalError(w, "error registering user")
		}
		return
	}

	s.logger.Info("user registered", "user_id", user.ID)
	writeJSON(w, http.StatusCreated, messageResponse{Message: "User registered successfully"})
}

// handleLogin verifies credentials and returns a signed token.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, msgMissingCredentials)
		return
	}

	token, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrMissingCredentials):
			writeBadRequest(w, msgMissingCredentials)
		case errors.Is(err, auth.ErrUserNotFound):
			writeUnauthorized(w, "user not found")
		case errors.Is(err, auth.ErrInvalidCredentials):
			writeUnauthorized(w, "invalid email or password")
		default:
			s.logger.Error("login failed", "error", err, "request_id", requestID(r.Context()))
			writeInternalError(w, "error logging in")
		}
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Message: "Login successful, copy your jwt for subsequent api calls",
		Token:   token,
	})
}

// handleMe returns the identity attached by the auth gate.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, msgNoToken)
		return
	}
	writeJSON(w, http.StatusOK, identity)
}
