// Package auth provides credential issuance and verification for gadgetd.
//
// It covers:
//   - bcrypt password hashing
//   - HS256 JWT access tokens with typed verification errors
//   - SQLite-backed user persistence
//   - The signup and login flows built from the pieces above
//
// Tokens are stateless. The HTTP gate in package api re-resolves the
// token subject against the user store on every request, so deleting a
// user invalidates their outstanding tokens.
package auth
