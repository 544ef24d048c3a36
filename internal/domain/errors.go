package domain

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by services and HTTP handlers.
// Handlers map these to status codes; everything else wraps with %w.
var (
	// ErrAuth covers bad credentials and expired/unknown sessions.
	ErrAuth = errors.New("invalid credentials")
	// ErrTokenExpired is the ErrAuth subset for missing/expired sessions.
	// Handlers map it to code 60401 so clients force a re-login; a plain
	// credential failure stays code -1.
	ErrTokenExpired = fmt.Errorf("%w: session expired", ErrAuth)
	// ErrValidation is a local constraint violation. It is decided before
	// any network or database call is made.
	ErrValidation = errors.New("validation failed")
	// ErrAuthorization means the backend rejected a write for role/ownership
	// reasons. Kept distinct from ErrValidation on purpose.
	ErrAuthorization = errors.New("not authorized")
	// ErrDispatch means the notification endpoint returned a non-success status.
	ErrDispatch = errors.New("dispatch failed")
	// ErrNotFound means a profile or bed record is absent.
	ErrNotFound = errors.New("not found")
)
