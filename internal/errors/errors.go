package errors

import (
	"errors"
	"fmt"
)

// Common error types for the admin console
var (
	// Authentication errors
	ErrNotAdmin      = errors.New("only admin can login")
	ErrNoCredentials = errors.New("no session credentials")

	// Token errors
	ErrRefreshFailed     = errors.New("token refresh failed")
	ErrEmptyAccessToken  = errors.New("refresh response carried no access token")
	ErrMalformedEnvelope = errors.New("malformed response envelope")
	ErrResponseTooLarge  = errors.New("response body exceeds the size limit")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")

	// General errors
	ErrNotFound       = errors.New("not found")
	ErrInvalidRequest = errors.New("invalid request")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
