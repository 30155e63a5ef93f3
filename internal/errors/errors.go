package errors

import (
	"errors"
	"fmt"
)

// Common error types for the session agent
var (
	// Credential errors
	ErrMalformedCredential = errors.New("malformed credential")
	ErrCredentialExpired   = errors.New("credential expired")

	// Profile errors
	ErrUnknownRole     = errors.New("unknown role")
	ErrProfileNotFound = errors.New("profile not found")

	// Session errors
	ErrCorruptSession   = errors.New("corrupt persisted session")
	ErrNoPendingSignup  = errors.New("no signup pending")
	ErrNotAuthenticated = errors.New("not authenticated")

	// OAuth callback errors
	ErrMissingCode    = errors.New("authorization code missing from callback")
	ErrProviderDenied = errors.New("authorization denied by provider")

	// General errors
	ErrInternal = errors.New("internal error")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
