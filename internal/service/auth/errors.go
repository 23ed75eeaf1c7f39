// Package auth defines authentication errors.
package auth

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredentials covers both an unknown email and a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountLocked      = errors.New("account is locked")
	// ErrUserNotFound is returned by UserRepository when no user matches.
	ErrUserNotFound = errors.New("user not found")
	// ErrStoreUnavailable marks store errors worth retrying (pool exhausted,
	// connect or acquire timeout). Repositories wrap it alongside the cause.
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrUnsupportedHash  = errors.New("unsupported password hash format")
)

// AccountLockedError is returned while an account's lockout has not expired.
type AccountLockedError struct {
	RemainingMinutes int
}

func (e *AccountLockedError) Error() string {
	return fmt.Sprintf("account is locked for %d more minute(s)", e.RemainingMinutes)
}

func (e *AccountLockedError) Is(target error) bool { return target == ErrAccountLocked }

// StoreError is an infrastructure failure while reading or writing the store.
type StoreError struct {
	Op        string
	Transient bool
	Err       error
}

func newStoreError(op string, err error) *StoreError {
	return &StoreError{Op: op, Transient: errors.Is(err, ErrStoreUnavailable), Err: err}
}

func (e *StoreError) Error() string { return "auth store: " + e.Op + ": " + e.Err.Error() }

func (e *StoreError) Unwrap() error { return e.Err }

// TokenSigningError means a session token could not be issued.
type TokenSigningError struct {
	Err error
}

func (e *TokenSigningError) Error() string { return "issue session token: " + e.Err.Error() }

func (e *TokenSigningError) Unwrap() error { return e.Err }
