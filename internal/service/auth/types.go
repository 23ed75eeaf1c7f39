// Package auth defines domain types for authentication.
package auth

import "time"

// User is the credential record read from the store for one login attempt.
type User struct {
	ID           int64
	AccountID    int64
	Name         string
	PasswordHash string     // bcrypt, algorithm-versioned by its prefix
	LockoutUntil *time.Time // nil when the account has never been locked
}

// LoginInput is the input for login. Password is never logged or persisted.
type LoginInput struct {
	Email         string
	Password      string
	RememberLogin bool // extended session
	IPAddress     string
	UserAgent     string
}

// UserSummary is the public part of the user returned on success.
type UserSummary struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// LoginResult is the result of a successful login.
type LoginResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"-"`
	User      UserSummary `json:"user"`
}

// AuditOutcome classifies a login attempt.
type AuditOutcome string

const (
	OutcomeUnknownUser AuditOutcome = "unknown_user"
	OutcomeBadPassword AuditOutcome = "bad_password"
	OutcomeSuccess     AuditOutcome = "success"
)

// AuditEvent is one login attempt as handed to the store.
// The store sets the timestamp.
type AuditEvent struct {
	Outcome   AuditOutcome
	AccountID int64
	UserID    *int64
	Email     string
	IPAddress string
	UserAgent string

	// success only
	Token     string
	ExpiresAt time.Time
}
