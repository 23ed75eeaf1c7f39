// Package auth defines the repository contract for authentication.
package auth

import "context"

// UserRepository reads credential records.
// GetUserByEmail returns ErrUserNotFound when nothing matches.
type UserRepository interface {
	GetUserByEmail(ctx context.Context, accountID int64, email string) (*User, error)
}

// AuditStore persists login attempts.
type AuditStore interface {
	RecordLoginFailure(ctx context.Context, event *AuditEvent) error
	RecordLoginSuccess(ctx context.Context, event *AuditEvent) error
}

// AuthRepository is the interface for DB operations.
// Must be implemented by pg.AuthRepository.
type AuthRepository interface {
	UserRepository
	AuditStore
}
