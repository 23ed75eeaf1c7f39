// internal/repository/pg/auth.go
package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	auth "github.com/r2r72/login-service/internal/service/auth"
	"go.uber.org/zap"
)

// AuthRepository reaches users and login attempts through the security.*
// stored functions. All user input goes through bind parameters.
type AuthRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewAuthRepository(db *pgxpool.Pool, logger *zap.Logger) *AuthRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthRepository{db: db, logger: logger}
}

func (r *AuthRepository) GetUserByEmail(ctx context.Context, accountID int64, email string) (*auth.User, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, account_id, name, password_hash, lockout_until
		 FROM security.user_get_by_email($1, $2)`,
		accountID, email)

	var u auth.User
	err := row.Scan(&u.ID, &u.AccountID, &u.Name, &u.PasswordHash, &u.LockoutUntil)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auth.ErrUserNotFound
		}
		return nil, wrapErr("user_get_by_email", err)
	}
	return &u, nil
}

func (r *AuthRepository) RecordLoginFailure(ctx context.Context, e *auth.AuditEvent) error {
	_, err := r.db.Exec(ctx,
		`SELECT security.user_login_failure($1, $2, $3, $4, $5)`,
		e.AccountID, e.Email, e.IPAddress, e.UserAgent, string(e.Outcome),
	)
	if err != nil {
		return wrapErr("user_login_failure", err)
	}
	return nil
}

func (r *AuthRepository) RecordLoginSuccess(ctx context.Context, e *auth.AuditEvent) error {
	if e.UserID == nil {
		return errors.New("user_login_success: missing user id")
	}
	_, err := r.db.Exec(ctx,
		`SELECT security.user_login_success($1, $2, $3, $4, $5, $6)`,
		e.AccountID, *e.UserID, e.IPAddress, e.UserAgent, e.Token, e.ExpiresAt,
	)
	if err != nil {
		return wrapErr("user_login_success", err)
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *AuthRepository) Ping(ctx context.Context) error {
	if err := r.db.Ping(ctx); err != nil {
		r.logger.Warn("database ping failed", zap.Error(err))
		return wrapErr("ping", err)
	}
	return nil
}
