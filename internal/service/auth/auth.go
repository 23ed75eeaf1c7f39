// Package auth provides password authentication and session issuance.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/r2r72/login-service/internal/service/token"
	"go.uber.org/zap"
)

// TokenIssuer mints session tokens. Implemented by *token.Codec.
type TokenIssuer interface {
	Issue(claims token.Claims, extended bool) (token.Issued, error)
}

// LoginObserver receives one observation per Authenticate call.
// outcome is an AuditOutcome, "locked" or "error".
type LoginObserver interface {
	ObserveLogin(outcome string, elapsed time.Duration)
}

const (
	observedLocked = "locked"
	observedError  = "error"
)

type nopObserver struct{}

func (nopObserver) ObserveLogin(string, time.Duration) {}

// Option customizes an AuthService.
type Option func(*AuthService)

// WithPasswordVerifier replaces the default bcrypt verifier.
func WithPasswordVerifier(v PasswordVerifier) Option {
	return func(s *AuthService) { s.verifier = v }
}

// WithClock overrides the time source used for lockout decisions.
func WithClock(now func() time.Time) Option {
	return func(s *AuthService) { s.now = now }
}

// WithObserver reports login outcomes and latency, e.g. to metrics.
func WithObserver(o LoginObserver) Option {
	return func(s *AuthService) { s.observer = o }
}

// AuthService is the main authentication service.
// It holds no mutable state and is safe for concurrent use.
type AuthService struct {
	accountID int64
	users     UserRepository
	audit     *AuditRecorder
	tokens    TokenIssuer
	verifier  PasswordVerifier
	observer  LoginObserver
	now       func() time.Time
	logger    *zap.Logger
}

// NewAuthService creates a new AuthService bound to a single account.
func NewAuthService(accountID int64, repo AuthRepository, tokens TokenIssuer, logger *zap.Logger, opts ...Option) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &AuthService{
		accountID: accountID,
		users:     repo,
		audit:     NewAuditRecorder(repo, logger),
		tokens:    tokens,
		verifier:  BcryptVerifier{},
		observer:  nopObserver{},
		now:       time.Now,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Authenticate verifies the credentials in input and issues a session token.
//
// Failures are ErrInvalidCredentials (unknown email or wrong password, not
// distinguishable), *AccountLockedError, *StoreError or *TokenSigningError.
// Every path except the lockout one writes exactly one audit event before
// returning; a failed audit write fails the call.
func (s *AuthService) Authenticate(ctx context.Context, input LoginInput) (*LoginResult, error) {
	started := time.Now()
	outcome := observedError
	defer func() { s.observer.ObserveLogin(outcome, time.Since(started)) }()

	log := s.logger.With(zap.Int64("account_id", s.accountID))

	user, err := s.users.GetUserByEmail(ctx, s.accountID, input.Email)
	if errors.Is(err, ErrUserNotFound) {
		_, _ = s.verifier.Verify(input.Password, dummyHash())
		if err := s.audit.RecordFailure(ctx, OutcomeUnknownUser, s.accountID, nil, input.Email, input.IPAddress, input.UserAgent); err != nil {
			return nil, newStoreError("record login failure", err)
		}
		outcome = string(OutcomeUnknownUser)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		log.Error("user lookup failed", zap.Error(err))
		return nil, newStoreError("get user", err)
	}
	log = log.With(zap.Int64("user_id", user.ID))

	// A locked account is rejected before the password is looked at and
	// without an audit write.
	if d := EvaluateLockout(user.LockoutUntil, s.now()); d.Locked {
		log.Info("login rejected: account locked", zap.Int("remaining_minutes", d.RemainingMinutes))
		outcome = observedLocked
		return nil, &AccountLockedError{RemainingMinutes: d.RemainingMinutes}
	}

	ok, err := s.verifier.Verify(input.Password, user.PasswordHash)
	if err != nil {
		log.Warn("stored password hash is unusable", zap.Error(err))
	}
	if !ok {
		if err := s.audit.RecordFailure(ctx, OutcomeBadPassword, s.accountID, &user.ID, input.Email, input.IPAddress, input.UserAgent); err != nil {
			return nil, newStoreError("record login failure", err)
		}
		outcome = string(OutcomeBadPassword)
		return nil, ErrInvalidCredentials
	}

	issued, err := s.tokens.Issue(token.Claims{
		UserID:    user.ID,
		AccountID: s.accountID,
		Name:      user.Name,
	}, input.RememberLogin)
	if err != nil {
		log.Error("session token signing failed", zap.Error(err))
		return nil, &TokenSigningError{Err: err}
	}

	if err := s.audit.RecordSuccess(ctx, s.accountID, user.ID, input.IPAddress, input.UserAgent, issued.Token, issued.ExpiresAt); err != nil {
		return nil, newStoreError("record login success", err)
	}

	outcome = string(OutcomeSuccess)
	return &LoginResult{
		Token:     issued.Token,
		ExpiresAt: issued.ExpiresAt,
		User: UserSummary{
			ID:    user.ID,
			Name:  user.Name,
			Email: input.Email,
		},
	}, nil
}
