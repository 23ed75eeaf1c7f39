package auth

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// AuditRecorder writes one audit event per login attempt and mirrors it to
// the structured log. It has no retry logic of its own.
type AuditRecorder struct {
	store  AuditStore
	logger *zap.Logger
}

// NewAuditRecorder creates an AuditRecorder.
func NewAuditRecorder(store AuditStore, logger *zap.Logger) *AuditRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditRecorder{store: store, logger: logger}
}

// RecordFailure records an unknown_user or bad_password attempt.
// userID is nil for unknown_user.
func (r *AuditRecorder) RecordFailure(ctx context.Context, kind AuditOutcome, accountID int64, userID *int64, email, ip, userAgent string) error {
	if kind != OutcomeUnknownUser && kind != OutcomeBadPassword {
		return fmt.Errorf("audit: %q is not a failure outcome", kind)
	}
	event := &AuditEvent{
		Outcome:   kind,
		AccountID: accountID,
		UserID:    userID,
		Email:     email,
		IPAddress: ip,
		UserAgent: userAgent,
	}
	if err := r.store.RecordLoginFailure(ctx, event); err != nil {
		r.logWriteError(event, err)
		return err
	}
	r.log(event)
	return nil
}

// RecordSuccess records a successful login together with the issued token.
func (r *AuditRecorder) RecordSuccess(ctx context.Context, accountID, userID int64, ip, userAgent, token string, expiresAt time.Time) error {
	event := &AuditEvent{
		Outcome:   OutcomeSuccess,
		AccountID: accountID,
		UserID:    &userID,
		IPAddress: ip,
		UserAgent: userAgent,
		Token:     token,
		ExpiresAt: expiresAt,
	}
	if err := r.store.RecordLoginSuccess(ctx, event); err != nil {
		r.logWriteError(event, err)
		return err
	}
	r.log(event)
	return nil
}

// log never includes the token or the email.
func (r *AuditRecorder) log(event *AuditEvent) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("event_type", string(event.Outcome)),
		zap.Int64("account_id", event.AccountID),
		zap.String("ip", event.IPAddress),
	}
	if event.UserID != nil {
		fields = append(fields, zap.Int64("user_id", *event.UserID))
	}

	if event.Outcome == OutcomeSuccess {
		fields = append(fields, zap.Time("expires_at", event.ExpiresAt))
		r.logger.Info("audit event", fields...)
	} else {
		r.logger.Warn("audit event", fields...)
	}
}

func (r *AuditRecorder) logWriteError(event *AuditEvent, err error) {
	r.logger.Error("failed to store audit event",
		zap.Error(err),
		zap.String("event_type", string(event.Outcome)),
		zap.Int64("account_id", event.AccountID),
	)
}
