package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestAuditRecorder_RecordFailure(t *testing.T) {
	repo := newFakeRepo()
	rec := NewAuditRecorder(repo, zap.NewNop())
	uid := int64(3)

	require.NoError(t, rec.RecordFailure(context.Background(), OutcomeBadPassword, 1, &uid, "bob@example.com", "10.0.0.1", "curl"))
	require.NoError(t, rec.RecordFailure(context.Background(), OutcomeUnknownUser, 1, nil, "eve@example.com", "10.0.0.2", "curl"))

	require.Len(t, repo.failures, 2)
	assert.Equal(t, AuditEvent{
		Outcome:   OutcomeBadPassword,
		AccountID: 1,
		UserID:    &uid,
		Email:     "bob@example.com",
		IPAddress: "10.0.0.1",
		UserAgent: "curl",
	}, repo.failures[0])
	assert.Equal(t, OutcomeUnknownUser, repo.failures[1].Outcome)
}

func TestAuditRecorder_RejectsSuccessAsFailureKind(t *testing.T) {
	repo := newFakeRepo()
	rec := NewAuditRecorder(repo, nil)

	err := rec.RecordFailure(context.Background(), OutcomeSuccess, 1, nil, "a@example.com", "", "")
	assert.Error(t, err)
	assert.Equal(t, 0, repo.auditWrites())
}

func TestAuditRecorder_RecordSuccess(t *testing.T) {
	repo := newFakeRepo()
	rec := NewAuditRecorder(repo, zap.NewNop())
	exp := time.Now().Add(time.Hour)

	require.NoError(t, rec.RecordSuccess(context.Background(), 1, 5, "10.0.0.1", "curl", "tok", exp))

	require.Len(t, repo.successes, 1)
	ev := repo.successes[0]
	assert.Equal(t, OutcomeSuccess, ev.Outcome)
	assert.Equal(t, "tok", ev.Token)
	assert.True(t, ev.ExpiresAt.Equal(exp))
	require.NotNil(t, ev.UserID)
	assert.Equal(t, int64(5), *ev.UserID)
}

func TestAuditRecorder_PropagatesStoreErrors(t *testing.T) {
	repo := newFakeRepo()
	repo.failureErr = errors.New("no space")
	repo.successErr = errors.New("no space")
	rec := NewAuditRecorder(repo, zap.NewNop())

	assert.Error(t, rec.RecordFailure(context.Background(), OutcomeUnknownUser, 1, nil, "a@example.com", "", ""))
	assert.Error(t, rec.RecordSuccess(context.Background(), 1, 1, "", "", "tok", time.Now()))
}

func TestAuditRecorder_LogNeverContainsSecrets(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	repo := newFakeRepo()
	rec := NewAuditRecorder(repo, zap.New(core))

	require.NoError(t, rec.RecordSuccess(context.Background(), 1, 5, "10.0.0.1", "curl", "header.payload.signature", time.Now()))
	require.NoError(t, rec.RecordFailure(context.Background(), OutcomeUnknownUser, 1, nil, "mallory@example.com", "10.0.0.1", "curl"))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zap.InfoLevel, entries[0].Level)
	assert.Equal(t, zap.WarnLevel, entries[1].Level)
	for _, e := range entries {
		for k, v := range e.ContextMap() {
			s, _ := v.(string)
			assert.False(t, strings.Contains(s, "header.payload.signature"), k)
			assert.False(t, strings.Contains(s, "mallory@example.com"), k)
		}
	}
}
