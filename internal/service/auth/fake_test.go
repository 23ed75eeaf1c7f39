package auth

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/r2r72/login-service/internal/service/token"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// fakeRepo is an in-memory AuthRepository.
type fakeRepo struct {
	mu        sync.Mutex
	users     map[string]*User // key: lowercased email
	failures  []AuditEvent
	successes []AuditEvent
	lookups   int

	lookupErr  error
	failureErr error
	successErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: map[string]*User{}}
}

func (r *fakeRepo) addUser(email string, u *User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[strings.ToLower(email)] = u
}

func (r *fakeRepo) GetUserByEmail(_ context.Context, accountID int64, email string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lookups++
	if r.lookupErr != nil {
		return nil, r.lookupErr
	}
	u, ok := r.users[strings.ToLower(email)]
	if !ok || u.AccountID != accountID {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeRepo) RecordLoginFailure(_ context.Context, e *AuditEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failureErr != nil {
		return r.failureErr
	}
	r.failures = append(r.failures, *e)
	return nil
}

func (r *fakeRepo) RecordLoginSuccess(_ context.Context, e *AuditEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.successErr != nil {
		return r.successErr
	}
	r.successes = append(r.successes, *e)
	return nil
}

func (r *fakeRepo) auditWrites() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.failures) + len(r.successes)
}

// spyVerifier counts calls and delegates to bcrypt.
type spyVerifier struct {
	mu    sync.Mutex
	calls int
}

func (v *spyVerifier) Verify(password, hash string) (bool, error) {
	v.mu.Lock()
	v.calls++
	v.mu.Unlock()
	return BcryptVerifier{}.Verify(password, hash)
}

func (v *spyVerifier) count() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.calls
}

type failingIssuer struct{ err error }

func (f failingIssuer) Issue(token.Claims, bool) (token.Issued, error) {
	return token.Issued{}, f.err
}

type recordingObserver struct {
	mu       sync.Mutex
	outcomes []string
}

func (o *recordingObserver) ObserveLogin(outcome string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes = append(o.outcomes, outcome)
}

// cheapHash keeps tests fast; production hashes use BcryptCost.
func cheapHash(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func newTestCodec(t *testing.T) *token.Codec {
	t.Helper()
	c, err := token.NewCodec(token.Config{
		Secret:         []byte("0123456789abcdef0123456789abcdef"),
		Algorithm:      "HS256",
		Expiry:         8 * time.Hour,
		ExtendedExpiry: 30 * 24 * time.Hour,
	}, zap.NewNop())
	require.NoError(t, err)
	return c
}
