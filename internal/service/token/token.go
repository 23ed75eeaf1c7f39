// Package token issues and verifies signed session tokens.
//
// Tokens are compact JWTs signed with a symmetric secret. The wire claims are
//
//	{ "idUser", "idAccount", "name", "exp", "iat", "jti" }
//
// Verification failures are reported as a single ErrInvalidToken; the
// underlying reason only goes to the debug log.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MinSecretLength is the minimum accepted HMAC secret length in bytes.
const MinSecretLength = 32

var (
	ErrInvalidToken = errors.New("invalid session token")
	ErrWeakSecret   = errors.New("token secret must be at least 32 bytes")
)

// Claims is the identity carried by a session token.
type Claims struct {
	UserID    int64
	AccountID int64
	Name      string
}

// Issued is a freshly signed token together with its expiry.
type Issued struct {
	Token     string
	ExpiresAt time.Time
}

// Config holds the signing parameters. Both durations are required.
type Config struct {
	Secret         []byte
	Algorithm      string // HS256, HS384 or HS512
	Expiry         time.Duration
	ExtendedExpiry time.Duration // used for "remember me" sessions
}

// Option customizes a Codec.
type Option func(*Codec)

// WithClock overrides the time source used for issuing and verifying.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) { c.now = now }
}

// Codec signs and verifies session tokens. It is safe for concurrent use.
type Codec struct {
	secret         []byte
	method         *jwt.SigningMethodHMAC
	expiry         time.Duration
	extendedExpiry time.Duration
	now            func() time.Time
	logger         *zap.Logger
}

// sessionClaims is the JWT payload.
type sessionClaims struct {
	UserID    int64  `json:"idUser"`
	AccountID int64  `json:"idAccount"`
	Name      string `json:"name"`
	jwt.RegisteredClaims
}

// NewCodec validates cfg and returns a Codec.
func NewCodec(cfg Config, logger *zap.Logger, opts ...Option) (*Codec, error) {
	if len(cfg.Secret) < MinSecretLength {
		return nil, ErrWeakSecret
	}
	method, ok := jwt.GetSigningMethod(cfg.Algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("unsupported signing algorithm %q", cfg.Algorithm)
	}
	// NumericDate has second precision; anything shorter could produce a
	// token that is already expired when it is handed out.
	if cfg.Expiry < time.Second || cfg.ExtendedExpiry < time.Second {
		return nil, fmt.Errorf("token expiry durations must be at least 1s (got %s and %s)", cfg.Expiry, cfg.ExtendedExpiry)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Codec{
		secret:         cfg.Secret,
		method:         method,
		expiry:         cfg.Expiry,
		extendedExpiry: cfg.ExtendedExpiry,
		now:            time.Now,
		logger:         logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Issue signs claims. extended selects the "remember me" lifetime.
// ExpiresAt is read back from the signed token's exp claim.
func (c *Codec) Issue(claims Claims, extended bool) (Issued, error) {
	lifetime := c.expiry
	if extended {
		lifetime = c.extendedExpiry
	}
	now := c.now()

	payload := sessionClaims{
		UserID:    claims.UserID,
		AccountID: claims.AccountID,
		Name:      claims.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
		},
	}

	signed, err := jwt.NewWithClaims(c.method, payload).SignedString(c.secret)
	if err != nil {
		return Issued{}, fmt.Errorf("sign session token: %w", err)
	}

	expiresAt, err := decodeExpiry(signed)
	if err != nil {
		return Issued{}, err
	}
	return Issued{Token: signed, ExpiresAt: expiresAt}, nil
}

// Verify checks signature, algorithm and expiry and returns the embedded claims.
func (c *Codec) Verify(tokenString string) (Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)

	var payload sessionClaims
	tok, err := parser.ParseWithClaims(tokenString, &payload, func(*jwt.Token) (interface{}, error) {
		return c.secret, nil
	})
	if err != nil {
		c.logger.Debug("session token rejected", zap.Error(err))
		return Claims{}, ErrInvalidToken
	}
	if !tok.Valid || payload.UserID == 0 || payload.AccountID == 0 {
		c.logger.Debug("session token rejected", zap.String("reason", "missing identity claims"))
		return Claims{}, ErrInvalidToken
	}

	return Claims{
		UserID:    payload.UserID,
		AccountID: payload.AccountID,
		Name:      payload.Name,
	}, nil
}

func decodeExpiry(signed string) (time.Time, error) {
	var payload sessionClaims
	if _, _, err := jwt.NewParser().ParseUnverified(signed, &payload); err != nil {
		return time.Time{}, fmt.Errorf("decode issued token: %w", err)
	}
	exp, err := payload.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, fmt.Errorf("decode issued token: missing exp claim")
	}
	return exp.Time, nil
}
