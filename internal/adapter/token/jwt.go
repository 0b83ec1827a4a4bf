package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL is the token lifetime used when none is configured.
const DefaultTTL = time.Hour

var (
	ErrMissingSecret = errors.New("token: missing signing secret")
	ErrTokenMissing  = errors.New("token: missing")
	ErrTokenInvalid  = errors.New("token: invalid")
	ErrTokenExpired  = errors.New("token: expired")
)

// Claim is the identity carried by a bearer token.
type Claim struct {
	Subject   int64     // Subject is the user id
	IssuedAt  time.Time // IssuedAt is the signing time
	ExpiresAt time.Time // ExpiresAt is the instant after which the token is rejected
}

// Service signs and verifies HS256 bearer tokens with a process-wide secret.
type Service struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithClock overrides the time source, used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// New creates a token Service. A non-positive ttl selects DefaultTTL.
func New(secret string, ttl time.Duration, opts ...Option) (*Service, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	s := &Service{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Issue signs claim. Zero IssuedAt/ExpiresAt are filled from the clock and TTL.
func (s *Service) Issue(claim Claim) (string, error) {
	if claim.IssuedAt.IsZero() {
		claim.IssuedAt = s.now()
	}
	if claim.ExpiresAt.IsZero() {
		claim.ExpiresAt = claim.IssuedAt.Add(s.ttl)
	}

	registered := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(claim.Subject, 10),
		IssuedAt:  jwt.NewNumericDate(claim.IssuedAt),
		ExpiresAt: jwt.NewNumericDate(claim.ExpiresAt),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, registered).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// IssueFor signs a fresh claim for userID.
func (s *Service) IssueFor(userID int64) (string, error) {
	return s.Issue(Claim{Subject: userID})
}

// Verify checks the signature and expiry of raw and returns its claim.
func (s *Service) Verify(raw string) (*Claim, error) {
	if raw == "" {
		return nil, ErrTokenMissing
	}

	registered := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(raw, registered, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !parsed.Valid {
		return nil, ErrTokenInvalid
	}

	subject, err := strconv.ParseInt(registered.Subject, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: subject %q", ErrTokenInvalid, registered.Subject)
	}

	claim := &Claim{Subject: subject}
	if registered.IssuedAt != nil {
		claim.IssuedAt = registered.IssuedAt.Time
	}
	if registered.ExpiresAt != nil {
		claim.ExpiresAt = registered.ExpiresAt.Time
	}
	return claim, nil
}
