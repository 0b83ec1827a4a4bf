package password

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the work factor used when none is configured.
const DefaultCost = 10

var (
	// ErrEncoding is returned when the plaintext cannot be hashed.
	ErrEncoding = errors.New("password: invalid input encoding")
	// ErrInvalidDigestFormat is returned when a stored digest cannot be parsed.
	ErrInvalidDigestFormat = errors.New("password: invalid digest format")
	// ErrInvalidCost is returned by New for a cost outside bcrypt's range.
	ErrInvalidCost = errors.New("password: invalid bcrypt cost")
)

// Hasher hashes and verifies passwords with bcrypt.
type Hasher struct {
	cost int
}

// New creates a Hasher with the given bcrypt cost.
// A zero cost selects DefaultCost.
func New(cost int) (*Hasher, error) {
	if cost == 0 {
		cost = DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCost, cost)
	}
	return &Hasher{cost: cost}, nil
}

// Cost returns the configured work factor.
func (h *Hasher) Cost() int {
	return h.cost
}

// Hash returns a salted bcrypt digest of plaintext.
func (h *Hasher) Hash(plaintext string) (string, error) {
	if !utf8.ValidString(plaintext) {
		return "", ErrEncoding
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		// bcrypt only rejects input it cannot encode (e.g. longer than 72 bytes)
		return "", fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	return string(digest), nil
}

// Verify compares plaintext against digest in constant time.
// A mismatch is reported as false with a nil error; only a digest that
// cannot be parsed at all yields ErrInvalidDigestFormat.
func (h *Hasher) Verify(plaintext, digest string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}

	var (
		prefixErr  bcrypt.InvalidHashPrefixError
		costErr    bcrypt.InvalidCostError
		versionErr bcrypt.HashVersionTooNewError
	)
	switch {
	case errors.Is(err, bcrypt.ErrHashTooShort),
		errors.As(err, &prefixErr),
		errors.As(err, &costErr),
		errors.As(err, &versionErr):
		return false, fmt.Errorf("%w: %v", ErrInvalidDigestFormat, err)
	}

	// Anything else (e.g. corrupted base64 salt) is a plain mismatch.
	return false, nil
}
