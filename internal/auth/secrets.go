package auth

import (
	"errors"
	"strings"
)

// ErrMissingSecret is returned when the signing key or pepper is not configured.
// Callers treat it as fatal at startup.
var ErrMissingSecret = errors.New("auth: secret material not configured")

// Secrets is the process-wide credential material: the HMAC signing key and the
// password pepper. It is built once at startup and never mutated.
type Secrets struct {
	signingKey []byte
	pepper     string
}

// NewSecrets validates and captures the signing key and pepper.
func NewSecrets(signingKey, pepper string) (*Secrets, error) {
	if strings.TrimSpace(signingKey) == "" {
		return nil, errors.Join(ErrMissingSecret, errors.New("signing key is empty"))
	}
	if strings.TrimSpace(pepper) == "" {
		return nil, errors.Join(ErrMissingSecret, errors.New("pepper is empty"))
	}
	return &Secrets{signingKey: []byte(signingKey), pepper: pepper}, nil
}

// SigningKeyLen reports the key length so startup can warn about short keys
// without ever handling the key itself.
func (s *Secrets) SigningKeyLen() int { return len(s.signingKey) }

func (s *Secrets) String() string   { return "auth.Secrets{REDACTED}" }
func (s *Secrets) GoString() string { return s.String() }
