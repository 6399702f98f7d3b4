package auth

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"

	"github.com/hongminglow/homeride-be/internal/models"
)

// SessionTTL is the fixed lifetime of every session token.
const SessionTTL = 24 * time.Hour

// Claims is a validated claim set. It is kept as a map so the identity resolver
// can read every claim shape ever issued.
type Claims = jwt.MapClaims

// Validation failures. They are for logs only; HTTP callers see one uniform
// "unauthorized" response whatever the cause.
var (
	ErrMalformedToken    = errors.New("auth: malformed token")
	ErrInvalidSignature  = errors.New("auth: invalid token signature")
	ErrTokenExpired      = errors.New("auth: token expired")
	ErrTokenNotYetValid  = errors.New("auth: token not yet valid")
	ErrInvalidClaims     = errors.New("auth: invalid token claims")
	ErrIssuerMismatch    = errors.New("auth: issuer mismatch")
	ErrAudienceMismatch  = errors.New("auth: audience mismatch")
	errUnexpectedSigning = errors.New("unexpected signing method")
)

// TokenManager issues and validates HS256 session tokens.
type TokenManager struct {
	secrets  *Secrets
	issuer   string
	audience string
	now      func() time.Time
}

// NewTokenManager creates a manager. An empty issuer or audience disables that
// check during validation and omits the claim when issuing.
func NewTokenManager(secrets *Secrets, issuer, audience string) (*TokenManager, error) {
	if secrets == nil || len(secrets.signingKey) == 0 {
		return nil, ErrMissingSecret
	}
	return &TokenManager{
		secrets:  secrets,
		issuer:   issuer,
		audience: audience,
		now:      time.Now,
	}, nil
}

// WithClock returns a copy of the manager that reads time from now.
func (t *TokenManager) WithClock(now func() time.Time) *TokenManager {
	cp := *t
	cp.now = now
	return &cp
}

// Issue signs a token for account and returns it with its expiry.
func (t *TokenManager) Issue(account models.Account) (string, time.Time, error) {
	// Claims carry whole seconds; truncate so the returned expiry matches exp.
	now := t.now().UTC().Truncate(time.Second)
	expiresAt := now.Add(SessionTTL)
	subject := account.ID.String()

	claims := jwt.MapClaims{
		"sub":        subject,
		"user_id":    subject,
		"email":      account.Email,
		"first_name": account.FirstName,
		"last_name":  account.LastName,
		"iat":        now.Unix(),
		"nbf":        now.Unix(),
		"exp":        expiresAt.Unix(),
		"jti":        ulid.Make().String(),
	}
	if t.issuer != "" {
		claims["iss"] = t.issuer
	}
	if t.audience != "" {
		claims["aud"] = t.audience
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secrets.signingKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Validate verifies, in order, the signature, expiry, issuer and audience of raw.
func (t *TokenManager) Validate(raw string) (Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)

	claims := jwt.MapClaims{}
	token, err := parser.ParseWithClaims(raw, claims, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errUnexpectedSigning
		}
		return t.secrets.signingKey, nil
	})
	if err != nil {
		return nil, classify(err)
	}
	if !token.Valid {
		return nil, ErrInvalidClaims
	}

	if t.issuer != "" {
		iss, err := claims.GetIssuer()
		if err != nil || iss != t.issuer {
			return nil, ErrIssuerMismatch
		}
	}
	if t.audience != "" {
		aud, err := claims.GetAudience()
		if err != nil || !slices.Contains(aud, t.audience) {
			return nil, ErrAudienceMismatch
		}
	}
	return claims, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", ErrMalformedToken, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return ErrTokenNotYetValid
	default:
		return fmt.Errorf("%w: %v", ErrInvalidClaims, err)
	}
}
