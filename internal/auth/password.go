package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

const (
	AlgorithmArgon2id = "argon2id"
	AlgorithmBcrypt   = "bcrypt"
)

// Upper bounds applied when parsing a stored hash, so a corrupted row cannot make
// a single verification allocate gigabytes.
const (
	maxArgon2Memory  = 1024 * 1024 // KiB
	maxArgon2Time    = 16
	maxArgon2KeyLen  = 128
	bcryptMaxInput   = 72
	argon2SaltLength = 16
	argon2KeyLength  = 32
)

// ErrPasswordTooLong is returned by a bcrypt hasher when password+pepper exceeds
// bcrypt's 72 byte input limit.
var ErrPasswordTooLong = errors.New("auth: password too long for bcrypt")

// HashConfig selects the algorithm and work factor for new hashes.
type HashConfig struct {
	Algorithm     string
	Argon2Time    uint32
	Argon2Memory  uint32 // KiB
	Argon2Threads uint8
	BcryptCost    int
}

// ApplyDefaults fills zero values. Argon2id parameters follow the OWASP minimum
// (19 MiB, 2 iterations, 1 lane).
func (c *HashConfig) ApplyDefaults() {
	if c.Algorithm == "" {
		c.Algorithm = AlgorithmArgon2id
	}
	if c.Argon2Time == 0 {
		c.Argon2Time = 2
	}
	if c.Argon2Memory == 0 {
		c.Argon2Memory = 19 * 1024
	}
	if c.Argon2Threads == 0 {
		c.Argon2Threads = 1
	}
	if c.BcryptCost == 0 {
		c.BcryptCost = bcrypt.DefaultCost
	}
}

// Validate checks the configuration.
func (c *HashConfig) Validate() error {
	switch c.Algorithm {
	case AlgorithmArgon2id, AlgorithmBcrypt:
	default:
		return fmt.Errorf("unsupported password hash algorithm %q (use argon2id or bcrypt)", c.Algorithm)
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("bcrypt cost must be between %d and %d (got %d)", bcrypt.MinCost, bcrypt.MaxCost, c.BcryptCost)
	}
	if c.Argon2Memory > maxArgon2Memory || c.Argon2Time > maxArgon2Time {
		return errors.New("argon2id parameters exceed supported bounds")
	}
	return nil
}

// Hasher hashes and verifies peppered passwords. It is safe for concurrent use.
type Hasher struct {
	cfg    HashConfig
	pepper string
	dummy  string
}

// NewHasher builds a hasher bound to the process pepper.
func NewHasher(secrets *Secrets, cfg HashConfig) (*Hasher, error) {
	if secrets == nil || secrets.pepper == "" {
		return nil, ErrMissingSecret
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("auth: %w", err)
	}

	h := &Hasher{cfg: cfg, pepper: secrets.pepper}
	dummy, err := h.Hash(rand.Text())
	if err != nil {
		return nil, fmt.Errorf("auth: prepare dummy hash: %w", err)
	}
	h.dummy = dummy
	return h, nil
}

// Hash returns a self-describing hash of plaintext+pepper with a fresh salt.
func (h *Hasher) Hash(plaintext string) (string, error) {
	input := plaintext + h.pepper
	if h.cfg.Algorithm == AlgorithmBcrypt {
		if len(input) > bcryptMaxInput {
			return "", ErrPasswordTooLong
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(input), h.cfg.BcryptCost)
		if err != nil {
			return "", fmt.Errorf("auth: bcrypt: %w", err)
		}
		return string(hash), nil
	}

	salt := make([]byte, argon2SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("auth: generate salt: %w", err)
	}
	key := argon2.IDKey([]byte(input), salt, h.cfg.Argon2Time, h.cfg.Argon2Memory, h.cfg.Argon2Threads, argon2KeyLength)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.cfg.Argon2Memory, h.cfg.Argon2Time, h.cfg.Argon2Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether plaintext matches stored. Unknown or malformed hash
// formats return false after spending the work of a real verification.
func (h *Hasher) Verify(plaintext, stored string) bool {
	input := []byte(plaintext + h.pepper)
	match, wellFormed := compareStored(input, stored)
	if !wellFormed {
		compareStored(input, h.dummy)
		return false
	}
	return match
}

// VerifyUnknown spends the same work as a real verification and always fails.
// Login calls it when no account matches so response timing does not reveal
// whether the email is registered.
func (h *Hasher) VerifyUnknown(plaintext string) bool {
	compareStored([]byte(plaintext+h.pepper), h.dummy)
	return false
}

// NeedsRehash reports whether stored was produced with a different algorithm or
// work factor than the current configuration.
func (h *Hasher) NeedsRehash(stored string) bool {
	if h.cfg.Algorithm == AlgorithmBcrypt {
		cost, err := bcrypt.Cost([]byte(stored))
		return err != nil || cost != h.cfg.BcryptCost
	}
	params, _, _, err := parseArgon2id(stored)
	if err != nil {
		return true
	}
	return params.memory != h.cfg.Argon2Memory || params.time != h.cfg.Argon2Time || params.threads != h.cfg.Argon2Threads
}

type argon2Params struct {
	memory  uint32
	time    uint32
	threads uint8
}

func parseArgon2id(encoded string) (argon2Params, []byte, []byte, error) {
	// $argon2id$v=19$m=X,t=Y,p=Z$salt$hash
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return argon2Params{}, nil, nil, errors.New("not an argon2id hash")
	}
	if parts[2] != fmt.Sprintf("v=%d", argon2.Version) {
		return argon2Params{}, nil, nil, errors.New("unsupported argon2 version")
	}

	var p argon2Params
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.time, &p.threads); err != nil {
		return argon2Params{}, nil, nil, fmt.Errorf("parse argon2id params: %w", err)
	}
	if p.memory == 0 || p.memory > maxArgon2Memory || p.time == 0 || p.time > maxArgon2Time || p.threads == 0 {
		return argon2Params{}, nil, nil, errors.New("argon2id params out of range")
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return argon2Params{}, nil, nil, errors.New("decode argon2id salt")
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 || len(key) > maxArgon2KeyLen {
		return argon2Params{}, nil, nil, errors.New("decode argon2id hash")
	}
	return p, salt, key, nil
}

// compareStored checks input against a stored hash. wellFormed is false when
// stored is not a parseable argon2id or bcrypt hash.
func compareStored(input []byte, stored string) (match, wellFormed bool) {
	switch {
	case strings.HasPrefix(stored, "$argon2id$"):
		p, salt, expected, err := parseArgon2id(stored)
		if err != nil {
			return false, false
		}
		computed := argon2.IDKey(input, salt, p.time, p.memory, p.threads, uint32(len(expected))) // #nosec G115 -- bounded by maxArgon2KeyLen
		return subtle.ConstantTimeCompare(computed, expected) == 1, true
	case isBcrypt(stored):
		if _, err := bcrypt.Cost([]byte(stored)); err != nil {
			return false, false
		}
		return bcrypt.CompareHashAndPassword([]byte(stored), input) == nil, true
	default:
		return false, false
	}
}

func isBcrypt(stored string) bool {
	return strings.HasPrefix(stored, "$2a$") || strings.HasPrefix(stored, "$2b$") || strings.HasPrefix(stored, "$2y$")
}
