// Package service holds the account and profile use cases. Handlers decode and
// validate input; services own credential checks, token issuance and ownership
// enforcement.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hongminglow/homeride-be/internal/models"
	"github.com/hongminglow/homeride-be/internal/models/dto"
	"github.com/hongminglow/homeride-be/internal/storage"
)

// ErrInvalidCredentials is the single outcome of every failed credential check,
// whether the email is unknown or the password is wrong.
var ErrInvalidCredentials = errors.New("invalid credentials")

// PasswordHasher is satisfied by *auth.Hasher.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, stored string) bool
	VerifyUnknown(plaintext string) bool
	NeedsRehash(stored string) bool
}

// TokenIssuer is satisfied by *auth.TokenManager.
type TokenIssuer interface {
	Issue(account models.Account) (string, time.Time, error)
}

// Session is a freshly issued token and the account it belongs to.
type Session struct {
	Token     string
	ExpiresAt time.Time
	Account   models.Account
}

// AccountService implements registration, login and self-service account changes.
type AccountService struct {
	store  storage.AccountStore
	hasher PasswordHasher
	tokens TokenIssuer
	log    zerolog.Logger
}

func NewAccountService(store storage.AccountStore, hasher PasswordHasher, tokens TokenIssuer, log zerolog.Logger) *AccountService {
	return &AccountService{
		store:  store,
		hasher: hasher,
		tokens: tokens,
		log:    log.With().Str("component", "accounts").Logger(),
	}
}

// Register creates an account and signs the caller in. A duplicate email or
// phone yields storage.ErrAlreadyExists and nothing is written.
func (s *AccountService) Register(ctx context.Context, req dto.RegisterRequest) (Session, error) {
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return Session{}, fmt.Errorf("hash password: %w", err)
	}

	account := models.Account{
		ID:           uuid.New(),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        normalizeEmail(req.Email),
		Phone:        strings.TrimSpace(req.Phone),
		PasswordHash: hash,
	}
	created, err := s.store.CreateAccount(ctx, account)
	if err != nil {
		return Session{}, fmt.Errorf("create account: %w", err)
	}

	s.logger(ctx).Info().Str("event", "account.registered").Str("account_id", created.ID.String()).Msg("account registered")
	return s.issue(created)
}

// Login verifies email and password. Unknown emails still cost one hash
// verification so both failure paths take comparable time.
func (s *AccountService) Login(ctx context.Context, email, password string) (Session, error) {
	log := s.logger(ctx)

	account, err := s.store.AccountByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, storage.ErrNotFound) {
		s.hasher.VerifyUnknown(password)
		log.Info().Str("event", "login.failed").Msg("login failed")
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, fmt.Errorf("load account: %w", err)
	}

	if !s.hasher.Verify(password, account.PasswordHash) {
		log.Info().Str("event", "login.failed").Str("account_id", account.ID.String()).Msg("login failed")
		return Session{}, ErrInvalidCredentials
	}

	if s.hasher.NeedsRehash(account.PasswordHash) {
		s.rehash(ctx, account, password)
	}
	return s.issue(account)
}

// rehash upgrades a legacy or outdated hash. Failure only costs the upgrade.
func (s *AccountService) rehash(ctx context.Context, account models.Account, password string) {
	log := s.logger(ctx).With().Str("account_id", account.ID.String()).Logger()
	hash, err := s.hasher.Hash(password)
	if err != nil {
		log.Warn().Err(err).Msg("rehash password")
		return
	}
	if err := s.store.UpdatePasswordHash(ctx, account.ID, hash); err != nil {
		log.Warn().Err(err).Msg("store rehashed password")
		return
	}
	log.Info().Str("event", "password.rehashed").Msg("password hash upgraded")
}

// ChangePassword re-verifies the current password before storing a new hash.
// Tokens issued earlier stay valid until they expire.
func (s *AccountService) ChangePassword(ctx context.Context, subject uuid.UUID, req dto.ChangePasswordRequest) error {
	account, err := s.store.AccountByID(ctx, subject)
	if err != nil {
		return fmt.Errorf("load account: %w", err)
	}
	if !s.hasher.Verify(req.CurrentPassword, account.PasswordHash) {
		s.logger(ctx).Info().Str("event", "password.change_rejected").Str("account_id", subject.String()).Msg("current password mismatch")
		return ErrInvalidCredentials
	}

	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.store.UpdatePasswordHash(ctx, subject, hash); err != nil {
		return fmt.Errorf("store password: %w", err)
	}

	s.logger(ctx).Info().Bool("audit", true).Str("event", "password.changed").Str("account_id", subject.String()).Msg("password changed")
	return nil
}

// Get returns the caller's account.
func (s *AccountService) Get(ctx context.Context, subject uuid.UUID) (models.Account, error) {
	account, err := s.store.AccountByID(ctx, subject)
	if err != nil {
		return models.Account{}, fmt.Errorf("load account: %w", err)
	}
	return account, nil
}

// UpdateProfile applies the non-nil fields of req to the caller's account.
func (s *AccountService) UpdateProfile(ctx context.Context, subject uuid.UUID, req dto.UpdateProfileRequest) (models.Account, error) {
	account, err := s.store.AccountByID(ctx, subject)
	if err != nil {
		return models.Account{}, fmt.Errorf("load account: %w", err)
	}
	if req.FirstName != nil {
		account.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		account.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Phone != nil {
		account.Phone = strings.TrimSpace(*req.Phone)
	}

	updated, err := s.store.UpdateAccountProfile(ctx, account)
	if err != nil {
		return models.Account{}, fmt.Errorf("update account: %w", err)
	}
	return updated, nil
}

func (s *AccountService) issue(account models.Account) (Session, error) {
	token, expiresAt, err := s.tokens.Issue(account)
	if err != nil {
		return Session{}, fmt.Errorf("issue token: %w", err)
	}
	return Session{Token: token, ExpiresAt: expiresAt, Account: account}, nil
}

func (s *AccountService) logger(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &s.log
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
