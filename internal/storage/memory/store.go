// Package memory is an in-process implementation of storage.Store used by tests
// and by `homeride serve --in-memory`.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hongminglow/homeride-be/internal/models"
	"github.com/hongminglow/homeride-be/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// Store keeps every record in maps guarded by a single mutex, which gives the
// same uniqueness guarantees as the Postgres indexes.
type Store struct {
	mu        sync.RWMutex
	accounts  map[uuid.UUID]models.Account
	byEmail   map[string]uuid.UUID
	byPhone   map[string]uuid.UUID
	drivers   map[uuid.UUID]models.DriverProfile
	customers map[uuid.UUID]models.CustomerProfile
	now       func() time.Time
}

// New returns an empty store.
func New() *Store {
	return &Store{
		accounts:  make(map[uuid.UUID]models.Account),
		byEmail:   make(map[string]uuid.UUID),
		byPhone:   make(map[string]uuid.UUID),
		drivers:   make(map[uuid.UUID]models.DriverProfile),
		customers: make(map[uuid.UUID]models.CustomerProfile),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Close() {}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Store) CreateAccount(_ context.Context, account models.Account) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := emailKey(account.Email)
	if _, ok := s.accounts[account.ID]; ok {
		return models.Account{}, storage.ErrAlreadyExists
	}
	if _, ok := s.byEmail[email]; ok {
		return models.Account{}, storage.ErrAlreadyExists
	}
	if _, ok := s.byPhone[account.Phone]; ok {
		return models.Account{}, storage.ErrAlreadyExists
	}

	account.Email = email
	account.CreatedAt = s.now()
	account.UpdatedAt = nil
	s.accounts[account.ID] = account
	s.byEmail[email] = account.ID
	s.byPhone[account.Phone] = account.ID
	return account, nil
}

func (s *Store) AccountByID(_ context.Context, id uuid.UUID) (models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, ok := s.accounts[id]
	if !ok {
		return models.Account{}, storage.ErrNotFound
	}
	return account, nil
}

func (s *Store) AccountByEmail(_ context.Context, email string) (models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[emailKey(email)]
	if !ok {
		return models.Account{}, storage.ErrNotFound
	}
	return s.accounts[id], nil
}

func (s *Store) UpdateAccountProfile(_ context.Context, account models.Account) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.accounts[account.ID]
	if !ok {
		return models.Account{}, storage.ErrNotFound
	}
	if owner, taken := s.byPhone[account.Phone]; taken && owner != account.ID {
		return models.Account{}, storage.ErrAlreadyExists
	}

	delete(s.byPhone, current.Phone)
	current.FirstName = account.FirstName
	current.LastName = account.LastName
	current.Phone = account.Phone
	now := s.now()
	current.UpdatedAt = &now
	s.accounts[current.ID] = current
	s.byPhone[current.Phone] = current.ID
	return current, nil
}

func (s *Store) UpdatePasswordHash(_ context.Context, id uuid.UUID, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.accounts[id]
	if !ok {
		return storage.ErrNotFound
	}
	current.PasswordHash = hash
	now := s.now()
	current.UpdatedAt = &now
	s.accounts[id] = current
	return nil
}

func (s *Store) CreateDriver(_ context.Context, driver models.DriverProfile) (models.DriverProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.drivers[driver.ID]; ok {
		return models.DriverProfile{}, storage.ErrAlreadyExists
	}
	driver.CreatedAt = s.now()
	driver.UpdatedAt = nil
	s.drivers[driver.ID] = driver
	return driver, nil
}

func (s *Store) DriverByID(_ context.Context, id uuid.UUID) (models.DriverProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	driver, ok := s.drivers[id]
	if !ok {
		return models.DriverProfile{}, storage.ErrNotFound
	}
	return driver, nil
}

func (s *Store) UpdateDriver(_ context.Context, driver models.DriverProfile) (models.DriverProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.drivers[driver.ID]
	if !ok {
		return models.DriverProfile{}, storage.ErrNotFound
	}
	current.DisplayName = driver.DisplayName
	current.Phone = driver.Phone
	current.LicenseNumber = driver.LicenseNumber
	current.Available = driver.Available
	now := s.now()
	current.UpdatedAt = &now
	s.drivers[current.ID] = current
	return current, nil
}

func (s *Store) CreateCustomer(_ context.Context, customer models.CustomerProfile) (models.CustomerProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.customers[customer.ID]; ok {
		return models.CustomerProfile{}, storage.ErrAlreadyExists
	}
	customer.CreatedAt = s.now()
	customer.UpdatedAt = nil
	s.customers[customer.ID] = customer
	return customer, nil
}

func (s *Store) CustomerByID(_ context.Context, id uuid.UUID) (models.CustomerProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	customer, ok := s.customers[id]
	if !ok {
		return models.CustomerProfile{}, storage.ErrNotFound
	}
	return customer, nil
}

func (s *Store) UpdateCustomer(_ context.Context, customer models.CustomerProfile) (models.CustomerProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.customers[customer.ID]
	if !ok {
		return models.CustomerProfile{}, storage.ErrNotFound
	}
	current.DisplayName = customer.DisplayName
	current.Phone = customer.Phone
	current.HomeAddress = customer.HomeAddress
	now := s.now()
	current.UpdatedAt = &now
	s.customers[current.ID] = current
	return current, nil
}
