package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/hongminglow/homeride-be/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// AccountStore captures persistence operations for accounts. Uniqueness of email
// (case-insensitive) and phone is enforced by the implementation, not the caller.
type AccountStore interface {
	CreateAccount(ctx context.Context, account models.Account) (models.Account, error)
	AccountByID(ctx context.Context, id uuid.UUID) (models.Account, error)
	AccountByEmail(ctx context.Context, email string) (models.Account, error)
	UpdateAccountProfile(ctx context.Context, account models.Account) (models.Account, error)
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
}

// DriverStore persists driver profiles.
type DriverStore interface {
	CreateDriver(ctx context.Context, driver models.DriverProfile) (models.DriverProfile, error)
	DriverByID(ctx context.Context, id uuid.UUID) (models.DriverProfile, error)
	UpdateDriver(ctx context.Context, driver models.DriverProfile) (models.DriverProfile, error)
}

// CustomerStore persists customer profiles.
type CustomerStore interface {
	CreateCustomer(ctx context.Context, customer models.CustomerProfile) (models.CustomerProfile, error)
	CustomerByID(ctx context.Context, id uuid.UUID) (models.CustomerProfile, error)
	UpdateCustomer(ctx context.Context, customer models.CustomerProfile) (models.CustomerProfile, error)
}

// Store is the full persistence surface used by the server.
type Store interface {
	AccountStore
	DriverStore
	CustomerStore
	Close()
}
