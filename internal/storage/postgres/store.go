package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hongminglow/homeride-be/internal/models"
	"github.com/hongminglow/homeride-be/internal/storage"
)

// Ensure Store satisfies the storage.Store interface at compile time.
var _ storage.Store = (*Store)(nil)

const uniqueViolation = "23505"

// Store provides Postgres-backed persistence for accounts and profiles.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore connects to the database. It does not apply migrations; call MigrateUp
// or run `homeride migrate up` first.
func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Close releases database resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

const accountColumns = `id, first_name, last_name, email, phone, password_hash, created_at, updated_at`

// CreateAccount inserts a new account row. A duplicate email or phone, including
// one inserted by a concurrent request, yields storage.ErrAlreadyExists.
func (s *Store) CreateAccount(ctx context.Context, account models.Account) (models.Account, error) {
	const query = `
		INSERT INTO accounts (id, first_name, last_name, email, phone, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + accountColumns
	row := s.pool.QueryRow(ctx, query,
		account.ID, account.FirstName, account.LastName,
		strings.ToLower(account.Email), account.Phone, account.PasswordHash,
	)
	created, err := scanAccount(row)
	if err != nil {
		return models.Account{}, mapWriteError(err)
	}
	return created, nil
}

// AccountByID fetches an account by its id.
func (s *Store) AccountByID(ctx context.Context, id uuid.UUID) (models.Account, error) {
	const query = `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return scanAccount(s.pool.QueryRow(ctx, query, id))
}

// AccountByEmail fetches an account by email, ignoring case.
func (s *Store) AccountByEmail(ctx context.Context, email string) (models.Account, error) {
	const query = `SELECT ` + accountColumns + ` FROM accounts WHERE lower(email) = lower($1)`
	return scanAccount(s.pool.QueryRow(ctx, query, strings.TrimSpace(email)))
}

// UpdateAccountProfile writes the mutable profile fields of an account.
func (s *Store) UpdateAccountProfile(ctx context.Context, account models.Account) (models.Account, error) {
	const query = `
		UPDATE accounts
		SET first_name = $2, last_name = $3, phone = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + accountColumns
	row := s.pool.QueryRow(ctx, query, account.ID, account.FirstName, account.LastName, account.Phone)
	updated, err := scanAccount(row)
	if err != nil {
		return models.Account{}, mapWriteError(err)
	}
	return updated, nil
}

// UpdatePasswordHash replaces the stored hash of an account.
func (s *Store) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	const query = `UPDATE accounts SET password_hash = $2, updated_at = NOW() WHERE id = $1`
	tag, err := s.pool.Exec(ctx, query, id, hash)
	if err != nil {
		return fmt.Errorf("update password hash: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

const driverColumns = `id, account_id, display_name, phone, license_number, available, created_at, updated_at`

// CreateDriver inserts a driver profile.
func (s *Store) CreateDriver(ctx context.Context, driver models.DriverProfile) (models.DriverProfile, error) {
	const query = `
		INSERT INTO driver_profiles (id, account_id, display_name, phone, license_number, available)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + driverColumns
	row := s.pool.QueryRow(ctx, query,
		driver.ID, driver.AccountID, driver.DisplayName, driver.Phone, driver.LicenseNumber, driver.Available,
	)
	created, err := scanDriver(row)
	if err != nil {
		return models.DriverProfile{}, mapWriteError(err)
	}
	return created, nil
}

// DriverByID fetches a driver profile.
func (s *Store) DriverByID(ctx context.Context, id uuid.UUID) (models.DriverProfile, error) {
	const query = `SELECT ` + driverColumns + ` FROM driver_profiles WHERE id = $1`
	return scanDriver(s.pool.QueryRow(ctx, query, id))
}

// UpdateDriver writes the mutable fields of a driver profile. The ownership link
// is not touched here.
func (s *Store) UpdateDriver(ctx context.Context, driver models.DriverProfile) (models.DriverProfile, error) {
	const query = `
		UPDATE driver_profiles
		SET display_name = $2, phone = $3, license_number = $4, available = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + driverColumns
	row := s.pool.QueryRow(ctx, query,
		driver.ID, driver.DisplayName, driver.Phone, driver.LicenseNumber, driver.Available,
	)
	updated, err := scanDriver(row)
	if err != nil {
		return models.DriverProfile{}, mapWriteError(err)
	}
	return updated, nil
}

const customerColumns = `id, account_id, display_name, phone, home_address, created_at, updated_at`

// CreateCustomer inserts a customer profile.
func (s *Store) CreateCustomer(ctx context.Context, customer models.CustomerProfile) (models.CustomerProfile, error) {
	const query = `
		INSERT INTO customer_profiles (id, account_id, display_name, phone, home_address)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + customerColumns
	row := s.pool.QueryRow(ctx, query,
		customer.ID, customer.AccountID, customer.DisplayName, customer.Phone, customer.HomeAddress,
	)
	created, err := scanCustomer(row)
	if err != nil {
		return models.CustomerProfile{}, mapWriteError(err)
	}
	return created, nil
}

// CustomerByID fetches a customer profile.
func (s *Store) CustomerByID(ctx context.Context, id uuid.UUID) (models.CustomerProfile, error) {
	const query = `SELECT ` + customerColumns + ` FROM customer_profiles WHERE id = $1`
	return scanCustomer(s.pool.QueryRow(ctx, query, id))
}

// UpdateCustomer writes the mutable fields of a customer profile.
func (s *Store) UpdateCustomer(ctx context.Context, customer models.CustomerProfile) (models.CustomerProfile, error) {
	const query = `
		UPDATE customer_profiles
		SET display_name = $2, phone = $3, home_address = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + customerColumns
	row := s.pool.QueryRow(ctx, query, customer.ID, customer.DisplayName, customer.Phone, customer.HomeAddress)
	updated, err := scanCustomer(row)
	if err != nil {
		return models.CustomerProfile{}, mapWriteError(err)
	}
	return updated, nil
}

func scanAccount(row pgx.Row) (models.Account, error) {
	var a models.Account
	if err := row.Scan(&a.ID, &a.FirstName, &a.LastName, &a.Email, &a.Phone, &a.PasswordHash, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Account{}, storage.ErrNotFound
		}
		return models.Account{}, err
	}
	return a, nil
}

func scanDriver(row pgx.Row) (models.DriverProfile, error) {
	var d models.DriverProfile
	if err := row.Scan(&d.ID, &d.AccountID, &d.DisplayName, &d.Phone, &d.LicenseNumber, &d.Available, &d.CreatedAt, &d.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.DriverProfile{}, storage.ErrNotFound
		}
		return models.DriverProfile{}, err
	}
	return d, nil
}

func scanCustomer(row pgx.Row) (models.CustomerProfile, error) {
	var c models.CustomerProfile
	if err := row.Scan(&c.ID, &c.AccountID, &c.DisplayName, &c.Phone, &c.HomeAddress, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.CustomerProfile{}, storage.ErrNotFound
		}
		return models.CustomerProfile{}, err
	}
	return c, nil
}

func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return storage.ErrAlreadyExists
	}
	return err
}
