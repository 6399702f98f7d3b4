package postgres

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/hongminglow/homeride-be/internal/models"
	"github.com/hongminglow/homeride-be/internal/storage"
)

// newTestStore starts a disposable Postgres and returns a migrated store.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	if os.Getenv("RUN_DB_INTEGRATION") != "true" {
		t.Skip("set RUN_DB_INTEGRATION=true to run Postgres store tests (requires Docker)")
	}
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "homeride",
				"POSTGRES_PASSWORD": "homeride",
				"POSTGRES_DB":       "homeride",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://homeride:homeride@%s:%s/homeride?sslmode=disable", host, port.Port())
	store, err := NewStore(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(store.Close)

	require.NoError(t, store.MigrateUp())
	require.NoError(t, store.MigrateUp(), "second run is a no-op")
	return store
}

func newAccount(email, phone string) models.Account {
	return models.Account{
		ID:           uuid.New(),
		FirstName:    "Kari",
		LastName:     "Nordmann",
		Email:        email,
		Phone:        phone,
		PasswordHash: "$argon2id$v=19$m=1024,t=1,p=1$c2FsdA$aGFzaA",
	}
}

func TestStore(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	t.Run("account uniqueness", func(t *testing.T) {
		created, err := s.CreateAccount(ctx, newAccount("A@X.no", "11111111"))
		require.NoError(t, err)
		require.Equal(t, "a@x.no", created.Email)
		require.False(t, created.CreatedAt.IsZero())

		_, err = s.CreateAccount(ctx, newAccount("a@x.NO", "22222222"))
		require.ErrorIs(t, err, storage.ErrAlreadyExists)
		_, err = s.CreateAccount(ctx, newAccount("b@x.no", "11111111"))
		require.ErrorIs(t, err, storage.ErrAlreadyExists)

		found, err := s.AccountByEmail(ctx, "A@x.No")
		require.NoError(t, err)
		require.Equal(t, created.ID, found.ID)
		require.Equal(t, created.PasswordHash, found.PasswordHash)

		_, err = s.AccountByEmail(ctx, "missing@x.no")
		require.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("concurrent duplicate registration has one winner", func(t *testing.T) {
		const attempts = 8
		var wins, conflicts atomic.Int32
		var wg sync.WaitGroup
		for i := range attempts {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := s.CreateAccount(ctx, newAccount("race@x.no", fmt.Sprintf("8000000%d", i)))
				switch {
				case err == nil:
					wins.Add(1)
				case err == storage.ErrAlreadyExists:
					conflicts.Add(1)
				}
			}()
		}
		wg.Wait()
		require.EqualValues(t, 1, wins.Load())
		require.EqualValues(t, attempts-1, conflicts.Load())
	})

	t.Run("profile and password updates", func(t *testing.T) {
		a, err := s.CreateAccount(ctx, newAccount("upd@x.no", "33333333"))
		require.NoError(t, err)

		a.FirstName = "Ola"
		a.Phone = "11111111"
		_, err = s.UpdateAccountProfile(ctx, a)
		require.ErrorIs(t, err, storage.ErrAlreadyExists)

		a.Phone = "44444444"
		updated, err := s.UpdateAccountProfile(ctx, a)
		require.NoError(t, err)
		require.Equal(t, "Ola", updated.FirstName)
		require.NotNil(t, updated.UpdatedAt)

		require.NoError(t, s.UpdatePasswordHash(ctx, a.ID, "$argon2id$new"))
		got, err := s.AccountByID(ctx, a.ID)
		require.NoError(t, err)
		require.Equal(t, "$argon2id$new", got.PasswordHash)

		require.ErrorIs(t, s.UpdatePasswordHash(ctx, uuid.New(), "x"), storage.ErrNotFound)
	})

	t.Run("profiles keep their ownership link", func(t *testing.T) {
		owner, err := s.CreateAccount(ctx, newAccount("owner@x.no", "55555555"))
		require.NoError(t, err)

		d, err := s.CreateDriver(ctx, models.DriverProfile{
			ID:            uuid.New(),
			AccountID:     uuid.NullUUID{UUID: owner.ID, Valid: true},
			DisplayName:   "Per",
			Phone:         "55555555",
			LicenseNumber: "NO-1",
		})
		require.NoError(t, err)

		d.AccountID = uuid.NullUUID{}
		d.Available = true
		updated, err := s.UpdateDriver(ctx, d)
		require.NoError(t, err)
		require.True(t, updated.Available)
		require.Equal(t, owner.ID, updated.AccountID.UUID)

		c, err := s.CreateCustomer(ctx, models.CustomerProfile{ID: uuid.New(), DisplayName: "Legacy", Phone: "66666666", HomeAddress: "Storgata 1"})
		require.NoError(t, err)
		require.False(t, c.AccountID.Valid)

		_, err = s.CustomerByID(ctx, uuid.New())
		require.ErrorIs(t, err, storage.ErrNotFound)
	})
}
