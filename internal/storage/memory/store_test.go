package memory

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/homeride-be/internal/models"
	"github.com/hongminglow/homeride-be/internal/storage"
)

func newAccount(email, phone string) models.Account {
	return models.Account{
		ID:           uuid.New(),
		FirstName:    "Kari",
		LastName:     "Nordmann",
		Email:        email,
		Phone:        phone,
		PasswordHash: "$argon2id$stub",
	}
}

func TestCreateAccount_UniqueEmailIgnoresCase(t *testing.T) {
	s := New()
	ctx := context.Background()

	created, err := s.CreateAccount(ctx, newAccount("A@X.no", "11111111"))
	require.NoError(t, err)
	require.Equal(t, "a@x.no", created.Email)

	_, err = s.CreateAccount(ctx, newAccount("a@x.NO", "22222222"))
	require.ErrorIs(t, err, storage.ErrAlreadyExists)

	_, err = s.CreateAccount(ctx, newAccount("b@x.no", "11111111"))
	require.ErrorIs(t, err, storage.ErrAlreadyExists)

	found, err := s.AccountByEmail(ctx, " A@x.No ")
	require.NoError(t, err)
	require.Equal(t, created.ID, found.ID)
}

func TestCreateAccount_ConcurrentDuplicatesHaveOneWinner(t *testing.T) {
	s := New()
	ctx := context.Background()

	const attempts = 16
	var wins, conflicts atomic.Int32
	var wg sync.WaitGroup
	for i := range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.CreateAccount(ctx, newAccount("race@x.no", fmt.Sprintf("9000000%d", i)))
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
}

func TestUpdateAccountProfile_PhoneConflict(t *testing.T) {
	s := New()
	ctx := context.Background()

	a, err := s.CreateAccount(ctx, newAccount("a@x.no", "11111111"))
	require.NoError(t, err)
	_, err = s.CreateAccount(ctx, newAccount("b@x.no", "22222222"))
	require.NoError(t, err)

	a.Phone = "22222222"
	_, err = s.UpdateAccountProfile(ctx, a)
	require.ErrorIs(t, err, storage.ErrAlreadyExists)

	a.Phone = "33333333"
	updated, err := s.UpdateAccountProfile(ctx, a)
	require.NoError(t, err)
	require.Equal(t, "33333333", updated.Phone)
	require.NotNil(t, updated.UpdatedAt)

	// the old number is free again
	_, err = s.CreateAccount(ctx, newAccount("c@x.no", "11111111"))
	require.NoError(t, err)
}

func TestUpdatePasswordHash(t *testing.T) {
	s := New()
	ctx := context.Background()

	a, err := s.CreateAccount(ctx, newAccount("a@x.no", "11111111"))
	require.NoError(t, err)

	require.NoError(t, s.UpdatePasswordHash(ctx, a.ID, "new-hash"))
	got, err := s.AccountByID(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, "new-hash", got.PasswordHash)

	require.ErrorIs(t, s.UpdatePasswordHash(ctx, uuid.New(), "x"), storage.ErrNotFound)
}

func TestDriverUpdateKeepsOwnershipLink(t *testing.T) {
	s := New()
	ctx := context.Background()
	owner := uuid.New()

	d, err := s.CreateDriver(ctx, models.DriverProfile{
		ID:        uuid.New(),
		AccountID: uuid.NullUUID{UUID: owner, Valid: true},
		Phone:     "11111111",
	})
	require.NoError(t, err)

	d.AccountID = uuid.NullUUID{}
	d.Available = true
	updated, err := s.UpdateDriver(ctx, d)
	require.NoError(t, err)
	require.True(t, updated.Available)
	require.Equal(t, owner, updated.AccountID.UUID)

	_, err = s.DriverByID(ctx, uuid.New())
	require.ErrorIs(t, err, storage.ErrNotFound)
}
