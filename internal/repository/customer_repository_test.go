package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/Lukas5x5/Woelfleder-Kunden/internal/domain"
	"github.com/Lukas5x5/Woelfleder-Kunden/internal/repository"
	"github.com/Lukas5x5/Woelfleder-Kunden/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomerRepository_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewCustomerRepository(db)

	customer := &domain.Customer{UserID: uuid.NewString(), Name: "Huber", City: "Wels"}
	require.NoError(t, repo.Create(context.Background(), customer))
	assert.NotEmpty(t, customer.ID)

	found, err := repo.GetByID(context.Background(), customer.ID)
	require.NoError(t, err)
	assert.Equal(t, "Huber", found.Name)
	assert.Equal(t, "standard", found.Type)
	assert.Equal(t, "active", found.Status)
}

func TestCustomerRepository_GetByID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewCustomerRepository(db)
	owner := uuid.New()
	customer := testutil.CreateTestCustomer(t, db, owner.String(), "Huber")

	t.Run("owner sees customer", func(t *testing.T) {
		found, err := repo.GetByID(ownerCtx(owner), customer.ID)
		require.NoError(t, err)
		assert.Equal(t, customer.ID, found.ID)
	})

	t.Run("other owner gets not found", func(t *testing.T) {
		_, err := repo.GetByID(ownerCtx(uuid.New()), customer.ID)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := repo.GetByID(context.Background(), "missing")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func TestCustomerRepository_ListByOwner(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewCustomerRepository(db)
	owner := uuid.NewString()

	first := testutil.CreateTestCustomer(t, db, owner, "Alpha")
	second := testutil.CreateTestCustomer(t, db, owner, "Beta")
	testutil.CreateTestCustomer(t, db, uuid.NewString(), "Gamma")

	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	createTestGate(t, db, first, nil, "Tor 2", base.Add(time.Hour))
	createTestGate(t, db, first, nil, "Tor 1", base)

	t.Run("only own customers with gates in creation order", func(t *testing.T) {
		customers, err := repo.ListByOwner(context.Background(), owner, "")
		require.NoError(t, err)
		require.Len(t, customers, 2)

		byID := map[string]domain.Customer{}
		for _, c := range customers {
			byID[c.ID] = c
		}
		require.Len(t, byID[first.ID].Gates, 2)
		assert.Equal(t, "Tor 1", byID[first.ID].Gates[0].Name)
		assert.Equal(t, "Tor 2", byID[first.ID].Gates[1].Name)
		assert.Empty(t, byID[second.ID].Gates)
	})

	t.Run("search is case insensitive", func(t *testing.T) {
		customers, err := repo.ListByOwner(context.Background(), owner, "BET")
		require.NoError(t, err)
		require.Len(t, customers, 1)
		assert.Equal(t, "Beta", customers[0].Name)
	})
}

func TestCustomerRepository_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewCustomerRepository(db)
	customer := testutil.CreateTestCustomer(t, db, uuid.NewString(), "Huber")
	createTestGate(t, db, customer, nil, "Tor", time.Now())

	require.NoError(t, repo.Delete(context.Background(), customer.ID))

	var gates int64
	require.NoError(t, db.Model(&domain.Gate{}).Where("customer_id = ?", customer.ID).Count(&gates).Error)
	assert.Zero(t, gates, "gates cascade with the customer")

	assert.ErrorIs(t, repo.Delete(context.Background(), customer.ID), repository.ErrNotFound)
}

func TestCustomerRepository_ListOwners(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewCustomerRepository(db)
	testutil.CreateTestCustomer(t, db, "owner-b", "Eins")
	testutil.CreateTestCustomer(t, db, "owner-a", "Zwei")
	testutil.CreateTestCustomer(t, db, "owner-b", "Drei")

	owners, err := repo.ListOwners(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"owner-a", "owner-b"}, owners)
}
