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

func TestGateRepository_CreateKeepsGivenID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewGateRepository(db)
	customer := testutil.CreateTestCustomer(t, db, uuid.NewString(), "Huber")

	gate := &domain.Gate{ID: "gate_1700000000000_abc123", UserID: customer.UserID, CustomerID: customer.ID, Quantity: 1}
	require.NoError(t, repo.Create(context.Background(), gate))

	found, err := repo.GetByID(context.Background(), "gate_1700000000000_abc123")
	require.NoError(t, err)
	assert.Equal(t, customer.ID, found.CustomerID)
}

func TestGateRepository_Update(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewGateRepository(db)
	owner := uuid.New()
	customer := testutil.CreateTestCustomer(t, db, owner.String(), "Huber")
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	gate := createTestGate(t, db, customer, nil, "Alt", created)

	t.Run("overwrites all columns", func(t *testing.T) {
		changed := *gate
		changed.Name = "Neu"
		changed.Breite = 300
		changed.Notizen = ""
		changed.Aufschlag = 0
		changed.InklMwst = 1234.56

		require.NoError(t, repo.Update(ownerCtx(owner), &changed))

		found, err := repo.GetByID(context.Background(), gate.ID)
		require.NoError(t, err)
		assert.Equal(t, "Neu", found.Name)
		assert.Equal(t, 300.0, found.Breite)
		assert.Equal(t, 1234.56, found.InklMwst)
		assert.True(t, found.CreatedAt.Equal(created), "created_at is kept")
	})

	t.Run("missing gate", func(t *testing.T) {
		missing := domain.Gate{ID: "missing", CustomerID: customer.ID}
		assert.ErrorIs(t, repo.Update(context.Background(), &missing), repository.ErrNotFound)
	})

	t.Run("other owner", func(t *testing.T) {
		assert.ErrorIs(t, repo.Update(ownerCtx(uuid.New()), gate), repository.ErrNotFound)
	})
}

func TestGateRepository_ListByOrderAndDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewGateRepository(db)
	customer := testutil.CreateTestCustomer(t, db, uuid.NewString(), "Huber")
	order := testutil.CreateTestOrder(t, db, customer, "ORD-20240517-001")

	base := time.Date(2024, 5, 17, 9, 0, 0, 0, time.UTC)
	b := createTestGate(t, db, customer, &order.ID, "B", base.Add(time.Second))
	a := createTestGate(t, db, customer, &order.ID, "A", base)

	gates, err := repo.ListByOrder(context.Background(), order.ID)
	require.NoError(t, err)
	require.Len(t, gates, 2)
	assert.Equal(t, a.ID, gates[0].ID)
	assert.Equal(t, b.ID, gates[1].ID)

	require.NoError(t, repo.Delete(context.Background(), a.ID))
	assert.ErrorIs(t, repo.Delete(context.Background(), a.ID), repository.ErrNotFound)
}

func TestGateRepository_SaveAll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewGateRepository(db)
	customer := testutil.CreateTestCustomer(t, db, uuid.NewString(), "Huber")

	gates := []domain.Gate{
		{ID: "g1", UserID: customer.UserID, CustomerID: customer.ID, Name: "Eins", Quantity: 1},
		{ID: "g2", UserID: customer.UserID, CustomerID: customer.ID, Name: "Zwei", Quantity: 1},
	}
	require.NoError(t, repo.SaveAll(context.Background(), gates))

	gates[0].Name = "Eins neu"
	require.NoError(t, repo.SaveAll(context.Background(), gates[:1]))

	found, err := repo.GetByID(context.Background(), "g1")
	require.NoError(t, err)
	assert.Equal(t, "Eins neu", found.Name)
	assert.NoError(t, repo.SaveAll(context.Background(), nil))
}
