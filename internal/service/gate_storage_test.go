package service_test

import (
	"context"
	"testing"

	"github.com/Lukas5x5/Woelfleder-Kunden/internal/appstate"
	"github.com/Lukas5x5/Woelfleder-Kunden/internal/repository"
	"github.com/Lukas5x5/Woelfleder-Kunden/internal/service"
	"github.com/Lukas5x5/Woelfleder-Kunden/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newGateStorage(db *gorm.DB) *service.GateStorage {
	return service.NewGateStorage(
		repository.NewCustomerRepository(db),
		repository.NewOrderRepository(db),
		repository.NewGateRepository(db),
		zap.NewNop(),
	)
}

func TestGateStorage_SaveGate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := newGateStorage(db)
	ctx := context.Background()
	owner := uuid.New().String()

	customer := testutil.CreateTestCustomer(t, db, owner, "Huber")
	other := testutil.CreateTestCustomer(t, db, owner, "Maier")
	order := testutil.CreateTestOrder(t, db, customer, "ORD-20260304-001")
	foreignOrder := testutil.CreateTestOrder(t, db, other, "ORD-20260304-001")

	t.Run("creates with given id", func(t *testing.T) {
		rec := gateRecord(customer, &order.ID, "Tor A")
		rec.ID = "gate_1700000000000_abc"
		saved, err := store.SaveGate(ctx, customer.ID, rec)
		require.NoError(t, err)
		assert.Equal(t, "gate_1700000000000_abc", saved.ID)

		loaded, err := store.LoadGate(ctx, saved.ID)
		require.NoError(t, err)
		require.NotNil(t, loaded)
		assert.Equal(t, "Tor A", loaded.Name)
	})

	t.Run("duplicate id conflicts", func(t *testing.T) {
		rec := gateRecord(customer, nil, "Tor B")
		rec.ID = "gate_1700000000000_abc"
		_, err := store.SaveGate(ctx, customer.ID, rec)
		assert.ErrorIs(t, err, service.ErrConflict)
	})

	t.Run("customer of another owner", func(t *testing.T) {
		rec := gateRecord(customer, nil, "Tor C")
		rec.UserID = uuid.New().String()
		_, err := store.SaveGate(ctx, customer.ID, rec)
		assert.ErrorIs(t, err, appstate.ErrCustomerNotFound)
	})

	t.Run("order of another customer", func(t *testing.T) {
		rec := gateRecord(customer, &foreignOrder.ID, "Tor D")
		_, err := store.SaveGate(ctx, customer.ID, rec)
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})
}

func TestGateStorage_UpdateAndDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := newGateStorage(db)
	ctx := context.Background()
	customer := testutil.CreateTestCustomer(t, db, uuid.New().String(), "Huber")
	existing := insertGate(t, db, gateRecord(customer, nil, "Tor A"))

	rec := *existing
	rec.Name = "Tor A neu"
	rec.InklMwst = 595
	updated, err := store.UpdateGate(ctx, existing.ID, rec)
	require.NoError(t, err)
	assert.Equal(t, "Tor A neu", updated.Name)
	assert.Equal(t, 595.0, updated.InklMwst)

	_, err = store.UpdateGate(ctx, "missing", rec)
	assert.ErrorIs(t, err, appstate.ErrGateNotFound)

	require.NoError(t, store.DeleteGate(ctx, existing.ID))
	assert.ErrorIs(t, store.DeleteGate(ctx, existing.ID), appstate.ErrGateNotFound)

	loaded, err := store.LoadGate(ctx, existing.ID)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestGateStorage_LoadCustomers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := newGateStorage(db)
	owner := uuid.New().String()
	customer := testutil.CreateTestCustomer(t, db, owner, "Huber")
	testutil.CreateTestCustomer(t, db, uuid.New().String(), "Fremd")
	insertGate(t, db, gateRecord(customer, nil, "Tor A"))

	customers, err := store.LoadCustomers(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.Len(t, customers[0].Gates, 1)
}
