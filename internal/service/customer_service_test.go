package service_test

import (
	"context"
	"testing"

	"github.com/Lukas5x5/Woelfleder-Kunden/internal/domain"
	"github.com/Lukas5x5/Woelfleder-Kunden/internal/repository"
	"github.com/Lukas5x5/Woelfleder-Kunden/internal/service"
	"github.com/Lukas5x5/Woelfleder-Kunden/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCustomerService_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := service.NewCustomerService(repository.NewCustomerRepository(db), zap.NewNop())
	owner := uuid.New()

	t.Run("assigns owner", func(t *testing.T) {
		dto, err := svc.Create(ownerCtx(owner), &domain.CreateCustomerRequest{Name: "  Huber  ", City: "Wels"})
		require.NoError(t, err)
		assert.Equal(t, "Huber", dto.Name)
		assert.Empty(t, dto.Gates)

		var stored domain.Customer
		require.NoError(t, db.First(&stored, "id = ?", dto.ID).Error)
		assert.Equal(t, owner.String(), stored.UserID)
	})

	t.Run("requires authentication", func(t *testing.T) {
		_, err := svc.Create(context.Background(), &domain.CreateCustomerRequest{Name: "Huber"})
		assert.ErrorIs(t, err, service.ErrUnauthorized)
	})

	t.Run("rejects blank name", func(t *testing.T) {
		_, err := svc.Create(ownerCtx(owner), &domain.CreateCustomerRequest{Name: "   "})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})
}

func TestCustomerService_ListGetDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := service.NewCustomerService(repository.NewCustomerRepository(db), zap.NewNop())
	owner, other := uuid.New(), uuid.New()

	mine := testutil.CreateTestCustomer(t, db, owner.String(), "Maier Metallbau")
	insertGate(t, db, gateRecord(mine, nil, "Halle 1"))
	theirs := testutil.CreateTestCustomer(t, db, other.String(), "Fremd")

	list, err := svc.List(ownerCtx(owner), "")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, mine.ID, list[0].ID)
	require.Len(t, list[0].Gates, 1)
	assert.Equal(t, 476.0, list[0].Gates[0].GrossTotal)

	list, err = svc.List(ownerCtx(owner), "metall")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = svc.GetByID(ownerCtx(owner), theirs.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ownerCtx(owner), theirs.ID), service.ErrNotFound)
	require.NoError(t, svc.Delete(ownerCtx(owner), mine.ID))

	_, err = svc.GetByID(ownerCtx(owner), mine.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}
