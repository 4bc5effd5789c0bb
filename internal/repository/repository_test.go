package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/Lukas5x5/Woelfleder-Kunden/internal/auth"
	"github.com/Lukas5x5/Woelfleder-Kunden/internal/domain"
	"github.com/Lukas5x5/Woelfleder-Kunden/internal/repository"
	"github.com/Lukas5x5/Woelfleder-Kunden/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func ownerCtx(owner uuid.UUID) context.Context {
	return auth.WithUserContext(context.Background(), &auth.UserContext{UserID: owner})
}

func createTestGate(t *testing.T, db *gorm.DB, customer *domain.Customer, orderID *string, name string, createdAt time.Time) *domain.Gate {
	t.Helper()
	gate := &domain.Gate{
		UserID:     customer.UserID,
		CustomerID: customer.ID,
		OrderID:    orderID,
		Name:       name,
		GateType:   "sektionaltor",
		Breite:     250,
		Hoehe:      200,
		Quantity:   1,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}
	require.NoError(t, db.Create(gate).Error)
	return gate
}

func TestApplyOwnerFilter(t *testing.T) {
	db := testutil.SetupTestDB(t)
	owner := uuid.New()
	testutil.CreateTestCustomer(t, db, owner.String(), "Eigener Kunde")
	testutil.CreateTestCustomer(t, db, uuid.NewString(), "Fremder Kunde")

	t.Run("filters by authenticated owner", func(t *testing.T) {
		ctx := ownerCtx(owner)
		var customers []domain.Customer
		require.NoError(t, repository.ApplyOwnerFilter(ctx, db.WithContext(ctx)).Find(&customers).Error)
		require.Len(t, customers, 1)
		assert.Equal(t, "Eigener Kunde", customers[0].Name)
	})

	t.Run("no user leaves query unchanged", func(t *testing.T) {
		var customers []domain.Customer
		require.NoError(t, repository.ApplyOwnerFilter(context.Background(), db).Find(&customers).Error)
		assert.Len(t, customers, 2)
	})
}
