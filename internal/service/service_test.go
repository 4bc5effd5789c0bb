package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/Lukas5x5/Woelfleder-Kunden/internal/auth"
	"github.com/Lukas5x5/Woelfleder-Kunden/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func ownerCtx(owner uuid.UUID) context.Context {
	return auth.WithUserContext(context.Background(), &auth.UserContext{UserID: owner})
}

// gateRecord is a priced 250 x 200 cm gate with one paneel (80 per m²).
func gateRecord(customer *domain.Customer, orderID *string, name string) domain.Gate {
	now := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	return domain.Gate{
		UserID:            customer.UserID,
		CustomerID:        customer.ID,
		OrderID:           orderID,
		Name:              name,
		GateType:          "sektionaltor",
		Breite:            250,
		Hoehe:             200,
		Gesamtflaeche:     5,
		Torflaeche:        5,
		SelectedProducts:  `["paneel"]`,
		ProductQuantities: `{"paneel":1}`,
		CustomPrices:      `{}`,
		Subtotal:          400,
		ExklusiveMwst:     400,
		InklMwst:          476,
		Quantity:          1,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

func insertGate(t *testing.T, db *gorm.DB, rec domain.Gate) *domain.Gate {
	t.Helper()
	require.NoError(t, db.Create(&rec).Error)
	return &rec
}
