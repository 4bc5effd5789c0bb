package testutil

import (
	"fmt"
	"testing"

	"github.com/Lukas5x5/Woelfleder-Kunden/internal/database"
	"github.com/Lukas5x5/Woelfleder-Kunden/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB opens a private in-memory sqlite database with the full schema.
// Each call gets its own database; it is closed when the test ends.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	return db
}

// CreateTestCustomer inserts a customer owned by ownerID.
func CreateTestCustomer(t *testing.T, db *gorm.DB, ownerID, name string) *domain.Customer {
	t.Helper()
	customer := &domain.Customer{UserID: ownerID, Name: name, City: "Linz"}
	require.NoError(t, db.Create(customer).Error)
	return customer
}

// CreateTestOrder inserts an order for a customer.
func CreateTestOrder(t *testing.T, db *gorm.DB, customer *domain.Customer, number string) *domain.Order {
	t.Helper()
	order := &domain.Order{
		UserID:      customer.UserID,
		CustomerID:  customer.ID,
		OrderNumber: number,
		Type:        "standard",
		Status:      domain.OrderStatusInquiry,
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

// SeedProducts inserts a small catalog.
func SeedProducts(t *testing.T, db *gorm.DB) []domain.Product {
	t.Helper()
	products := []domain.Product{
		{Ref: "antrieb", Name: "Antrieb", Category: "Technik", Unit: "stk", BasePrice: 100, Active: true, SortOrder: 1},
		{Ref: "griff", Name: "Griffgarnitur", Category: "Zubehör", Unit: "stk", BasePrice: 50, Active: true, SortOrder: 2},
		{Ref: "paneel", Name: "Paneel", Category: "Torblatt", Unit: "m2", BasePrice: 80, Active: true, SortOrder: 3},
		{Ref: "alt", Name: "Ausgelaufen", Category: "Torblatt", Unit: "stk", BasePrice: 10, Active: false, SortOrder: 4},
	}
	require.NoError(t, db.Create(&products).Error)
	return products
}
