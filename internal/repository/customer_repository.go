package repository

import (
	"context"
	"strings"

	"github.com/Lukas5x5/Woelfleder-Kunden/internal/domain"
	"gorm.io/gorm"
)

type CustomerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	return r.db.WithContext(ctx).Omit("Orders", "Gates").Create(customer).Error
}

func (r *CustomerRepository) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	var customer domain.Customer
	query := ApplyOwnerFilter(ctx, r.db.WithContext(ctx).Where("id = ?", id))
	if err := query.First(&customer).Error; err != nil {
		return nil, notFound(err)
	}
	return &customer, nil
}

// ListByOwner returns the owner's customers, newest first, each with its gates
// in creation order.
func (r *CustomerRepository) ListByOwner(ctx context.Context, ownerID, search string) ([]domain.Customer, error) {
	var customers []domain.Customer
	query := r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Preload("Gates", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		})

	if search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(company) LIKE ? OR LOWER(city) LIKE ?", pattern, pattern, pattern)
	}

	err := query.Order("created_at DESC").Find(&customers).Error
	return customers, err
}

// ListOwners returns the ids of all users that own at least one customer.
func (r *CustomerRepository) ListOwners(ctx context.Context) ([]string, error) {
	var owners []string
	err := r.db.WithContext(ctx).
		Model(&domain.Customer{}).
		Distinct().
		Order("user_id").
		Pluck("user_id", &owners).Error
	return owners, err
}

// Upsert inserts or replaces a customer by id, as used by backup imports.
func (r *CustomerRepository) Upsert(ctx context.Context, customer *domain.Customer) error {
	return r.db.WithContext(ctx).Omit("Orders", "Gates").Save(customer).Error
}

// Delete removes a customer; orders and gates cascade in the database.
func (r *CustomerRepository) Delete(ctx context.Context, id string) error {
	result := ApplyOwnerFilter(ctx, r.db.WithContext(ctx).Where("id = ?", id)).Delete(&domain.Customer{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
