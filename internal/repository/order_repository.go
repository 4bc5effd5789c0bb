package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Lukas5x5/Woelfleder-Kunden/internal/domain"
	"gorm.io/gorm"
)

const orderNumberPrefix = "ORD-"

// ErrOrderNumberTaken is returned when a concurrent insert claimed the same order number.
var ErrOrderNumberTaken = errors.New("order number already taken")

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// OrderWithGateCount is a list row with the number of gates attached.
type OrderWithGateCount struct {
	domain.Order
	GateCount int `json:"gate_count"`
}

// CreateNumbered assigns the next ORD-YYYYMMDD-NNN number for the customer and
// day inside one transaction and inserts the order.
func (r *OrderRepository) CreateNumbered(ctx context.Context, order *domain.Order, day time.Time) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := nextOrderNumber(tx, order.CustomerID, day)
		if err != nil {
			return err
		}
		order.OrderNumber = number
		return tx.Omit("Gates").Create(order).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrOrderNumberTaken
	}
	return err
}

// Upsert inserts or replaces an order by id, as used by backup imports.
func (r *OrderRepository) Upsert(ctx context.Context, order *domain.Order) error {
	return r.db.WithContext(ctx).Omit("Gates").Save(order).Error
}

// NextOrderNumber returns the number the next order of the customer on day would get.
func (r *OrderRepository) NextOrderNumber(ctx context.Context, customerID string, day time.Time) (string, error) {
	return nextOrderNumber(r.db.WithContext(ctx), customerID, day)
}

func nextOrderNumber(tx *gorm.DB, customerID string, day time.Time) (string, error) {
	prefix := orderNumberPrefix + day.Format("20060102") + "-"

	var numbers []string
	err := tx.Model(&domain.Order{}).
		Where("customer_id = ? AND order_number LIKE ?", customerID, prefix+"%").
		Pluck("order_number", &numbers).Error
	if err != nil {
		return "", fmt.Errorf("failed to read order numbers: %w", err)
	}

	last := 0
	for _, n := range numbers {
		seq, err := strconv.Atoi(strings.TrimPrefix(n, prefix))
		if err == nil && seq > last {
			last = seq
		}
	}
	return fmt.Sprintf("%s%03d", prefix, last+1), nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	var order domain.Order
	query := ApplyOwnerFilter(ctx, r.db.WithContext(ctx).Where("id = ?", id)).
		Preload("Gates", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		})
	if err := query.First(&order).Error; err != nil {
		return nil, notFound(err)
	}
	return &order, nil
}

// ListByCustomer returns the customer's orders, newest first, with their gate counts.
func (r *OrderRepository) ListByCustomer(ctx context.Context, customerID string) ([]OrderWithGateCount, error) {
	var orders []domain.Order
	err := ApplyOwnerFilter(ctx, r.db.WithContext(ctx).Where("customer_id = ?", customerID)).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}

	var counts []struct {
		OrderID string
		Count   int
	}
	err = r.db.WithContext(ctx).
		Model(&domain.Gate{}).
		Select("order_id, COUNT(*) AS count").
		Where("customer_id = ? AND order_id IS NOT NULL", customerID).
		Group("order_id").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}

	byOrder := make(map[string]int, len(counts))
	for _, c := range counts {
		byOrder[c.OrderID] = c.Count
	}

	rows := make([]OrderWithGateCount, len(orders))
	for i, o := range orders {
		rows[i] = OrderWithGateCount{Order: o, GateCount: byOrder[o.ID]}
	}
	return rows, nil
}

// ListByOwner returns all orders of an owner, oldest first.
func (r *OrderRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Order, error) {
	var orders []domain.Order
	err := r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("created_at ASC").
		Find(&orders).Error
	return orders, err
}

// UpdateStatus sets the order status.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	result := ApplyOwnerFilter(ctx, r.db.WithContext(ctx).Model(&domain.Order{}).Where("id = ?", id)).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an order together with its gates.
func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := ApplyOwnerFilter(ctx, tx.Where("id = ?", id)).Delete(&domain.Order{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Where("order_id = ?", id).Delete(&domain.Gate{}).Error
	})
}
