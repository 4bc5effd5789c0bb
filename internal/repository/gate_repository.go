package repository

import (
	"context"

	"github.com/Lukas5x5/Woelfleder-Kunden/internal/domain"
	"gorm.io/gorm"
)

type GateRepository struct {
	db *gorm.DB
}

func NewGateRepository(db *gorm.DB) *GateRepository {
	return &GateRepository{db: db}
}

func (r *GateRepository) Create(ctx context.Context, gate *domain.Gate) error {
	return r.db.WithContext(ctx).Create(gate).Error
}

func (r *GateRepository) GetByID(ctx context.Context, id string) (*domain.Gate, error) {
	var gate domain.Gate
	query := ApplyOwnerFilter(ctx, r.db.WithContext(ctx).Where("id = ?", id))
	if err := query.First(&gate).Error; err != nil {
		return nil, notFound(err)
	}
	return &gate, nil
}

// Update overwrites every column of the gate except its identity and owner.
func (r *GateRepository) Update(ctx context.Context, gate *domain.Gate) error {
	query := ApplyOwnerFilter(ctx, r.db.WithContext(ctx).Model(&domain.Gate{}).Where("id = ?", gate.ID))
	result := query.Select("*").Omit("id", "user_id", "created_at").Updates(gate)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GateRepository) Delete(ctx context.Context, id string) error {
	result := ApplyOwnerFilter(ctx, r.db.WithContext(ctx).Where("id = ?", id)).Delete(&domain.Gate{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByOrder returns the gates of an order in creation order.
func (r *GateRepository) ListByOrder(ctx context.Context, orderID string) ([]domain.Gate, error) {
	var gates []domain.Gate
	err := ApplyOwnerFilter(ctx, r.db.WithContext(ctx).Where("order_id = ?", orderID)).
		Order("created_at ASC").
		Find(&gates).Error
	return gates, err
}

// SaveAll upserts gates in one transaction.
func (r *GateRepository) SaveAll(ctx context.Context, gates []domain.Gate) error {
	if len(gates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range gates {
			if err := tx.Save(&gates[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
