package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Lukas5x5/Woelfleder-Kunden/internal/appstate"
	"github.com/Lukas5x5/Woelfleder-Kunden/internal/domain"
	"github.com/Lukas5x5/Woelfleder-Kunden/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GateStorage is the database-backed appstate.Storage.
type GateStorage struct {
	customerRepo *repository.CustomerRepository
	orderRepo    *repository.OrderRepository
	gateRepo     *repository.GateRepository
	logger       *zap.Logger
}

func NewGateStorage(
	customerRepo *repository.CustomerRepository,
	orderRepo *repository.OrderRepository,
	gateRepo *repository.GateRepository,
	logger *zap.Logger,
) *GateStorage {
	return &GateStorage{
		customerRepo: customerRepo,
		orderRepo:    orderRepo,
		gateRepo:     gateRepo,
		logger:       logger,
	}
}

var _ appstate.Storage = (*GateStorage)(nil)

func (s *GateStorage) LoadCustomers(ctx context.Context, ownerID string) ([]domain.Customer, error) {
	customers, err := s.customerRepo.ListByOwner(ctx, ownerID, "")
	if err != nil {
		return nil, fmt.Errorf("failed to load customers: %w", err)
	}
	return customers, nil
}

func (s *GateStorage) LoadGate(ctx context.Context, gateID string) (*domain.Gate, error) {
	rec, err := s.gateRepo.GetByID(ctx, gateID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load gate: %w", err)
	}
	return rec, nil
}

// SaveGate creates a gate for a customer of the record's owner. An order,
// when given, must belong to the same customer.
func (s *GateStorage) SaveGate(ctx context.Context, customerID string, rec domain.Gate) (*domain.Gate, error) {
	customer, err := s.customerRepo.GetByID(ctx, customerID)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && customer.UserID != rec.UserID) {
		return nil, appstate.ErrCustomerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	if rec.OrderID != nil {
		order, err := s.orderRepo.GetByID(ctx, *rec.OrderID)
		if errors.Is(err, repository.ErrNotFound) || (err == nil && order.CustomerID != customerID) {
			return nil, fmt.Errorf("%w: order %s does not belong to customer", ErrInvalidInput, *rec.OrderID)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get order: %w", err)
		}
	}

	rec.CustomerID = customerID
	if err := s.gateRepo.Create(ctx, &rec); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: gate %s already exists", ErrConflict, rec.ID)
		}
		return nil, fmt.Errorf("failed to create gate: %w", err)
	}

	s.logger.Info("gate created",
		zap.String("gate_id", rec.ID),
		zap.String("customer_id", customerID),
	)
	return &rec, nil
}

// UpdateGate overwrites a stored gate and returns it as stored.
func (s *GateStorage) UpdateGate(ctx context.Context, gateID string, rec domain.Gate) (*domain.Gate, error) {
	rec.ID = gateID
	if err := s.gateRepo.Update(ctx, &rec); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, appstate.ErrGateNotFound
		}
		return nil, fmt.Errorf("failed to update gate: %w", err)
	}

	stored, err := s.gateRepo.GetByID(ctx, gateID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload gate: %w", err)
	}
	return stored, nil
}

func (s *GateStorage) DeleteGate(ctx context.Context, gateID string) error {
	if err := s.gateRepo.Delete(ctx, gateID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return appstate.ErrGateNotFound
		}
		return fmt.Errorf("failed to delete gate: %w", err)
	}
	s.logger.Info("gate deleted", zap.String("gate_id", gateID))
	return nil
}
