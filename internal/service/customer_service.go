package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Lukas5x5/Woelfleder-Kunden/internal/auth"
	"github.com/Lukas5x5/Woelfleder-Kunden/internal/domain"
	"github.com/Lukas5x5/Woelfleder-Kunden/internal/mapper"
	"github.com/Lukas5x5/Woelfleder-Kunden/internal/repository"
	"go.uber.org/zap"
)

type CustomerService struct {
	customerRepo *repository.CustomerRepository
	logger       *zap.Logger
}

func NewCustomerService(customerRepo *repository.CustomerRepository, logger *zap.Logger) *CustomerService {
	return &CustomerService{
		customerRepo: customerRepo,
		logger:       logger,
	}
}

// Create adds a customer owned by the authenticated user.
func (s *CustomerService) Create(ctx context.Context, req *domain.CreateCustomerRequest) (*domain.CustomerDTO, error) {
	ownerID := auth.OwnerFromContext(ctx)
	if ownerID == "" {
		return nil, ErrUnauthorized
	}

	customer := &domain.Customer{
		UserID:  ownerID,
		Name:    strings.TrimSpace(req.Name),
		Company: req.Company,
		Address: req.Address,
		City:    req.City,
		Phone:   req.Phone,
		Email:   req.Email,
		Source:  req.Source,
		Notes:   req.Notes,
	}
	if customer.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	s.logger.Info("customer created",
		zap.String("customer_id", customer.ID),
		zap.String("owner_id", ownerID),
	)

	dto := mapper.ToCustomerDTO(customer)
	return &dto, nil
}

// List returns the authenticated user's customers with their gates.
func (s *CustomerService) List(ctx context.Context, search string) ([]domain.CustomerDTO, error) {
	ownerID := auth.OwnerFromContext(ctx)
	if ownerID == "" {
		return nil, ErrUnauthorized
	}

	customers, err := s.customerRepo.ListByOwner(ctx, ownerID, strings.TrimSpace(search))
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}

	dtos := make([]domain.CustomerDTO, 0, len(customers))
	for i := range customers {
		dtos = append(dtos, mapper.ToCustomerDTO(&customers[i]))
	}
	return dtos, nil
}

func (s *CustomerService) GetByID(ctx context.Context, id string) (*domain.CustomerDTO, error) {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	dto := mapper.ToCustomerDTO(customer)
	return &dto, nil
}

// Delete removes a customer with its orders and gates.
func (s *CustomerService) Delete(ctx context.Context, id string) error {
	if err := s.customerRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	s.logger.Info("customer deleted", zap.String("customer_id", id))
	return nil
}
