package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Lukas5x5/Woelfleder-Kunden/internal/domain"
	"github.com/Lukas5x5/Woelfleder-Kunden/internal/mapper"
	"github.com/Lukas5x5/Woelfleder-Kunden/internal/repository"
	"go.uber.org/zap"
)

const orderNumberAttempts = 3

type OrderService struct {
	customerRepo *repository.CustomerRepository
	orderRepo    *repository.OrderRepository
	logger       *zap.Logger
	now          func() time.Time
}

func NewOrderService(
	customerRepo *repository.CustomerRepository,
	orderRepo *repository.OrderRepository,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		customerRepo: customerRepo,
		orderRepo:    orderRepo,
		logger:       logger,
		now:          time.Now,
	}
}

// Create opens an order for a customer of the authenticated user. The order
// number is ORD-YYYYMMDD-NNN, counted per customer and day.
func (s *OrderService) Create(ctx context.Context, customerID string, req *domain.CreateOrderRequest) (*domain.OrderDTO, error) {
	customer, err := s.customerRepo.GetByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	orderType := strings.TrimSpace(req.Type)
	if orderType == "" {
		orderType = "standard"
	}

	var order *domain.Order
	for attempt := 1; ; attempt++ {
		order = &domain.Order{
			UserID:       customer.UserID,
			CustomerID:   customer.ID,
			Type:         orderType,
			Status:       domain.OrderStatusInquiry,
			SageRef:      req.SageRef,
			Appointment:  req.Appointment,
			FollowUpDate: req.FollowUpDate,
			Notes:        req.Notes,
		}
		err = s.orderRepo.CreateNumbered(ctx, order, s.now())
		if !errors.Is(err, repository.ErrOrderNumberTaken) || attempt == orderNumberAttempts {
			break
		}
		s.logger.Debug("order number taken, retrying", zap.Int("attempt", attempt))
	}
	if err != nil {
		if errors.Is(err, repository.ErrOrderNumberTaken) {
			return nil, fmt.Errorf("%w: %v", ErrConflict, err)
		}
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.logger.Info("order created",
		zap.String("order_id", order.ID),
		zap.String("order_number", order.OrderNumber),
		zap.String("customer_id", customer.ID),
	)

	dto := mapper.ToOrderDTO(order, 0)
	return &dto, nil
}

func (s *OrderService) ListByCustomer(ctx context.Context, customerID string) ([]domain.OrderDTO, error) {
	if _, err := s.customerRepo.GetByID(ctx, customerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	rows, err := s.orderRepo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return mapper.ToOrderListDTOs(rows), nil
}

// GetByID returns an order with its gates.
func (s *OrderService) GetByID(ctx context.Context, id string) (*domain.OrderDTO, error) {
	order, err := s.getOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := mapper.ToOrderDTO(order, len(order.Gates))
	return &dto, nil
}

// GetWithGates returns the stored order entity including gates.
func (s *OrderService) GetWithGates(ctx context.Context, id string) (*domain.Order, error) {
	return s.getOrder(ctx, id)
}

func (s *OrderService) getOrder(ctx context.Context, id string) (*domain.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return order, nil
}

func (s *OrderService) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.OrderDTO, error) {
	if !domain.IsValidOrderStatus(string(status)) {
		return nil, fmt.Errorf("%w: unknown order status %q", ErrInvalidInput, status)
	}
	if err := s.orderRepo.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	s.logger.Info("order status changed", zap.String("order_id", id), zap.String("status", string(status)))
	return s.GetByID(ctx, id)
}

// Delete removes an order together with its gates.
func (s *OrderService) Delete(ctx context.Context, id string) error {
	if err := s.orderRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete order: %w", err)
	}
	s.logger.Info("order deleted", zap.String("order_id", id))
	return nil
}
