package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/user/leafmarket/internal/domain"
)

var (
	ErrFetchOrders = errors.New("failed to fetch orders")
	ErrUpdateOrder = errors.New("failed to update order")

	// ErrInvalidTransition is returned when a status change is not an
	// allowed progression for the order's current status.
	ErrInvalidTransition = errors.New("order status transition not allowed")
)

type orderService struct {
	orders domain.OrderRepository
	logger *slog.Logger
}

// NewOrderService creates the order view service.
func NewOrderService(orders domain.OrderRepository, logger *slog.Logger) OrderUseCase {
	return &orderService{
		orders: orders,
		logger: logger.With("component", "order_service"),
	}
}

func (s *orderService) List(ctx context.Context) ([]domain.Order, error) {
	orders, err := s.orders.FindAll(ctx)
	if err != nil {
		s.logger.Error("order list failed", "error", err)
		return nil, ErrFetchOrders
	}
	return orders, nil
}

func (s *orderService) ListByCustomer(ctx context.Context, email string) ([]domain.Order, error) {
	orders, err := s.orders.FindByCustomer(ctx, email)
	if err != nil {
		s.logger.Error("customer order list failed", "email", email, "error", err)
		return nil, ErrFetchOrders
	}
	return orders, nil
}

// UpdateStatus moves an order along the allowed progression:
// pending→confirmed→shipped→delivered, with cancellation possible from
// pending or confirmed. Every other change is rejected.
func (s *orderService) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		s.logger.Error("order lookup failed", "id", id, "error", err)
		return ErrFetchOrders
	}

	if !domain.CanTransition(order.Status, status) {
		return ErrInvalidTransition
	}

	if err := s.orders.UpdateStatus(ctx, id, status); err != nil {
		s.logger.Error("order status update failed", "id", id, "error", err)
		return ErrUpdateOrder
	}
	return nil
}

func (s *orderService) Stats(ctx context.Context) (*OrderStats, error) {
	orders, err := s.orders.FindAll(ctx)
	if err != nil {
		s.logger.Error("order stats failed", "error", err)
		return nil, ErrFetchOrders
	}
	stats := ComputeOrderStats(orders)
	return &stats, nil
}
