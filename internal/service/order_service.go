package service

import (
	"context"

	"novaforge-store/internal/domain"
	"novaforge-store/internal/repository"

	"github.com/google/uuid"
)

// OrderService exposes read access to persisted orders.
type OrderService interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.Order, []*domain.OrderLine, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error)
	List(ctx context.Context, page, pageSize int) ([]*repository.OrderWithBuyer, int, error)
}

type orderService struct {
	orderRepo repository.OrderRepository
}

// NewOrderService creates a new instance of OrderService
func NewOrderService(orderRepo repository.OrderRepository) OrderService {
	return &orderService{orderRepo: orderRepo}
}

// Get retrieves an order together with its lines
func (s *orderService) Get(ctx context.Context, id uuid.UUID) (*domain.Order, []*domain.OrderLine, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	lines, err := s.orderRepo.FindLines(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	return order, lines, nil
}

// ListByUser retrieves all orders placed by a user
func (s *orderService) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	return s.orderRepo.ListByUser(ctx, userID)
}

// List retrieves orders with buyer info for the admin view
func (s *orderService) List(ctx context.Context, page, pageSize int) ([]*repository.OrderWithBuyer, int, error) {
	return s.orderRepo.List(ctx, page, pageSize)
}
