package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/user/leafmarket/internal/domain"
)

// OrderRepository is an in-memory domain.OrderRepository seeded with
// sample orders. Order creation has no server-side path; checkout is
// delegated to the external messaging channel.
type OrderRepository struct {
	mu     sync.RWMutex
	orders []domain.Order
}

// NewOrderRepository creates an order repository holding the given
// orders. Use SampleOrders for the stock seed data.
func NewOrderRepository(seed []domain.Order) *OrderRepository {
	orders := make([]domain.Order, len(seed))
	copy(orders, seed)
	return &OrderRepository{orders: orders}
}

func (r *OrderRepository) FindAll(ctx context.Context) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Order, len(r.orders))
	copy(out, r.orders)
	return out, nil
}

func (r *OrderRepository) FindByCustomer(ctx context.Context, email string) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []domain.Order{}
	for _, o := range r.orders {
		if strings.EqualFold(o.CustomerEmail, email) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, o := range r.orders {
		if o.ID == id {
			found := o
			return &found, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.orders {
		if r.orders[i].ID == id {
			r.orders[i].Status = status
			return nil
		}
	}
	return domain.ErrNotFound
}

// SampleOrders returns the seed orders backing the order views.
func SampleOrders() []domain.Order {
	return []domain.Order{
		{
			ID:            "ORD-001",
			CustomerEmail: "customer1@example.com",
			CustomerName:  "John Doe",
			Date:          "2025-06-20",
			Status:        domain.OrderDelivered,
			Total:         79.98,
			Items: []domain.OrderItem{
				{Name: "Premium CBD Oil", Quantity: 1, Price: 49.99},
				{Name: "Cannabis Gummies", Quantity: 1, Price: 29.99},
			},
		},
		{
			ID:            "ORD-002",
			CustomerEmail: "customer2@example.com",
			CustomerName:  "Jane Smith",
			Date:          "2025-06-23",
			Status:        domain.OrderShipped,
			Total:         39.99,
			Items: []domain.OrderItem{
				{Name: "THC Vape Cartridge", Quantity: 1, Price: 39.99},
			},
		},
		{
			ID:            "ORD-003",
			CustomerEmail: "customer3@example.com",
			CustomerName:  "Mike Johnson",
			Date:          "2025-06-25",
			Status:        domain.OrderPending,
			Total:         35.00,
			Items: []domain.OrderItem{
				{Name: "Hybrid Flower", Quantity: 1, Price: 35.00},
			},
		},
	}
}
