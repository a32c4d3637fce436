package memory

import (
	"fmt"

	"github.com/aps-engine/aps/pkg/domain/entities"
	"github.com/aps-engine/aps/pkg/domain/repositories"
)

// OrderRepository is an in-memory OrderRepository backed by a slice
// (iteration order) and a map (lookup).
type OrderRepository struct {
	orders []*entities.Order
	byID   map[string]*entities.Order
}

// NewOrderRepository returns an empty repository sized for expectedCount
// orders.
func NewOrderRepository(expectedCount int) *OrderRepository {
	return &OrderRepository{
		orders: make([]*entities.Order, 0, expectedCount),
		byID:   make(map[string]*entities.Order, expectedCount),
	}
}

// Add appends o to the repository. Returns an error if its id already exists.
func (r *OrderRepository) Add(o *entities.Order) error {
	if _, exists := r.byID[o.OrderID]; exists {
		return fmt.Errorf("order %s already exists", o.OrderID)
	}
	r.orders = append(r.orders, o)
	r.byID[o.OrderID] = o
	return nil
}

func (r *OrderRepository) GetAll() ([]*entities.Order, error) {
	out := make([]*entities.Order, len(r.orders))
	copy(out, r.orders)
	return out, nil
}

func (r *OrderRepository) GetByID(orderID string) (*entities.Order, error) {
	o, ok := r.byID[orderID]
	if !ok {
		return nil, fmt.Errorf("order %s not found", orderID)
	}
	return o, nil
}

var _ repositories.OrderRepository = (*OrderRepository)(nil)
