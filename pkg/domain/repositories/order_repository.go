package repositories

import "github.com/aps-engine/aps/pkg/domain/entities"

// OrderRepository provides read-only access to order master data.
type OrderRepository interface {
	GetAll() ([]*entities.Order, error)
	GetByID(orderID string) (*entities.Order, error)
}
