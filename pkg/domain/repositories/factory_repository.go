package repositories

import "github.com/aps-engine/aps/pkg/domain/entities"

// FactoryRepository provides read-only access to factory master data.
// Implementations live in pkg/infrastructure/repositories/{json,postgres,memory};
// every builder and service in pkg/application depends only on this
// interface, never on a concrete storage technology.
type FactoryRepository interface {
	GetAll() ([]*entities.Factory, error)
	GetByID(factoryID string) (*entities.Factory, error)
}
