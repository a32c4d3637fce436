// Package memory provides in-memory implementations of the domain
// repository interfaces, used by the JSON loader to assemble its final
// repositories. Grounded in the teacher's
// pkg/infrastructure/repositories/memory/item_repository.go: a slice plus
// a map index, with an explicit interface-compliance check.
package memory

import (
	"fmt"

	"github.com/aps-engine/aps/pkg/domain/entities"
	"github.com/aps-engine/aps/pkg/domain/repositories"
)

// FactoryRepository is an in-memory FactoryRepository backed by a slice
// (iteration order) and a map (lookup).
type FactoryRepository struct {
	factories []*entities.Factory
	byID      map[string]*entities.Factory
}

// NewFactoryRepository returns an empty repository sized for expectedCount
// factories.
func NewFactoryRepository(expectedCount int) *FactoryRepository {
	return &FactoryRepository{
		factories: make([]*entities.Factory, 0, expectedCount),
		byID:      make(map[string]*entities.Factory, expectedCount),
	}
}

// Add appends f to the repository. Returns an error if its id already exists.
func (r *FactoryRepository) Add(f *entities.Factory) error {
	if _, exists := r.byID[f.FactoryID]; exists {
		return fmt.Errorf("factory %s already exists", f.FactoryID)
	}
	r.factories = append(r.factories, f)
	r.byID[f.FactoryID] = f
	return nil
}

func (r *FactoryRepository) GetAll() ([]*entities.Factory, error) {
	out := make([]*entities.Factory, len(r.factories))
	copy(out, r.factories)
	return out, nil
}

func (r *FactoryRepository) GetByID(factoryID string) (*entities.Factory, error) {
	f, ok := r.byID[factoryID]
	if !ok {
		return nil, fmt.Errorf("factory %s not found", factoryID)
	}
	return f, nil
}

var _ repositories.FactoryRepository = (*FactoryRepository)(nil)
