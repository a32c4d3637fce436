package dto

import (
	"time"

	"github.com/aps-engine/aps/pkg/domain/entities"
)

// PreprocessedInput is the immutable bundle produced by the preprocessor
// (spec.md §3/§4.1): indexed factories/orders, the parsed base date, the
// union of all process names, and the per-order/per-(factory,period)
// aggregate workload/capacity figures the constraint and objective
// builders read without recomputing.
type PreprocessedInput struct {
	FactoryByID                  map[string]*entities.Factory
	OrderByID                    map[string]*entities.Order
	FactoryIDs                   []string // input order, for deterministic iteration
	OrderIDs                     []string // input order, for deterministic iteration
	BaseDate                     time.Time
	AllProcesses                 map[string]struct{}
	OrderTotalBaseWorkload       map[string]int
	FactoryTotalCapacityByPeriod map[string]map[string]int // factory_id -> period_start (RFC3339 date) -> total capacity
}

// NewPreprocessedInput returns an empty bundle ready for population by the
// preprocessor.
func NewPreprocessedInput(baseDate time.Time) *PreprocessedInput {
	return &PreprocessedInput{
		FactoryByID:                  make(map[string]*entities.Factory),
		OrderByID:                    make(map[string]*entities.Order),
		BaseDate:                     baseDate,
		AllProcesses:                 make(map[string]struct{}),
		OrderTotalBaseWorkload:       make(map[string]int),
		FactoryTotalCapacityByPeriod: make(map[string]map[string]int),
	}
}

// Factories returns the indexed factories in input order.
func (p *PreprocessedInput) Factories() []*entities.Factory {
	out := make([]*entities.Factory, 0, len(p.FactoryIDs))
	for _, id := range p.FactoryIDs {
		out = append(out, p.FactoryByID[id])
	}
	return out
}

// Orders returns the indexed orders in input order.
func (p *PreprocessedInput) Orders() []*entities.Order {
	out := make([]*entities.Order, 0, len(p.OrderIDs))
	for _, id := range p.OrderIDs {
		out = append(out, p.OrderByID[id])
	}
	return out
}
