// Package json loads Factory and Order records from the input data schema
// of spec.md §6: dates as ISO strings, capacities/quantities/lead times as
// non-negative integers. Grounded in the teacher's
// pkg/infrastructure/repositories/csv/csv_loader.go: per-record error
// wrapping naming the file and id, and a thin Loader collaborator with no
// business logic beyond shape validation.
package json

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/aps-engine/aps/pkg/domain/entities"
	domainerrors "github.com/aps-engine/aps/pkg/domain/errors"
	"github.com/aps-engine/aps/pkg/infrastructure/repositories/memory"
	"github.com/shopspring/decimal"
)

type efficiencyTierJSON struct {
	MinQuantity int     `json:"min_quantity"`
	MaxQuantity int     `json:"max_quantity"`
	Efficiency  float64 `json:"efficiency"`
}

type capacityPeriodJSON struct {
	StartDate         string         `json:"start_date"`
	EndDate           string         `json:"end_date"`
	CapacityByProcess map[string]int `json:"capacity_by_process"`
}

type factoryJSON struct {
	FactoryID              string                            `json:"factory_id"`
	Region                 string                            `json:"region"`
	ProductionEfficiencies map[string][]efficiencyTierJSON    `json:"production_efficiencies"`
	CapacityPeriods        []capacityPeriodJSON              `json:"capacity_periods"`
}

type fixedAssignmentJSON struct {
	FactoryID       string  `json:"factory_id"`
	PeriodStartDate *string `json:"period_start_date"`
}

type orderJSON struct {
	OrderID                                string               `json:"order_id"`
	Customer                               string               `json:"customer"`
	ProductType                            string               `json:"product_type"`
	Style                                  string               `json:"style"`
	Quantity                               int                  `json:"quantity"`
	DueDate                                string               `json:"due_date"`
	MaterialPurchasingLeadTime             int                  `json:"material_purchasing_lead_time"`
	MaterialTransportationToRegionLeadTime map[string]int       `json:"material_transportation_to_region_lead_time"`
	ProductionLeadTime                     int                  `json:"production_lead_time"`
	TotalProcessCapacity                   map[string]int       `json:"total_process_capacity"`
	EligibleFactories                      []string             `json:"eligible_factories"`
	OrderType                              int                  `json:"order_type"`
	FixedAssignment                        *fixedAssignmentJSON `json:"fixed_assignment"`
}

// LoadFactories reads and parses the factory data file at path.
func LoadFactories(path string) ([]*entities.Factory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domainerrors.NewIOError(path, err)
	}
	var raw []factoryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, domainerrors.NewIOError(path, fmt.Errorf("invalid json: %w", err))
	}

	out := make([]*entities.Factory, 0, len(raw))
	for _, rf := range raw {
		f, err := toFactory(rf)
		if err != nil {
			return nil, fmt.Errorf("factory %s: %w", rf.FactoryID, err)
		}
		out = append(out, f)
	}
	return out, nil
}

// LoadOrders reads and parses the order data file at path.
func LoadOrders(path string) ([]*entities.Order, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domainerrors.NewIOError(path, err)
	}
	var raw []orderJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, domainerrors.NewIOError(path, fmt.Errorf("invalid json: %w", err))
	}

	out := make([]*entities.Order, 0, len(raw))
	for _, ro := range raw {
		o, err := toOrder(ro)
		if err != nil {
			return nil, fmt.Errorf("order %s: %w", ro.OrderID, err)
		}
		out = append(out, o)
	}
	return out, nil
}

// LoadRepositories reads both files and wraps the results in the
// in-memory repository implementations the rest of the application
// depends on through the domain repository interfaces.
func LoadRepositories(factoryPath, orderPath string) (*memory.FactoryRepository, *memory.OrderRepository, error) {
	factories, err := LoadFactories(factoryPath)
	if err != nil {
		return nil, nil, err
	}
	orders, err := LoadOrders(orderPath)
	if err != nil {
		return nil, nil, err
	}

	factoryRepo := memory.NewFactoryRepository(len(factories))
	for _, f := range factories {
		if err := factoryRepo.Add(f); err != nil {
			return nil, nil, fmt.Errorf("loading %s: %w", factoryPath, err)
		}
	}
	orderRepo := memory.NewOrderRepository(len(orders))
	for _, o := range orders {
		if err := orderRepo.Add(o); err != nil {
			return nil, nil, fmt.Errorf("loading %s: %w", orderPath, err)
		}
	}
	return factoryRepo, orderRepo, nil
}

func toFactory(rf factoryJSON) (*entities.Factory, error) {
	tiersByProduct := make(map[string][]entities.EfficiencyTier, len(rf.ProductionEfficiencies))
	for product, tiers := range rf.ProductionEfficiencies {
		converted := make([]entities.EfficiencyTier, 0, len(tiers))
		for _, t := range tiers {
			tier, err := entities.NewEfficiencyTier(t.MinQuantity, t.MaxQuantity, decimal.NewFromFloat(t.Efficiency))
			if err != nil {
				return nil, fmt.Errorf("product %s: %w", product, err)
			}
			converted = append(converted, tier)
		}
		tiersByProduct[product] = converted
	}

	periods := make([]entities.CapacityPeriod, 0, len(rf.CapacityPeriods))
	for _, p := range rf.CapacityPeriods {
		start, err := time.Parse(entities.DateLayout, p.StartDate)
		if err != nil {
			return nil, fmt.Errorf("capacity period start_date %q: %w", p.StartDate, err)
		}
		end, err := time.Parse(entities.DateLayout, p.EndDate)
		if err != nil {
			return nil, fmt.Errorf("capacity period end_date %q: %w", p.EndDate, err)
		}
		period, err := entities.NewCapacityPeriod(start, end, p.CapacityByProcess)
		if err != nil {
			return nil, err
		}
		periods = append(periods, period)
	}

	return entities.NewFactory(rf.FactoryID, rf.Region, tiersByProduct, periods)
}

func toOrder(ro orderJSON) (*entities.Order, error) {
	dueDate, err := time.Parse(entities.DateLayout, ro.DueDate)
	if err != nil {
		return nil, fmt.Errorf("due_date %q: %w", ro.DueDate, err)
	}

	var fixed *entities.FixedAssignment
	if ro.FixedAssignment != nil {
		fixed = &entities.FixedAssignment{FactoryID: ro.FixedAssignment.FactoryID}
		if ro.FixedAssignment.PeriodStartDate != nil {
			d, err := time.Parse(entities.DateLayout, *ro.FixedAssignment.PeriodStartDate)
			if err != nil {
				return nil, domainerrors.NewConfigurationError("fixed_assignment.period_start_date", fmt.Sprintf("%q: %v", *ro.FixedAssignment.PeriodStartDate, err))
			}
			fixed.PeriodStartDate = &d
		}
	}

	return entities.NewOrder(
		ro.OrderID, ro.Customer, ro.ProductType, ro.Style,
		ro.Quantity, dueDate,
		ro.MaterialPurchasingLeadTime, ro.MaterialTransportationToRegionLeadTime, ro.ProductionLeadTime,
		ro.TotalProcessCapacity, ro.EligibleFactories,
		entities.OrderType(ro.OrderType), fixed,
	)
}
