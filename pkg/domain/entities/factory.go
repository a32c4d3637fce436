package entities

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// EfficiencyTier defines a quantity-banded production efficiency for a
// single product type at a single factory.
type EfficiencyTier struct {
	MinQuantity int
	MaxQuantity int
	Efficiency  decimal.Decimal
}

// NewEfficiencyTier validates and constructs an EfficiencyTier.
func NewEfficiencyTier(minQty, maxQty int, efficiency decimal.Decimal) (EfficiencyTier, error) {
	if minQty < 0 {
		return EfficiencyTier{}, fmt.Errorf("min quantity cannot be negative, got %d", minQty)
	}
	if maxQty < minQty {
		return EfficiencyTier{}, fmt.Errorf("max quantity %d cannot be less than min quantity %d", maxQty, minQty)
	}
	if efficiency.LessThanOrEqual(decimal.Zero) {
		return EfficiencyTier{}, fmt.Errorf("efficiency must be positive, got %s", efficiency.String())
	}
	return EfficiencyTier{MinQuantity: minQty, MaxQuantity: maxQty, Efficiency: efficiency}, nil
}

// Covers reports whether a given order quantity falls within this tier.
func (t EfficiencyTier) Covers(quantity int) bool {
	return quantity >= t.MinQuantity && quantity <= t.MaxQuantity
}

// CapacityPeriod is a time window over which a factory offers a fixed
// per-process capacity.
type CapacityPeriod struct {
	StartDate         time.Time
	EndDate           time.Time
	CapacityByProcess map[string]int
}

// NewCapacityPeriod validates and constructs a CapacityPeriod.
func NewCapacityPeriod(start, end time.Time, capacityByProcess map[string]int) (CapacityPeriod, error) {
	if end.Before(start) {
		return CapacityPeriod{}, fmt.Errorf("end date %s is before start date %s", end.Format(DateLayout), start.Format(DateLayout))
	}
	for proc, cap := range capacityByProcess {
		if cap < 0 {
			return CapacityPeriod{}, fmt.Errorf("capacity for process %q cannot be negative, got %d", proc, cap)
		}
	}
	return CapacityPeriod{StartDate: start, EndDate: end, CapacityByProcess: capacityByProcess}, nil
}

// TotalCapacity sums capacity across every process in this period.
func (p CapacityPeriod) TotalCapacity() int {
	total := 0
	for _, c := range p.CapacityByProcess {
		total += c
	}
	return total
}

// Contains reports whether a calendar date falls within [StartDate, EndDate].
func (p CapacityPeriod) Contains(d time.Time) bool {
	return !d.Before(p.StartDate) && !d.After(p.EndDate)
}

// Factory is a production site with a region, per-product efficiency
// curves, and a sequence of disjoint capacity periods.
type Factory struct {
	FactoryID               string
	Region                   string
	ProductionEfficiencies   map[string][]EfficiencyTier
	CapacityPeriods          []CapacityPeriod
}

// NewFactory validates and constructs a Factory.
func NewFactory(
	factoryID string,
	region string,
	productionEfficiencies map[string][]EfficiencyTier,
	capacityPeriods []CapacityPeriod,
) (*Factory, error) {
	if factoryID == "" {
		return nil, fmt.Errorf("factory id cannot be empty")
	}
	if region == "" {
		return nil, fmt.Errorf("region cannot be empty for factory %s", factoryID)
	}
	return &Factory{
		FactoryID:              factoryID,
		Region:                 region,
		ProductionEfficiencies: productionEfficiencies,
		CapacityPeriods:        capacityPeriods,
	}, nil
}

// Processes returns the union of process names across every capacity period.
func (f *Factory) Processes() map[string]struct{} {
	procs := make(map[string]struct{})
	for _, p := range f.CapacityPeriods {
		for proc := range p.CapacityByProcess {
			procs[proc] = struct{}{}
		}
	}
	return procs
}

// EfficiencyFor looks up the production efficiency for a product type and
// quantity at this factory. Returns 1.0 when the product type is unknown or
// no tier covers the quantity (spec.md §4.3.2).
func (f *Factory) EfficiencyFor(productType string, quantity int) decimal.Decimal {
	tiers, ok := f.ProductionEfficiencies[productType]
	if !ok {
		return decimal.NewFromInt(1)
	}
	for _, tier := range tiers {
		if tier.Covers(quantity) {
			return tier.Efficiency
		}
	}
	return decimal.NewFromInt(1)
}

// PeriodContaining returns the unique capacity period whose [start,end]
// contains the given date, or false if none does. Periods are disjoint by
// invariant, so at most one period can match.
func (f *Factory) PeriodContaining(d time.Time) (CapacityPeriod, bool) {
	for _, p := range f.CapacityPeriods {
		if p.Contains(d) {
			return p, true
		}
	}
	return CapacityPeriod{}, false
}

// DateLayout is the ISO date format used throughout the input/output schema.
const DateLayout = "2006-01-02"
