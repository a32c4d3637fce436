package entities

import (
	"fmt"
	"time"
)

// OrderType distinguishes firm commitments from demand forecasts; the
// tardiness objective weights the two differently (spec.md §4.4.1).
type OrderType int

const (
	Forecast OrderType = 0
	Firm     OrderType = 1
)

func (t OrderType) String() string {
	switch t {
	case Firm:
		return "Firm"
	case Forecast:
		return "Forecast"
	default:
		return "Unknown"
	}
}

// FixedAssignment is a caller-supplied partial or full pin of an order to a
// specific factory and/or date (spec.md §3, "Lock").
type FixedAssignment struct {
	FactoryID       string
	PeriodStartDate *time.Time
}

// HasFactory reports whether the lock pins a specific factory.
func (f *FixedAssignment) HasFactory() bool {
	return f != nil && f.FactoryID != ""
}

// HasDate reports whether the lock pins a specific calendar date.
func (f *FixedAssignment) HasDate() bool {
	return f != nil && f.PeriodStartDate != nil
}

// Order is an indivisible production unit with quantity, due date,
// per-process workload requirements, and an eligibility set of factories.
type Order struct {
	OrderID                                  string
	Customer                                 string
	ProductType                               string
	Style                                     string
	Quantity                                  int
	DueDate                                   time.Time
	MaterialPurchasingLeadTime                int
	MaterialTransportationToRegionLeadTime    map[string]int
	ProductionLeadTime                        int
	TotalProcessCapacity                      map[string]int
	EligibleFactories                         []string
	OrderType                                 OrderType
	FixedAssignment                           *FixedAssignment
}

// NewOrder validates and constructs an Order.
func NewOrder(
	orderID, customer, productType, style string,
	quantity int,
	dueDate time.Time,
	purchasingLT int,
	transportLT map[string]int,
	productionLT int,
	totalProcessCapacity map[string]int,
	eligibleFactories []string,
	orderType OrderType,
	fixedAssignment *FixedAssignment,
) (*Order, error) {
	if orderID == "" {
		return nil, fmt.Errorf("order id cannot be empty")
	}
	if quantity < 1 {
		return nil, fmt.Errorf("order %s: quantity must be >= 1, got %d", orderID, quantity)
	}
	if purchasingLT < 0 {
		return nil, fmt.Errorf("order %s: material purchasing lead time cannot be negative, got %d", orderID, purchasingLT)
	}
	if productionLT < 0 {
		return nil, fmt.Errorf("order %s: production lead time cannot be negative, got %d", orderID, productionLT)
	}
	// Defensive copy so later pruning never mutates caller-owned slices.
	eligible := make([]string, len(eligibleFactories))
	copy(eligible, eligibleFactories)

	return &Order{
		OrderID:                                orderID,
		Customer:                               customer,
		ProductType:                            productType,
		Style:                                  style,
		Quantity:                               quantity,
		DueDate:                                dueDate,
		MaterialPurchasingLeadTime:             purchasingLT,
		MaterialTransportationToRegionLeadTime: transportLT,
		ProductionLeadTime:                     productionLT,
		TotalProcessCapacity:                   totalProcessCapacity,
		EligibleFactories:                      eligible,
		OrderType:                              orderType,
		FixedAssignment:                        fixedAssignment,
	}, nil
}

// TransportLeadTimeTo returns the material transportation lead time to a
// region, or (0, false) if the region is unlisted — callers must treat the
// false case as +infinity (spec.md §4.3.3).
func (o *Order) TransportLeadTimeTo(region string) (int, bool) {
	lt, ok := o.MaterialTransportationToRegionLeadTime[region]
	return lt, ok
}

// EarliestStartDate computes base_date + purchasing_lt + transport_lt +
// production_lt for a given region. ok is false if the region has no
// transport lead time on record (spec.md §4.3.3).
func (o *Order) EarliestStartDate(baseDate time.Time, region string) (time.Time, bool) {
	transportLT, ok := o.TransportLeadTimeTo(region)
	if !ok {
		return time.Time{}, false
	}
	totalDays := o.MaterialPurchasingLeadTime + transportLT + o.ProductionLeadTime
	return baseDate.AddDate(0, 0, totalDays), true
}

// IsEligibleFor reports whether factoryID is (still, post-pruning) in this
// order's eligibility set.
func (o *Order) IsEligibleFor(factoryID string) bool {
	for _, id := range o.EligibleFactories {
		if id == factoryID {
			return true
		}
	}
	return false
}
