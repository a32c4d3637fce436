// Package variables builds the boolean decision-variable lattice x[o,f,p]
// over (order, eligible factory, capacity period) and applies lock-assignment
// pruning and date snapping (spec.md §4.2). Grounded in the teacher's
// repository-index pattern (pkg/infrastructure/repositories/memory): a flat
// slice plus a lookup map, never a nested structure.
package variables

import (
	"fmt"
	"time"

	"github.com/aps-engine/aps/pkg/cpsat"
	"github.com/aps-engine/aps/pkg/domain/entities"
	domainerrors "github.com/aps-engine/aps/pkg/domain/errors"
)

// Key identifies one decision variable by (order, factory, period start).
// Chosen as a flat table per spec.md §9's "nested variable store" note:
// a three-level map and a flat table keyed by this tuple are
// observationally equivalent, and the flat table is simpler to iterate
// deterministically.
type Key struct {
	OrderID         string
	FactoryID       string
	PeriodStartDate string // entities.DateLayout
}

// Entry is one emitted variable together with the period it represents, so
// constraint/objective builders never need a second lookup into the
// factory's period slice.
type Entry struct {
	Key    Key
	Var    cpsat.BoolVar
	Period entities.CapacityPeriod
}

// Registry is the built x[o,f,p] lattice: a lookup map plus, per order, the
// ordered list of variables created for it (construction order == emission
// order, spec.md §5 "Ordering guarantees").
type Registry struct {
	byKey         map[Key]Entry
	byOrder       map[string][]Entry
	byFactoryPeriod map[factoryPeriodKey][]Entry
	orderIDs      []string // orders that received at least one variable, in input order
}

type factoryPeriodKey struct {
	FactoryID       string
	PeriodStartDate string
}

// ForFactoryPeriod returns every entry at a given (factory, period), in
// creation order — the per-order terms the capacity constraint sums over.
func (r *Registry) ForFactoryPeriod(factoryID, periodStartDate string) []Entry {
	return r.byFactoryPeriod[factoryPeriodKey{FactoryID: factoryID, PeriodStartDate: periodStartDate}]
}

// ForOrder returns every entry created for orderID, in creation order.
func (r *Registry) ForOrder(orderID string) []Entry { return r.byOrder[orderID] }

// Lookup returns the entry for an exact key, if one was created.
func (r *Registry) Lookup(k Key) (Entry, bool) {
	e, ok := r.byKey[k]
	return e, ok
}

// ScheduledOrderIDs returns every order id that received at least one
// variable, in input order.
func (r *Registry) ScheduledOrderIDs() []string { return r.orderIDs }

// Build creates the variable lattice for every order in orders (input
// order preserved) over the eligible factories in factoryByID. runID
// prefixes every emitted variable name (spec.md §4.7.1) so concurrent runs
// sharing a process never collide on cpsat variable names. Returns the
// registry plus any LockErrors encountered for locked orders whose locked
// factory is not eligible or whose pinned date could not be snapped to a
// period.
func Build(model *cpsat.Model, runID string, orders []*entities.Order, factoryByID map[string]*entities.Factory) (*Registry, []error) {
	reg := &Registry{
		byKey:           make(map[Key]Entry),
		byOrder:         make(map[string][]Entry),
		byFactoryPeriod: make(map[factoryPeriodKey][]Entry),
	}
	var warnings []error

	for _, o := range orders {
		var entries []Entry
		var err error

		if o.FixedAssignment.HasFactory() || o.FixedAssignment.HasDate() {
			entries, err = buildLocked(model, runID, o, factoryByID)
		} else {
			entries = buildUnlocked(model, runID, o, factoryByID)
		}

		if err != nil {
			warnings = append(warnings, err)
			continue
		}
		if len(entries) == 0 {
			continue
		}
		for _, e := range entries {
			reg.byKey[e.Key] = e
			fpKey := factoryPeriodKey{FactoryID: e.Key.FactoryID, PeriodStartDate: e.Key.PeriodStartDate}
			reg.byFactoryPeriod[fpKey] = append(reg.byFactoryPeriod[fpKey], e)
		}
		reg.byOrder[o.OrderID] = entries
		reg.orderIDs = append(reg.orderIDs, o.OrderID)
	}

	return reg, warnings
}

func buildUnlocked(model *cpsat.Model, runID string, o *entities.Order, factoryByID map[string]*entities.Factory) []Entry {
	var entries []Entry
	for _, factoryID := range o.EligibleFactories {
		f, ok := factoryByID[factoryID]
		if !ok {
			continue
		}
		for _, p := range f.CapacityPeriods {
			entries = append(entries, newEntry(model, runID, o, f, p))
		}
	}
	return entries
}

func buildLocked(model *cpsat.Model, runID string, o *entities.Order, factoryByID map[string]*entities.Factory) ([]Entry, error) {
	candidateFactories := o.EligibleFactories
	if o.FixedAssignment.HasFactory() {
		if !o.IsEligibleFor(o.FixedAssignment.FactoryID) {
			return nil, domainerrors.NewLockError(o.OrderID, fmt.Sprintf("locked factory %q is not in the order's eligible set", o.FixedAssignment.FactoryID))
		}
		candidateFactories = []string{o.FixedAssignment.FactoryID}
	}

	var entries []Entry
	for _, factoryID := range candidateFactories {
		f, ok := factoryByID[factoryID]
		if !ok {
			continue
		}
		periods := f.CapacityPeriods
		if o.FixedAssignment.HasDate() {
			snapped, ok := snapPeriod(f, *o.FixedAssignment.PeriodStartDate)
			if !ok {
				continue
			}
			periods = []entities.CapacityPeriod{snapped}
		}
		for _, p := range periods {
			entries = append(entries, newEntry(model, runID, o, f, p))
		}
	}

	if len(entries) == 0 {
		return nil, domainerrors.NewLockError(o.OrderID, "locked date does not fall within any period of the candidate factory set")
	}

	if o.FixedAssignment.HasFactory() && o.FixedAssignment.HasDate() && len(entries) == 1 {
		model.AddLinearEQ(cpsat.NewLinearExpr().AddBool(1, entries[0].Var), 1)
	}

	return entries, nil
}

// snapPeriod finds the unique capacity period of f whose [start,end]
// contains date. Periods are disjoint by invariant, so at most one match
// is possible (spec.md §4.2 "Date snapping").
func snapPeriod(f *entities.Factory, date time.Time) (entities.CapacityPeriod, bool) {
	return f.PeriodContaining(date)
}

func newEntry(model *cpsat.Model, runID string, o *entities.Order, f *entities.Factory, p entities.CapacityPeriod) Entry {
	k := Key{OrderID: o.OrderID, FactoryID: f.FactoryID, PeriodStartDate: p.StartDate.Format(entities.DateLayout)}
	name := fmt.Sprintf("%s_x_%s_%s_%s", runID, k.OrderID, k.FactoryID, k.PeriodStartDate)
	v := model.NewBoolVar(name)
	return Entry{Key: k, Var: v, Period: p}
}
