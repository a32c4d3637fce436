package constraints

import (
	"sort"

	"github.com/aps-engine/aps/pkg/application/dto"
	"github.com/aps-engine/aps/pkg/application/services/variables"
	"github.com/aps-engine/aps/pkg/cpsat"
	"github.com/aps-engine/aps/pkg/domain/entities"
	"github.com/shopspring/decimal"
)

// BuildCapacity adds, for every (factory, period, process) with capacity C,
// the constraint sum(workload(o,f,process) * x[o,f,p]) <= C over every
// order that both needs that process and has a variable at (o,f,p)
// (spec.md §4.3.2).
func BuildCapacity(model *cpsat.Model, input *dto.PreprocessedInput, reg *variables.Registry) {
	for _, f := range input.Factories() {
		for _, period := range f.CapacityPeriods {
			periodKey := period.StartDate.Format(entities.DateLayout)
			entries := reg.ForFactoryPeriod(f.FactoryID, periodKey)
			if len(entries) == 0 {
				continue
			}

			processes := make([]string, 0, len(period.CapacityByProcess))
			for proc := range period.CapacityByProcess {
				processes = append(processes, proc)
			}
			sort.Strings(processes)

			for _, proc := range processes {
				capacity := period.CapacityByProcess[proc]
				expr := cpsat.NewLinearExpr()
				nonEmpty := false
				for _, e := range entries {
					baseWorkload, needsProcess := orderProcessWorkload(input, e.Key.OrderID, proc)
					if !needsProcess {
						continue
					}
					order := input.OrderByID[e.Key.OrderID]
					efficiency := f.EfficiencyFor(order.ProductType, order.Quantity)
					workload := FloorWorkload(baseWorkload, efficiency)
					if workload == 0 {
						continue
					}
					expr = expr.AddBool(workload, e.Var)
					nonEmpty = true
				}
				if nonEmpty {
					model.AddLinearLE(expr, int64(capacity))
				}
			}
		}
	}
}

// FloorWorkload computes floor(baseWorkload / efficiency) using
// decimal.Decimal so the division and truncation never lose precision to
// float64 rounding before the single intentional floor (spec.md §4.3.2 and
// §9 "Float→int discipline").
func FloorWorkload(baseWorkload int, efficiency decimal.Decimal) int64 {
	if efficiency.IsZero() {
		return 0
	}
	return decimal.NewFromInt(int64(baseWorkload)).Div(efficiency).Floor().IntPart()
}

// orderProcessWorkload returns the order's base workload for a process and
// whether the order requires that process at all.
func orderProcessWorkload(input *dto.PreprocessedInput, orderID, process string) (int, bool) {
	order := input.OrderByID[orderID]
	w, ok := order.TotalProcessCapacity[process]
	return w, ok
}
