package objectives

import (
	"fmt"

	"github.com/aps-engine/aps/pkg/application/dto"
	"github.com/aps-engine/aps/pkg/application/services/constraints"
	"github.com/aps-engine/aps/pkg/application/services/variables"
	"github.com/aps-engine/aps/pkg/cpsat"
	"github.com/aps-engine/aps/pkg/domain/entities"
	"github.com/shopspring/decimal"
)

// balanceScale is S in spec.md §4.4.3: the fixed-point scale applied to
// load ratios so maxR/minR can be represented as bounded integers.
const balanceScale = 1000

// BuildWorkloadBalance implements spec.md §4.4.3: global minimax load-ratio
// auxiliaries maxR/minR, a reified "used" indicator per (factory, period)
// with total capacity > 0, and the equal-blend balance cost.
func BuildWorkloadBalance(model *cpsat.Model, runID string, input *dto.PreprocessedInput, reg *variables.Registry) (RateExpr, bool) {
	maxR := model.NewIntVar(0, 2*balanceScale, fmt.Sprintf("%s_max_load_ratio_scaled", runID))
	minR := model.NewIntVar(0, 2*balanceScale, fmt.Sprintf("%s_min_load_ratio_scaled", runID))
	model.AddLinearLE(cpsat.NewLinearExpr().AddInt(1, minR).AddInt(-1, maxR), 0)

	any := false
	for _, f := range input.Factories() {
		for _, period := range f.CapacityPeriods {
			capacity := period.TotalCapacity()
			if capacity <= 0 {
				continue
			}
			periodKey := period.StartDate.Format(entities.DateLayout)
			entries := reg.ForFactoryPeriod(f.FactoryID, periodKey)
			if len(entries) == 0 {
				continue
			}

			workloadExpr := cpsat.NewLinearExpr()
			type loadTerm struct {
				Var      cpsat.BoolVar
				Workload int64
			}
			var loadTerms []loadTerm
			maxPossible := int64(0)
			for _, e := range entries {
				order := input.OrderByID[e.Key.OrderID]
				base := input.OrderTotalBaseWorkload[e.Key.OrderID]
				efficiency := f.EfficiencyFor(order.ProductType, order.Quantity)
				workload := constraints.FloorWorkload(base, efficiency)
				if workload == 0 {
					continue
				}
				workloadExpr = workloadExpr.AddBool(workload, e.Var)
				loadTerms = append(loadTerms, loadTerm{Var: e.Var, Workload: workload})
				maxPossible += workload
			}
			if maxPossible == 0 {
				continue
			}
			any = true

			used := model.NewBoolVar(fmt.Sprintf("%s_used_%s_%s", runID, f.FactoryID, periodKey))
			// used=0 => W <= 0 (W is always >= 0, so this forces W == 0)
			model.AddLinearLE(workloadExpr, 0).OnlyEnforceIf(cpsat.NotLit(used))
			// used=1 => W >= 1
			model.AddLinearGE(workloadExpr, 1).OnlyEnforceIf(cpsat.Lit(used))

			// Upper bound, always: maxR * C >= W * S
			upper := cpsat.NewLinearExpr().AddInt(int64(capacity), maxR)
			for _, t := range loadTerms {
				upper = upper.AddBool(-balanceScale*t.Workload, t.Var)
			}
			model.AddLinearGE(upper, 0)

			// Lower bound, conditional on used: minR * C <= W * S
			lower := cpsat.NewLinearExpr().AddInt(int64(capacity), minR)
			for _, t := range loadTerms {
				lower = lower.AddBool(-balanceScale*t.Workload, t.Var)
			}
			model.AddLinearLE(lower, 0).OnlyEnforceIf(cpsat.Lit(used))
		}
	}

	if !any {
		return RateExpr{}, false
	}

	// balance_cost = 0.5*(maxR - minR) + 0.5*maxR = maxR - 0.5*minR, then
	// normalized by the scale S to bring it back into a [0,2] rate.
	half := decimal.NewFromFloat(0.5)
	inverseScale := decimal.NewFromInt(1).Div(decimal.NewFromInt(balanceScale))
	rate := NewRateExpr()
	rate = rate.AddInt(inverseScale, maxR)
	rate = rate.AddInt(half.Neg().Mul(inverseScale), minR)
	return rate, true
}
