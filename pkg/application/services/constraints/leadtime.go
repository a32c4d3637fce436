package constraints

import (
	"github.com/aps-engine/aps/pkg/application/dto"
	"github.com/aps-engine/aps/pkg/application/services/variables"
	"github.com/aps-engine/aps/pkg/cpsat"
)

// BuildMaterialLeadTime forces x[o,f,p] = 0 for every variable whose period
// starts before the order's earliest feasible start date at that factory's
// region (spec.md §4.3.3). A region missing from the order's
// material-transportation map is treated as +infinity lead time, zeroing
// every variable at factories in that region.
func BuildMaterialLeadTime(model *cpsat.Model, input *dto.PreprocessedInput, reg *variables.Registry) {
	for _, orderID := range input.OrderIDs {
		order := input.OrderByID[orderID]
		for _, e := range reg.ForOrder(orderID) {
			f := input.FactoryByID[e.Key.FactoryID]
			earliest, ok := order.EarliestStartDate(input.BaseDate, f.Region)
			if !ok || e.Period.StartDate.Before(earliest) {
				model.AddLinearEQ(cpsat.NewLinearExpr().AddBool(1, e.Var), 0)
			}
		}
	}
}
