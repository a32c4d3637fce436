// Package constraints implements the three feasibility builders of
// spec.md §4.3: order uniqueness, per-(factory,period,process) capacity,
// and material lead-time feasibility. Each builder is a pure function over
// the model, the preprocessed input, and the variable registry, grounded
// in the teacher's pattern of small single-purpose pipeline stages
// (mrp_service.go's applyLotSizing/calculateBOMLevels).
package constraints

import (
	"github.com/aps-engine/aps/pkg/application/dto"
	"github.com/aps-engine/aps/pkg/application/services/variables"
	"github.com/aps-engine/aps/pkg/cpsat"
	domainerrors "github.com/aps-engine/aps/pkg/domain/errors"
)

// BuildUniqueness adds AddExactlyOne(x[o,*,*]) for every order with at
// least one variable (spec.md §4.3.1). Orders with no variables produce a
// warning and no constraint.
func BuildUniqueness(model *cpsat.Model, input *dto.PreprocessedInput, reg *variables.Registry) []error {
	var warnings []error
	for _, orderID := range input.OrderIDs {
		entries := reg.ForOrder(orderID)
		if len(entries) == 0 {
			warnings = append(warnings, domainerrors.NewUnschedulableOrder(orderID, "no variables were created for this order"))
			continue
		}
		lits := make([]cpsat.Literal, len(entries))
		for i, e := range entries {
			lits[i] = cpsat.Lit(e.Var)
		}
		model.AddExactlyOne(lits)
	}
	return warnings
}
