package objectives

import (
	"fmt"

	"github.com/aps-engine/aps/pkg/application/dto"
	"github.com/aps-engine/aps/pkg/application/services/variables"
	"github.com/aps-engine/aps/pkg/cpsat"
	"github.com/aps-engine/aps/pkg/domain/entities"
	"github.com/shopspring/decimal"
)

// BuildTardinessRate implements spec.md §4.4.1: one is_tardy boolean per
// order with at least one variable, `is_tardy >= x[o,f,p]` for every
// variable whose period ends after the due date, and a firm/forecast
// weighted rate over the two subsets. Returns (zero, false) only when both
// subsets are empty.
func BuildTardinessRate(model *cpsat.Model, runID string, input *dto.PreprocessedInput, reg *variables.Registry, cfg dto.TardinessObjectiveConfig) (RateExpr, bool) {
	var firmVars, forecastVars []cpsat.BoolVar

	for _, orderID := range input.OrderIDs {
		entries := reg.ForOrder(orderID)
		if len(entries) == 0 {
			continue
		}
		order := input.OrderByID[orderID]
		isTardy := model.NewBoolVar(fmt.Sprintf("%s_is_tardy_%s", runID, orderID))

		for _, e := range entries {
			if e.Period.EndDate.After(order.DueDate) {
				// is_tardy >= x  <=>  is_tardy - x >= 0
				expr := cpsat.NewLinearExpr().AddBool(1, isTardy).AddBool(-1, e.Var)
				model.AddLinearGE(expr, 0)
			}
		}

		if order.OrderType == entities.Firm {
			firmVars = append(firmVars, isTardy)
		} else {
			forecastVars = append(forecastVars, isTardy)
		}
	}

	if len(firmVars) == 0 && len(forecastVars) == 0 {
		return RateExpr{}, false
	}

	rate := NewRateExpr()
	if n := len(firmVars); n > 0 {
		coeff := decimal.NewFromFloat(cfg.FirmTardyWeight).Div(decimal.NewFromInt(int64(n)))
		for _, v := range firmVars {
			rate = rate.AddBool(coeff, v)
		}
	}
	if n := len(forecastVars); n > 0 {
		coeff := decimal.NewFromFloat(cfg.ForecastTardyWeight).Div(decimal.NewFromInt(int64(n)))
		for _, v := range forecastVars {
			rate = rate.AddBool(coeff, v)
		}
	}
	return rate, true
}
