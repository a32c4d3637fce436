package objectives

import (
	"fmt"
	"time"

	"github.com/aps-engine/aps/pkg/application/dto"
	"github.com/aps-engine/aps/pkg/application/services/variables"
	"github.com/aps-engine/aps/pkg/cpsat"
	"github.com/shopspring/decimal"
)

// jitHorizonDays bounds the earliness/tardiness auxiliaries (spec.md §4.4.2).
const jitHorizonDays = 365

// BuildJITDeviation implements spec.md §4.4.2: per-order earliness/tardiness
// auxiliaries tied to the completion-day expression by an equality
// constraint, global max-equality auxiliaries over all orders, and a
// minimax rate weighted by the configured allowed-deviation denominators.
func BuildJITDeviation(model *cpsat.Model, runID string, input *dto.PreprocessedInput, reg *variables.Registry, cfg dto.JITObjectiveConfig) (RateExpr, bool) {
	if len(input.OrderIDs) == 0 {
		return RateExpr{}, false
	}

	earliness := make([]cpsat.IntVar, 0, len(input.OrderIDs))
	tardiness := make([]cpsat.IntVar, 0, len(input.OrderIDs))

	for _, orderID := range input.OrderIDs {
		order := input.OrderByID[orderID]
		entries := reg.ForOrder(orderID)

		e := model.NewIntVar(0, jitHorizonDays, fmt.Sprintf("%s_earliness_%s", runID, orderID))
		t := model.NewIntVar(0, jitHorizonDays, fmt.Sprintf("%s_tardiness_%s", runID, orderID))
		earliness = append(earliness, e)
		tardiness = append(tardiness, t)

		if len(entries) == 0 {
			model.AddLinearEQ(cpsat.NewLinearExpr().AddInt(1, e), 0)
			model.AddLinearEQ(cpsat.NewLinearExpr().AddInt(1, t), 0)
			continue
		}

		dueDays := int64(daysBetween(input.BaseDate, order.DueDate))

		// CD_o - DD_o == T_o - E_o  <=>  CD_o - T_o + E_o == DD_o
		expr := cpsat.NewLinearExpr()
		for _, entry := range entries {
			days := int64(daysBetween(input.BaseDate, entry.Period.EndDate))
			expr = expr.AddBool(days, entry.Var)
		}
		expr = expr.AddInt(-1, t).AddInt(1, e)
		model.AddLinearEQ(expr, dueDays)
	}

	maxE := model.NewIntVar(0, jitHorizonDays, fmt.Sprintf("%s_max_earliness", runID))
	maxT := model.NewIntVar(0, jitHorizonDays, fmt.Sprintf("%s_max_tardiness", runID))
	model.AddMaxEquality(maxE, earliness)
	model.AddMaxEquality(maxT, tardiness)

	alphaE := decimal.NewFromInt(int64(cfg.AllowedEarlinessDeviationDays))
	alphaT := decimal.NewFromInt(int64(cfg.AllowedTardinessDeviationDays))

	rate := NewRateExpr()
	if !alphaE.IsZero() {
		rate = rate.AddInt(decimal.NewFromFloat(cfg.EarlinessWeight).Div(alphaE), maxE)
	}
	if !alphaT.IsZero() {
		rate = rate.AddInt(decimal.NewFromFloat(cfg.LatenessWeight).Div(alphaT), maxT)
	}
	return rate, true
}

// daysBetween returns whole calendar days between two dates, matching the
// original's plain `(b - a).days` arithmetic (_examples/original_source/objectives/just_in_time.py).
func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
