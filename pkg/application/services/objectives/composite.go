package objectives

import (
	"github.com/aps-engine/aps/pkg/application/dto"
	"github.com/aps-engine/aps/pkg/application/services/variables"
	"github.com/aps-engine/aps/pkg/cpsat"
	"github.com/shopspring/decimal"
)

// GlobalScale is the minimum integer multiplier M named in spec.md §4.5;
// it must cover the default weights (the JIT rate divides its weights by
// the allowed deviation in days) without losing precision when rounded to
// int64.
const GlobalScale int64 = 100000

// BuildComposite assembles the tardiness, JIT-deviation, and
// workload-balance rates into the model's single minimization objective
// (spec.md §4.5). A sub-objective with a non-positive configured weight is
// skipped entirely — it is never built, mirroring the original's
// conditional dispatch in combined_objective.py. If every weight is
// zero (or every enabled sub-objective returned no terms), the model is
// left as pure feasibility with no Minimize call.
func BuildComposite(
	model *cpsat.Model,
	runID string,
	input *dto.PreprocessedInput,
	reg *variables.Registry,
	weights dto.ObjectiveWeights,
	tardinessCfg dto.TardinessObjectiveConfig,
	jitCfg dto.JITObjectiveConfig,
) {
	var rates []RateExpr

	if weights.Tardiness > 0 {
		if rate, ok := BuildTardinessRate(model, runID, input, reg, tardinessCfg); ok {
			rates = append(rates, rate.Scale(decimal.NewFromFloat(weights.Tardiness)))
		}
	}
	if weights.JITDeviation > 0 {
		if rate, ok := BuildJITDeviation(model, runID, input, reg, jitCfg); ok {
			rates = append(rates, rate.Scale(decimal.NewFromFloat(weights.JITDeviation)))
		}
	}
	if weights.WorkloadBalance > 0 {
		if rate, ok := BuildWorkloadBalance(model, runID, input, reg); ok {
			rates = append(rates, rate.Scale(decimal.NewFromFloat(weights.WorkloadBalance)))
		}
	}

	if len(rates) == 0 {
		return
	}

	composite := SumRates(rates...)
	model.Minimize(composite.ToLinearExpr(GlobalScale))
}
