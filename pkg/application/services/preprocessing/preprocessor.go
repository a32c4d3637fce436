// Package preprocessing builds the PreprocessedInput bundle consumed by the
// variable/constraint/objective builders: indexing, base-date parsing,
// per-factory/period capacity aggregation, per-order workload aggregation,
// and eligibility pruning (spec.md §4.1). Grounded in the teacher's
// mrp_service.go pipeline style: pure functions over entity slices, errors
// wrapped with fmt.Errorf, warnings collected rather than logged directly.
package preprocessing

import (
	"fmt"
	"time"

	"github.com/aps-engine/aps/pkg/application/dto"
	"github.com/aps-engine/aps/pkg/domain/entities"
	domainerrors "github.com/aps-engine/aps/pkg/domain/errors"
)

// Result bundles the preprocessed input together with any non-fatal
// warnings the preprocessor emitted while pruning eligibility.
type Result struct {
	Input    *dto.PreprocessedInput
	Warnings []error
}

// Preprocess builds a PreprocessedInput from raw factories/orders and the
// run configuration. Returns a *domain/errors.ConfigurationError for
// duplicate ids or an unparseable base date (spec.md §4.1). Each pruned
// factory is collected as a DataIntegrityWarning in Result.Warnings, and
// each order left with no eligible factory and no factory lock as an
// UnschedulableOrder there.
func Preprocess(factories []*entities.Factory, orders []*entities.Order, cfg dto.RunConfig) (*Result, error) {
	baseDate, err := time.Parse(entities.DateLayout, cfg.BaseDate)
	if err != nil {
		return nil, domainerrors.NewConfigurationError("run_config.base_date", fmt.Sprintf("cannot parse %q: %v", cfg.BaseDate, err))
	}

	input := dto.NewPreprocessedInput(baseDate)
	var warnings []error

	for _, f := range factories {
		if _, exists := input.FactoryByID[f.FactoryID]; exists {
			return nil, domainerrors.NewConfigurationError("factories", fmt.Sprintf("duplicate factory id %q", f.FactoryID))
		}
		input.FactoryByID[f.FactoryID] = f
		input.FactoryIDs = append(input.FactoryIDs, f.FactoryID)

		periodTotals := make(map[string]int, len(f.CapacityPeriods))
		for _, p := range f.CapacityPeriods {
			periodTotals[p.StartDate.Format(entities.DateLayout)] = p.TotalCapacity()
			for proc := range p.CapacityByProcess {
				input.AllProcesses[proc] = struct{}{}
			}
		}
		input.FactoryTotalCapacityByPeriod[f.FactoryID] = periodTotals
	}

	for _, o := range orders {
		if _, exists := input.OrderByID[o.OrderID]; exists {
			return nil, domainerrors.NewConfigurationError("orders", fmt.Sprintf("duplicate order id %q", o.OrderID))
		}
		input.OrderByID[o.OrderID] = o
		input.OrderIDs = append(input.OrderIDs, o.OrderID)

		total := 0
		for _, w := range o.TotalProcessCapacity {
			total += w
		}
		input.OrderTotalBaseWorkload[o.OrderID] = total

		pruned, orderWarnings := pruneEligibility(o, input.FactoryByID)
		o.EligibleFactories = pruned
		warnings = append(warnings, orderWarnings...)

		if len(o.EligibleFactories) == 0 && !o.FixedAssignment.HasFactory() {
			warnings = append(warnings, domainerrors.NewUnschedulableOrder(o.OrderID, "no eligible factories remain after pruning"))
		}
	}

	return &Result{Input: input, Warnings: warnings}, nil
}

// pruneEligibility drops factories that do not exist or that lack a process
// the order requires (spec.md §4.1's two invariants), returning the
// surviving factory id list and a warning per removal.
func pruneEligibility(o *entities.Order, factoryByID map[string]*entities.Factory) ([]string, []error) {
	var kept []string
	var warnings []error

	for _, factoryID := range o.EligibleFactories {
		f, ok := factoryByID[factoryID]
		if !ok {
			warnings = append(warnings, domainerrors.NewDataIntegrityWarning(o.OrderID, factoryID, "eligible factory does not exist"))
			continue
		}
		if !factorySupportsAllProcesses(f, o.TotalProcessCapacity) {
			warnings = append(warnings, domainerrors.NewDataIntegrityWarning(o.OrderID, factoryID, "factory lacks a required process"))
			continue
		}
		kept = append(kept, factoryID)
	}
	return kept, warnings
}

func factorySupportsAllProcesses(f *entities.Factory, required map[string]int) bool {
	supported := f.Processes()
	for proc := range required {
		if _, ok := supported[proc]; !ok {
			return false
		}
	}
	return true
}
