// Package decoder reconstructs a schedule from a solved model and computes
// delivery/load-rate KPIs (spec.md §4.7). Grounded in the teacher's
// mrp_service.go result-assembly style: a handful of named private helpers
// building up one immutable output value.
package decoder

import (
	"math"

	"github.com/aps-engine/aps/pkg/application/dto"
	"github.com/aps-engine/aps/pkg/application/services/constraints"
	"github.com/aps-engine/aps/pkg/application/services/variables"
	"github.com/aps-engine/aps/pkg/cpsat"
	"github.com/aps-engine/aps/pkg/domain/entities"
	"github.com/aps-engine/aps/pkg/infrastructure/events"
)

// Decode walks the variable registry to find the unique true variable per
// order, derives every assignment date, computes the KPI report, and
// publishes the domain events of SPEC_FULL.md §3.2. A non-consumable
// status yields an empty schedule and empty KPIs with no error (spec.md
// §7 "SolverFailure").
func Decode(
	runID string,
	status cpsat.Status,
	solution cpsat.Solution,
	input *dto.PreprocessedInput,
	reg *variables.Registry,
	objectiveValue float64,
	publisher events.Publisher,
) *entities.ScheduleResult {
	result := &entities.ScheduleResult{
		RunID:        runID,
		Status:       toEntityStatus(status),
		KPIByFactory: make(map[string]entities.FactoryKPI),
	}

	if !status.IsConsumable() {
		publisher.Publish(events.NewEvent(events.TypeRunCompleted, runID, events.RunCompleted{
			RunID: runID, Status: status.String(), TotalCount: len(input.OrderIDs),
		}))
		return result
	}

	loadByFactoryPeriod := make(map[string]map[string]int) // factory -> period -> assigned workload

	for _, orderID := range input.OrderIDs {
		entries := reg.ForOrder(orderID)
		order := input.OrderByID[orderID]
		chosen, ok := findChosen(solution, entries)
		if !ok {
			result.Unschedulable = append(result.Unschedulable, entities.UnschedulableEntry{OrderID: orderID, Reason: "no variable equal to 1 in solution"})
			publisher.Publish(events.NewEvent(events.TypeOrderUnschedulable, runID, events.OrderUnschedulable{RunID: runID, OrderID: orderID, Reason: "no variable equal to 1 in solution"}))
			continue
		}

		f := input.FactoryByID[chosen.Key.FactoryID]
		isTardy := chosen.Period.EndDate.After(order.DueDate)
		daysTardy := 0
		if isTardy {
			daysTardy = int(chosen.Period.EndDate.Sub(order.DueDate).Hours() / 24)
		}
		materialReady := chosen.Period.StartDate.AddDate(0, 0, -order.ProductionLeadTime)
		transportLT, _ := order.TransportLeadTimeTo(f.Region)
		latestConfirmation := materialReady.AddDate(0, 0, -(order.MaterialPurchasingLeadTime + transportLT))

		assignment := entities.Assignment{
			Order:                  order,
			FactoryID:              f.FactoryID,
			Region:                 f.Region,
			PeriodStartDate:        chosen.Period.StartDate,
			PeriodEndDate:          chosen.Period.EndDate,
			IsTardy:                isTardy,
			DaysTardy:              daysTardy,
			MaterialReadyDate:      materialReady,
			LatestConfirmationDate: latestConfirmation,
		}
		result.Assignments = append(result.Assignments, assignment)

		base := input.OrderTotalBaseWorkload[orderID]
		efficiency := f.EfficiencyFor(order.ProductType, order.Quantity)
		workload := int(constraints.FloorWorkload(base, efficiency))
		periodKey := chosen.Period.StartDate.Format(entities.DateLayout)
		if loadByFactoryPeriod[f.FactoryID] == nil {
			loadByFactoryPeriod[f.FactoryID] = make(map[string]int)
		}
		loadByFactoryPeriod[f.FactoryID][periodKey] += workload

		publisher.Publish(events.NewEvent(events.TypeOrderScheduled, runID, events.OrderScheduled{
			RunID: runID, OrderID: orderID, FactoryID: f.FactoryID, PeriodStart: periodKey, IsTardy: isTardy,
		}))
	}

	result.KPIByFactory = computeKPIs(input, loadByFactoryPeriod)
	result.ObjectiveValue = objectiveValue

	publisher.Publish(events.NewEvent(events.TypeRunCompleted, runID, events.RunCompleted{
		RunID:          runID,
		Status:         status.String(),
		ObjectiveValue: objectiveValue,
		ScheduledCount: len(result.Assignments),
		TotalCount:     len(input.OrderIDs),
	}))

	return result
}

func findChosen(solution cpsat.Solution, entries []variables.Entry) (variables.Entry, bool) {
	for _, e := range entries {
		if solution.Value(e.Var) {
			return e, true
		}
	}
	return variables.Entry{}, false
}

func toEntityStatus(s cpsat.Status) entities.ScheduleStatus {
	switch s {
	case cpsat.StatusOptimal:
		return entities.StatusOptimal
	case cpsat.StatusFeasible:
		return entities.StatusFeasible
	case cpsat.StatusInfeasible:
		return entities.StatusInfeasible
	case cpsat.StatusModelInvalid:
		return entities.StatusModelInvalid
	default:
		return entities.StatusUnknown
	}
}

// computeKPIs implements spec.md §4.7's load-rate KPIs: per-factory max,
// min-over-active-periods, and arithmetic-mean-over-all-periods load rate,
// each rounded to 3 decimals.
func computeKPIs(input *dto.PreprocessedInput, loadByFactoryPeriod map[string]map[string]int) map[string]entities.FactoryKPI {
	out := make(map[string]entities.FactoryKPI)
	for _, f := range input.Factories() {
		rates := make(map[string]float64)
		var maxRate float64
		minActive := math.Inf(1)
		sumAll := 0.0
		count := 0

		for _, period := range f.CapacityPeriods {
			capacity := period.TotalCapacity()
			periodKey := period.StartDate.Format(entities.DateLayout)
			load := loadByFactoryPeriod[f.FactoryID][periodKey]
			rate := 0.0
			if capacity > 0 {
				rate = float64(load) / float64(capacity)
			}
			rates[periodKey] = round3(rate)
			if rate > maxRate {
				maxRate = rate
			}
			if rate > 0 && rate < minActive {
				minActive = rate
			}
			sumAll += rate
			count++
		}

		if math.IsInf(minActive, 1) {
			minActive = 0
		}
		avg := 0.0
		if count > 0 {
			avg = sumAll / float64(count)
		}

		out[f.FactoryID] = entities.FactoryKPI{
			FactoryID:                f.FactoryID,
			MaxLoadRate:              round3(maxRate),
			MinLoadRateActivePeriods: round3(minActive),
			AverageLoadRate:          round3(avg),
			LoadRateByPeriod:         rates,
		}
	}
	return out
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}

