package decoder

import (
	"testing"
	"time"

	"github.com/aps-engine/aps/pkg/application/dto"
	"github.com/aps-engine/aps/pkg/application/services/preprocessing"
	"github.com/aps-engine/aps/pkg/application/services/variables"
	"github.com/aps-engine/aps/pkg/cpsat"
	"github.com/aps-engine/aps/pkg/domain/entities"
	"github.com/aps-engine/aps/pkg/infrastructure/events"
)

// chosenSolution marks a single BoolVar true, every other variable false.
type chosenSolution struct {
	chosenID int
}

func (s chosenSolution) Value(v cpsat.BoolVar) bool   { return v.ID() == s.chosenID }
func (s chosenSolution) IntValue(v cpsat.IntVar) int64 { return 0 }
func (s chosenSolution) ObjectiveValue() float64       { return 0 }

func buildDecoderFixture(t *testing.T, due time.Time) (*dto.PreprocessedInput, *variables.Registry) {
	t.Helper()
	p, err := entities.NewCapacityPeriod(
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 14, 0, 0, 0, 0, time.UTC),
		map[string]int{"cut": 100})
	if err != nil {
		t.Fatalf("NewCapacityPeriod: %v", err)
	}
	f, err := entities.NewFactory("FAC_A", "APAC", nil, []entities.CapacityPeriod{p})
	if err != nil {
		t.Fatalf("NewFactory: %v", err)
	}
	order, err := entities.NewOrder("O1", "c", "shirt", "s", 10, due, 2, map[string]int{"APAC": 3}, 4,
		map[string]int{"cut": 1}, []string{"FAC_A"}, entities.Firm, nil)
	if err != nil {
		t.Fatalf("NewOrder: %v", err)
	}
	result, err := preprocessing.Preprocess([]*entities.Factory{f}, []*entities.Order{order}, dto.RunConfig{BaseDate: "2026-01-01"})
	if err != nil {
		t.Fatalf("Preprocess: %v", err)
	}
	model := cpsat.NewModel()
	reg, _ := variables.Build(model, "run-test", result.Input.Orders(), result.Input.FactoryByID)
	return result.Input, reg
}

func TestDecodeAssignsChosenOrderAndComputesDates(t *testing.T) {
	due := time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC)
	input, reg := buildDecoderFixture(t, due)
	entry := reg.ForOrder("O1")[0]

	pub := events.NewMemoryPublisher()
	result := Decode("run-1", cpsat.StatusOptimal, chosenSolution{chosenID: entry.Var.ID()}, input, reg, 12.5, pub)

	if result.Status != entities.StatusOptimal {
		t.Fatalf("expected StatusOptimal, got %v", result.Status)
	}
	if len(result.Assignments) != 1 {
		t.Fatalf("expected 1 assignment, got %d", len(result.Assignments))
	}
	a := result.Assignments[0]
	if a.IsTardy {
		t.Fatalf("expected the assignment to be on time, period ends %v before due %v", entry.Period.EndDate, due)
	}
	wantMaterialReady := entry.Period.StartDate.AddDate(0, 0, -4)
	if !a.MaterialReadyDate.Equal(wantMaterialReady) {
		t.Fatalf("expected material ready date %v, got %v", wantMaterialReady, a.MaterialReadyDate)
	}
	wantConfirmation := wantMaterialReady.AddDate(0, 0, -(2 + 3))
	if !a.LatestConfirmationDate.Equal(wantConfirmation) {
		t.Fatalf("expected latest confirmation date %v, got %v", wantConfirmation, a.LatestConfirmationDate)
	}
	if result.ObjectiveValue != 12.5 {
		t.Fatalf("expected objective value to be carried through, got %v", result.ObjectiveValue)
	}
	if _, ok := result.KPIByFactory["FAC_A"]; !ok {
		t.Fatalf("expected a KPI entry for FAC_A")
	}
}

func TestDecodeMarksOrderUnschedulableWhenNoVariableIsTrue(t *testing.T) {
	due := time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC)
	input, reg := buildDecoderFixture(t, due)

	pub := events.NewMemoryPublisher()
	result := Decode("run-1", cpsat.StatusOptimal, chosenSolution{chosenID: -1}, input, reg, 0, pub)

	if len(result.Assignments) != 0 {
		t.Fatalf("expected no assignments when no variable is true")
	}
	if len(result.Unschedulable) != 1 {
		t.Fatalf("expected 1 unschedulable entry, got %d", len(result.Unschedulable))
	}
}

func TestDecodeReturnsEmptyScheduleForNonConsumableStatus(t *testing.T) {
	due := time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC)
	input, reg := buildDecoderFixture(t, due)

	pub := events.NewMemoryPublisher()
	result := Decode("run-1", cpsat.StatusInfeasible, nil, input, reg, 0, pub)

	if len(result.Assignments) != 0 || len(result.Unschedulable) != 0 {
		t.Fatalf("expected an empty schedule for an infeasible status")
	}
	published := pub.Events()
	if len(published) != 1 || published[0].Type != "run_completed" {
		t.Fatalf("expected exactly one run_completed event, got %+v", published)
	}
}

func TestDecodeDetectsTardyAssignment(t *testing.T) {
	// Due date before the only available period's end forces tardiness.
	due := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	input, reg := buildDecoderFixture(t, due)
	entry := reg.ForOrder("O1")[0]

	pub := events.NewMemoryPublisher()
	result := Decode("run-1", cpsat.StatusFeasible, chosenSolution{chosenID: entry.Var.ID()}, input, reg, 0, pub)

	if len(result.Assignments) != 1 || !result.Assignments[0].IsTardy {
		t.Fatalf("expected a tardy assignment")
	}
	if result.Assignments[0].DaysTardy <= 0 {
		t.Fatalf("expected a positive days-tardy count, got %d", result.Assignments[0].DaysTardy)
	}
}
