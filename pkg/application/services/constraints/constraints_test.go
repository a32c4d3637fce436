package constraints

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/aps-engine/aps/pkg/application/dto"
	"github.com/aps-engine/aps/pkg/application/services/preprocessing"
	"github.com/aps-engine/aps/pkg/application/services/variables"
	"github.com/aps-engine/aps/pkg/cpsat"
	"github.com/aps-engine/aps/pkg/domain/entities"
)

func buildTestInput(t *testing.T, factories []*entities.Factory, orders []*entities.Order, baseDate string) *dto.PreprocessedInput {
	t.Helper()
	result, err := preprocessing.Preprocess(factories, orders, dto.RunConfig{BaseDate: baseDate})
	if err != nil {
		t.Fatalf("Preprocess: %v", err)
	}
	return result.Input
}

func singlePeriodFactory(t *testing.T, id string, capacity map[string]int) *entities.Factory {
	t.Helper()
	p, err := entities.NewCapacityPeriod(
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 14, 0, 0, 0, 0, time.UTC),
		capacity)
	if err != nil {
		t.Fatalf("NewCapacityPeriod: %v", err)
	}
	f, err := entities.NewFactory(id, "APAC", nil, []entities.CapacityPeriod{p})
	if err != nil {
		t.Fatalf("NewFactory: %v", err)
	}
	return f
}

func TestFloorWorkload(t *testing.T) {
	got := FloorWorkload(10, decimal.NewFromFloat(3))
	if got != 3 {
		t.Fatalf("expected floor(10/3)=3, got %d", got)
	}
	if got := FloorWorkload(10, decimal.Zero); got != 0 {
		t.Fatalf("expected 0 for zero efficiency, got %d", got)
	}
}

func TestBuildUniquenessAddsExactlyOnePerOrder(t *testing.T) {
	f := singlePeriodFactory(t, "FAC_A", map[string]int{"cut": 100})
	order, _ := entities.NewOrder("O1", "c", "shirt", "s", 10, time.Now(), 0, nil, 0,
		map[string]int{"cut": 1}, []string{"FAC_A"}, entities.Firm, nil)

	input := buildTestInput(t, []*entities.Factory{f}, []*entities.Order{order}, "2026-01-01")
	model := cpsat.NewModel()
	reg, _ := variables.Build(model, "run-test", input.Orders(), input.FactoryByID)

	warnings := BuildUniqueness(model, input, reg)
	if len(warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", warnings)
	}
	if len(model.ExactlyOnes()) != 1 {
		t.Fatalf("expected 1 exactly-one constraint, got %d", len(model.ExactlyOnes()))
	}
}

func TestBuildUniquenessWarnsWhenOrderHasNoVariables(t *testing.T) {
	order, _ := entities.NewOrder("O1", "c", "shirt", "s", 10, time.Now(), 0, nil, 0, nil, nil, entities.Firm, nil)
	input := buildTestInput(t, nil, []*entities.Order{order}, "2026-01-01")
	model := cpsat.NewModel()
	reg, _ := variables.Build(model, "run-test", input.Orders(), input.FactoryByID)

	warnings := BuildUniqueness(model, input, reg)
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning for an order with no variables, got %d", len(warnings))
	}
}

func TestBuildCapacityLimitsTotalWorkload(t *testing.T) {
	f := singlePeriodFactory(t, "FAC_A", map[string]int{"cut": 10})
	o1, _ := entities.NewOrder("O1", "c", "shirt", "s", 10, time.Now(), 0, nil, 0,
		map[string]int{"cut": 6}, []string{"FAC_A"}, entities.Firm, nil)
	o2, _ := entities.NewOrder("O2", "c", "shirt", "s", 10, time.Now(), 0, nil, 0,
		map[string]int{"cut": 6}, []string{"FAC_A"}, entities.Firm, nil)

	input := buildTestInput(t, []*entities.Factory{f}, []*entities.Order{o1, o2}, "2026-01-01")
	model := cpsat.NewModel()
	reg, _ := variables.Build(model, "run-test", input.Orders(), input.FactoryByID)

	BuildCapacity(model, input, reg)
	if len(model.LinearConstraints()) != 1 {
		t.Fatalf("expected 1 capacity constraint for the single process, got %d", len(model.LinearConstraints()))
	}
	lc := model.LinearConstraints()[0]
	if lc.RHS != 10 {
		t.Fatalf("expected RHS 10, got %d", lc.RHS)
	}
	if len(lc.Expr.Terms) != 2 {
		t.Fatalf("expected 2 terms (one per order sharing the process), got %d", len(lc.Expr.Terms))
	}
}

func TestBuildMaterialLeadTimeZeroesVariablesBeforeEarliestStart(t *testing.T) {
	f := singlePeriodFactory(t, "FAC_A", map[string]int{"cut": 100})
	// Long lead time pushes the earliest feasible start past the only period.
	order, _ := entities.NewOrder("O1", "c", "shirt", "s", 10, time.Now(), 20,
		map[string]int{"APAC": 10}, 10, map[string]int{"cut": 1}, []string{"FAC_A"}, entities.Firm, nil)

	input := buildTestInput(t, []*entities.Factory{f}, []*entities.Order{order}, "2026-01-01")
	model := cpsat.NewModel()
	reg, _ := variables.Build(model, "run-test", input.Orders(), input.FactoryByID)

	BuildMaterialLeadTime(model, input, reg)
	if len(model.LinearConstraints()) != 1 {
		t.Fatalf("expected the single variable to be forced to 0, got %d constraints", len(model.LinearConstraints()))
	}
	lc := model.LinearConstraints()[0]
	if lc.Op != cpsat.EQ || lc.RHS != 0 {
		t.Fatalf("expected an EQ-to-0 constraint, got op=%v rhs=%d", lc.Op, lc.RHS)
	}
}

func TestBuildMaterialLeadTimeAllowsFeasibleVariables(t *testing.T) {
	f := singlePeriodFactory(t, "FAC_A", map[string]int{"cut": 100})
	order, _ := entities.NewOrder("O1", "c", "shirt", "s", 10, time.Now(), 1,
		map[string]int{"APAC": 1}, 1, map[string]int{"cut": 1}, []string{"FAC_A"}, entities.Firm, nil)

	input := buildTestInput(t, []*entities.Factory{f}, []*entities.Order{order}, "2025-12-29")
	model := cpsat.NewModel()
	reg, _ := variables.Build(model, "run-test", input.Orders(), input.FactoryByID)

	BuildMaterialLeadTime(model, input, reg)
	if len(model.LinearConstraints()) != 0 {
		t.Fatalf("expected no forcing constraint for a feasible variable, got %d", len(model.LinearConstraints()))
	}
}
