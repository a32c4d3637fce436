package orchestration

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/aps-engine/aps/pkg/application/dto"
	"github.com/aps-engine/aps/pkg/cpsat"
	"github.com/aps-engine/aps/pkg/cpsat/bnbsolver"
	"github.com/aps-engine/aps/pkg/domain/entities"
	"github.com/aps-engine/aps/pkg/infrastructure/events"
)

func smallFixture(t *testing.T) ([]*entities.Factory, []*entities.Order) {
	t.Helper()
	p, err := entities.NewCapacityPeriod(
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 14, 0, 0, 0, 0, time.UTC),
		map[string]int{"cut": 20})
	if err != nil {
		t.Fatalf("NewCapacityPeriod: %v", err)
	}
	f, err := entities.NewFactory("FAC_A", "APAC", nil, []entities.CapacityPeriod{p})
	if err != nil {
		t.Fatalf("NewFactory: %v", err)
	}
	o1, err := entities.NewOrder("O1", "c", "shirt", "s", 10, time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC),
		0, map[string]int{"APAC": 0}, 0, map[string]int{"cut": 5}, []string{"FAC_A"}, entities.Firm, nil)
	if err != nil {
		t.Fatalf("NewOrder: %v", err)
	}
	o2, err := entities.NewOrder("O2", "c", "shirt", "s", 10, time.Date(2026, 1, 25, 0, 0, 0, 0, time.UTC),
		0, map[string]int{"APAC": 0}, 0, map[string]int{"cut": 5}, []string{"FAC_A"}, entities.Forecast, nil)
	if err != nil {
		t.Fatalf("NewOrder: %v", err)
	}
	return []*entities.Factory{f}, []*entities.Order{o1, o2}
}

func TestOrchestratorRunProducesConsumableSchedule(t *testing.T) {
	factories, orders := smallFixture(t)
	cfg := dto.Config{RunConfig: dto.RunConfig{BaseDate: "2026-01-01"}}.WithDefaults()
	cfg.ObjectiveWeights = dto.ObjectiveWeights{Tardiness: 0.7, JITDeviation: 0, WorkloadBalance: 0}

	orch := New(func() cpsat.Solver { return bnbsolver.New() }, events.NewMemoryPublisher())
	result, warnings, err := orch.Run(context.Background(), factories, orders, cfg)
	if err != nil {
		t.Fatalf("Run: %v (warnings=%v)", err, warnings)
	}
	if result == nil {
		t.Fatalf("expected a non-nil result")
	}
	if !result.Status.IsConsumable() {
		t.Fatalf("expected a consumable status for a trivially feasible instance, got %v", result.Status)
	}
	if len(result.Assignments)+len(result.Unschedulable) != 2 {
		t.Fatalf("expected every order to be accounted for, got %d assignments + %d unschedulable",
			len(result.Assignments), len(result.Unschedulable))
	}
}

func TestOrchestratorRunAbortsOnUnparseableBaseDate(t *testing.T) {
	factories, orders := smallFixture(t)
	cfg := dto.Config{RunConfig: dto.RunConfig{BaseDate: "not-a-date"}}.WithDefaults()

	orch := New(func() cpsat.Solver { return bnbsolver.New() }, events.NewMemoryPublisher())
	_, _, err := orch.Run(context.Background(), factories, orders, cfg)
	if err == nil {
		t.Fatalf("expected an error for an unparseable base date")
	}
	if !strings.Contains(err.Error(), string(StageAborted)) {
		t.Fatalf("expected the error to report stage %s, got %v", StageAborted, err)
	}
}
