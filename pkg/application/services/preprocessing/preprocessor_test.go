package preprocessing

import (
	"testing"
	"time"

	"github.com/aps-engine/aps/pkg/application/dto"
	"github.com/aps-engine/aps/pkg/domain/entities"
	domainerrors "github.com/aps-engine/aps/pkg/domain/errors"
)

func mustFactory(t *testing.T, id, region string, periods ...entities.CapacityPeriod) *entities.Factory {
	t.Helper()
	f, err := entities.NewFactory(id, region, nil, periods)
	if err != nil {
		t.Fatalf("NewFactory: %v", err)
	}
	return f
}

func mustPeriod(t *testing.T, start, end time.Time, cap map[string]int) entities.CapacityPeriod {
	t.Helper()
	p, err := entities.NewCapacityPeriod(start, end, cap)
	if err != nil {
		t.Fatalf("NewCapacityPeriod: %v", err)
	}
	return p
}

func mustOrder(t *testing.T, id string, workload map[string]int, eligible []string) *entities.Order {
	t.Helper()
	o, err := entities.NewOrder(id, "cust", "shirt", "classic", 10, time.Now(), 0,
		map[string]int{"APAC": 1}, 0, workload, eligible, entities.Firm, nil)
	if err != nil {
		t.Fatalf("NewOrder: %v", err)
	}
	return o
}

func TestPreprocessAggregatesCapacityAndWorkload(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 14, 0, 0, 0, 0, time.UTC)
	period := mustPeriod(t, start, end, map[string]int{"cut": 100, "sew": 50})
	factory := mustFactory(t, "FAC_A", "APAC", period)
	order := mustOrder(t, "O1", map[string]int{"cut": 5, "sew": 3}, []string{"FAC_A"})

	result, err := Preprocess([]*entities.Factory{factory}, []*entities.Order{order}, dto.RunConfig{BaseDate: "2026-01-01"})
	if err != nil {
		t.Fatalf("Preprocess: %v", err)
	}
	if got := result.Input.OrderTotalBaseWorkload["O1"]; got != 8 {
		t.Fatalf("expected order total base workload 8 (sum of processes), got %d", got)
	}
	if got := result.Input.FactoryTotalCapacityByPeriod["FAC_A"]["2026-01-01"]; got != 150 {
		t.Fatalf("expected total capacity 150 for the period, got %d", got)
	}
	if len(result.Warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", result.Warnings)
	}
}

func TestPreprocessRejectsUnparseableBaseDate(t *testing.T) {
	_, err := Preprocess(nil, nil, dto.RunConfig{BaseDate: "not-a-date"})
	if err == nil {
		t.Fatalf("expected error for unparseable base date")
	}
	if _, ok := err.(*domainerrors.ConfigurationError); !ok {
		t.Fatalf("expected *errors.ConfigurationError, got %T", err)
	}
}

func TestPreprocessRejectsDuplicateFactoryID(t *testing.T) {
	f1 := mustFactory(t, "FAC_A", "APAC")
	f2 := mustFactory(t, "FAC_A", "EMEA")
	_, err := Preprocess([]*entities.Factory{f1, f2}, nil, dto.RunConfig{BaseDate: "2026-01-01"})
	if err == nil {
		t.Fatalf("expected error for duplicate factory id")
	}
}

func TestPreprocessRejectsDuplicateOrderID(t *testing.T) {
	o1 := mustOrder(t, "O1", nil, nil)
	o2 := mustOrder(t, "O1", nil, nil)
	_, err := Preprocess(nil, []*entities.Order{o1, o2}, dto.RunConfig{BaseDate: "2026-01-01"})
	if err == nil {
		t.Fatalf("expected error for duplicate order id")
	}
}

func TestPreprocessPrunesIneligibleFactories(t *testing.T) {
	period := mustPeriod(t, time.Now(), time.Now().AddDate(0, 0, 14), map[string]int{"cut": 100})
	factory := mustFactory(t, "FAC_A", "APAC", period)
	// FAC_Z does not exist; FAC_A lacks the "sew" process this order needs.
	order := mustOrder(t, "O1", map[string]int{"cut": 1, "sew": 1}, []string{"FAC_A", "FAC_Z"})

	result, err := Preprocess([]*entities.Factory{factory}, []*entities.Order{order}, dto.RunConfig{BaseDate: "2026-01-01"})
	if err != nil {
		t.Fatalf("Preprocess: %v", err)
	}
	if len(order.EligibleFactories) != 0 {
		t.Fatalf("expected both factories to be pruned, got %v", order.EligibleFactories)
	}
	if len(result.Warnings) < 2 {
		t.Fatalf("expected at least 2 warnings (missing factory + missing process), got %d", len(result.Warnings))
	}

	foundUnschedulable := false
	for _, w := range result.Warnings {
		if _, ok := w.(*domainerrors.UnschedulableOrder); ok {
			foundUnschedulable = true
		}
	}
	if !foundUnschedulable {
		t.Fatalf("expected an UnschedulableOrder warning once eligibility is empty")
	}
}

func TestPreprocessKeepsUnschedulableWarningOffWhenLocked(t *testing.T) {
	order, err := entities.NewOrder("O1", "cust", "shirt", "classic", 10, time.Now(), 0,
		map[string]int{"APAC": 1}, 0, nil, []string{"FAC_Z"}, entities.Firm,
		&entities.FixedAssignment{FactoryID: "FAC_LOCKED"})
	if err != nil {
		t.Fatalf("NewOrder: %v", err)
	}

	result, err := Preprocess(nil, []*entities.Order{order}, dto.RunConfig{BaseDate: "2026-01-01"})
	if err != nil {
		t.Fatalf("Preprocess: %v", err)
	}
	for _, w := range result.Warnings {
		if _, ok := w.(*domainerrors.UnschedulableOrder); ok {
			t.Fatalf("did not expect an UnschedulableOrder warning for a locked order with empty eligibility")
		}
	}
}
