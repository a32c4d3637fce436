package entities

import (
	"testing"
	"time"
)

func newTestOrder(t *testing.T) *Order {
	t.Helper()
	due := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	o, err := NewOrder(
		"ORD-1", "ACME", "shirt", "classic", 100, due,
		5, map[string]int{"APAC": 3, "EMEA": 7}, 6,
		map[string]int{"cut": 50, "sew": 40}, []string{"FAC_A", "FAC_B"},
		Firm, nil,
	)
	if err != nil {
		t.Fatalf("NewOrder: %v", err)
	}
	return o
}

func TestNewOrderValidation(t *testing.T) {
	due := time.Now()
	if _, err := NewOrder("", "c", "p", "s", 1, due, 0, nil, 0, nil, nil, Firm, nil); err == nil {
		t.Fatalf("expected error for empty order id")
	}
	if _, err := NewOrder("O1", "c", "p", "s", 0, due, 0, nil, 0, nil, nil, Firm, nil); err == nil {
		t.Fatalf("expected error for zero quantity")
	}
	if _, err := NewOrder("O1", "c", "p", "s", 1, due, -1, nil, 0, nil, nil, Firm, nil); err == nil {
		t.Fatalf("expected error for negative purchasing lead time")
	}
	if _, err := NewOrder("O1", "c", "p", "s", 1, due, 0, nil, -1, nil, nil, Firm, nil); err == nil {
		t.Fatalf("expected error for negative production lead time")
	}
}

func TestOrderEligibleFactoriesIsDefensivelyCopied(t *testing.T) {
	eligible := []string{"FAC_A"}
	o, err := NewOrder("O1", "c", "p", "s", 1, time.Now(), 0, nil, 0, nil, eligible, Firm, nil)
	if err != nil {
		t.Fatalf("NewOrder: %v", err)
	}
	eligible[0] = "MUTATED"
	if o.EligibleFactories[0] != "FAC_A" {
		t.Fatalf("expected order's eligible factories to be unaffected by caller mutation")
	}
}

func TestTransportLeadTimeTo(t *testing.T) {
	o := newTestOrder(t)
	if lt, ok := o.TransportLeadTimeTo("APAC"); !ok || lt != 3 {
		t.Fatalf("expected APAC lead time 3, got %d ok=%v", lt, ok)
	}
	if _, ok := o.TransportLeadTimeTo("LATAM"); ok {
		t.Fatalf("expected unlisted region to report ok=false")
	}
}

func TestEarliestStartDate(t *testing.T) {
	o := newTestOrder(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	start, ok := o.EarliestStartDate(base, "APAC")
	if !ok {
		t.Fatalf("expected ok=true for known region")
	}
	want := base.AddDate(0, 0, 5+3+6)
	if !start.Equal(want) {
		t.Fatalf("expected start date %v, got %v", want, start)
	}
	if _, ok := o.EarliestStartDate(base, "LATAM"); ok {
		t.Fatalf("expected ok=false for unknown region")
	}
}

func TestIsEligibleFor(t *testing.T) {
	o := newTestOrder(t)
	if !o.IsEligibleFor("FAC_A") {
		t.Fatalf("expected FAC_A to be eligible")
	}
	if o.IsEligibleFor("FAC_Z") {
		t.Fatalf("expected FAC_Z to be ineligible")
	}
}

func TestFixedAssignmentNilSafety(t *testing.T) {
	var f *FixedAssignment
	if f.HasFactory() || f.HasDate() {
		t.Fatalf("expected nil FixedAssignment to report false for both")
	}
	f = &FixedAssignment{FactoryID: "FAC_A"}
	if !f.HasFactory() {
		t.Fatalf("expected HasFactory true when FactoryID set")
	}
	if f.HasDate() {
		t.Fatalf("expected HasDate false when PeriodStartDate unset")
	}
}

func TestOrderTypeString(t *testing.T) {
	if Firm.String() != "Firm" {
		t.Fatalf("expected Firm.String() == Firm, got %s", Firm.String())
	}
	if Forecast.String() != "Forecast" {
		t.Fatalf("expected Forecast.String() == Forecast, got %s", Forecast.String())
	}
}
