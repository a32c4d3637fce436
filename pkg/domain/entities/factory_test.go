package entities

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func mustTier(t *testing.T, min, max int, eff decimal.Decimal) EfficiencyTier {
	t.Helper()
	tier, err := NewEfficiencyTier(min, max, eff)
	if err != nil {
		t.Fatalf("NewEfficiencyTier: %v", err)
	}
	return tier
}

func TestEfficiencyTierCovers(t *testing.T) {
	tier := mustTier(t, 10, 20, decimal.NewFromFloat(1.1))
	if !tier.Covers(15) {
		t.Fatalf("expected tier to cover 15")
	}
	if tier.Covers(5) || tier.Covers(25) {
		t.Fatalf("expected tier to reject out-of-range quantities")
	}
}

func TestNewEfficiencyTierValidation(t *testing.T) {
	if _, err := NewEfficiencyTier(-1, 10, decimal.NewFromInt(1)); err == nil {
		t.Fatalf("expected error for negative min quantity")
	}
	if _, err := NewEfficiencyTier(10, 5, decimal.NewFromInt(1)); err == nil {
		t.Fatalf("expected error for max < min")
	}
	if _, err := NewEfficiencyTier(0, 10, decimal.Zero); err == nil {
		t.Fatalf("expected error for non-positive efficiency")
	}
}

func TestCapacityPeriodTotalCapacity(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 14, 0, 0, 0, 0, time.UTC)
	p, err := NewCapacityPeriod(start, end, map[string]int{"cut": 100, "sew": 50})
	if err != nil {
		t.Fatalf("NewCapacityPeriod: %v", err)
	}
	if got := p.TotalCapacity(); got != 150 {
		t.Fatalf("expected total capacity 150, got %d", got)
	}
	if !p.Contains(start) || !p.Contains(end) {
		t.Fatalf("expected period to contain its own boundaries")
	}
	if p.Contains(end.AddDate(0, 0, 1)) {
		t.Fatalf("expected period to reject a date past its end")
	}
}

func TestNewCapacityPeriodRejectsInvertedRange(t *testing.T) {
	start := time.Date(2026, 1, 14, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	if _, err := NewCapacityPeriod(start, end, nil); err == nil {
		t.Fatalf("expected error when end precedes start")
	}
}

func TestFactoryEfficiencyForDefaultsToOne(t *testing.T) {
	f, err := NewFactory("F1", "APAC", map[string][]EfficiencyTier{
		"shirt": {mustTier(t, 0, 100, decimal.NewFromFloat(1.2))},
	}, nil)
	if err != nil {
		t.Fatalf("NewFactory: %v", err)
	}
	if got := f.EfficiencyFor("shirt", 50); !got.Equal(decimal.NewFromFloat(1.2)) {
		t.Fatalf("expected tier efficiency 1.2, got %s", got)
	}
	if got := f.EfficiencyFor("shirt", 500); !got.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("expected default efficiency 1.0 for uncovered quantity, got %s", got)
	}
	if got := f.EfficiencyFor("pants", 50); !got.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("expected default efficiency 1.0 for unknown product type, got %s", got)
	}
}

func TestFactoryPeriodContaining(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 14, 0, 0, 0, 0, time.UTC)
	p, _ := NewCapacityPeriod(start, end, map[string]int{"cut": 1})
	f, err := NewFactory("F1", "APAC", nil, []CapacityPeriod{p})
	if err != nil {
		t.Fatalf("NewFactory: %v", err)
	}
	if _, ok := f.PeriodContaining(start.AddDate(0, 0, 5)); !ok {
		t.Fatalf("expected a period containing a mid-range date")
	}
	if _, ok := f.PeriodContaining(end.AddDate(0, 0, 1)); ok {
		t.Fatalf("expected no period containing a date past every period")
	}
}

func TestNewFactoryRequiresIDAndRegion(t *testing.T) {
	if _, err := NewFactory("", "APAC", nil, nil); err == nil {
		t.Fatalf("expected error for empty factory id")
	}
	if _, err := NewFactory("F1", "", nil, nil); err == nil {
		t.Fatalf("expected error for empty region")
	}
}
