package entities

import (
	"testing"
	"time"
)

func TestAssignmentDeviationDays(t *testing.T) {
	due := time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC)
	a := Assignment{
		Order:         &Order{DueDate: due},
		PeriodEndDate: due.AddDate(0, 0, 3),
	}
	if got := a.DeviationDays(); got != 3 {
		t.Fatalf("expected 3 deviation days for a late completion, got %d", got)
	}

	a.PeriodEndDate = due.AddDate(0, 0, -5)
	if got := a.DeviationDays(); got != 5 {
		t.Fatalf("expected deviation to be reported as a positive magnitude, got %d", got)
	}
}

func TestPeriodLoadRate(t *testing.T) {
	p := PeriodLoad{AssignedWorkload: 50, TotalCapacity: 100}
	if got := p.LoadRate(); got != 0.5 {
		t.Fatalf("expected load rate 0.5, got %v", got)
	}
	p.TotalCapacity = 0
	if got := p.LoadRate(); got != 0 {
		t.Fatalf("expected load rate 0 when capacity is 0, got %v", got)
	}
}

func TestScheduleStatusIsConsumable(t *testing.T) {
	cases := map[ScheduleStatus]bool{
		StatusOptimal:      true,
		StatusFeasible:     true,
		StatusInfeasible:   false,
		StatusModelInvalid: false,
		StatusUnknown:      false,
	}
	for status, want := range cases {
		if got := status.IsConsumable(); got != want {
			t.Fatalf("status %v: expected IsConsumable()=%v, got %v", status, want, got)
		}
	}
}

func TestOnTimeRate(t *testing.T) {
	r := &ScheduleResult{}
	if got := r.OnTimeRate(); got != 0 {
		t.Fatalf("expected on-time rate 0 for empty schedule, got %v", got)
	}

	r.Assignments = []Assignment{
		{IsTardy: false},
		{IsTardy: true},
		{IsTardy: false},
		{IsTardy: false},
	}
	if got := r.OnTimeRate(); got != 0.75 {
		t.Fatalf("expected on-time rate 0.75, got %v", got)
	}
}
