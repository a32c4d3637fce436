package entities

import "time"

// Assignment is the decoded outcome of a single scheduled order: the
// (factory, period) pair the solver selected plus every derived date the
// CSV/KPI outputs require (spec.md §4.7).
type Assignment struct {
	Order                  *Order
	FactoryID              string
	Region                 string
	PeriodStartDate        time.Time
	PeriodEndDate          time.Time
	IsTardy                bool
	DaysTardy              int
	MaterialReadyDate      time.Time
	LatestConfirmationDate time.Time
}

// DeviationDays is the absolute distance between planned completion and the
// order's due date, as reported in the CSV schedule (spec.md §6).
func (a Assignment) DeviationDays() int {
	days := int(a.PeriodEndDate.Sub(a.Order.DueDate).Hours() / 24)
	if days < 0 {
		return -days
	}
	return days
}

// PeriodLoad is the per-(factory,period) capacity utilization used to
// compute the KPI report (spec.md §4.7).
type PeriodLoad struct {
	FactoryID       string
	PeriodStartDate time.Time
	AssignedWorkload int
	TotalCapacity    int
}

// LoadRate returns AssignedWorkload/TotalCapacity, or 0 when capacity is 0.
func (p PeriodLoad) LoadRate() float64 {
	if p.TotalCapacity == 0 {
		return 0
	}
	return float64(p.AssignedWorkload) / float64(p.TotalCapacity)
}

// FactoryKPI summarizes delivery and load-rate performance for one factory
// (spec.md §4.7 / §6 KPI JSON schema).
type FactoryKPI struct {
	FactoryID               string
	MaxLoadRate             float64
	MinLoadRateActivePeriods float64
	AverageLoadRate         float64
	LoadRateByPeriod        map[string]float64
}

// ScheduleStatus mirrors the solver status consumed by the decoder
// (spec.md §4.6).
type ScheduleStatus int

const (
	StatusOptimal ScheduleStatus = iota
	StatusFeasible
	StatusInfeasible
	StatusModelInvalid
	StatusUnknown
)

func (s ScheduleStatus) String() string {
	switch s {
	case StatusOptimal:
		return "OPTIMAL"
	case StatusFeasible:
		return "FEASIBLE"
	case StatusInfeasible:
		return "INFEASIBLE"
	case StatusModelInvalid:
		return "MODEL_INVALID"
	default:
		return "UNKNOWN"
	}
}

// IsConsumable reports whether the decoder should attempt to read a
// schedule out of the solution for this status (spec.md §4.6).
func (s ScheduleStatus) IsConsumable() bool {
	return s == StatusOptimal || s == StatusFeasible
}

// ScheduleResult is the end-to-end output of one planning run: the decoded
// assignments, the unschedulable orders, the KPI report, and the objective
// value reported by the solver.
type ScheduleResult struct {
	RunID           string
	Status          ScheduleStatus
	Assignments     []Assignment
	Unschedulable   []UnschedulableEntry
	KPIByFactory    map[string]FactoryKPI
	ObjectiveValue  float64
}

// UnschedulableEntry records why an order never received an assignment.
type UnschedulableEntry struct {
	OrderID string
	Reason  string
}

// OnTimeRate is (scheduled - tardy) / scheduled, per spec.md §4.7.
func (r *ScheduleResult) OnTimeRate() float64 {
	if len(r.Assignments) == 0 {
		return 0
	}
	tardy := 0
	for _, a := range r.Assignments {
		if a.IsTardy {
			tardy++
		}
	}
	return float64(len(r.Assignments)-tardy) / float64(len(r.Assignments))
}
