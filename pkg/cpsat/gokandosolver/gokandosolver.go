// Package gokandosolver adapts github.com/gitrdm/gokanlogic's finite-domain
// constraint solver (package minikanren) to the cpsat.Solver boundary,
// translating the declarative cpsat.Model into a minikanren.Model built from
// FDVariable/LinearSum/Inequality/EqualityReified, then driving search with
// Solver.Solve (pure feasibility) or Solver.SolveOptimalWithOptions (the
// anytime branch-and-bound minimizer, for models with an objective).
package gokandosolver

import (
	"context"
	"errors"
	"time"

	mk "github.com/gitrdm/gokanlogic/pkg/minikanren"

	"github.com/aps-engine/aps/pkg/cpsat"
)

// Solver is a cpsat.Solver backed by gokando's constraint engine.
type Solver struct {
	timeLimit  time.Duration
	numWorkers int
}

var _ cpsat.Solver = (*Solver)(nil)

// New returns a Solver with the same defaults as bnbsolver.New: a 60s time
// limit and 8 parallel workers, so swapping the default solver implementation
// changes nothing about a run's external time budget.
func New() *Solver {
	return &Solver{timeLimit: 60 * time.Second, numWorkers: 8}
}

func (s *Solver) SetTimeLimit(d time.Duration) { s.timeLimit = d }

func (s *Solver) SetNumWorkers(n int) {
	if n > 0 {
		s.numWorkers = n
	}
}

// solution is the decoded cpsat.Solution view of one gokando solve array.
type solution struct {
	boolVals map[int]bool
	intVals  map[int]int64
	objValue float64
}

func (s *solution) Value(v cpsat.BoolVar) bool    { return s.boolVals[v.ID()] }
func (s *solution) IntValue(v cpsat.IntVar) int64 { return s.intVals[v.ID()] }
func (s *solution) ObjectiveValue() float64       { return s.objValue }

// Solve translates m into a gokando model, then runs the matching gokando
// search mode and maps its result back onto cpsat.Status. A translation-time
// contradiction (a constant-only constraint that can never hold, or a
// restricted total whose domain comes up empty) is reported as infeasible
// without invoking the solver at all.
func (s *Solver) Solve(ctx context.Context, m *cpsat.Model) (cpsat.Solution, cpsat.Status) {
	tr, err := newTranslation(m)
	if err != nil {
		return nil, cpsat.StatusModelInvalid
	}
	if tr.infeasible {
		return nil, cpsat.StatusInfeasible
	}

	deadline := time.Now().Add(s.timeLimit)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	runCtx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	solver := mk.NewSolver(tr.model)

	if m.HasObjective() {
		opts := []mk.OptimizeOption{mk.WithTimeLimit(time.Until(deadline))}
		if s.numWorkers > 1 {
			opts = append(opts, mk.WithParallelWorkers(s.numWorkers))
		}
		solArr, _, solveErr := solver.SolveOptimalWithOptions(runCtx, tr.objTotal, true, opts...)
		switch {
		case solveErr == nil && solArr != nil:
			return tr.decode(solArr, m), cpsat.StatusOptimal
		case solveErr == nil:
			return nil, cpsat.StatusInfeasible
		case isSearchLimitErr(solveErr) && solArr != nil:
			return tr.decode(solArr, m), cpsat.StatusFeasible
		case isSearchLimitErr(solveErr):
			return nil, cpsat.StatusUnknown
		default:
			return nil, cpsat.StatusUnknown
		}
	}

	solutions, solveErr := solver.Solve(runCtx, 1)
	switch {
	case solveErr == nil && len(solutions) > 0:
		return tr.decode(solutions[0], m), cpsat.StatusOptimal
	case solveErr == nil:
		return nil, cpsat.StatusInfeasible
	case isSearchLimitErr(solveErr):
		return nil, cpsat.StatusUnknown
	default:
		return nil, cpsat.StatusUnknown
	}
}

func isSearchLimitErr(err error) bool {
	return errors.Is(err, mk.ErrSearchLimitReached) || errors.Is(err, context.DeadlineExceeded)
}
