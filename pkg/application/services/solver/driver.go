// Package solver wraps the pluggable cpsat.Solver with the time-budget and
// worker-count contract of spec.md §4.6.
package solver

import (
	"context"
	"time"

	"github.com/aps-engine/aps/pkg/cpsat"
)

// Driver submits a built model to a cpsat.Solver and reports its status,
// honoring the configured time budget and worker count. It never inspects
// the model's contents — that is the builder packages' job.
type Driver struct {
	solver            cpsat.Solver
	timeLimitSeconds  int
	numWorkers        int
}

// NewDriver wraps solver with the given time budget and worker count
// (spec.md §4.6 defaults: 60s, 8 workers).
func NewDriver(solver cpsat.Solver, timeLimitSeconds, numWorkers int) *Driver {
	return &Driver{solver: solver, timeLimitSeconds: timeLimitSeconds, numWorkers: numWorkers}
}

// Run configures and submits the model, returning whatever the solver
// returns at the deadline (spec.md §5 "Cancellation/timeouts" — only the
// solver step is interruptible).
func (d *Driver) Run(ctx context.Context, model *cpsat.Model) (cpsat.Solution, cpsat.Status) {
	d.solver.SetTimeLimit(time.Duration(d.timeLimitSeconds) * time.Second)
	d.solver.SetNumWorkers(d.numWorkers)
	return d.solver.Solve(ctx, model)
}
