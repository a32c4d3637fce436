// Package orchestration sequences the DATA → MODEL → CONSTRAINTS →
// OBJECTIVE → SOLVE → REPORT state machine (spec.md §4.7, §9), the only
// caller that knows about every other package. Grounded in the original's
// core/runner.APSRunner (a CONSTRAINT_MAP dict dispatching named
// constraint builders) and the teacher's EngineConfig/run-scoped caching
// pattern, adapted to mint a UUID run id per invocation.
package orchestration

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/aps-engine/aps/pkg/application/dto"
	"github.com/aps-engine/aps/pkg/application/services/constraints"
	"github.com/aps-engine/aps/pkg/application/services/decoder"
	"github.com/aps-engine/aps/pkg/application/services/objectives"
	"github.com/aps-engine/aps/pkg/application/services/preprocessing"
	"github.com/aps-engine/aps/pkg/application/services/solver"
	"github.com/aps-engine/aps/pkg/application/services/variables"
	"github.com/aps-engine/aps/pkg/cpsat"
	"github.com/aps-engine/aps/pkg/domain/entities"
	"github.com/aps-engine/aps/pkg/infrastructure/events"
)

// Stage names the state machine's position, reported in Run's error so a
// fatal failure says exactly how far the run got.
type Stage string

const (
	StageData        Stage = "DATA"
	StageModel        Stage = "MODEL"
	StageConstraints Stage = "CONSTRAINTS"
	StageObjective   Stage = "OBJECTIVE"
	StageSolve       Stage = "SOLVE"
	StageReport      Stage = "REPORT"
	StageAborted     Stage = "ABORTED"
)

// Orchestrator runs one end-to-end planning pipeline.
type Orchestrator struct {
	solverFactory func() cpsat.Solver
	publisher     events.Publisher
}

// New returns an Orchestrator using solverFactory to construct a fresh
// cpsat.Solver per run (so concurrent runs never share solver state) and
// publisher to emit the domain events of SPEC_FULL.md §3.2.
func New(solverFactory func() cpsat.Solver, publisher events.Publisher) *Orchestrator {
	return &Orchestrator{solverFactory: solverFactory, publisher: publisher}
}

// Run executes DATA → MODEL → CONSTRAINTS → OBJECTIVE → SOLVE → REPORT for
// one factory/order set under cfg. Stage errors that spec.md §7 marks
// fatal (ConfigurationError) abort the run and are returned; everything
// else is collected into the result's warning/unschedulable lists.
func (o *Orchestrator) Run(ctx context.Context, factories []*entities.Factory, orders []*entities.Order, cfg dto.Config) (*entities.ScheduleResult, []error, error) {
	runID := uuid.NewString()
	log.Printf("run %s: stage DATA", runID)

	pre, err := preprocessing.Preprocess(factories, orders, cfg.RunConfig)
	if err != nil {
		log.Printf("run %s: stage DATA failed: %v", runID, err)
		return nil, nil, fmt.Errorf("stage %s: %w", StageAborted, err)
	}
	var warnings []error
	warnings = append(warnings, pre.Warnings...)
	for _, w := range pre.Warnings {
		log.Printf("run %s: %v", runID, w)
	}

	log.Printf("run %s: stage MODEL", runID)
	model := cpsat.NewModel()
	reg, lockWarnings := variables.Build(model, runID, pre.Input.Orders(), pre.Input.FactoryByID)
	warnings = append(warnings, lockWarnings...)
	for _, w := range lockWarnings {
		log.Printf("run %s: %v", runID, w)
	}

	log.Printf("run %s: stage CONSTRAINTS", runID)
	active := make(map[string]bool, len(cfg.ActiveConstraints))
	for _, name := range cfg.ActiveConstraints {
		active[name] = true
	}
	if active["order_unique_assign"] {
		uw := constraints.BuildUniqueness(model, pre.Input, reg)
		warnings = append(warnings, uw...)
		for _, w := range uw {
			log.Printf("run %s: %v", runID, w)
		}
	}
	if active["capacity"] {
		constraints.BuildCapacity(model, pre.Input, reg)
	}
	if active["material_lead_time"] {
		constraints.BuildMaterialLeadTime(model, pre.Input, reg)
	}

	log.Printf("run %s: stage OBJECTIVE", runID)
	objectives.BuildComposite(model, runID, pre.Input, reg, cfg.ObjectiveWeights, cfg.TardinessObjectiveConfig, cfg.JITObjectiveConfig)

	log.Printf("run %s: stage SOLVE", runID)
	driver := solver.NewDriver(o.solverFactory(), cfg.RunConfig.SolverTimeLimitSeconds, cfg.RunConfig.SolverNumWorkers)
	solution, status := driver.Run(ctx, model)
	log.Printf("run %s: solver returned status %s", runID, status)

	log.Printf("run %s: stage REPORT", runID)
	objValue := 0.0
	if solution != nil {
		objValue = solution.ObjectiveValue()
	}
	result := decoder.Decode(runID, status, solution, pre.Input, reg, objValue, o.publisher)

	return result, warnings, nil
}
