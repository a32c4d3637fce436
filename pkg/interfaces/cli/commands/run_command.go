// Package commands wires configuration, repositories, the solver, and
// output rendering into one executable run, grounded in the teacher's
// pkg/interfaces/cli/commands/mrp_command.go Config/Command/Execute shape.
package commands

import (
	"context"
	"fmt"
	"log"

	"github.com/aps-engine/aps/pkg/application/dto"
	"github.com/aps-engine/aps/pkg/application/services/orchestration"
	"github.com/aps-engine/aps/pkg/cpsat"
	"github.com/aps-engine/aps/pkg/cpsat/gokandosolver"
	"github.com/aps-engine/aps/pkg/domain/repositories"
	"github.com/aps-engine/aps/pkg/infrastructure/config"
	"github.com/aps-engine/aps/pkg/infrastructure/events"
	jsonloader "github.com/aps-engine/aps/pkg/infrastructure/repositories/json"
	"github.com/aps-engine/aps/pkg/infrastructure/repositories/postgres"
	"github.com/aps-engine/aps/pkg/interfaces/cli/output"
)

// Config holds configuration for the run command.
type Config struct {
	ConfigPath string
	Format     string
	Verbose    bool
}

// RunCommand loads a settings file, runs the planning pipeline, and renders
// the result.
type RunCommand struct {
	config Config
}

// NewRunCommand returns a RunCommand for the given CLI configuration.
func NewRunCommand(config Config) *RunCommand {
	return &RunCommand{config: config}
}

// Execute runs one end-to-end planning pipeline and renders its output.
func (c *RunCommand) Execute(ctx context.Context) error {
	cfg, err := config.Load(c.config.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if c.config.Verbose {
		log.Printf("loaded configuration from %s", c.config.ConfigPath)
	}

	factoryRepo, orderRepo, err := c.loadRepositories(cfg)
	if err != nil {
		return fmt.Errorf("failed to load input data: %w", err)
	}

	factories, err := factoryRepo.GetAll()
	if err != nil {
		return fmt.Errorf("failed to read factories: %w", err)
	}
	orders, err := orderRepo.GetAll()
	if err != nil {
		return fmt.Errorf("failed to read orders: %w", err)
	}

	if c.config.Verbose {
		log.Printf("loaded %d factories, %d orders", len(factories), len(orders))
	}

	publisher, closePublisher, err := c.buildPublisher(cfg)
	if err != nil {
		return fmt.Errorf("failed to set up event publisher: %w", err)
	}
	defer closePublisher()

	orchestrator := orchestration.New(func() cpsat.Solver { return gokandosolver.New() }, publisher)

	result, warnings, err := orchestrator.Run(ctx, factories, orders, cfg)
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}
	for _, w := range warnings {
		log.Printf("warning: %v", w)
	}

	outputConfig := output.Config{
		Format:       c.config.Format,
		ScheduleCSV:  cfg.OutputPaths.CSVResultPath,
		KPIJSON:      cfg.OutputPaths.KPIOutputPath,
		Verbose:      c.config.Verbose,
		RunID:        result.RunID,
		SolverStatus: result.Status.String(),
	}
	if err := output.Generate(result, outputConfig); err != nil {
		return fmt.Errorf("failed to generate output: %w", err)
	}

	return nil
}

func (c *RunCommand) loadRepositories(cfg dto.Config) (repositories.FactoryRepository, repositories.OrderRepository, error) {
	switch cfg.DataPaths.Driver {
	case "postgres":
		factoryRepo, err := postgres.NewFactoryRepository(cfg.DataPaths.DSN)
		if err != nil {
			return nil, nil, err
		}
		orderRepo, err := postgres.NewOrderRepository(cfg.DataPaths.DSN)
		if err != nil {
			return nil, nil, err
		}
		return factoryRepo, orderRepo, nil
	default:
		factoryRepo, orderRepo, err := jsonloader.LoadRepositories(cfg.DataPaths.FactoryDataPath, cfg.DataPaths.OrderDataPath)
		if err != nil {
			return nil, nil, err
		}
		return factoryRepo, orderRepo, nil
	}
}

func (c *RunCommand) buildPublisher(cfg dto.Config) (events.Publisher, func(), error) {
	if cfg.RunConfig.EventsNATSURL == "" {
		return events.NewMemoryPublisher(), func() {}, nil
	}
	pub, err := events.NewNATSPublisher(cfg.RunConfig.EventsNATSURL)
	if err != nil {
		return nil, nil, err
	}
	return pub, pub.Close, nil
}
