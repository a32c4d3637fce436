// Package output renders a schedule result to the console and, optionally,
// to files on disk. Grounded in the teacher's
// pkg/interfaces/cli/output/output.go Config/Generate dispatch over
// text/json/csv, adapted to the schedule result shape and the csv/jsonkpi
// writers.
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aps-engine/aps/pkg/domain/entities"
	"github.com/aps-engine/aps/pkg/infrastructure/persistence/csv"
	"github.com/aps-engine/aps/pkg/infrastructure/persistence/jsonkpi"
)

// Config holds configuration for output generation.
type Config struct {
	Format       string
	ScheduleCSV  string
	KPIJSON      string
	Verbose      bool
	RunID        string
	SolverStatus string
}

// Generate renders result to the console in the requested format and, if
// ScheduleCSV/KPIJSON paths are set, writes them to disk.
func Generate(result *entities.ScheduleResult, config Config) error {
	switch config.Format {
	case "text", "":
		printText(result, config)
	case "json":
		if err := printJSON(result); err != nil {
			return err
		}
	case "csv":
		// handled via file writers below; nothing to print to stdout.
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}

	if config.ScheduleCSV != "" {
		if err := csv.Write(config.ScheduleCSV, result); err != nil {
			return fmt.Errorf("failed to write schedule csv: %w", err)
		}
		if config.Verbose {
			fmt.Printf("schedule written to %s\n", config.ScheduleCSV)
		}
	}
	if config.KPIJSON != "" {
		if err := jsonkpi.Write(config.KPIJSON, result); err != nil {
			return fmt.Errorf("failed to write kpi json: %w", err)
		}
		if config.Verbose {
			fmt.Printf("kpi report written to %s\n", config.KPIJSON)
		}
	}
	return nil
}

func printText(result *entities.ScheduleResult, config Config) {
	fmt.Printf("Schedule Run Summary\n")
	fmt.Printf("=====================\n\n")
	fmt.Printf("Run ID:          %s\n", config.RunID)
	fmt.Printf("Status:          %s\n", result.Status)
	fmt.Printf("Objective value: %.4f\n", result.ObjectiveValue)
	fmt.Printf("Assignments:     %d\n", len(result.Assignments))
	fmt.Printf("Unschedulable:   %d\n", len(result.Unschedulable))
	fmt.Printf("On-time rate:    %.3f\n\n", result.OnTimeRate())

	if len(result.Assignments) > 0 {
		fmt.Printf("%-12s %-10s %-12s %-12s %-8s %-8s\n",
			"Order", "Factory", "Planned", "Due", "Tardy", "DevDays")
		fmt.Printf("%-12s %-10s %-12s %-12s %-8s %-8s\n",
			"------------", "----------", "------------", "------------", "--------", "--------")
		for _, a := range result.Assignments {
			tardy := "no"
			if a.IsTardy {
				tardy = "yes"
			}
			fmt.Printf("%-12s %-10s %-12s %-12s %-8s %-8d\n",
				a.Order.OrderID, a.FactoryID,
				a.PeriodEndDate.Format(entities.DateLayout),
				a.Order.DueDate.Format(entities.DateLayout),
				tardy, a.DeviationDays())
		}
		fmt.Println()
	}

	if len(result.Unschedulable) > 0 {
		fmt.Printf("Unschedulable orders:\n")
		for _, u := range result.Unschedulable {
			fmt.Printf("  %-12s %s\n", u.OrderID, u.Reason)
		}
		fmt.Println()
	}

	if config.Verbose {
		fmt.Printf("Per-factory KPIs:\n")
		for factoryID, kpi := range result.KPIByFactory {
			fmt.Printf("  %-10s max=%.3f min_active=%.3f avg=%.3f\n",
				factoryID, kpi.MaxLoadRate, kpi.MinLoadRateActivePeriods, kpi.AverageLoadRate)
		}
	}
}

func printJSON(result *entities.ScheduleResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

// EnsureParentDir is a small helper shared by callers that accept
// user-supplied output paths for formats not handled by Generate directly.
func EnsureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
