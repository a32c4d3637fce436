// Package csv writes the schedule output schema of spec.md §6: one row per
// scheduled order. Grounded in the teacher's
// pkg/infrastructure/repositories/csv/csv_loader.go header-writing
// convention, inverted from reader to writer.
package csv

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aps-engine/aps/pkg/domain/entities"
)

var header = []string{
	"order_id", "customer", "quantity", "due_date", "factory_id", "region",
	"planned_completion_date", "is_tardy", "deviation_days",
	"material_ready_date", "latest_confirmation_date",
}

// Write writes result's assignments to path in the column order of
// spec.md §6. Creates the parent directory if it does not exist.
func Write(path string, result *entities.ScheduleResult) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write header to %s: %w", path, err)
	}

	for _, a := range result.Assignments {
		isTardy := "no"
		if a.IsTardy {
			isTardy = "yes"
		}
		row := []string{
			a.Order.OrderID,
			a.Order.Customer,
			fmt.Sprintf("%d", a.Order.Quantity),
			a.Order.DueDate.Format(entities.DateLayout),
			a.FactoryID,
			a.Region,
			a.PeriodEndDate.Format(entities.DateLayout),
			isTardy,
			fmt.Sprintf("%d", a.DeviationDays()),
			a.MaterialReadyDate.Format(entities.DateLayout),
			a.LatestConfirmationDate.Format(entities.DateLayout),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write row for order %s to %s: %w", a.Order.OrderID, path, err)
		}
	}
	return w.Error()
}
