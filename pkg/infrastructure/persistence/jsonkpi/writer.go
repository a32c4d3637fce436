// Package jsonkpi writes the KPI JSON output schema of spec.md §6: an
// object keyed by factory_id with max/min-active/average load rate and a
// per-period breakdown. Grounded in the teacher's
// _examples/original_source/utils/file_handler.py save_data_to_json
// convention (create the output directory, write indented JSON),
// translated into Go's encoding/json + os idiom.
package jsonkpi

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aps-engine/aps/pkg/domain/entities"
)

type factoryKPIJSON struct {
	MaxLoadRate              float64            `json:"max_load_rate"`
	MinLoadRateActivePeriods float64            `json:"min_load_rate_active_periods"`
	AverageLoadRate          float64            `json:"average_load_rate"`
	LoadRateByPeriod         map[string]float64 `json:"load_rate_by_period"`
}

// Write writes result's per-factory KPI report to path as indented JSON.
// Creates the parent directory if it does not exist.
func Write(path string, result *entities.ScheduleResult) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}

	out := make(map[string]factoryKPIJSON, len(result.KPIByFactory))
	for factoryID, kpi := range result.KPIByFactory {
		out[factoryID] = factoryKPIJSON{
			MaxLoadRate:              kpi.MaxLoadRate,
			MinLoadRateActivePeriods: kpi.MinLoadRateActivePeriods,
			AverageLoadRate:          kpi.AverageLoadRate,
			LoadRateByPeriod:         kpi.LoadRateByPeriod,
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal kpi report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
