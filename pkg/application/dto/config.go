// Package dto holds the data-transfer shapes that cross package boundaries:
// the run configuration and the preprocessed-input bundle handed from
// preprocessing into the variable/constraint/objective builders.
package dto

// DataPaths locates the input files (or a relational source) for one run.
type DataPaths struct {
	Driver          string `json:"driver"`
	FactoryDataPath string `json:"factory_data_path"`
	OrderDataPath   string `json:"order_data_path"`
	DSN             string `json:"dsn"`
}

// OutputPaths locates where the decoder's results are written.
type OutputPaths struct {
	CSVResultPath string `json:"csv_result_path"`
	KPIOutputPath string `json:"kpi_output_path"`
}

// RunConfig carries the base date and solver budget (spec.md §6).
type RunConfig struct {
	BaseDate                string `json:"base_date"`
	SolverTimeLimitSeconds  int    `json:"solver_time_limit_seconds"`
	SolverNumWorkers        int    `json:"solver_num_workers"`
	EventsNATSURL           string `json:"events_nats_url"`
}

// ObjectiveWeights weights the three composite-objective terms (spec.md §4.5).
type ObjectiveWeights struct {
	Tardiness       float64 `json:"tardiness"`
	JITDeviation    float64 `json:"jit_deviation"`
	WorkloadBalance float64 `json:"workload_balance"`
}

// TardinessObjectiveConfig weights firm vs. forecast tardiness (spec.md §4.4.1).
type TardinessObjectiveConfig struct {
	FirmTardyWeight     float64 `json:"firm_tardy_weight"`
	ForecastTardyWeight float64 `json:"forecast_tardy_weight"`
}

// JITObjectiveConfig parameterizes the earliness/tardiness minimax (spec.md §4.4.2).
type JITObjectiveConfig struct {
	AllowedEarlinessDeviationDays int     `json:"allowed_earliness_deviation_days"`
	AllowedTardinessDeviationDays int     `json:"allowed_tardiness_deviation_days"`
	EarlinessWeight               float64 `json:"earliness_weight"`
	LatenessWeight                float64 `json:"lateness_weight"`
}

// Config is the full run configuration loaded from settings.json (spec.md §6).
type Config struct {
	DataPaths                DataPaths                `json:"data_paths"`
	OutputPaths               OutputPaths              `json:"output_paths"`
	RunConfig                 RunConfig                `json:"run_config"`
	ActiveConstraints          []string                 `json:"active_constraints"`
	ObjectiveWeights           ObjectiveWeights         `json:"objective_weights"`
	TardinessObjectiveConfig   TardinessObjectiveConfig `json:"tardiness_objective_config"`
	JITObjectiveConfig         JITObjectiveConfig       `json:"jit_objective_config"`
}

// WithDefaults returns a copy of c with every spec.md §6 default filled in
// for zero-valued fields, grounded in the teacher's plain-struct config
// style (no defaulting library observed anywhere in the corpus).
func (c Config) WithDefaults() Config {
	if c.RunConfig.SolverTimeLimitSeconds == 0 {
		c.RunConfig.SolverTimeLimitSeconds = 60
	}
	if c.RunConfig.SolverNumWorkers == 0 {
		c.RunConfig.SolverNumWorkers = 8
	}
	if len(c.ActiveConstraints) == 0 {
		c.ActiveConstraints = []string{"order_unique_assign", "capacity", "material_lead_time"}
	}
	if c.TardinessObjectiveConfig.FirmTardyWeight == 0 && c.TardinessObjectiveConfig.ForecastTardyWeight == 0 {
		c.TardinessObjectiveConfig.FirmTardyWeight = 0.7
		c.TardinessObjectiveConfig.ForecastTardyWeight = 0.3
	}
	if c.JITObjectiveConfig.AllowedEarlinessDeviationDays == 0 {
		c.JITObjectiveConfig.AllowedEarlinessDeviationDays = 30
	}
	if c.JITObjectiveConfig.AllowedTardinessDeviationDays == 0 {
		c.JITObjectiveConfig.AllowedTardinessDeviationDays = 30
	}
	if c.JITObjectiveConfig.EarlinessWeight == 0 && c.JITObjectiveConfig.LatenessWeight == 0 {
		c.JITObjectiveConfig.EarlinessWeight = 0.3
		c.JITObjectiveConfig.LatenessWeight = 0.7
	}
	return c
}
