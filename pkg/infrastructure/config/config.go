// Package config loads the run configuration from a JSON file (spec.md
// §6), using encoding/json — the corpus norm; no complete example repo
// reaches for a config/templating library, every one that loads structured
// configuration uses either encoding/json or raw os.Getenv.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/aps-engine/aps/pkg/application/dto"
	domainerrors "github.com/aps-engine/aps/pkg/domain/errors"
)

// Load reads and parses the configuration file at path, applying the
// spec.md §6 defaults for every unset field.
func Load(path string) (dto.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return dto.Config{}, domainerrors.NewIOError(path, err)
	}

	var cfg dto.Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return dto.Config{}, domainerrors.NewConfigurationError("(root)", fmt.Sprintf("invalid json in %s: %v", path, err))
	}

	cfg = cfg.WithDefaults()

	if cfg.DataPaths.Driver == "" && cfg.DataPaths.FactoryDataPath == "" {
		return dto.Config{}, domainerrors.NewConfigurationError("data_paths.factory_data_path", "required when data_paths.driver is unset")
	}
	if cfg.RunConfig.BaseDate == "" {
		return dto.Config{}, domainerrors.NewConfigurationError("run_config.base_date", "required")
	}

	return cfg, nil
}
