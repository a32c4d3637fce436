// Package postgres is the optional relational adapter for the domain
// repository interfaces, selected by data_paths.driver = "postgres"
// (SPEC_FULL.md §3.1). It reads the same Factory/Order shapes the JSON
// loader produces from normalized tables, using database/sql with
// github.com/lib/pq as the driver — the teacher-pack's own choice
// (douglaslinsmeyer-m3-manufacturing-planning-toolbox) for Postgres
// access, reused here unchanged.
package postgres

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/aps-engine/aps/pkg/domain/entities"
	"github.com/aps-engine/aps/pkg/domain/repositories"
	"github.com/shopspring/decimal"
)

// FactoryRepository reads factories, their capacity periods, and their
// efficiency tiers from three joined tables.
type FactoryRepository struct {
	db *sql.DB
}

// NewFactoryRepository opens a connection using dsn (a postgres:// URL or
// libpq keyword string) and returns a repository backed by it.
func NewFactoryRepository(dsn string) (*FactoryRepository, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}
	return &FactoryRepository{db: db}, nil
}

func (r *FactoryRepository) GetAll() ([]*entities.Factory, error) {
	rows, err := r.db.Query(`SELECT factory_id, region FROM factories ORDER BY factory_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query factories: %w", err)
	}
	defer rows.Close()

	var out []*entities.Factory
	for rows.Next() {
		var factoryID, region string
		if err := rows.Scan(&factoryID, &region); err != nil {
			return nil, fmt.Errorf("failed to scan factory row: %w", err)
		}
		f, err := r.assemble(factoryID, region)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *FactoryRepository) GetByID(factoryID string) (*entities.Factory, error) {
	var region string
	err := r.db.QueryRow(`SELECT region FROM factories WHERE factory_id = $1`, factoryID).Scan(&region)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("factory %s not found", factoryID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query factory %s: %w", factoryID, err)
	}
	return r.assemble(factoryID, region)
}

func (r *FactoryRepository) assemble(factoryID, region string) (*entities.Factory, error) {
	periods, err := r.loadCapacityPeriods(factoryID)
	if err != nil {
		return nil, err
	}
	efficiencies, err := r.loadEfficiencyTiers(factoryID)
	if err != nil {
		return nil, err
	}
	return entities.NewFactory(factoryID, region, efficiencies, periods)
}

func (r *FactoryRepository) loadCapacityPeriods(factoryID string) ([]entities.CapacityPeriod, error) {
	rows, err := r.db.Query(
		`SELECT start_date, end_date, process_name, capacity
		 FROM capacity_periods WHERE factory_id = $1 ORDER BY start_date`, factoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query capacity_periods for %s: %w", factoryID, err)
	}
	defer rows.Close()

	type periodKey struct{ start, end string }
	byPeriod := make(map[periodKey]map[string]int)
	var order []periodKey

	for rows.Next() {
		var start, end, process string
		var capacity int
		if err := rows.Scan(&start, &end, &process, &capacity); err != nil {
			return nil, fmt.Errorf("failed to scan capacity_periods row: %w", err)
		}
		key := periodKey{start: start, end: end}
		if _, ok := byPeriod[key]; !ok {
			byPeriod[key] = make(map[string]int)
			order = append(order, key)
		}
		byPeriod[key][process] = capacity
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]entities.CapacityPeriod, 0, len(order))
	for _, key := range order {
		start, err := parseDate(key.start)
		if err != nil {
			return nil, err
		}
		end, err := parseDate(key.end)
		if err != nil {
			return nil, err
		}
		period, err := entities.NewCapacityPeriod(start, end, byPeriod[key])
		if err != nil {
			return nil, err
		}
		out = append(out, period)
	}
	return out, nil
}

func (r *FactoryRepository) loadEfficiencyTiers(factoryID string) (map[string][]entities.EfficiencyTier, error) {
	rows, err := r.db.Query(
		`SELECT product_type, min_quantity, max_quantity, efficiency
		 FROM efficiency_tiers WHERE factory_id = $1 ORDER BY product_type, min_quantity`, factoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query efficiency_tiers for %s: %w", factoryID, err)
	}
	defer rows.Close()

	out := make(map[string][]entities.EfficiencyTier)
	for rows.Next() {
		var productType string
		var minQty, maxQty int
		var efficiency float64
		if err := rows.Scan(&productType, &minQty, &maxQty, &efficiency); err != nil {
			return nil, fmt.Errorf("failed to scan efficiency_tiers row: %w", err)
		}
		tier, err := entities.NewEfficiencyTier(minQty, maxQty, decimal.NewFromFloat(efficiency))
		if err != nil {
			return nil, err
		}
		out[productType] = append(out[productType], tier)
	}
	return out, rows.Err()
}

var _ repositories.FactoryRepository = (*FactoryRepository)(nil)
