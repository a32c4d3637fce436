package postgres

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/aps-engine/aps/pkg/domain/entities"
	"github.com/aps-engine/aps/pkg/domain/repositories"
)

// OrderRepository reads orders, their process workloads, transport lead
// times, and eligible-factory set from normalized tables.
type OrderRepository struct {
	db *sql.DB
}

// NewOrderRepository opens a connection using dsn and returns a repository
// backed by it.
func NewOrderRepository(dsn string) (*OrderRepository, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}
	return &OrderRepository{db: db}, nil
}

func (r *OrderRepository) GetAll() ([]*entities.Order, error) {
	rows, err := r.db.Query(`SELECT order_id FROM orders ORDER BY order_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan order row: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]*entities.Order, 0, len(ids))
	for _, id := range ids {
		o, err := r.GetByID(id)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

func (r *OrderRepository) GetByID(orderID string) (*entities.Order, error) {
	var customer, productType, style string
	var quantity, purchasingLT, productionLT, orderType int
	var dueDate string
	err := r.db.QueryRow(
		`SELECT customer, product_type, style, quantity, due_date,
		        material_purchasing_lead_time, production_lead_time, order_type
		 FROM orders WHERE order_id = $1`, orderID,
	).Scan(&customer, &productType, &style, &quantity, &dueDate, &purchasingLT, &productionLT, &orderType)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("order %s not found", orderID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query order %s: %w", orderID, err)
	}

	due, err := parseDate(dueDate)
	if err != nil {
		return nil, err
	}

	workload, err := r.loadProcessWorkload(orderID)
	if err != nil {
		return nil, err
	}
	transportLT, err := r.loadTransportLeadTimes(orderID)
	if err != nil {
		return nil, err
	}
	eligible, err := r.loadEligibleFactories(orderID)
	if err != nil {
		return nil, err
	}

	return entities.NewOrder(
		orderID, customer, productType, style, quantity, due,
		purchasingLT, transportLT, productionLT, workload, eligible,
		entities.OrderType(orderType), nil,
	)
}

func (r *OrderRepository) loadProcessWorkload(orderID string) (map[string]int, error) {
	rows, err := r.db.Query(`SELECT process_name, workload FROM bom_processes WHERE order_id = $1`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query bom_processes for %s: %w", orderID, err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var process string
		var workload int
		if err := rows.Scan(&process, &workload); err != nil {
			return nil, fmt.Errorf("failed to scan bom_processes row: %w", err)
		}
		out[process] = workload
	}
	return out, rows.Err()
}

func (r *OrderRepository) loadTransportLeadTimes(orderID string) (map[string]int, error) {
	rows, err := r.db.Query(`SELECT region, lead_time_days FROM order_transport_lead_times WHERE order_id = $1`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query order_transport_lead_times for %s: %w", orderID, err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var region string
		var leadTime int
		if err := rows.Scan(&region, &leadTime); err != nil {
			return nil, fmt.Errorf("failed to scan order_transport_lead_times row: %w", err)
		}
		out[region] = leadTime
	}
	return out, rows.Err()
}

func (r *OrderRepository) loadEligibleFactories(orderID string) ([]string, error) {
	rows, err := r.db.Query(`SELECT factory_id FROM order_eligible_factories WHERE order_id = $1 ORDER BY factory_id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query order_eligible_factories for %s: %w", orderID, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var factoryID string
		if err := rows.Scan(&factoryID); err != nil {
			return nil, fmt.Errorf("failed to scan order_eligible_factories row: %w", err)
		}
		out = append(out, factoryID)
	}
	return out, rows.Err()
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(entities.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse date %q: %w", s, err)
	}
	return t, nil
}

var _ repositories.OrderRepository = (*OrderRepository)(nil)
