// Command example runs a small synthetic two-factory planning scenario
// in-process, without touching any file or database, grounded in the
// teacher's example/main.go (build repositories in memory, run the
// engine, print the result) and the order/capacity shapes of
// original_source/order_generation.py.
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/aps-engine/aps/pkg/application/dto"
	"github.com/aps-engine/aps/pkg/application/services/orchestration"
	"github.com/aps-engine/aps/pkg/cpsat"
	"github.com/aps-engine/aps/pkg/cpsat/gokandosolver"
	"github.com/aps-engine/aps/pkg/domain/entities"
	"github.com/aps-engine/aps/pkg/infrastructure/events"
)

func main() {
	baseDate := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	factories := buildFactories(baseDate)
	orders := buildOrders(baseDate)

	fmt.Println("Synthetic Two-Factory Planning Run")
	fmt.Println("===================================")
	fmt.Printf("Factories: %d, Orders: %d, Base date: %s\n\n",
		len(factories), len(orders), baseDate.Format(entities.DateLayout))

	cfg := dto.Config{
		RunConfig: dto.RunConfig{
			BaseDate: baseDate.Format(entities.DateLayout),
		},
		ObjectiveWeights: dto.ObjectiveWeights{
			Tardiness:       0.5,
			JITDeviation:    0.3,
			WorkloadBalance: 0.2,
		},
	}.WithDefaults()

	orchestrator := orchestration.New(func() cpsat.Solver { return gokandosolver.New() }, events.NewMemoryPublisher())

	result, warnings, err := orchestrator.Run(context.Background(), factories, orders, cfg)
	if err != nil {
		fmt.Printf("run failed: %v\n", err)
		return
	}
	for _, w := range warnings {
		fmt.Printf("warning: %v\n", w)
	}

	fmt.Printf("Status: %s, Objective: %.4f\n\n", result.Status, result.ObjectiveValue)
	for _, a := range result.Assignments {
		fmt.Printf("  %-10s -> %-8s period starting %s (tardy=%v)\n",
			a.Order.OrderID, a.FactoryID, a.PeriodStartDate.Format(entities.DateLayout), a.IsTardy)
	}
	for _, u := range result.Unschedulable {
		fmt.Printf("  %-10s unschedulable: %s\n", u.OrderID, u.Reason)
	}
}

func buildFactories(baseDate time.Time) []*entities.Factory {
	period1Start := baseDate
	period1End := baseDate.AddDate(0, 0, 13)
	period2Start := baseDate.AddDate(0, 0, 14)
	period2End := baseDate.AddDate(0, 0, 27)

	p1a, _ := entities.NewCapacityPeriod(period1Start, period1End, map[string]int{"cut": 500, "sew": 400})
	p2a, _ := entities.NewCapacityPeriod(period2Start, period2End, map[string]int{"cut": 500, "sew": 400})
	factoryA, _ := entities.NewFactory("FAC_A", "APAC",
		map[string][]entities.EfficiencyTier{
			"shirt": {mustTier(0, 1000, decimal.NewFromFloat(1.0))},
		},
		[]entities.CapacityPeriod{p1a, p2a},
	)

	p1b, _ := entities.NewCapacityPeriod(period1Start, period1End, map[string]int{"cut": 300, "sew": 250})
	p2b, _ := entities.NewCapacityPeriod(period2Start, period2End, map[string]int{"cut": 300, "sew": 250})
	factoryB, _ := entities.NewFactory("FAC_B", "EMEA",
		map[string][]entities.EfficiencyTier{
			"shirt": {mustTier(0, 1000, decimal.NewFromFloat(0.9))},
		},
		[]entities.CapacityPeriod{p1b, p2b},
	)

	return []*entities.Factory{factoryA, factoryB}
}

func mustTier(min, max int, eff decimal.Decimal) entities.EfficiencyTier {
	t, err := entities.NewEfficiencyTier(min, max, eff)
	if err != nil {
		panic(err)
	}
	return t
}

func buildOrders(baseDate time.Time) []*entities.Order {
	transport := map[string]int{"APAC": 3, "EMEA": 7}
	workload := map[string]int{"cut": 50, "sew": 40}

	var orders []*entities.Order
	for i := 0; i < 6; i++ {
		due := baseDate.AddDate(0, 0, 20+i*2)
		orderType := entities.Forecast
		if i%3 == 0 {
			orderType = entities.Firm
		}
		o, err := entities.NewOrder(
			fmt.Sprintf("ORD-%03d", i+1), "ACME", "shirt", "classic",
			100+i*10, due,
			5, transport, 6,
			workload, []string{"FAC_A", "FAC_B"},
			orderType, nil,
		)
		if err != nil {
			panic(err)
		}
		orders = append(orders, o)
	}
	return orders
}
