package bnbsolver

import (
	"context"
	"testing"
	"time"

	"github.com/aps-engine/aps/pkg/cpsat"
)

func TestSolveExactlyOneFeasibility(t *testing.T) {
	m := cpsat.NewModel()
	a := m.NewBoolVar("a")
	b := m.NewBoolVar("b")
	c := m.NewBoolVar("c")
	m.AddExactlyOne([]cpsat.Literal{cpsat.Lit(a), cpsat.Lit(b), cpsat.Lit(c)})

	s := New()
	s.SetTimeLimit(2 * time.Second)
	sol, status := s.Solve(context.Background(), m)
	if status != cpsat.StatusOptimal {
		t.Fatalf("expected StatusOptimal, got %v", status)
	}
	count := 0
	for _, v := range []cpsat.BoolVar{a, b, c} {
		if sol.Value(v) {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly one true variable, got %d", count)
	}
}

func TestSolveInfeasibleModel(t *testing.T) {
	m := cpsat.NewModel()
	a := m.NewBoolVar("a")
	m.AddExactlyOne([]cpsat.Literal{cpsat.Lit(a)})
	m.AddLinearEQ(cpsat.NewLinearExpr().AddBool(1, a), 0) // forces a=0, contradicts exactly-one

	s := New()
	s.SetTimeLimit(2 * time.Second)
	_, status := s.Solve(context.Background(), m)
	if status != cpsat.StatusInfeasible {
		t.Fatalf("expected StatusInfeasible, got %v", status)
	}
}

func TestSolveMinimizesObjective(t *testing.T) {
	m := cpsat.NewModel()
	a := m.NewBoolVar("a")
	b := m.NewBoolVar("b")
	// require at least one true, minimize sum should pick exactly one true.
	m.AddLinearGE(cpsat.NewLinearExpr().AddBool(1, a).AddBool(1, b), 1)
	m.Minimize(cpsat.NewLinearExpr().AddBool(1, a).AddBool(1, b))

	s := New()
	s.SetTimeLimit(2 * time.Second)
	sol, status := s.Solve(context.Background(), m)
	if status != cpsat.StatusOptimal {
		t.Fatalf("expected StatusOptimal, got %v", status)
	}
	if sol.ObjectiveValue() != 1 {
		t.Fatalf("expected objective value 1, got %v", sol.ObjectiveValue())
	}
}

func TestSolveMaxEquality(t *testing.T) {
	m := cpsat.NewModel()
	a := m.NewBoolVar("a")
	v1 := m.NewIntVar(0, 10, "v1")
	v2 := m.NewIntVar(0, 10, "v2")
	target := m.NewIntVar(0, 10, "target")

	// pin v1=3 via equality, v2=7 via equality; target must equal max(3,7)=7.
	m.AddLinearEQ(cpsat.NewLinearExpr().AddInt(1, v1), 3)
	m.AddLinearEQ(cpsat.NewLinearExpr().AddInt(1, v2), 7)
	m.AddMaxEquality(target, []cpsat.IntVar{v1, v2})
	m.AddExactlyOne([]cpsat.Literal{cpsat.Lit(a)})

	s := New()
	s.SetTimeLimit(2 * time.Second)
	sol, status := s.Solve(context.Background(), m)
	if status != cpsat.StatusOptimal {
		t.Fatalf("expected StatusOptimal, got %v", status)
	}
	if sol.IntValue(target) != 7 {
		t.Fatalf("expected target=7, got %d", sol.IntValue(target))
	}
}

func TestSetNumWorkersIgnoresNonPositive(t *testing.T) {
	s := New()
	s.SetNumWorkers(0)
	if s.numWorkers != 8 {
		t.Fatalf("expected default 8 workers preserved, got %d", s.numWorkers)
	}
	s.SetNumWorkers(4)
	if s.numWorkers != 4 {
		t.Fatalf("expected 4 workers, got %d", s.numWorkers)
	}
}
