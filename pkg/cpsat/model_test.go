package cpsat

import "testing"

func TestLinearExprAccumulates(t *testing.T) {
	m := NewModel()
	b := m.NewBoolVar("b")
	v := m.NewIntVar(0, 10, "v")

	expr := NewLinearExpr().AddBool(2, b).AddInt(3, v).AddConstant(5)
	if len(expr.Terms) != 2 {
		t.Fatalf("expected 2 terms, got %d", len(expr.Terms))
	}
	if expr.Offset != 5 {
		t.Fatalf("expected offset 5, got %d", expr.Offset)
	}
}

func TestAddLinearAndOnlyEnforceIf(t *testing.T) {
	m := NewModel()
	b := m.NewBoolVar("b")
	v := m.NewIntVar(0, 10, "v")

	c := m.AddLinearLE(NewLinearExpr().AddInt(1, v), 5).OnlyEnforceIf(Lit(b))
	_ = c
	if len(m.LinearConstraints()) != 1 {
		t.Fatalf("expected 1 constraint, got %d", len(m.LinearConstraints()))
	}
	lc := m.LinearConstraints()[0]
	if len(lc.EnforceLiterals) != 1 || lc.EnforceLiterals[0].Var != b {
		t.Fatalf("expected enforce literal on b, got %+v", lc.EnforceLiterals)
	}
}

func TestAddExactlyOneAndMaxEquality(t *testing.T) {
	m := NewModel()
	b1 := m.NewBoolVar("b1")
	b2 := m.NewBoolVar("b2")
	m.AddExactlyOne([]Literal{Lit(b1), Lit(b2)})
	if len(m.ExactlyOnes()) != 1 || len(m.ExactlyOnes()[0]) != 2 {
		t.Fatalf("expected one exactly-one group of size 2")
	}

	v1 := m.NewIntVar(0, 5, "v1")
	v2 := m.NewIntVar(0, 5, "v2")
	target := m.NewIntVar(0, 5, "max")
	m.AddMaxEquality(target, []IntVar{v1, v2})
	if len(m.MaxEqualities()) != 1 {
		t.Fatalf("expected 1 max equality, got %d", len(m.MaxEqualities()))
	}
}

func TestMinimizeSetsObjective(t *testing.T) {
	m := NewModel()
	if _, has := m.Objective(); has {
		t.Fatalf("expected no objective before Minimize")
	}
	b := m.NewBoolVar("b")
	m.Minimize(NewLinearExpr().AddBool(1, b))
	expr, has := m.Objective()
	if !has {
		t.Fatalf("expected objective after Minimize")
	}
	if len(expr.Terms) != 1 {
		t.Fatalf("expected 1 term in objective, got %d", len(expr.Terms))
	}
}

func TestNegatedLiteral(t *testing.T) {
	m := NewModel()
	b := m.NewBoolVar("b")
	lit := NotLit(b)
	if !lit.Negated {
		t.Fatalf("expected NotLit to be negated")
	}
	if Lit(b).Negated {
		t.Fatalf("expected Lit to not be negated")
	}
}
