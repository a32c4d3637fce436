// Package cpsat defines a small CP-SAT-style integer constraint-model
// contract: boolean and integer decision variables, linear constraints with
// optional reification, and a pluggable Solver. THE CORE (the builder
// packages under pkg/application/services) depends only on the Model type
// here, never on a concrete solver — pkg/cpsat/gokandosolver (backed by a
// real finite-domain CP engine) is the default implementation, with
// pkg/cpsat/bnbsolver kept as a secondary hand-rolled one, both swappable
// without touching any builder.
package cpsat

import "fmt"

// BoolVar is an opaque handle to a boolean decision variable.
type BoolVar struct {
	id   int
	name string
}

// IntVar is an opaque handle to a bounded integer variable.
type IntVar struct {
	id       int
	name     string
	lo, hi   int64
}

func (v BoolVar) Name() string          { return v.name }
func (v BoolVar) ID() int               { return v.id }
func (v IntVar) Name() string           { return v.name }
func (v IntVar) ID() int                { return v.id }
func (v IntVar) Bounds() (int64, int64) { return v.lo, v.hi }

// Term is a single `coefficient * variable` summand of a LinearExpr. A Term
// with IsInt false refers to a BoolVar (coefficient applies to its 0/1
// value); IsInt true refers to an IntVar.
type Term struct {
	Coeff  int64
	VarID  int
	IsInt  bool
}

// LinearExpr is a sum of Terms plus a constant offset.
type LinearExpr struct {
	Terms   []Term
	Offset  int64
}

// NewLinearExpr returns the zero expression (constant 0).
func NewLinearExpr() LinearExpr {
	return LinearExpr{}
}

// AddBool appends `coeff * b` to the expression and returns it.
func (e LinearExpr) AddBool(coeff int64, b BoolVar) LinearExpr {
	e.Terms = append(append([]Term{}, e.Terms...), Term{Coeff: coeff, VarID: b.id, IsInt: false})
	return e
}

// AddInt appends `coeff * v` to the expression and returns it.
func (e LinearExpr) AddInt(coeff int64, v IntVar) LinearExpr {
	e.Terms = append(append([]Term{}, e.Terms...), Term{Coeff: coeff, VarID: v.id, IsInt: true})
	return e
}

// AddConstant adds a constant offset to the expression and returns it.
func (e LinearExpr) AddConstant(c int64) LinearExpr {
	e.Offset += c
	return e
}

// CompareOp is the relational operator of a linear constraint.
type CompareOp int

const (
	LE CompareOp = iota
	GE
	EQ
)

// Constraint is a handle to an emitted linear constraint; it may be
// conditioned on one or more boolean literals via OnlyEnforceIf, mirroring
// CP-SAT's reification primitive (spec.md §9 "indicator variables").
type Constraint struct {
	model *Model
	id    int
}

// OnlyEnforceIf restricts this constraint to hold only when every literal in
// lits is true (an empty/omitted call leaves the constraint unconditional).
// A Literal with Negated=true enforces on the variable being false.
func (c Constraint) OnlyEnforceIf(lits ...Literal) Constraint {
	if c.model == nil {
		return c
	}
	cs := c.model.constraints[c.id]
	cs.EnforceLiterals = append(cs.EnforceLiterals, lits...)
	c.model.constraints[c.id] = cs
	return c
}

// Literal is a BoolVar reference with an optional negation, used by
// OnlyEnforceIf and AddExactlyOne.
type Literal struct {
	Var     BoolVar
	Negated bool
}

// Lit returns the positive literal for b.
func Lit(b BoolVar) Literal { return Literal{Var: b} }

// NotLit returns the negated literal for b.
func NotLit(b BoolVar) Literal { return Literal{Var: b, Negated: true} }

// LinearConstraint is the introspectable form of an emitted linear
// constraint, read by Solver implementations; builders never construct one
// directly, they go through Model.AddLinear{LE,GE,EQ}.
type LinearConstraint struct {
	Expr            LinearExpr
	Op              CompareOp
	RHS             int64
	EnforceLiterals []Literal
}

// MaxEquality is the introspectable form of an AddMaxEquality constraint.
type MaxEquality struct {
	Target IntVar
	Vars   []IntVar
}

// Model is the concrete, mutable constraint-model container: the sole
// mutable object in the pipeline (spec.md §5 "Shared-resource policy"),
// owned exclusively by the solver driver and mutated sequentially by the
// constraint/objective builders.
type Model struct {
	boolVars    []BoolVar
	intVars     []IntVar
	constraints []LinearConstraint
	maxEqs      []MaxEquality
	exactlyOnes [][]Literal
	objective   LinearExpr
	hasObjective bool
	nextID      int
}

// NewModel returns an empty model ready for variable/constraint emission.
func NewModel() *Model {
	return &Model{}
}

// NewBoolVar creates and returns a new boolean decision variable.
func (m *Model) NewBoolVar(name string) BoolVar {
	v := BoolVar{id: m.nextID, name: name}
	m.nextID++
	m.boolVars = append(m.boolVars, v)
	return v
}

// NewIntVar creates and returns a new integer variable bounded by [lo, hi].
func (m *Model) NewIntVar(lo, hi int64, name string) IntVar {
	v := IntVar{id: m.nextID, name: name, lo: lo, hi: hi}
	m.nextID++
	m.intVars = append(m.intVars, v)
	return v
}

// AddLinearLE adds `expr <= rhs`.
func (m *Model) AddLinearLE(expr LinearExpr, rhs int64) Constraint {
	return m.addLinear(expr, LE, rhs)
}

// AddLinearGE adds `expr >= rhs`.
func (m *Model) AddLinearGE(expr LinearExpr, rhs int64) Constraint {
	return m.addLinear(expr, GE, rhs)
}

// AddLinearEQ adds `expr == rhs`.
func (m *Model) AddLinearEQ(expr LinearExpr, rhs int64) Constraint {
	return m.addLinear(expr, EQ, rhs)
}

func (m *Model) addLinear(expr LinearExpr, op CompareOp, rhs int64) Constraint {
	id := len(m.constraints)
	m.constraints = append(m.constraints, LinearConstraint{Expr: expr, Op: op, RHS: rhs})
	return Constraint{model: m, id: id}
}

// AddExactlyOne requires exactly one of the given literals to be true
// (spec.md §4.3.1 order uniqueness).
func (m *Model) AddExactlyOne(lits []Literal) {
	m.exactlyOnes = append(m.exactlyOnes, append([]Literal{}, lits...))
}

// AddMaxEquality constrains target == max(vars...) (spec.md §4.4.2/§4.4.3).
func (m *Model) AddMaxEquality(target IntVar, vars []IntVar) {
	m.maxEqs = append(m.maxEqs, MaxEquality{Target: target, Vars: append([]IntVar{}, vars...)})
}

// BoolVars returns every boolean variable in creation order.
func (m *Model) BoolVars() []BoolVar { return m.boolVars }

// IntVars returns every integer variable in creation order.
func (m *Model) IntVars() []IntVar { return m.intVars }

// LinearConstraints returns every linear constraint in emission order.
func (m *Model) LinearConstraints() []LinearConstraint { return m.constraints }

// ExactlyOnes returns every AddExactlyOne literal group in emission order.
func (m *Model) ExactlyOnes() [][]Literal { return m.exactlyOnes }

// MaxEqualities returns every AddMaxEquality constraint in emission order.
func (m *Model) MaxEqualities() []MaxEquality { return m.maxEqs }

// Objective returns the expression passed to Minimize and whether Minimize
// was ever called.
func (m *Model) Objective() (LinearExpr, bool) { return m.objective, m.hasObjective }

// Minimize sets the objective direction to minimize expr. Calling it more
// than once replaces the prior objective (the composite assembler calls it
// exactly once with the fully-folded composite expression, spec.md §4.5).
func (m *Model) Minimize(expr LinearExpr) {
	m.objective = expr
	m.hasObjective = true
}

// HasObjective reports whether Minimize was ever called (a model with no
// positive-weight sub-objective is pure feasibility, spec.md §4.5).
func (m *Model) HasObjective() bool { return m.hasObjective }

// NumVars returns the number of boolean and integer variables, useful for
// sizing solver-internal arrays.
func (m *Model) NumVars() int { return len(m.boolVars) + len(m.intVars) }

func (m *Model) String() string {
	return fmt.Sprintf("cpsat.Model{bools=%d ints=%d linear=%d exactlyOne=%d maxEq=%d hasObjective=%v}",
		len(m.boolVars), len(m.intVars), len(m.constraints), len(m.exactlyOnes), len(m.maxEqs), m.hasObjective)
}
