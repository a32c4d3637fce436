package gokandosolver

import (
	"fmt"

	mk "github.com/gitrdm/gokanlogic/pkg/minikanren"

	"github.com/aps-engine/aps/pkg/cpsat"
)

// varRef locates one cpsat decision variable inside the gokando model.
// gokando domains are 1-indexed (every value >= 1, never 0 or negative), so
// a BoolVar's {false,true} pair is carried as domain {1,2} and an IntVar's
// [lo,hi] range as domain [1, hi-lo+1]; bias recovers the real value:
// actual = mkValue + bias.
type varRef struct {
	fd   *mk.FDVariable
	bias int64
}

// translation is a one-shot cpsat.Model -> gokando minikanren.Model compiler.
// It owns the gokando model for the lifetime of one Solve call; nothing here
// is reused across solves.
type translation struct {
	model      *mk.Model
	one        *mk.FDVariable // singleton domain {1}, the model's literal "1"
	bools      map[int]varRef
	ints       map[int]varRef
	objTotal   *mk.FDVariable
	infeasible bool
}

// newTranslation builds the gokando model equivalent to m: one FDVariable per
// cpsat variable, then every constraint family in turn. A constraint found to
// be unsatisfiable for any assignment (a constant contradiction, or an
// enforce-literal-free inequality whose restricted range is empty) sets
// infeasible and stops translating further constraints, since the model is
// infeasible regardless of what search would do with it.
func newTranslation(m *cpsat.Model) (*translation, error) {
	tr := &translation{
		model: mk.NewModel(),
		bools: make(map[int]varRef),
		ints:  make(map[int]varRef),
	}
	tr.one = tr.model.NewVariableWithName(mk.NewBitSetDomain(1), "__one")

	for _, b := range m.BoolVars() {
		fd := tr.model.NewVariableWithName(mk.NewBitSetDomain(2), b.Name())
		tr.bools[b.ID()] = varRef{fd: fd, bias: -1}
	}
	for _, v := range m.IntVars() {
		lo, hi := v.Bounds()
		size := hi - lo + 1
		if size < 1 {
			return nil, fmt.Errorf("gokandosolver: int var %q has empty domain [%d,%d]", v.Name(), lo, hi)
		}
		fd := tr.model.NewVariableWithName(mk.NewBitSetDomain(int(size)), v.Name())
		tr.ints[v.ID()] = varRef{fd: fd, bias: lo - 1}
	}

	for _, lits := range m.ExactlyOnes() {
		if err := tr.addExactlyOne(lits); err != nil {
			return nil, err
		}
		if tr.infeasible {
			return tr, nil
		}
	}
	for _, lc := range m.LinearConstraints() {
		if err := tr.addLinearConstraint(lc); err != nil {
			return nil, err
		}
		if tr.infeasible {
			return tr, nil
		}
	}
	for _, me := range m.MaxEqualities() {
		if err := tr.addMaxEquality(me); err != nil {
			return nil, err
		}
		if tr.infeasible {
			return tr, nil
		}
	}

	if obj, ok := m.Objective(); ok {
		total, err := tr.buildFreeTotal(obj)
		if err != nil {
			return nil, err
		}
		tr.objTotal = total
	}

	return tr, nil
}

// rawTerms maps a cpsat.LinearExpr onto gokando's 1-indexed domain space.
// Writing actual_i = mkValue_i + bias_i for every term, the expression's true
// value factors as:
//
//	E = Σ coeff_i*actual_i + Offset = Σ coeff_i*mkValue_i + (Offset + Σ coeff_i*bias_i)
//	  = rawSum + k
//
// rawSum is what a gokando LinearSum can compute directly (it only ever sees
// positive mkValues); k is a plain integer known at translation time. minRaw
// and maxRaw bound rawSum given each variable's domain extremes.
func (tr *translation) rawTerms(e cpsat.LinearExpr) (vars []*mk.FDVariable, coeffs []int, k, minRaw, maxRaw int64, err error) {
	k = e.Offset
	for _, t := range e.Terms {
		var ref varRef
		var ok bool
		if t.IsInt {
			ref, ok = tr.ints[t.VarID]
		} else {
			ref, ok = tr.bools[t.VarID]
		}
		if !ok {
			return nil, nil, 0, 0, 0, fmt.Errorf("gokandosolver: unknown variable id %d in linear expression", t.VarID)
		}
		vars = append(vars, ref.fd)
		coeffs = append(coeffs, int(t.Coeff))
		k += t.Coeff * ref.bias

		size := int64(ref.fd.Domain().MaxValue())
		if t.Coeff >= 0 {
			minRaw += t.Coeff * 1
			maxRaw += t.Coeff * size
		} else {
			minRaw += t.Coeff * size
			maxRaw += t.Coeff * 1
		}
	}
	return vars, coeffs, k, minRaw, maxRaw, nil
}

// buildRestrictedTotal ties vars/coeffs to a fresh total variable via
// LinearSum and pre-restricts that total's domain to exactly the mkValue-space
// range satisfying `rawSum OP (rhs-k)` — so the LinearSum's own bounds-consistent
// propagation enforces the comparison without a separate compare constraint.
// Because gokando domains start at 1, rawSum is first shifted by a constant
// (added as a coeff*tr.one term) so it is always representable.
// ok is false, with no error, when the restriction is unsatisfiable for any
// assignment (the constraint is a model-wide contradiction).
func (tr *translation) buildRestrictedTotal(vars []*mk.FDVariable, coeffs []int, k, rhs int64, op cpsat.CompareOp, minRaw, maxRaw int64) (bool, error) {
	shift := int64(0)
	if minRaw < 1 {
		shift = 1 - minRaw
	}
	totalMax := maxRaw + shift
	if totalMax < 1 {
		totalMax = 1
	}

	rhsPrime := rhs - k + shift

	lo, hi := int64(1), totalMax
	switch op {
	case cpsat.LE:
		if rhsPrime < hi {
			hi = rhsPrime
		}
	case cpsat.GE:
		if rhsPrime > lo {
			lo = rhsPrime
		}
	case cpsat.EQ:
		lo, hi = rhsPrime, rhsPrime
	}
	if lo < 1 {
		lo = 1
	}
	if hi > totalMax {
		hi = totalMax
	}
	if lo > hi {
		return false, nil
	}

	values := make([]int, 0, hi-lo+1)
	for v := lo; v <= hi; v++ {
		values = append(values, int(v))
	}
	total := tr.model.NewVariable(mk.NewBitSetDomainFromValues(int(totalMax), values))

	sumVars, sumCoeffs := vars, coeffs
	if shift != 0 {
		sumVars = append(append([]*mk.FDVariable{}, vars...), tr.one)
		sumCoeffs = append(append([]int{}, coeffs...), int(shift))
	}
	ls, err := mk.NewLinearSum(sumVars, sumCoeffs, total)
	if err != nil {
		return false, fmt.Errorf("gokandosolver: LinearSum: %w", err)
	}
	tr.model.AddConstraint(ls)
	return true, nil
}

// buildFreeTotal is buildRestrictedTotal's unconditional counterpart for the
// objective: the total variable's domain spans the expression's whole
// achievable range rather than being pre-clipped to a comparison, since there
// is nothing here to compare against — SolveOptimalWithOptions searches this
// variable's domain directly.
func (tr *translation) buildFreeTotal(e cpsat.LinearExpr) (*mk.FDVariable, error) {
	vars, coeffs, _, minRaw, maxRaw, err := tr.rawTerms(e)
	if err != nil {
		return nil, err
	}
	if len(vars) == 0 {
		return tr.one, nil
	}
	shift := int64(0)
	if minRaw < 1 {
		shift = 1 - minRaw
	}
	totalMax := maxRaw + shift
	if totalMax < 1 {
		totalMax = 1
	}
	total := tr.model.NewVariable(mk.NewBitSetDomain(int(totalMax)))

	sumVars, sumCoeffs := vars, coeffs
	if shift != 0 {
		sumVars = append(append([]*mk.FDVariable{}, vars...), tr.one)
		sumCoeffs = append(append([]int{}, coeffs...), int(shift))
	}
	ls, err := mk.NewLinearSum(sumVars, sumCoeffs, total)
	if err != nil {
		return nil, fmt.Errorf("gokandosolver: objective LinearSum: %w", err)
	}
	tr.model.AddConstraint(ls)
	return total, nil
}

// addExactlyOne reduces "exactly one of lits is true" to the equality
// Σ ind(lit_i) == 1, reusing buildRestrictedTotal.
func (tr *translation) addExactlyOne(lits []cpsat.Literal) error {
	expr := cpsat.NewLinearExpr()
	for _, lit := range lits {
		if lit.Negated {
			expr = expr.AddConstant(1).AddBool(-1, lit.Var)
		} else {
			expr = expr.AddBool(1, lit.Var)
		}
	}
	vars, coeffs, k, minRaw, maxRaw, err := tr.rawTerms(expr)
	if err != nil {
		return err
	}
	if len(vars) == 0 {
		if k != 1 {
			tr.infeasible = true
		}
		return nil
	}
	ok, err := tr.buildRestrictedTotal(vars, coeffs, k, 1, cpsat.EQ, minRaw, maxRaw)
	if err != nil {
		return err
	}
	if !ok {
		tr.infeasible = true
	}
	return nil
}

// addLinearConstraint translates one cpsat.LinearConstraint. Constraints
// carrying OnlyEnforceIf literals are first relaxed via relaxWithBigM (a
// standard MILP indicator linearization) into an unconditional one over the
// same translation path, sidestepping gokando's ReifiedConstraint: its
// generic negation propagation only has full strength for *Arithmetic,
// *Inequality, and *AllDifferent (per reification.go), and falls back to a
// weak search-only check for anything wrapping a *LinearSum — the big-M
// relaxation keeps the propagation strength of the underlying LinearSum
// intact in both branches instead of trading it away.
func (tr *translation) addLinearConstraint(lc cpsat.LinearConstraint) error {
	expr, rhs := lc.Expr, lc.RHS
	if len(lc.EnforceLiterals) > 0 {
		relaxed, relaxedRHS, err := tr.relaxWithBigM(lc)
		if err != nil {
			return err
		}
		expr, rhs = relaxed, relaxedRHS
	}

	vars, coeffs, k, minRaw, maxRaw, err := tr.rawTerms(expr)
	if err != nil {
		return err
	}
	if len(vars) == 0 {
		if !compareConst(k, lc.Op, rhs) {
			tr.infeasible = true
		}
		return nil
	}
	ok, err := tr.buildRestrictedTotal(vars, coeffs, k, rhs, lc.Op, minRaw, maxRaw)
	if err != nil {
		return err
	}
	if !ok {
		tr.infeasible = true
	}
	return nil
}

// relaxWithBigM returns an expression/rhs pair equivalent to `lc.Expr lc.Op
// lc.RHS` but relaxed to hold trivially whenever any enforcement literal is
// false. For LE this is `expr - Σ M*(1-ind_i) <= rhs`; for GE it is
// `expr + Σ M*(1-ind_i) >= rhs`; ind_i is the literal's 0/1 truth value (1-b
// for a negated literal). M is sized from the expression's own achievable
// range so the relaxed branch is always trivially true.
func (tr *translation) relaxWithBigM(lc cpsat.LinearConstraint) (cpsat.LinearExpr, int64, error) {
	if lc.Op == cpsat.EQ {
		return cpsat.LinearExpr{}, 0, fmt.Errorf("gokandosolver: OnlyEnforceIf on an EQ constraint is not supported")
	}
	_, _, k, minRaw, maxRaw, err := tr.rawTerms(lc.Expr)
	if err != nil {
		return cpsat.LinearExpr{}, 0, err
	}
	minActual, maxActual := minRaw+k, maxRaw+k

	var bigM int64
	if lc.Op == cpsat.LE {
		bigM = maxActual - lc.RHS + 1
	} else {
		bigM = lc.RHS - minActual + 1
	}
	if bigM < 1 {
		bigM = 1
	}

	expr := lc.Expr
	for _, lit := range lc.EnforceLiterals {
		if lc.Op == cpsat.LE {
			if lit.Negated {
				expr = expr.AddBool(-bigM, lit.Var)
			} else {
				expr = expr.AddConstant(-bigM).AddBool(bigM, lit.Var)
			}
		} else {
			if lit.Negated {
				expr = expr.AddBool(bigM, lit.Var)
			} else {
				expr = expr.AddConstant(bigM).AddBool(-bigM, lit.Var)
			}
		}
	}
	return expr, lc.RHS, nil
}

func compareConst(lhs int64, op cpsat.CompareOp, rhs int64) bool {
	switch op {
	case cpsat.LE:
		return lhs <= rhs
	case cpsat.GE:
		return lhs >= rhs
	default:
		return lhs == rhs
	}
}

// addMaxEquality translates `target == max(vars...)` the way CP modeling does
// it without a dedicated global Max constraint (gokando has none; only
// Cumulative/NoOverlap for scheduling): target upper-bounds every operand via
// Inequality(GreaterEqual) and, symmetrically, equals at least one operand
// exactly. The second half is built from EqualityReified, the exact
// "equality iff boolean" primitive spec.md §9 requires any solver choice to
// provide — one reification per operand, true iff target equals it, with a
// LinearSum enforcing that at least one of them holds.
func (tr *translation) addMaxEquality(me cpsat.MaxEquality) error {
	targetRef, ok := tr.ints[me.Target.ID()]
	if !ok {
		return fmt.Errorf("gokandosolver: max-equality target %q not registered", me.Target.Name())
	}

	if len(me.Vars) == 0 {
		ok, err := tr.buildRestrictedTotal([]*mk.FDVariable{targetRef.fd}, []int{1}, targetRef.bias, 0, cpsat.EQ,
			1, int64(targetRef.fd.Domain().MaxValue()))
		if err != nil {
			return err
		}
		if !ok {
			tr.infeasible = true
		}
		return nil
	}

	for _, v := range me.Vars {
		ref, ok := tr.ints[v.ID()]
		if !ok {
			return fmt.Errorf("gokandosolver: max-equality operand %q not registered", v.Name())
		}
		ineq, err := mk.NewInequality(targetRef.fd, ref.fd, mk.GreaterEqual)
		if err != nil {
			return fmt.Errorf("gokandosolver: Inequality: %w", err)
		}
		tr.model.AddConstraint(ineq)
	}

	reifiedBools := make([]*mk.FDVariable, 0, len(me.Vars))
	for i, v := range me.Vars {
		ref := tr.ints[v.ID()]
		b := tr.model.NewVariableWithName(mk.NewBitSetDomain(2), fmt.Sprintf("__max_reif_%d_%d", me.Target.ID(), i))
		er, err := mk.NewEqualityReified(targetRef.fd, ref.fd, b)
		if err != nil {
			return fmt.Errorf("gokandosolver: EqualityReified: %w", err)
		}
		tr.model.AddConstraint(er)
		reifiedBools = append(reifiedBools, b)
	}

	n := len(reifiedBools)
	coeffs := make([]int, n)
	for i := range coeffs {
		coeffs[i] = 1
	}
	values := make([]int, 0, n)
	for v := n + 1; v <= 2*n; v++ {
		values = append(values, v)
	}
	atLeastOneTotal := tr.model.NewVariable(mk.NewBitSetDomainFromValues(2*n, values))
	ls, err := mk.NewLinearSum(reifiedBools, coeffs, atLeastOneTotal)
	if err != nil {
		return fmt.Errorf("gokandosolver: max-equality disjunction LinearSum: %w", err)
	}
	tr.model.AddConstraint(ls)
	return nil
}

// decode reads a gokando solution array (one value per model variable, in
// FDVariable-ID order) back into a cpsat.Solution, then independently
// recomputes the objective from the decoded actual values — the gokando
// objective total lives in a shifted mkValue space that only matters for
// driving search, never for reporting.
func (tr *translation) decode(solArr []int, m *cpsat.Model) *solution {
	sol := &solution{
		boolVals: make(map[int]bool, len(tr.bools)),
		intVals:  make(map[int]int64, len(tr.ints)),
	}
	for id, ref := range tr.bools {
		actual := int64(solArr[ref.fd.ID()]) + ref.bias
		sol.boolVals[id] = actual == 1
	}
	for id, ref := range tr.ints {
		sol.intVals[id] = int64(solArr[ref.fd.ID()]) + ref.bias
	}
	if obj, ok := m.Objective(); ok {
		sol.objValue = evalExpr(obj, sol.boolVals, sol.intVals)
	}
	return sol
}

// evalExpr mirrors bnbsolver's evaluator (pkg/cpsat/bnbsolver/bnbsolver.go)
// over a fully-decoded assignment.
func evalExpr(e cpsat.LinearExpr, boolVals map[int]bool, intVals map[int]int64) float64 {
	sum := float64(e.Offset)
	for _, t := range e.Terms {
		if t.IsInt {
			sum += float64(t.Coeff) * float64(intVals[t.VarID])
			continue
		}
		if boolVals[t.VarID] {
			sum += float64(t.Coeff)
		}
	}
	return sum
}
