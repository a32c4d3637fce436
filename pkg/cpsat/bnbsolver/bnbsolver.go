// Package bnbsolver is an alternative implementation of cpsat.Solver (the
// CLI wires gokandosolver): a deterministic branch-and-bound search over the model's boolean
// variables, with interval constraint propagation standing in for a real
// CP-SAT engine's clause learning and LP relaxation. It targets the
// instance sizes the original scenario generators produce (low hundreds of
// orders, low tens of factories, per
// _examples/original_source/utils/generate_data.py) rather than
// industrial-scale CP-SAT workloads.
package bnbsolver

import (
	"context"
	"math"
	"time"

	"github.com/aps-engine/aps/pkg/cpsat"
)

// Solver is a cpsat.Solver. The worker count set by SetNumWorkers is
// stored but not used by the search, which runs on the calling goroutine.
type Solver struct {
	timeLimit  time.Duration
	numWorkers int
}

// New returns a Solver with the spec.md §4.6 defaults (60s, 8 workers).
func New() *Solver {
	return &Solver{timeLimit: 60 * time.Second, numWorkers: 8}
}

func (s *Solver) SetTimeLimit(d time.Duration) { s.timeLimit = d }
func (s *Solver) SetNumWorkers(n int) {
	if n > 0 {
		s.numWorkers = n
	}
}

var _ cpsat.Solver = (*Solver)(nil)

// solution is the concrete cpsat.Solution returned on a consumable status.
type solution struct {
	boolVals map[int]bool
	intVals  map[int]int64
	objValue float64
}

func (sol *solution) Value(v cpsat.BoolVar) bool    { return sol.boolVals[v.ID()] }
func (sol *solution) IntValue(v cpsat.IntVar) int64 { return sol.intVals[v.ID()] }
func (sol *solution) ObjectiveValue() float64       { return sol.objValue }

func boolVarID(v cpsat.BoolVar) int { return v.ID() }
func intVarID(v cpsat.IntVar) int   { return v.ID() }

// Solve runs the branch-and-bound search to completion, to the context
// deadline, or to the configured time limit, whichever comes first.
func (s *Solver) Solve(ctx context.Context, m *cpsat.Model) (cpsat.Solution, cpsat.Status) {
	deadline := time.Now().Add(s.timeLimit)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	sr := newSearch(m, deadline)
	sr.run()

	switch {
	case sr.best == nil && sr.exhausted && !sr.timedOut:
		return nil, cpsat.StatusInfeasible
	case sr.best == nil:
		return nil, cpsat.StatusUnknown
	case sr.exhausted && !sr.timedOut:
		return sr.best, cpsat.StatusOptimal
	default:
		return sr.best, cpsat.StatusFeasible
	}
}

// search holds one branch-and-bound run over a fixed Model.
type search struct {
	model    *cpsat.Model
	bools    []cpsat.BoolVar
	ints     []cpsat.IntVar
	boolPos  map[int]int // BoolVar id position within bools, derived by matching Name+index
	deadline time.Time

	objective  cpsat.LinearExpr
	hasObj     bool

	best      *solution
	bestCost  float64
	exhausted bool
	timedOut  bool
}

func newSearch(m *cpsat.Model, deadline time.Time) *search {
	obj, hasObj := m.Objective()
	return &search{
		model:     m,
		bools:     m.BoolVars(),
		ints:      m.IntVars(),
		deadline:  deadline,
		objective: obj,
		hasObj:    hasObj,
		bestCost:  math.Inf(1),
	}
}

// assignment is a partial (possibly full) boolean assignment indexed by
// position in search.bools; nil entries are unassigned.
type assignment struct {
	values []*bool
}

func newAssignment(n int) assignment {
	return assignment{values: make([]*bool, n)}
}

func (a assignment) clone() assignment {
	out := newAssignment(len(a.values))
	copy(out.values, a.values)
	return out
}

func (a assignment) set(pos int, v bool) assignment {
	out := a.clone()
	out.values[pos] = &v
	return out
}

func (s *search) run() {
	if len(s.bools) == 0 {
		s.tryLeaf(newAssignment(0))
		s.exhausted = true
		return
	}
	s.exhausted = s.dfs(newAssignment(len(s.bools)), 0)
}

// dfs explores boolean assignments in deterministic creation order, true
// before false is never assumed — false is tried first so a "nothing
// assigned" baseline is reachable quickly, matching the original's
// observed preference for minimal activation in the balance objective.
func (s *search) dfs(a assignment, pos int) (exhaustedHere bool) {
	if time.Now().After(s.deadline) {
		s.timedOut = true
		return false
	}
	if pos == len(s.bools) {
		s.tryLeaf(a)
		return true
	}
	if !s.feasiblePartial(a) {
		return true // pruned subtree counts as fully explored (infeasible)
	}
	lowerBound := s.lowerBound(a)
	if s.hasObj && lowerBound >= s.bestCost {
		return true // bound prune
	}

	full := true
	for _, v := range []bool{false, true} {
		next := a.set(pos, v)
		if !s.dfs(next, pos+1) {
			full = false
		}
		if s.timedOut {
			return false
		}
	}
	return full
}

// feasiblePartial performs interval-bound pruning: for every unconditional
// linear constraint (or one whose enforcement literals are already fully
// decided and satisfied), check whether the best-case remaining sum can
// still satisfy it.
func (s *search) feasiblePartial(a assignment) bool {
	for _, lc := range s.model.LinearConstraints() {
		active, known := s.enforcementState(a, lc.EnforceLiterals)
		if !known || !active {
			continue
		}
		lo, hi := s.exprBounds(lc.Expr, a)
		switch lc.Op {
		case cpsat.LE:
			if lo > lc.RHS {
				return false
			}
		case cpsat.GE:
			if hi < lc.RHS {
				return false
			}
		case cpsat.EQ:
			if lo > lc.RHS || hi < lc.RHS {
				return false
			}
		}
	}
	for _, eo := range s.model.ExactlyOnes() {
		trueCount, unknownCount := 0, 0
		for _, lit := range eo {
			v, ok := s.litValue(a, lit)
			if !ok {
				unknownCount++
				continue
			}
			if v {
				trueCount++
			}
		}
		if trueCount > 1 {
			return false
		}
		if trueCount == 0 && unknownCount == 0 {
			return false
		}
	}
	return true
}

// enforcementState reports whether an enforcement literal set is fully
// decided (known=true) and, if so, whether it holds (active).
func (s *search) enforcementState(a assignment, lits []cpsat.Literal) (active, known bool) {
	if len(lits) == 0 {
		return true, true
	}
	for _, lit := range lits {
		v, ok := s.litValue(a, lit)
		if !ok {
			return false, false
		}
		if !v {
			return false, true
		}
	}
	return true, true
}

func (s *search) litValue(a assignment, lit cpsat.Literal) (bool, bool) {
	pos, ok := s.positionOf(lit.Var)
	if !ok {
		return false, false
	}
	val := a.values[pos]
	if val == nil {
		return false, false
	}
	result := *val
	if lit.Negated {
		result = !result
	}
	return result, true
}

// positionOf finds the search.bools index of a BoolVar by identity. Bool
// vars are compared by value (their model id and name).
func (s *search) positionOf(b cpsat.BoolVar) (int, bool) {
	for i, cand := range s.bools {
		if cand == b {
			return i, true
		}
	}
	return 0, false
}

// exprBounds returns the [min,max] range a LinearExpr can take given the
// current partial boolean assignment; unassigned booleans contribute their
// [0,coeff] or [coeff,0] range depending on sign, integer variables
// contribute their full declared domain (they are resolved only at leaves).
func (s *search) exprBounds(e cpsat.LinearExpr, a assignment) (lo, hi int64) {
	lo, hi = e.Offset, e.Offset
	for _, t := range e.Terms {
		if !t.IsInt {
			pos, ok := s.boolTermPosition(t.VarID)
			if ok && a.values[pos] != nil {
				v := int64(0)
				if *a.values[pos] {
					v = 1
				}
				lo += t.Coeff * v
				hi += t.Coeff * v
				continue
			}
			// unassigned: ranges over {0,1}
			if t.Coeff >= 0 {
				hi += t.Coeff
			} else {
				lo += t.Coeff
			}
			continue
		}
		ilo, ihi := s.intBoundsByID(t.VarID)
		if t.Coeff >= 0 {
			lo += t.Coeff * ilo
			hi += t.Coeff * ihi
		} else {
			lo += t.Coeff * ihi
			hi += t.Coeff * ilo
		}
	}
	return lo, hi
}

func (s *search) boolTermPosition(id int) (int, bool) {
	for i, b := range s.bools {
		if boolVarID(b) == id {
			return i, true
		}
	}
	return 0, false
}

func (s *search) intBoundsByID(id int) (int64, int64) {
	for _, v := range s.ints {
		if intVarID(v) == id {
			lo, hi := v.Bounds()
			return lo, hi
		}
	}
	return 0, 0
}

// lowerBound computes a best-case objective value for the current partial
// assignment (used for branch-and-bound pruning). Because integer
// auxiliary variables here are fully determined by equality constraints
// once the booleans are fixed, using their declared domain bounds is a
// valid (if loose) relaxation.
func (s *search) lowerBound(a assignment) float64 {
	if !s.hasObj {
		return math.Inf(-1)
	}
	lo, _ := s.exprBounds(s.objective, a)
	return float64(lo)
}

// tryLeaf resolves integer variables for a full boolean assignment via
// fixed-point interval propagation, checks full feasibility, and updates
// the incumbent if this leaf improves on it.
func (s *search) tryLeaf(a assignment) {
	intDomain := make(map[int][2]int64, len(s.ints))
	for _, v := range s.ints {
		lo, hi := v.Bounds()
		intDomain[intVarID(v)] = [2]int64{lo, hi}
	}

	for iter := 0; iter < 8; iter++ {
		changed := false
		for _, lc := range s.model.LinearConstraints() {
			active, known := s.enforcementState(a, lc.EnforceLiterals)
			if known && !active {
				continue
			}
			if tightenIntDomains(lc, a, s, intDomain) {
				changed = true
			}
		}
		for _, me := range s.model.MaxEqualities() {
			if tightenMaxEquality(me, intDomain) {
				changed = true
			}
		}
		if !changed {
			break
		}
	}

	intVals := make(map[int]int64, len(s.ints))
	for id, dom := range intDomain {
		if dom[0] > dom[1] {
			return // domain wipeout: infeasible leaf
		}
		intVals[id] = dom[0]
	}

	boolVals := make(map[int]bool, len(s.bools))
	for i, b := range s.bools {
		v := false
		if a.values[i] != nil {
			v = *a.values[i]
		}
		boolVals[boolVarID(b)] = v
	}

	if !s.checkFullFeasibility(boolVals, intVals) {
		return
	}

	cost := 0.0
	if s.hasObj {
		cost = evalExpr(s.objective, boolVals, intVals)
	}
	if s.best == nil || cost < s.bestCost {
		s.best = &solution{boolVals: boolVals, intVals: intVals, objValue: cost}
		s.bestCost = cost
	}
}

func (s *search) checkFullFeasibility(boolVals map[int]bool, intVals map[int]int64) bool {
	for _, lc := range s.model.LinearConstraints() {
		active := true
		for _, lit := range lc.EnforceLiterals {
			v := boolVals[boolVarID(lit.Var)]
			if lit.Negated {
				v = !v
			}
			if !v {
				active = false
				break
			}
		}
		if !active {
			continue
		}
		val := evalExpr(lc.Expr, boolVals, intVals)
		switch lc.Op {
		case cpsat.LE:
			if val > float64(lc.RHS) {
				return false
			}
		case cpsat.GE:
			if val < float64(lc.RHS) {
				return false
			}
		case cpsat.EQ:
			if val != float64(lc.RHS) {
				return false
			}
		}
	}
	for _, me := range s.model.MaxEqualities() {
		max := int64(math.MinInt64)
		for _, v := range me.Vars {
			if iv := intVals[intVarID(v)]; iv > max {
				max = iv
			}
		}
		if len(me.Vars) == 0 {
			max = 0
		}
		if intVals[intVarID(me.Target)] != max {
			return false
		}
	}
	for _, eo := range s.model.ExactlyOnes() {
		count := 0
		for _, lit := range eo {
			v := boolVals[boolVarID(lit.Var)]
			if lit.Negated {
				v = !v
			}
			if v {
				count++
			}
		}
		if count != 1 {
			return false
		}
	}
	return true
}

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

// tightenIntDomains fixes the value of an int variable that is the only
// int term (coefficient nonzero) of an equality, given the current bool
// assignment. Inequalities and equalities with several int terms are left
// untouched. Returns true if any domain changed.
func tightenIntDomains(lc cpsat.LinearConstraint, a assignment, s *search, dom map[int][2]int64) bool {
	// Collect fixed contribution from bools + offset, and the list of
	// int terms still free.
	fixed := lc.Expr.Offset
	type freeTerm struct {
		id    int
		coeff int64
	}
	var free []freeTerm
	for _, t := range lc.Expr.Terms {
		if !t.IsInt {
			pos, ok := s.boolTermPosition(t.VarID)
			v := false
			if ok && a.values[pos] != nil {
				v = *a.values[pos]
			}
			if v {
				fixed += t.Coeff
			}
			continue
		}
		free = append(free, freeTerm{id: t.VarID, coeff: t.Coeff})
	}
	if len(free) != 1 || lc.Op != cpsat.EQ {
		return false
	}
	ft := free[0]
	if ft.coeff == 0 {
		return false
	}
	// fixed + coeff*x == rhs  =>  x == (rhs - fixed) / coeff
	num := lc.RHS - fixed
	if num%ft.coeff != 0 {
		return false
	}
	x := num / ft.coeff
	cur := dom[ft.id]
	if x < cur[0] || x > cur[1] {
		dom[ft.id] = [2]int64{1, 0} // wipeout
		return true
	}
	if cur[0] == x && cur[1] == x {
		return false
	}
	dom[ft.id] = [2]int64{x, x}
	return true
}

func tightenMaxEquality(me cpsat.MaxEquality, dom map[int][2]int64) bool {
	hi := int64(math.MinInt64)
	allSingleton := true
	for _, v := range me.Vars {
		d := dom[intVarID(v)]
		if d[0] != d[1] {
			allSingleton = false
		}
		if d[1] > hi {
			hi = d[1]
		}
	}
	if len(me.Vars) == 0 {
		hi = 0
	}
	targetID := intVarID(me.Target)
	cur := dom[targetID]
	changed := false
	if cur[1] != hi {
		dom[targetID] = [2]int64{cur[0], hi}
		cur = dom[targetID]
		changed = true
	}
	if allSingleton && (cur[0] != hi) {
		dom[targetID] = [2]int64{hi, hi}
		changed = true
	}
	return changed
}
