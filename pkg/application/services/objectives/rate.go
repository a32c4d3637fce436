// Package objectives builds the three sub-objective rates of spec.md §4.4
// (tardiness, JIT deviation, workload balance) and assembles them into the
// model's single integer-linear objective (§4.5). Grounded in the
// teacher's dependency, github.com/shopspring/decimal: every rational rate
// coefficient is carried as a decimal.Decimal until RateExpr.ToLinearExpr
// performs the single intentional fold to int64 (§9 "Float→int
// discipline").
package objectives

import (
	"github.com/aps-engine/aps/pkg/cpsat"
	"github.com/shopspring/decimal"
)

// BoolTerm is a `coeff * BoolVar` summand with a rational coefficient.
type BoolTerm struct {
	Var   cpsat.BoolVar
	Coeff decimal.Decimal
}

// IntTerm is a `coeff * IntVar` summand with a rational coefficient.
type IntTerm struct {
	Var   cpsat.IntVar
	Coeff decimal.Decimal
}

// RateExpr is a linear combination of decision variables with rational
// coefficients, representing a sub-objective's rate before the composite
// assembler folds it into the model's integer objective.
type RateExpr struct {
	BoolTerms []BoolTerm
	IntTerms  []IntTerm
	Constant  decimal.Decimal
}

// NewRateExpr returns the zero rate expression.
func NewRateExpr() RateExpr {
	return RateExpr{Constant: decimal.Zero}
}

// AddBool appends coeff*v and returns the updated expression.
func (r RateExpr) AddBool(coeff decimal.Decimal, v cpsat.BoolVar) RateExpr {
	r.BoolTerms = append(append([]BoolTerm{}, r.BoolTerms...), BoolTerm{Var: v, Coeff: coeff})
	return r
}

// AddInt appends coeff*v and returns the updated expression.
func (r RateExpr) AddInt(coeff decimal.Decimal, v cpsat.IntVar) RateExpr {
	r.IntTerms = append(append([]IntTerm{}, r.IntTerms...), IntTerm{Var: v, Coeff: coeff})
	return r
}

// Scale multiplies every term (including the constant) by factor.
func (r RateExpr) Scale(factor decimal.Decimal) RateExpr {
	out := NewRateExpr()
	out.Constant = r.Constant.Mul(factor)
	for _, t := range r.BoolTerms {
		out = out.AddBool(t.Coeff.Mul(factor), t.Var)
	}
	for _, t := range r.IntTerms {
		out = out.AddInt(t.Coeff.Mul(factor), t.Var)
	}
	return out
}

// SumRates concatenates the terms of every rate expression given.
func SumRates(rates ...RateExpr) RateExpr {
	out := NewRateExpr()
	for _, r := range rates {
		out.Constant = out.Constant.Add(r.Constant)
		out.BoolTerms = append(out.BoolTerms, r.BoolTerms...)
		out.IntTerms = append(out.IntTerms, r.IntTerms...)
	}
	return out
}

// ToLinearExpr folds every rational coefficient into the integer scale M,
// rounding each term to the nearest integer. This is the single point at
// which decimal.Decimal coefficients become int64 (spec.md §4.5); every
// sub-objective builder stays in exact rational arithmetic up to this call.
func (r RateExpr) ToLinearExpr(scale int64) cpsat.LinearExpr {
	expr := cpsat.NewLinearExpr()
	m := decimal.NewFromInt(scale)
	for _, t := range r.BoolTerms {
		coeff := t.Coeff.Mul(m).Round(0).IntPart()
		if coeff != 0 {
			expr = expr.AddBool(coeff, t.Var)
		}
	}
	for _, t := range r.IntTerms {
		coeff := t.Coeff.Mul(m).Round(0).IntPart()
		if coeff != 0 {
			expr = expr.AddInt(coeff, t.Var)
		}
	}
	if c := r.Constant.Mul(m).Round(0).IntPart(); c != 0 {
		expr = expr.AddConstant(c)
	}
	return expr
}
