// Package ode classifies and solves ordinary differential equations in
// one unknown function of one variable. The entry point is a Solver
// built from a zero-valued residual expression; every method is a pure
// function of that expression, so a Solver can be reused sequentially.
// Concurrent use needs external synchronization.
package ode

import (
	"errors"
	"fmt"

	"github.com/njchilds90/odekit/symexpr"
)

var (
	// ErrNotODE means the unknown function never appears in the input.
	ErrNotODE = errors.New("ode: expression contains no derivative of the unknown function")
	// ErrNotLinear gates the coefficient-type analyzer.
	ErrNotLinear = errors.New("ode: equation is not linear")
	// ErrNotApplicable means the auxiliary equation does not exist for
	// this input (non-linear or variable-coefficient).
	ErrNotApplicable = errors.New("ode: auxiliary equation not applicable")
)

// Solver holds one normalized ODE, its unknown function name, and the
// independent variable name. Immutable once built.
type Solver struct {
	expr    symexpr.Expr
	fn      string
	varName string
	order   int

	expanded symexpr.Expr
}

// New builds a Solver from a residual expression (LHS - RHS, equal to
// zero). The expression must mention the unknown function or one of its
// derivatives in at least one term.
func New(expr symexpr.Expr, fn, varName string) (*Solver, error) {
	if expr == nil {
		return nil, fmt.Errorf("ode: nil expression")
	}
	simplified := expr.Simplify()
	order, ok := symexpr.MaxDerivOrder(simplified, fn)
	if !ok || order == 0 {
		// The unknown must be differentiated somewhere; an algebraic
		// equation in y alone is not an ODE.
		return nil, ErrNotODE
	}
	return &Solver{
		expr:     simplified,
		fn:       fn,
		varName:  varName,
		order:    order,
		expanded: symexpr.Expand(simplified),
	}, nil
}

// NewDefault builds a Solver for the conventional names y(x).
func NewDefault(expr symexpr.Expr) (*Solver, error) { return New(expr, "y", "x") }

func (s *Solver) Expr() symexpr.Expr { return s.expr }
func (s *Solver) Order() int         { return s.order }

// Analysis is the classifier output. Coefficients is indexed by
// derivative order (0..Order) and is nil unless the equation is
// linear: a partial slice for a non-linear equation would misstate
// what it covers. Forcing collects the terms free of the unknown
// function; it is nil alongside Coefficients.
type Analysis struct {
	Order        int
	IsLinear     bool
	Coefficients []symexpr.Expr
	Forcing      symexpr.Expr
}

// termProfile describes one expanded term: the exponent of each
// derivative atom occurring in it, and the remaining cofactor.
type termProfile struct {
	powers map[int]int
	coeff  symexpr.Expr
}

// profileTerms decomposes the expanded expression term by term. ok is
// false when any term contains a derivative atom non-polynomially
// (inside a function argument, an exponent, or under a negative or
// fractional power).
func (s *Solver) profileTerms() ([]termProfile, bool) {
	terms := symexpr.Terms(s.expanded)
	profiles := make([]termProfile, 0, len(terms))
	for _, term := range terms {
		p, ok := s.profileTerm(term)
		if !ok {
			return nil, false
		}
		profiles = append(profiles, p)
	}
	return profiles, true
}

func (s *Solver) profileTerm(term symexpr.Expr) (termProfile, bool) {
	factors := []symexpr.Expr{term}
	if m, ok := term.(*symexpr.Mul); ok {
		factors = m.Factors()
	}
	p := termProfile{powers: map[int]int{}}
	coeffFactors := []symexpr.Expr{}
	for _, f := range factors {
		if d, ok := f.(*symexpr.Deriv); ok && d.FnName() == s.fn {
			p.powers[d.Order()]++
			continue
		}
		if pw, ok := f.(*symexpr.Pow); ok {
			if d, ok2 := pw.Base().(*symexpr.Deriv); ok2 && d.FnName() == s.fn {
				n, isNum := pw.ExpExpr().(*symexpr.Num)
				if !isNum || !n.IsInteger() || n.IsNegative() {
					return termProfile{}, false
				}
				p.powers[d.Order()] += int(n.Rat().Num().Int64())
				continue
			}
		}
		if symexpr.ContainsDeriv(f, s.fn) {
			return termProfile{}, false
		}
		coeffFactors = append(coeffFactors, f)
	}
	switch len(coeffFactors) {
	case 0:
		p.coeff = symexpr.N(1)
	case 1:
		p.coeff = coeffFactors[0]
	default:
		p.coeff = symexpr.MulOf(coeffFactors...)
	}
	return p, true
}

// Analyze computes order, linearity, and per-order coefficients.
func (s *Solver) Analyze() Analysis {
	a := Analysis{Order: s.order}

	profiles, poly := s.profileTerms()
	if !poly {
		// Not polynomial in the derivative atoms. Linearity is decided
		// negatively: some term mixes a derivative into a function or
		// power, which is never linear-admissible.
		a.IsLinear = false
		return a
	}

	a.IsLinear = true
	coeffs := make([]symexpr.Expr, s.order+1)
	for i := range coeffs {
		coeffs[i] = symexpr.N(0)
	}
	forcing := symexpr.Expr(symexpr.N(0))
	for _, p := range profiles {
		switch len(p.powers) {
		case 0:
			forcing = symexpr.AddOf(forcing, p.coeff)
		case 1:
			for order, exp := range p.powers {
				if exp != 1 {
					a.IsLinear = false
				} else {
					coeffs[order] = symexpr.AddOf(coeffs[order], p.coeff)
				}
			}
		default:
			a.IsLinear = false
		}
	}
	if !a.IsLinear {
		// A degree-1 slice would cover only part of the equation, which
		// is worse than reporting coefficients unavailable.
		return a
	}
	a.Coefficients = coeffs
	a.Forcing = forcing.Simplify()
	return a
}

// homogeneousPart returns the sum of expanded terms that mention the
// unknown function; the forcing terms are discarded.
func (s *Solver) homogeneousPart() symexpr.Expr {
	kept := []symexpr.Expr{}
	for _, term := range symexpr.Terms(s.expanded) {
		if symexpr.ContainsDeriv(term, s.fn) {
			kept = append(kept, term)
		}
	}
	if len(kept) == 0 {
		return symexpr.N(0)
	}
	return symexpr.AddOf(kept...)
}
