package ode

import (
	"math"
	"math/big"
	"math/cmplx"
	"strconv"

	"github.com/njchilds90/odekit/symexpr"
)

// snapDenom bounds the denominators accepted when turning a numeric
// root back into an exact rational for display.
const snapDenom = 1_000_000

// GeneralSolution attempts a closed-form general solution
// y(x) = f(x; C1, ..., Ck). The boolean result is false on the routine
// "no closed form found" outcome; it is never an error.
//
// Strategies, in order: the solution family of a homogeneous
// constant-coefficient linear ODE from its classified roots; direct
// integration of first-order y' = R(x); separation of an autonomous
// first-order y' = g(y); and the integrating factor for first-order
// linear equations. Anything else falls through to numerical solving.
func (s *Solver) GeneralSolution() (symexpr.Expr, bool) {
	a := s.Analyze()

	if a.IsLinear && isZero(a.Forcing) {
		if ct, err := s.CoefficientType(); err == nil && ct == CoeffConstant {
			if sol, ok := s.rootFamily(); ok {
				return sol, true
			}
		}
	}
	if s.order == 1 {
		if sol, ok := s.firstOrder(a); ok {
			return sol, true
		}
	}
	return nil, false
}

func isZero(e symexpr.Expr) bool {
	if e == nil {
		return false
	}
	n, ok := e.(*symexpr.Num)
	return ok && n.IsZero()
}

// constNamer hands out C1, C2, ... integration constants.
type constNamer int

func (c *constNamer) next() symexpr.Expr {
	*c++
	return symexpr.S("C" + strconv.Itoa(int(*c)))
}

// rootFamily builds the solution family of a homogeneous
// constant-coefficient linear ODE from the auxiliary roots: a real root
// a of multiplicity m contributes x^k*exp(a*x) for k < m; a complex
// pair a±bi contributes x^k*exp(a*x)*(C*cos(b*x) + C'*sin(b*x)).
// Roots that do not snap to small rationals decline the closed form.
func (s *Solver) rootFamily() (symexpr.Expr, bool) {
	aux, err := s.Auxiliary()
	if err != nil || len(aux.Roots.All) != s.order {
		return nil, false
	}
	groups := aux.Roots.Groups()
	x := symexpr.S(s.varName)
	var cc constNamer
	terms := []symexpr.Expr{}

	for _, g := range groups {
		re, im := real(g.Value), imag(g.Value)
		switch {
		case math.Abs(im) <= rootTol:
			expFactor, ok := expOfRational(re, x)
			if !ok {
				return nil, false
			}
			for k := 0; k < g.Multiplicity; k++ {
				terms = append(terms, symexpr.MulOf(cc.next(), xPow(x, k), expFactor))
			}
		case im > rootTol:
			if !hasConjugate(groups, g) {
				return nil, false
			}
			expFactor, ok := expOfRational(re, x)
			if !ok {
				return nil, false
			}
			bRat, ok := symexpr.RatApprox(im, snapDenom)
			if !ok {
				return nil, false
			}
			bx := symexpr.MulOf(symexpr.NRat(bRat), x)
			for k := 0; k < g.Multiplicity; k++ {
				osc := symexpr.AddOf(
					symexpr.MulOf(cc.next(), symexpr.CosOf(bx)),
					symexpr.MulOf(cc.next(), symexpr.SinOf(bx)),
				)
				terms = append(terms, symexpr.MulOf(xPow(x, k), expFactor, osc))
			}
		default:
			// lower half of a conjugate pair, handled with its partner
		}
	}
	if len(terms) == 0 {
		return nil, false
	}
	return symexpr.AddOf(terms...), true
}

func hasConjugate(groups []RootGroup, g RootGroup) bool {
	want := cmplx.Conj(g.Value)
	for _, other := range groups {
		if cmplx.Abs(other.Value-want) <= rootTol {
			return other.Multiplicity == g.Multiplicity
		}
	}
	return false
}

func expOfRational(a float64, x symexpr.Expr) (symexpr.Expr, bool) {
	aRat, ok := symexpr.RatApprox(a, snapDenom)
	if !ok {
		return nil, false
	}
	return symexpr.ExpOf(symexpr.MulOf(symexpr.NRat(aRat), x)), true
}

func xPow(x symexpr.Expr, k int) symexpr.Expr {
	switch k {
	case 0:
		return symexpr.N(1)
	case 1:
		return x
	}
	return symexpr.PowOf(x, symexpr.N(int64(k)))
}

// firstOrder isolates y' = R and tries direct integration, separation
// of variables, and the integrating factor.
func (s *Solver) firstOrder(a Analysis) (symexpr.Expr, bool) {
	atom := symexpr.D(s.fn, s.varName, 1)
	coeffs, ok := symexpr.AtomCoeffs(s.expanded, atom)
	if !ok {
		return nil, false
	}
	lead := coeffs[1]
	if lead == nil || isZero(lead) || symexpr.ContainsDeriv(lead, s.fn) {
		return nil, false
	}
	rest := coeffs[0]
	if rest == nil {
		rest = symexpr.N(0)
	}
	// y' = R
	R := symexpr.MulOf(symexpr.N(-1), rest, symexpr.PowOf(lead, symexpr.N(-1))).Simplify()

	if !symexpr.ContainsDeriv(R, s.fn) {
		// y' = R(x): integrate directly
		if integral, ok := symexpr.Integrate(R, s.varName); ok {
			return symexpr.AddOf(integral, symexpr.S("C1")).Simplify(), true
		}
		return nil, false
	}

	if _, dependsOnX := symexpr.FreeSymbols(R)[s.varName]; !dependsOnX {
		if sol, ok := s.separableAutonomous(R); ok {
			return sol, true
		}
	}

	if a.IsLinear && a.Coefficients != nil {
		return s.integratingFactor(a)
	}
	return nil, false
}

// separableAutonomous solves y' = g(y) by integrating 1/g in y and
// inverting the antiderivative when it is a monomial or a logarithm.
func (s *Solver) separableAutonomous(R symexpr.Expr) (symexpr.Expr, bool) {
	g := symexpr.ReplaceDeriv(R, s.fn, 0, symexpr.S(s.fn))
	if symexpr.ContainsDeriv(g, s.fn) {
		return nil, false
	}
	H, ok := symexpr.Integrate(symexpr.PowOf(g, symexpr.N(-1)).Simplify(), s.fn)
	if !ok {
		return nil, false
	}
	rhs := symexpr.AddOf(symexpr.S(s.varName), symexpr.S("C1"))

	if c, n, ok := matchMonomial(H, s.fn); ok {
		// c*y^n = x + C1
		cInv := symexpr.PowOf(c, symexpr.N(-1))
		if n.IsNegOne() {
			// y = c/(x + C1)
			return symexpr.MulOf(c, symexpr.PowOf(rhs, symexpr.N(-1))).Simplify(), true
		}
		nInv := symexpr.NRat(new(big.Rat).Inv(n.Rat()))
		return symexpr.PowOf(symexpr.MulOf(cInv, rhs), nInv).Simplify(), true
	}
	if c, ok := matchLog(H, s.fn); ok {
		// c*ln(y) = x + C1, constant absorbed into C1
		cInv := symexpr.PowOf(c, symexpr.N(-1))
		return symexpr.MulOf(
			symexpr.S("C1"),
			symexpr.ExpOf(symexpr.MulOf(cInv, symexpr.S(s.varName)).Simplify()),
		).Simplify(), true
	}
	return nil, false
}

// matchMonomial recognizes c*y^n (n a nonzero rational, c numeric).
func matchMonomial(e symexpr.Expr, yName string) (*symexpr.Num, *symexpr.Num, bool) {
	c := symexpr.N(1)
	body := e
	if m, ok := e.(*symexpr.Mul); ok {
		factors := m.Factors()
		if len(factors) != 2 {
			return nil, nil, false
		}
		n, isNum := factors[0].(*symexpr.Num)
		if !isNum {
			return nil, nil, false
		}
		c = n
		body = factors[1]
	}
	if sym, ok := body.(*symexpr.Sym); ok && sym.Name() == yName {
		return c, symexpr.N(1), true
	}
	if p, ok := body.(*symexpr.Pow); ok {
		if sym, ok2 := p.Base().(*symexpr.Sym); ok2 && sym.Name() == yName {
			if n, ok3 := p.ExpExpr().(*symexpr.Num); ok3 && !n.IsZero() {
				return c, n, true
			}
		}
	}
	return nil, nil, false
}

// matchLog recognizes c*ln(y) and c*ln(abs(y)).
func matchLog(e symexpr.Expr, yName string) (*symexpr.Num, bool) {
	c := symexpr.N(1)
	body := e
	if m, ok := e.(*symexpr.Mul); ok {
		factors := m.Factors()
		if len(factors) != 2 {
			return nil, false
		}
		n, isNum := factors[0].(*symexpr.Num)
		if !isNum {
			return nil, false
		}
		c = n
		body = factors[1]
	}
	f, ok := body.(*symexpr.Func)
	if !ok || f.FuncName() != "ln" {
		return nil, false
	}
	arg := f.Arg()
	if inner, isAbs := arg.(*symexpr.Func); isAbs && inner.FuncName() == "abs" {
		arg = inner.Arg()
	}
	if sym, ok := arg.(*symexpr.Sym); ok && sym.Name() == yName {
		return c, true
	}
	return nil, false
}

// integratingFactor solves a1*y' + a0*y = -forcing via mu = exp(P),
// P = integral of a0/a1.
func (s *Solver) integratingFactor(a Analysis) (symexpr.Expr, bool) {
	a1, a0 := a.Coefficients[1], a.Coefficients[0]
	if isZero(a1) {
		return nil, false
	}
	leadInv := symexpr.PowOf(a1, symexpr.N(-1))
	p := symexpr.MulOf(a0, leadInv).Simplify()
	q := symexpr.MulOf(symexpr.N(-1), a.Forcing, leadInv).Simplify()

	P, ok := symexpr.Integrate(p, s.varName)
	if !ok {
		return nil, false
	}
	muInv := symexpr.ExpOf(symexpr.Negate(P).Simplify())
	if isZero(q) {
		return symexpr.MulOf(symexpr.S("C1"), muInv).Simplify(), true
	}
	mu := symexpr.ExpOf(P)
	IQ, ok := symexpr.Integrate(symexpr.MulOf(mu, q).Simplify(), s.varName)
	if !ok {
		return nil, false
	}
	return symexpr.MulOf(muInv, symexpr.AddOf(symexpr.S("C1"), IQ)).Simplify(), true
}
