package symexpr

import (
	"math"
	"math/big"
)

// ============================================================
// Polynomial utilities
// ============================================================

func Degree(expr Expr, varName string) int {
	expr = expr.Simplify()
	switch v := expr.(type) {
	case *Num:
		return 0
	case *Sym:
		if v.name == varName {
			return 1
		}
		return 0
	case *Pow:
		if sym, ok := v.base.(*Sym); ok && sym.name == varName {
			if n, ok2 := v.exp.(*Num); ok2 && n.IsInteger() {
				return int(n.val.Num().Int64())
			}
		}
		return 0
	case *Add:
		maxDeg := 0
		for _, t := range v.terms {
			if d := Degree(t, varName); d > maxDeg {
				maxDeg = d
			}
		}
		return maxDeg
	case *Mul:
		totalDeg := 0
		for _, f := range v.factors {
			totalDeg += Degree(f, varName)
		}
		return totalDeg
	}
	return 0
}

type PolyCoeffsResult map[int]Expr

func PolyCoeffs(expr Expr, varName string) PolyCoeffsResult {
	result := PolyCoeffsResult{}
	extractCoeffs(expr.Simplify(), varName, result)
	return result
}

func extractCoeffs(e Expr, varName string, out PolyCoeffsResult) {
	switch v := e.(type) {
	case *Num:
		addCoeff(out, 0, v)
	case *Sym:
		if v.name == varName {
			addCoeff(out, 1, N(1))
		} else {
			addCoeff(out, 0, v)
		}
	case *Pow:
		if sym, ok := v.base.(*Sym); ok && sym.name == varName {
			if n, ok2 := v.exp.(*Num); ok2 && n.IsInteger() {
				addCoeff(out, int(n.val.Num().Int64()), N(1))
				return
			}
		}
		addCoeff(out, 0, e)
	case *Mul:
		deg := 0
		coeffFactors := []Expr{}
		for _, f := range v.factors {
			if d := Degree(f, varName); d > 0 {
				deg += d
			} else {
				coeffFactors = append(coeffFactors, f)
			}
		}
		var coeff Expr
		switch len(coeffFactors) {
		case 0:
			coeff = N(1)
		case 1:
			coeff = coeffFactors[0]
		default:
			coeff = MulOf(coeffFactors...)
		}
		addCoeff(out, deg, coeff)
	case *Add:
		for _, t := range v.terms {
			extractCoeffs(t, varName, out)
		}
	default:
		addCoeff(out, 0, e)
	}
}

func addCoeff(out PolyCoeffsResult, deg int, val Expr) {
	if existing, ok := out[deg]; ok {
		out[deg] = AddOf(existing, val).Simplify()
	} else {
		out[deg] = val.Simplify()
	}
}

// ContainsExpr reports whether atom occurs anywhere in e (structural
// equality via Equal).
func ContainsExpr(e Expr, atom Expr) bool {
	if e.Equal(atom) {
		return true
	}
	switch v := e.(type) {
	case *Add:
		for _, t := range v.terms {
			if ContainsExpr(t, atom) {
				return true
			}
		}
	case *Mul:
		for _, f := range v.factors {
			if ContainsExpr(f, atom) {
				return true
			}
		}
	case *Pow:
		return ContainsExpr(v.base, atom) || ContainsExpr(v.exp, atom)
	case *Func:
		return ContainsExpr(v.arg, atom)
	}
	return false
}

// AtomCoeffs decomposes expr as a polynomial in atom, returning the map
// from power to coefficient. The second result is false when atom occurs
// non-polynomially (inside a function argument, under a non-integer or
// negative power, or in an exponent). Callers should Expand first.
func AtomCoeffs(expr Expr, atom Expr) (map[int]Expr, bool) {
	out := map[int]Expr{}
	for _, term := range Terms(expr.Simplify()) {
		deg, coeff, ok := termAtomDegree(term, atom)
		if !ok {
			return nil, false
		}
		addCoeff(out, deg, coeff)
	}
	return out, true
}

func termAtomDegree(term Expr, atom Expr) (int, Expr, bool) {
	factors := []Expr{term}
	if m, ok := term.(*Mul); ok {
		factors = m.factors
	}
	deg := 0
	coeffFactors := []Expr{}
	for _, f := range factors {
		switch {
		case f.Equal(atom):
			deg++
		default:
			if p, ok := f.(*Pow); ok && p.base.Equal(atom) {
				n, isNum := p.exp.(*Num)
				if !isNum || !n.IsInteger() || n.IsNegative() {
					return 0, nil, false
				}
				deg += int(n.val.Num().Int64())
				continue
			}
			if ContainsExpr(f, atom) {
				return 0, nil, false
			}
			coeffFactors = append(coeffFactors, f)
		}
	}
	var coeff Expr
	switch len(coeffFactors) {
	case 0:
		coeff = N(1)
	case 1:
		coeff = coeffFactors[0]
	default:
		coeff = MulOf(coeffFactors...)
	}
	return deg, coeff, true
}

// RatApprox finds a rational p/q with |q| <= maxDen close to f, using
// continued fractions. Returns false for non-finite input or when no
// denominator within the bound reproduces f to a relative 1e-9.
func RatApprox(f float64, maxDen int64) (*big.Rat, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, false
	}
	neg := f < 0
	x := math.Abs(f)

	var h0, h1 int64 = 1, int64(math.Floor(x))
	var k0, k1 int64 = 0, 1
	frac := x - math.Floor(x)
	for i := 0; i < 64 && frac > 1e-12; i++ {
		x = 1 / frac
		a := int64(math.Floor(x))
		h0, h1 = h1, a*h1+h0
		k0, k1 = k1, a*k1+k0
		if k1 > maxDen || k1 <= 0 {
			h1, k1 = h0, k0
			break
		}
		frac = x - math.Floor(x)
	}
	if k1 <= 0 {
		return nil, false
	}
	approx := float64(h1) / float64(k1)
	target := math.Abs(f)
	if target != 0 && math.Abs(approx-target)/math.Max(math.Abs(target), 1) > 1e-9 {
		return nil, false
	}
	if neg {
		h1 = -h1
	}
	return big.NewRat(h1, k1), true
}
