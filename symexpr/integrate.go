package symexpr

// ============================================================
// Rule-based symbolic integration
// ============================================================

// Integrate returns an antiderivative of expr with respect to varName,
// without the additive constant. The second result is false when no
// rule applies.
func Integrate(expr Expr, varName string) (Expr, bool) {
	expr = expr.Simplify()
	switch v := expr.(type) {
	case *Num:
		return MulOf(v, S(varName)), true
	case *Sym:
		if v.name == varName {
			return MulOf(F(1, 2), PowOf(S(varName), N(2))), true
		}
		return MulOf(v, S(varName)), true
	case *Pow:
		return integratePow(v, varName)
	case *Mul:
		coeff := N(1)
		rest := []Expr{}
		for _, f := range v.factors {
			switch {
			case isConstIn(f, varName):
				if n, ok := f.(*Num); ok {
					coeff = numMul(coeff, n)
				} else {
					rest = append(rest, f)
				}
			default:
				rest = append(rest, f)
			}
		}
		constFactors := []Expr{}
		varFactors := []Expr{}
		for _, f := range rest {
			if isConstIn(f, varName) {
				constFactors = append(constFactors, f)
			} else {
				varFactors = append(varFactors, f)
			}
		}
		var inner Expr
		switch len(varFactors) {
		case 0:
			inner = N(1)
		case 1:
			inner = varFactors[0]
		default:
			// Products of two varName-dependent factors need parts or
			// substitution, which the rule set does not cover.
			return nil, false
		}
		intInner, ok := Integrate(inner, varName)
		if !ok {
			return nil, false
		}
		all := append([]Expr{coeff}, constFactors...)
		all = append(all, intInner)
		return MulOf(all...).Simplify(), true
	case *Add:
		terms := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			intT, ok := Integrate(t, varName)
			if !ok {
				return nil, false
			}
			terms[i] = intT
		}
		return AddOf(terms...).Simplify(), true
	case *Func:
		return integrateFunc(v, varName)
	}
	return nil, false
}

func isConstIn(e Expr, varName string) bool {
	_, free := FreeSymbols(e)[varName]
	return !free
}

func integratePow(v *Pow, varName string) (Expr, bool) {
	if sym, ok := v.base.(*Sym); ok && sym.name == varName {
		if n, ok2 := v.exp.(*Num); ok2 {
			if n.IsNegOne() {
				return LnOf(AbsOf(S(varName))), true
			}
			newExp := numAdd(n, N(1))
			return MulOf(numRecip(newExp), PowOf(S(varName), newExp)), true
		}
	}
	// a^x for constant a
	if sym, ok := v.exp.(*Sym); ok && sym.name == varName {
		if _, ok2 := v.base.(*Num); ok2 {
			return MulOf(PowOf(v.base, S(varName)), PowOf(LnOf(v.base), N(-1))), true
		}
	}
	return nil, false
}

// linearArgCoeff matches arg = c*varName for a numeric c (including
// c = 1) and returns c.
func linearArgCoeff(arg Expr, varName string) (*Num, bool) {
	if sym, ok := arg.(*Sym); ok && sym.name == varName {
		return N(1), true
	}
	if m, ok := arg.(*Mul); ok && len(m.factors) == 2 {
		if coeff, ok2 := m.factors[0].(*Num); ok2 {
			if sym, ok3 := m.factors[1].(*Sym); ok3 && sym.name == varName {
				return coeff, true
			}
		}
	}
	return nil, false
}

func integrateFunc(v *Func, varName string) (Expr, bool) {
	if c, ok := linearArgCoeff(v.arg, varName); ok {
		switch v.name {
		case "sin":
			return MulOf(N(-1), numRecip(c), CosOf(v.arg)), true
		case "cos":
			return MulOf(numRecip(c), SinOf(v.arg)), true
		case "exp":
			return MulOf(numRecip(c), ExpOf(v.arg)), true
		case "sinh":
			return MulOf(numRecip(c), CoshOf(v.arg)), true
		case "cosh":
			return MulOf(numRecip(c), SinhOf(v.arg)), true
		}
	}
	if sym, ok := v.arg.(*Sym); ok && sym.name == varName {
		x := S(varName)
		switch v.name {
		case "ln":
			return AddOf(MulOf(x, LnOf(x)), MulOf(N(-1), x)), true
		case "asin":
			return AddOf(
				MulOf(x, AsinOf(x)),
				SqrtOf(AddOf(N(1), MulOf(N(-1), PowOf(x, N(2))))),
			), true
		case "atan":
			return AddOf(
				MulOf(x, AtanOf(x)),
				MulOf(N(-1), F(1, 2), LnOf(AddOf(N(1), PowOf(x, N(2))))),
			), true
		}
	}
	return nil, false
}
