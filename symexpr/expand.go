package symexpr

// Convenience wrappers mirroring the method set as package functions.

func Simplify(e Expr) Expr { return e.Simplify() }
func String(e Expr) string { return e.String() }
func LaTeX(e Expr) string  { return e.LaTeX() }

func Sub(expr Expr, varName string, value Expr) Expr {
	return expr.Sub(varName, value).Simplify()
}

func Diff(expr Expr, varName string) Expr {
	return expr.Diff(varName).Simplify()
}

func DiffN(expr Expr, varName string, n int) Expr {
	result := expr
	for i := 0; i < n; i++ {
		result = Diff(result, varName)
	}
	return result
}

// Expand distributes products over sums and unrolls small integer powers,
// producing a flat sum of monomial terms.
func Expand(e Expr) Expr { return expandExpr(e).Simplify() }

func expandExpr(e Expr) Expr {
	switch v := e.(type) {
	case *Mul:
		result := Expr(N(1))
		for _, f := range v.factors {
			result = distribute(result, expandExpr(f))
		}
		return result
	case *Add:
		newTerms := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			newTerms[i] = expandExpr(t)
		}
		return AddOf(newTerms...)
	case *Pow:
		if n, ok := v.exp.(*Num); ok && n.IsInteger() {
			exp := n.val.Num().Int64()
			if exp >= 2 && exp <= 10 {
				base := expandExpr(v.base)
				if _, isAdd := base.(*Add); isAdd {
					result := Expr(N(1))
					for i := int64(0); i < exp; i++ {
						result = distribute(result, base)
					}
					return result
				}
				return PowOf(base, v.exp)
			}
		}
		return PowOf(expandExpr(v.base), expandExpr(v.exp))
	}
	return e
}

// distribute multiplies two expanded expressions term by term, so sums
// never end up as factors of a product.
func distribute(a, b Expr) Expr {
	terms := []Expr{}
	for _, ta := range Terms(a) {
		for _, tb := range Terms(b) {
			terms = append(terms, MulOf(ta, tb))
		}
	}
	return AddOf(terms...)
}

// Terms returns the summands of e, or a single-element slice when e is
// not a sum.
func Terms(e Expr) []Expr {
	if a, ok := e.(*Add); ok {
		return a.terms
	}
	return []Expr{e}
}

// FreeSymbols returns the set of symbol names appearing in e. Derivative
// atoms are not symbols and do not contribute.
func FreeSymbols(e Expr) map[string]struct{} {
	result := map[string]struct{}{}
	collectSymbols(e, result)
	return result
}

func collectSymbols(e Expr, out map[string]struct{}) {
	switch v := e.(type) {
	case *Sym:
		out[v.name] = struct{}{}
	case *Add:
		for _, t := range v.terms {
			collectSymbols(t, out)
		}
	case *Mul:
		for _, f := range v.factors {
			collectSymbols(f, out)
		}
	case *Pow:
		collectSymbols(v.base, out)
		collectSymbols(v.exp, out)
	case *Func:
		collectSymbols(v.arg, out)
	}
}
