package symexpr

import (
	"strconv"
	"strings"
)

// ============================================================
// Deriv — derivative of an unknown function as a first-class atom
// ============================================================

// Deriv represents y^(order), the order-th derivative of the unknown
// function fn with respect to varName. Order 0 is the function itself.
// Treating derivatives as atoms lets an ODE be decomposed term by term
// like any polynomial in y, y', y'', ...
type Deriv struct {
	fn      string
	varName string
	order   int
}

// D constructs a derivative atom. Negative orders panic.
func D(fn, varName string, order int) *Deriv {
	if order < 0 {
		panic("symexpr: negative derivative order")
	}
	return &Deriv{fn: fn, varName: varName, order: order}
}

// Y is shorthand for D("y", "x", order), the conventional unknown.
func Y(order int) *Deriv { return D("y", "x", order) }

func (d *Deriv) Simplify() Expr { return d }

func (d *Deriv) String() string {
	if d.order <= 4 {
		return d.fn + strings.Repeat("'", d.order)
	}
	return d.fn + "^(" + strconv.Itoa(d.order) + ")"
}

func (d *Deriv) LaTeX() string {
	switch {
	case d.order == 0:
		return d.fn
	case d.order <= 3:
		return d.fn + strings.Repeat("'", d.order)
	}
	return d.fn + "^{(" + strconv.Itoa(d.order) + ")}"
}

func (d *Deriv) Sub(varName string, value Expr) Expr {
	// The atom is opaque to symbol substitution; replacing a derivative
	// is a structural operation, see ReplaceDeriv.
	return d
}

func (d *Deriv) Diff(varName string) Expr {
	if varName == d.varName {
		return D(d.fn, d.varName, d.order+1)
	}
	return N(0)
}

func (d *Deriv) Eval() (*Num, bool) { return nil, false }

func (d *Deriv) Equal(other Expr) bool {
	o, ok := other.(*Deriv)
	return ok && d.fn == o.fn && d.varName == o.varName && d.order == o.order
}

func (d *Deriv) FnName() string  { return d.fn }
func (d *Deriv) VarName() string { return d.varName }
func (d *Deriv) Order() int      { return d.order }

// ReplaceDeriv substitutes repl for every occurrence of the derivative
// atom fn^(order) in e. The walk is structural, so atoms inside function
// arguments and exponents are replaced too.
func ReplaceDeriv(e Expr, fn string, order int, repl Expr) Expr {
	switch v := e.(type) {
	case *Deriv:
		if v.fn == fn && v.order == order {
			return repl
		}
		return v
	case *Add:
		terms := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			terms[i] = ReplaceDeriv(t, fn, order, repl)
		}
		return AddOf(terms...)
	case *Mul:
		factors := make([]Expr, len(v.factors))
		for i, f := range v.factors {
			factors[i] = ReplaceDeriv(f, fn, order, repl)
		}
		return MulOf(factors...)
	case *Pow:
		return PowOf(ReplaceDeriv(v.base, fn, order, repl), ReplaceDeriv(v.exp, fn, order, repl))
	case *Func:
		return funcOf(v.name, ReplaceDeriv(v.arg, fn, order, repl)).Simplify()
	}
	return e
}

// ContainsDeriv reports whether any derivative atom of fn appears in e.
func ContainsDeriv(e Expr, fn string) bool {
	switch v := e.(type) {
	case *Deriv:
		return v.fn == fn
	case *Add:
		for _, t := range v.terms {
			if ContainsDeriv(t, fn) {
				return true
			}
		}
	case *Mul:
		for _, f := range v.factors {
			if ContainsDeriv(f, fn) {
				return true
			}
		}
	case *Pow:
		return ContainsDeriv(v.base, fn) || ContainsDeriv(v.exp, fn)
	case *Func:
		return ContainsDeriv(v.arg, fn)
	}
	return false
}

// MaxDerivOrder returns the highest derivative order of fn in e and
// whether fn appears at all.
func MaxDerivOrder(e Expr, fn string) (int, bool) {
	max := -1
	var walk func(Expr)
	walk = func(e Expr) {
		switch v := e.(type) {
		case *Deriv:
			if v.fn == fn && v.order > max {
				max = v.order
			}
		case *Add:
			for _, t := range v.terms {
				walk(t)
			}
		case *Mul:
			for _, f := range v.factors {
				walk(f)
			}
		case *Pow:
			walk(v.base)
			walk(v.exp)
		case *Func:
			walk(v.arg)
		}
	}
	walk(e)
	if max < 0 {
		return 0, false
	}
	return max, true
}

// ============================================================
// Equation — lhs = rhs
// ============================================================

type Equation struct{ LHS, RHS Expr }

func Eq(lhs, rhs Expr) *Equation { return &Equation{LHS: lhs, RHS: rhs} }

func (e *Equation) String() string { return e.LHS.String() + " = " + e.RHS.String() }
func (e *Equation) LaTeX() string  { return e.LHS.LaTeX() + " = " + e.RHS.LaTeX() }

// Residual moves everything to one side: LHS - RHS.
func (e *Equation) Residual() Expr {
	return AddOf(e.LHS, MulOf(N(-1), e.RHS)).Simplify()
}
