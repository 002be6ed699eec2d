package symexpr

import (
	"fmt"
	"math"
)

// Compiled is a fast float64 evaluator over a fixed argument list.
type Compiled func(args []float64) float64

// Compile translates e into a closure over the named arguments, in
// order. Every symbol in e must appear in argNames; derivative atoms
// must have been substituted away first. Domain errors at evaluation
// time produce NaN rather than panicking.
func Compile(e Expr, argNames []string) (Compiled, error) {
	index := make(map[string]int, len(argNames))
	for i, name := range argNames {
		index[name] = i
	}
	return compileNode(e.Simplify(), index)
}

func compileNode(e Expr, index map[string]int) (Compiled, error) {
	switch v := e.(type) {
	case *Num:
		c := v.Float64()
		return func([]float64) float64 { return c }, nil
	case *Sym:
		i, ok := index[v.name]
		if !ok {
			return nil, fmt.Errorf("symexpr: unbound symbol %q", v.name)
		}
		return func(args []float64) float64 { return args[i] }, nil
	case *Deriv:
		return nil, fmt.Errorf("symexpr: cannot compile derivative atom %s", v.String())
	case *Add:
		parts, err := compileAll(v.terms, index)
		if err != nil {
			return nil, err
		}
		return func(args []float64) float64 {
			sum := 0.0
			for _, p := range parts {
				sum += p(args)
			}
			return sum
		}, nil
	case *Mul:
		parts, err := compileAll(v.factors, index)
		if err != nil {
			return nil, err
		}
		return func(args []float64) float64 {
			prod := 1.0
			for _, p := range parts {
				prod *= p(args)
			}
			return prod
		}, nil
	case *Pow:
		base, err := compileNode(v.base, index)
		if err != nil {
			return nil, err
		}
		exp, err := compileNode(v.exp, index)
		if err != nil {
			return nil, err
		}
		return func(args []float64) float64 {
			return math.Pow(base(args), exp(args))
		}, nil
	case *Func:
		arg, err := compileNode(v.arg, index)
		if err != nil {
			return nil, err
		}
		fn, ok := floatFuncs[v.name]
		if !ok {
			return nil, fmt.Errorf("symexpr: cannot compile function %q", v.name)
		}
		return func(args []float64) float64 { return fn(arg(args)) }, nil
	}
	return nil, fmt.Errorf("symexpr: cannot compile %T", e)
}

func compileAll(es []Expr, index map[string]int) ([]Compiled, error) {
	out := make([]Compiled, len(es))
	for i, e := range es {
		c, err := compileNode(e, index)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}

var floatFuncs = map[string]func(float64) float64{
	"sin":  math.Sin,
	"cos":  math.Cos,
	"tan":  math.Tan,
	"exp":  math.Exp,
	"ln":   math.Log,
	"abs":  math.Abs,
	"asin": math.Asin,
	"acos": math.Acos,
	"atan": math.Atan,
	"sinh": math.Sinh,
	"cosh": math.Cosh,
	"tanh": math.Tanh,
}
