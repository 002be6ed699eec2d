package ode

import "github.com/njchilds90/odekit/symexpr"

// CoeffType distinguishes the two coefficient structures of a linear
// ODE.
type CoeffType int

const (
	CoeffConstant CoeffType = iota
	CoeffVariable
)

func (c CoeffType) String() string {
	if c == CoeffConstant {
		return "constant"
	}
	return "variable"
}

// CoefficientType reports whether every per-order coefficient of a
// linear ODE is free of the independent variable. The precondition is
// linearity; on a non-linear input it fails fast with ErrNotLinear.
func (s *Solver) CoefficientType() (CoeffType, error) {
	a := s.Analyze()
	if !a.IsLinear || a.Coefficients == nil {
		return 0, ErrNotLinear
	}
	for _, coeff := range a.Coefficients {
		if _, depends := symexpr.FreeSymbols(coeff)[s.varName]; depends {
			return CoeffVariable, nil
		}
	}
	return CoeffConstant, nil
}
