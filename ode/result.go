package ode

import (
	"encoding/json"
	"math"

	"github.com/njchilds90/odekit/ivp"
	"github.com/njchilds90/odekit/symexpr"
)

// FailureMessage is the one user-visible total-failure text, shown only
// when both the closed-form and the numerical strategy came up empty.
const FailureMessage = "unable to solve the ODE analytically or numerically"

// SolveOptions are the numeric parameters of the fallback integration.
type SolveOptions struct {
	SpanStart float64   `json:"span_start" yaml:"span_start"`
	SpanEnd   float64   `json:"span_end" yaml:"span_end"`
	Points    int       `json:"points" yaml:"points"`
	Y0        []float64 `json:"y0,omitempty" yaml:"y0"`

	AbsoluteTolerance float64 `json:"absolute_tolerance,omitempty" yaml:"absolute_tolerance"`
	RelativeTolerance float64 `json:"relative_tolerance,omitempty" yaml:"relative_tolerance"`
}

// DefaultSolveOptions mirrors the conventional plotting window.
func DefaultSolveOptions() SolveOptions {
	return SolveOptions{SpanStart: -10, SpanEnd: 10, Points: 400}
}

// RootInfo is one distinct auxiliary root with its classification.
type RootInfo struct {
	Re           float64 `json:"re"`
	Im           float64 `json:"im"`
	Multiplicity int     `json:"multiplicity"`
	Kind         string  `json:"kind"` // "real" or "complex"
}

// Result is the structured outcome exposed to front ends. Fields are
// filled as far as the classification allows; Failure is set only on
// total failure.
type Result struct {
	Input           string           `json:"input,omitempty"`
	Order           int              `json:"order"`
	IsLinear        bool             `json:"is_linear"`
	CoefficientType string           `json:"coefficient_type,omitempty"`
	Auxiliary       string           `json:"auxiliary_equation,omitempty"`
	Roots           []RootInfo       `json:"roots,omitempty"`
	Solution        string           `json:"solution,omitempty"`
	SolutionLaTeX   string           `json:"solution_latex,omitempty"`
	Numeric         *NumericSolution `json:"numeric,omitempty"`
	Failure         string           `json:"failure,omitempty"`
}

// Solve runs the full pipeline on a normalized residual expression:
// classify, attempt the closed form, fall back to numerical reduction.
func Solve(expr symexpr.Expr, fn, varName string, opts SolveOptions) (*Result, error) {
	s, err := New(expr, fn, varName)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	a := s.Analyze()
	res.Order = a.Order
	res.IsLinear = a.IsLinear

	if a.IsLinear {
		if ct, err := s.CoefficientType(); err == nil {
			res.CoefficientType = ct.String()
			if ct == CoeffConstant {
				if aux, err := s.Auxiliary(); err == nil {
					res.Auxiliary = aux.Polynomial.String() + " = 0"
					res.Roots = rootInfos(aux.Roots)
				}
			}
		}
	}

	if sol, ok := s.GeneralSolution(); ok {
		res.Solution = "y = " + sol.String()
		res.SolutionLaTeX = "y = " + sol.LaTeX()
		return res, nil
	}

	defaults := DefaultSolveOptions()
	if opts.SpanStart == 0 && opts.SpanEnd == 0 {
		opts.SpanStart, opts.SpanEnd = defaults.SpanStart, defaults.SpanEnd
	}
	if opts.Points == 0 {
		opts.Points = defaults.Points
	}
	cfg := ivp.Config{
		AbsoluteTolerance: opts.AbsoluteTolerance,
		RelativeTolerance: opts.RelativeTolerance,
	}
	num, err := s.NumericSolution(opts.SpanStart, opts.SpanEnd, opts.Points, opts.Y0, cfg)
	if err != nil {
		return nil, err
	}
	if allNaNAfterFirst(num.Y) {
		res.Failure = FailureMessage
		return res, nil
	}
	res.Numeric = num
	return res, nil
}

func allNaNAfterFirst(ys []float64) bool {
	for _, y := range ys[1:] {
		if !math.IsNaN(y) {
			return false
		}
	}
	return len(ys) > 1
}

func rootInfos(rs RootSet) []RootInfo {
	infos := []RootInfo{}
	for _, g := range rs.Groups() {
		kind := "real"
		im := imag(g.Value)
		if math.Abs(im) > rootTol {
			kind = "complex"
		} else {
			im = 0
		}
		infos = append(infos, RootInfo{
			Re:           real(g.Value),
			Im:           im,
			Multiplicity: g.Multiplicity,
			Kind:         kind,
		})
	}
	return infos
}

// MarshalJSON renders NaN samples as null, the one undefined sentinel
// consumers see.
func (n *NumericSolution) MarshalJSON() ([]byte, error) {
	ys := make([]*float64, len(n.Y))
	for i := range n.Y {
		if !math.IsNaN(n.Y[i]) {
			v := n.Y[i]
			ys[i] = &v
		}
	}
	return json.Marshal(struct {
		X      []float64  `json:"x"`
		Y      []*float64 `json:"y"`
		Status string     `json:"status"`
	}{X: n.X, Y: ys, Status: n.Status.String()})
}
