package ode

import (
	"fmt"
	"math"
	"strconv"

	"github.com/njchilds90/odekit/ivp"
	"github.com/njchilds90/odekit/symexpr"
)

// ReductionStatus says whether the first-order system is faithful to
// the ODE or a degraded stand-in.
type ReductionStatus int

const (
	// ReductionOK: the highest derivative was isolated and compiled.
	ReductionOK ReductionStatus = iota
	// ReductionDegraded: the ODE could not be solved for its highest
	// derivative; its slot in the vector field is held at zero and the
	// trajectory is not meaningful.
	ReductionDegraded
)

func (st ReductionStatus) String() string {
	if st == ReductionOK {
		return "ok"
	}
	return "degraded"
}

// Reduction is an order-N ODE rewritten as a first-order system over
// the state [y, y', ..., y^(N-1)].
type Reduction struct {
	System ivp.Field
	Y0     []float64
	Status ReductionStatus
}

// DefaultInitialState is [1, 0, ..., 0] of length n.
func DefaultInitialState(n int) []float64 {
	y0 := make([]float64, n)
	y0[0] = 1
	return y0
}

// Reduce builds the first-order system. A nil y0 selects the default
// initial state; any other length than the ODE order is an input
// error. The first N-1 components are the definitional chain
// state_i' = state_{i+1}; the last is the isolated highest derivative,
// or zero with ReductionDegraded when isolation fails.
func (s *Solver) Reduce(y0 []float64) (*Reduction, error) {
	n := s.order
	if y0 == nil {
		y0 = DefaultInitialState(n)
	}
	if len(y0) != n {
		return nil, fmt.Errorf("ode: initial state has length %d, want %d", len(y0), n)
	}
	state := make([]float64, n)
	copy(state, y0)

	top, status := s.topDerivative()
	system := func(x float64, st []float64, dy []float64) {
		for i := 0; i < n-1; i++ {
			dy[i] = st[i+1]
		}
		if top == nil {
			dy[n-1] = 0
			return
		}
		args := make([]float64, n+1)
		args[0] = x
		copy(args[1:], st)
		dy[n-1] = top(args)
	}
	return &Reduction{System: system, Y0: state, Status: status}, nil
}

// topDerivative isolates y^(N) = -B/A from A*y^(N) + B = 0 and
// compiles it over (x, y, y', ..., y^(N-1)). A may involve the lower
// derivatives; runtime division by zero surfaces as NaN samples.
func (s *Solver) topDerivative() (symexpr.Compiled, ReductionStatus) {
	atom := symexpr.D(s.fn, s.varName, s.order)
	coeffs, ok := symexpr.AtomCoeffs(s.expanded, atom)
	if !ok {
		return nil, ReductionDegraded
	}
	for deg := range coeffs {
		if deg > 1 {
			return nil, ReductionDegraded
		}
	}
	lead := coeffs[1]
	if lead == nil || isZero(lead) {
		return nil, ReductionDegraded
	}
	rest := coeffs[0]
	if rest == nil {
		rest = symexpr.N(0)
	}
	top := symexpr.MulOf(
		symexpr.N(-1), rest, symexpr.PowOf(lead, symexpr.N(-1)),
	).Simplify()

	args := make([]string, s.order+1)
	args[0] = s.varName
	for i := 0; i < s.order; i++ {
		name := "y" + strconv.Itoa(i)
		args[i+1] = name
		top = symexpr.ReplaceDeriv(top, s.fn, i, symexpr.S(name))
	}
	compiled, err := symexpr.Compile(top, args)
	if err != nil {
		return nil, ReductionDegraded
	}
	return compiled, ReductionOK
}

// NumericSolution integrates the reduced system over [x0, x1] and
// samples y at an even grid. The initial state applies at x0.
// Integration failure partway leaves the remaining samples NaN; every
// non-finite sample is normalized to NaN.
type NumericSolution struct {
	X      []float64
	Y      []float64
	Status ReductionStatus
	Stats  ivp.Statistics
}

func (s *Solver) NumericSolution(x0, x1 float64, points int, y0 []float64, cfg ivp.Config) (*NumericSolution, error) {
	if points < 2 {
		return nil, fmt.Errorf("ode: need at least 2 sample points, got %d", points)
	}
	if !(x1 > x0) {
		return nil, fmt.Errorf("ode: invalid span [%g, %g]", x0, x1)
	}
	red, err := s.Reduce(y0)
	if err != nil {
		return nil, err
	}

	xs := make([]float64, points)
	ys := make([]float64, points)
	step := (x1 - x0) / float64(points-1)
	for i := range xs {
		xs[i] = x0 + float64(i)*step
	}

	state := make([]float64, len(red.Y0))
	copy(state, red.Y0)
	ys[0] = state[0]
	sol := &NumericSolution{X: xs, Y: ys, Status: red.Status}

	for i := 1; i < points; i++ {
		stat, err := ivp.Integrate(red.System, xs[i-1], xs[i], state, cfg)
		sol.Stats.StepCount += stat.StepCount
		sol.Stats.RejectedCount += stat.RejectedCount
		sol.Stats.EvaluationCount += stat.EvaluationCount
		sol.Stats.LastStepSize = stat.LastStepSize
		sol.Stats.NextStepSize = stat.NextStepSize
		sol.Stats.CurrentTime = stat.CurrentTime
		if err != nil {
			for j := i; j < points; j++ {
				ys[j] = math.NaN()
			}
			break
		}
		ys[i] = state[0]
	}
	for i, y := range ys {
		if math.IsInf(y, 0) {
			ys[i] = math.NaN()
		}
	}
	return sol, nil
}
