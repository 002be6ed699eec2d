// Package ivp integrates initial value problems y' = f(x, y) with an
// adaptive embedded Runge-Kutta method (Dormand-Prince 5(4)).
package ivp

import (
	"errors"
	"math"
)

// Field evaluates the right hand side of the system, writing the
// derivative of state into dy.
type Field func(x float64, state []float64, dy []float64)

// Config controls the integration. Zero values select defaults.
type Config struct {
	// InitialStepSize, if > 0, is used for the first step. Otherwise
	// an estimate is computed from the field at the starting point.
	InitialStepSize float64
	// MinStepSize aborts the integration when step size control would
	// go below it. Default 1e-10.
	MinStepSize float64
	// MaxStepSize caps individual steps. Default is the full interval.
	MaxStepSize float64

	AbsoluteTolerance float64
	RelativeTolerance float64

	// MaxStepCount aborts runaway integrations. Default 1000000.
	MaxStepCount uint
}

// Statistics reports what the integrator did.
type Statistics struct {
	StepCount       uint
	RejectedCount   uint
	EvaluationCount uint

	LastStepSize float64
	NextStepSize float64
	CurrentTime  float64
}

var (
	ErrStepSizeTooSmall = errors.New("ivp: step size below minimum")
	ErrTooManySteps     = errors.New("ivp: maximum step count exceeded")
)

const (
	dopriStages = 7
	dopriOrder  = 5
)

// Dormand-Prince 5(4) coefficients. The last stage reuses the first
// evaluation of the next step (FSAL).
var (
	dopriA = [dopriStages][]float64{
		{},
		{0.2},
		{3.0 / 40.0, 9.0 / 40.0},
		{44.0 / 45.0, -56.0 / 15.0, 32.0 / 9.0},
		{19372.0 / 6561.0, -25360.0 / 2187.0, 64448.0 / 6561.0, -212.0 / 729.0},
		{9017.0 / 3168.0, -355.0 / 33.0, 46732.0 / 5247.0, 49.0 / 176.0, -5103.0 / 18656.0},
		{35.0 / 384.0, 0.0, 500.0 / 1113.0, 125.0 / 192.0, -2187.0 / 6784.0, 11.0 / 84.0},
	}
	dopriB = []float64{35.0 / 384.0, 0.0, 500.0 / 1113.0, 125.0 / 192.0, -2187.0 / 6784.0, 11.0 / 84.0, 0.0}
	dopriC = []float64{0.0, 0.2, 0.3, 0.8, 8.0 / 9.0, 1.0, 1.0}
	dopriE = []float64{71.0 / 57600.0, 0.0, -71.0 / 16695.0, 71.0 / 1920.0, -17253.0 / 339200.0, 22.0 / 525.0, -1.0 / 40.0}
)

// Integrate advances state from x to xEnd in place and returns the
// integration statistics. The state slice is modified even on error;
// Statistics.CurrentTime says how far it got.
func Integrate(f Field, x, xEnd float64, state []float64, cfg Config) (Statistics, error) {
	if cfg.MaxStepSize <= 0 {
		cfg.MaxStepSize = xEnd - x
	}
	if cfg.MinStepSize <= 0 {
		cfg.MinStepSize = 1e-10
	}
	if cfg.MaxStepCount == 0 {
		cfg.MaxStepCount = 1000000
	}
	if cfg.AbsoluteTolerance <= 0 {
		cfg.AbsoluteTolerance = 1e-6
	}
	if cfg.RelativeTolerance <= 0 {
		cfg.RelativeTolerance = cfg.AbsoluteTolerance
	}

	var stat Statistics
	n := len(state)

	fcnValue := make([]float64, n)
	yCurrent := make([]float64, n)
	yError := make([]float64, n)
	ks := make([][]float64, dopriStages)
	for i := range ks {
		ks[i] = make([]float64, n)
	}

	f(x, state, fcnValue)
	stat.EvaluationCount = 1

	stepEstimate := cfg.InitialStepSize
	if stepEstimate <= 0 {
		stepEstimate = EstimateStepSize(f, x, state, fcnValue, cfg)
	}

	var err error
	var stepNext float64
	for x < xEnd && err == nil {
		stepNext = stepEstimate
		stat.StepCount++
		if stepNext > cfg.MaxStepSize {
			stepNext = cfg.MaxStepSize
		}
		if x+stepNext > xEnd {
			stepNext = xEnd - x
		}

		for stg := 1; stg < dopriStages; stg++ {
			xCurrent := x + stepNext*dopriC[stg]
			for id := 0; id < n; id++ {
				yCurrent[id] = state[id] + stepNext*dopriA[stg][0]*fcnValue[id]
			}
			for ic := 1; ic < stg; ic++ {
				for id := 0; id < n; id++ {
					yCurrent[id] += stepNext * dopriA[stg][ic] * ks[ic][id]
				}
			}
			f(xCurrent, yCurrent, ks[stg])
			stat.EvaluationCount++
		}

		for id := 0; id < n; id++ {
			yError[id] = stepNext * dopriE[0] * fcnValue[id]
		}
		for stg := 1; stg < dopriStages; stg++ {
			for id := 0; id < n; id++ {
				yError[id] += stepNext * dopriE[stg] * ks[stg][id]
			}
		}

		relativeError := 0.0
		for id := 0; id < n; id++ {
			tol := cfg.AbsoluteTolerance + cfg.RelativeTolerance*math.Abs(state[id])
			relativeError += math.Pow(yError[id]/tol, 2)
		}
		relativeError = math.Sqrt(relativeError / float64(n))
		if math.IsNaN(relativeError) || math.IsInf(relativeError, 0) {
			err = ErrStepSizeTooSmall
			break
		}

		stepEstimate = 0.9 * math.Exp(-math.Log(1e-8+relativeError)/float64(dopriOrder))
		stepEstimate = stepNext * math.Max(0.2, math.Min(stepEstimate, 2.0))

		if relativeError > 1.0 {
			stat.RejectedCount++
			if stepEstimate < cfg.MinStepSize {
				err = ErrStepSizeTooSmall
				break
			}
		} else {
			x += stepNext
			for id := 0; id < n; id++ {
				state[id] += stepNext * dopriB[0] * fcnValue[id]
			}
			for stg := 1; stg < dopriStages; stg++ {
				for id := 0; id < n; id++ {
					state[id] += stepNext * dopriB[stg] * ks[stg][id]
				}
			}
			// FSAL: the last stage is the first evaluation of the next step
			copy(fcnValue, ks[dopriStages-1])
		}

		if stat.StepCount > cfg.MaxStepCount {
			err = ErrTooManySteps
			break
		}
	}

	stat.CurrentTime = x
	stat.LastStepSize = stepNext
	stat.NextStepSize = stepEstimate
	return stat, err
}

// EstimateStepSize picks an initial step from the local behavior of the
// field, per Hairer/Norsett/Wanner.
func EstimateStepSize(f Field, x float64, state, fcnValue []float64, cfg Config) float64 {
	n := len(state)
	y2, f2 := make([]float64, n), make([]float64, n)

	dnf, dny := 0.0, 0.0
	for id := 0; id < n; id++ {
		rc := cfg.AbsoluteTolerance + cfg.RelativeTolerance*math.Abs(state[id])
		dnf += math.Pow(fcnValue[id]/rc, 2)
		dny += math.Pow(state[id]/rc, 2)
	}

	var h float64
	if math.Min(dnf, dny) < 1e-10 {
		h = 1e-6
	} else {
		h = 1e-2 * math.Sqrt(dny/dnf)
	}
	h = math.Min(h, cfg.MaxStepSize)

	for id := 0; id < n; id++ {
		y2[id] = state[id] + h*fcnValue[id]
	}
	f(x+h, y2, f2)

	der2 := 0.0
	for id := 0; id < n; id++ {
		rc := cfg.AbsoluteTolerance + cfg.RelativeTolerance*math.Abs(state[id])
		der2 += math.Pow((f2[id]-fcnValue[id])/rc, 2)
	}
	der2 = math.Sqrt(der2) / h
	der12 := math.Max(der2, math.Sqrt(dnf))

	var h1 float64
	if der12 <= 1e-15 {
		h1 = math.Max(1e-6, h*1e-3)
	} else {
		h1 = math.Pow(1e-2/der12, 1.0/float64(dopriOrder))
	}
	return math.Min(1e2*h, math.Min(h1, cfg.MaxStepSize))
}
