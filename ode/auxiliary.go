package ode

import (
	"math"
	"math/cmplx"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/njchilds90/odekit/symexpr"
)

// auxVar is the fresh symbol of the auxiliary polynomial.
const auxVar = "r"

// rootTol is the tolerance for treating an imaginary part as zero and
// for grouping numerically equal roots. Roots from the exact degree-1
// and degree-2 paths are exact; eigenvalue roots are approximate.
const rootTol = 1e-7

// Auxiliary is the characteristic equation of a constant-coefficient
// linear ODE. Roots may be empty when the polynomial was built but
// could not be solved, which is a different outcome from
// ErrNotApplicable.
type Auxiliary struct {
	Polynomial symexpr.Expr
	Roots      RootSet
}

// Auxiliary builds the characteristic polynomial by substituting r^i
// for the order-i derivative atom in the homogeneous part, highest
// order first, then solves for its roots.
func (s *Solver) Auxiliary() (*Auxiliary, error) {
	ct, err := s.CoefficientType()
	if err != nil {
		return nil, ErrNotApplicable
	}
	if ct != CoeffConstant {
		return nil, ErrNotApplicable
	}

	poly := s.homogeneousPart()
	for order := s.order; order >= 0; order-- {
		repl := symexpr.PowOf(symexpr.S(auxVar), symexpr.N(int64(order)))
		poly = symexpr.ReplaceDeriv(poly, s.fn, order, repl)
	}
	poly = poly.Simplify()

	aux := &Auxiliary{Polynomial: poly}
	coeffs, ok := polyFloats(poly, s.order)
	if !ok {
		// computable but unsolved: symbolic constants in the
		// coefficients, or a vanishing leading coefficient
		return aux, nil
	}
	aux.Roots = solvePoly(coeffs)
	return aux, nil
}

// ClassifyRoots partitions the auxiliary roots per the real / complex /
// repeated views.
func (s *Solver) ClassifyRoots() (Classification, error) {
	aux, err := s.Auxiliary()
	if err != nil {
		return Classification{}, err
	}
	return aux.Roots.Classify(), nil
}

// polyFloats evaluates the coefficients of poly in r to float64,
// ascending degree, with a non-vanishing leading coefficient.
func polyFloats(poly symexpr.Expr, degree int) ([]float64, bool) {
	byDeg := symexpr.PolyCoeffs(poly, auxVar)
	out := make([]float64, degree+1)
	for deg, coeff := range byDeg {
		if deg < 0 || deg > degree {
			return nil, false
		}
		n, ok := coeff.Eval()
		if !ok {
			return nil, false
		}
		out[deg] = n.Float64()
	}
	if out[degree] == 0 {
		return nil, false
	}
	return out, true
}

// solvePoly finds all complex roots of the polynomial with the given
// ascending coefficients. Degrees one and two use closed formulas; the
// general case uses the eigenvalues of the companion matrix.
func solvePoly(coeffs []float64) RootSet {
	degree := len(coeffs) - 1
	var roots []complex128
	switch degree {
	case 1:
		roots = []complex128{complex(-coeffs[0]/coeffs[1], 0)}
	case 2:
		a, b, c := coeffs[2], coeffs[1], coeffs[0]
		disc := b*b - 4*a*c
		if disc >= 0 {
			sq := math.Sqrt(disc)
			roots = []complex128{
				complex((-b-sq)/(2*a), 0),
				complex((-b+sq)/(2*a), 0),
			}
		} else {
			re := -b / (2 * a)
			im := math.Sqrt(-disc) / (2 * a)
			roots = []complex128{complex(re, -im), complex(re, im)}
		}
	default:
		roots = companionRoots(coeffs)
	}
	sortRoots(roots)
	return RootSet{All: roots}
}

// companionRoots computes polynomial roots as the eigenvalues of the
// companion matrix of the monic polynomial.
func companionRoots(coeffs []float64) []complex128 {
	n := len(coeffs) - 1
	lead := coeffs[n]
	a := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		a.Set(0, i, -coeffs[n-1-i]/lead)
	}
	for i := 1; i < n; i++ {
		a.Set(i, i-1, 1)
	}
	var eig mat.Eigen
	if ok := eig.Factorize(a, mat.EigenNone); !ok {
		return nil
	}
	return eig.Values(nil)
}

func sortRoots(roots []complex128) {
	sort.Slice(roots, func(i, j int) bool {
		if real(roots[i]) != real(roots[j]) {
			return real(roots[i]) < real(roots[j])
		}
		return imag(roots[i]) < imag(roots[j])
	})
}

// RootSet is the ordered root multiset of the auxiliary polynomial.
type RootSet struct {
	All []complex128
}

// Classification gives the three views over a RootSet. Every root
// appears in exactly one of Real or Complex; Repeated lists each value
// whose multiplicity exceeds one, once.
type Classification struct {
	Real     []complex128
	Complex  []complex128
	Repeated []complex128
}

func (rs RootSet) Classify() Classification {
	var c Classification
	for _, root := range rs.All {
		if math.Abs(imag(root)) <= rootTol {
			c.Real = append(c.Real, complex(real(root), 0))
		} else {
			c.Complex = append(c.Complex, root)
		}
	}
	for _, g := range rs.Groups() {
		if g.Multiplicity > 1 {
			c.Repeated = append(c.Repeated, g.Value)
		}
	}
	return c
}

// RootGroup is a distinct root value with its multiplicity.
type RootGroup struct {
	Value        complex128
	Multiplicity int
}

// Groups collapses the multiset into distinct values by tolerance
// comparison, preserving sorted order.
func (rs RootSet) Groups() []RootGroup {
	groups := []RootGroup{}
	for _, root := range rs.All {
		matched := false
		for i := range groups {
			if cmplx.Abs(root-groups[i].Value) <= rootTol {
				groups[i].Multiplicity++
				matched = true
				break
			}
		}
		if !matched {
			groups = append(groups, RootGroup{Value: root, Multiplicity: 1})
		}
	}
	return groups
}
