package symexpr_test

import (
	"math"
	"testing"

	"github.com/njchilds90/odekit/symexpr"
)

// ============================================================
// Num tests
// ============================================================

func TestNum_Integer(t *testing.T) {
	n := symexpr.N(42)
	if n.String() != "42" {
		t.Errorf("want 42, got %s", n.String())
	}
}

func TestNum_Rational(t *testing.T) {
	n := symexpr.F(1, 3)
	if n.String() != "1/3" {
		t.Errorf("want 1/3, got %s", n.String())
	}
}

func TestNum_LaTeX_Rational(t *testing.T) {
	n := symexpr.F(2, 5)
	if n.LaTeX() != `\frac{2}{5}` {
		t.Errorf("want \\frac{2}{5}, got %s", n.LaTeX())
	}
}

func TestNum_Diff_IsZero(t *testing.T) {
	result := symexpr.N(5).Diff("x")
	if symexpr.String(result) != "0" {
		t.Errorf("d/dx(5) should be 0, got %s", symexpr.String(result))
	}
}

// ============================================================
// Sym tests
// ============================================================

func TestSym_Sub_Match(t *testing.T) {
	result := symexpr.S("x").Sub("x", symexpr.N(3))
	if symexpr.String(result) != "3" {
		t.Errorf("want 3, got %s", symexpr.String(result))
	}
}

func TestSym_Diff_Self(t *testing.T) {
	result := symexpr.S("x").Diff("x")
	if symexpr.String(result) != "1" {
		t.Errorf("d/dx(x) should be 1, got %s", symexpr.String(result))
	}
}

// ============================================================
// Add / Mul / Pow tests
// ============================================================

func TestAdd_CollectsLikeSymbols(t *testing.T) {
	expr := symexpr.AddOf(symexpr.S("x"), symexpr.S("x"), symexpr.N(1))
	if expr.String() != "2*x + 1" {
		t.Errorf("want '2*x + 1', got %s", expr.String())
	}
}

func TestMul_FoldsNumbers(t *testing.T) {
	expr := symexpr.MulOf(symexpr.N(2), symexpr.S("x"), symexpr.N(3))
	if expr.String() != "6*x" {
		t.Errorf("want '6*x', got %s", expr.String())
	}
}

func TestMul_ZeroAnnihilates(t *testing.T) {
	expr := symexpr.MulOf(symexpr.N(0), symexpr.S("x"), symexpr.SinOf(symexpr.S("x")))
	if expr.String() != "0" {
		t.Errorf("want 0, got %s", expr.String())
	}
}

func TestPow_ExponentZero(t *testing.T) {
	expr := symexpr.PowOf(symexpr.S("x"), symexpr.N(0))
	if expr.String() != "1" {
		t.Errorf("want 1, got %s", expr.String())
	}
}

func TestPow_String_FractionalExponentParenthesized(t *testing.T) {
	expr := symexpr.PowOf(symexpr.S("x"), symexpr.F(1, 2))
	if expr.String() != "x^(1/2)" {
		t.Errorf("want x^(1/2), got %s", expr.String())
	}
}

func TestPow_String_IntegerExponentBare(t *testing.T) {
	expr := symexpr.PowOf(symexpr.S("x"), symexpr.N(-1))
	if expr.String() != "x^-1" {
		t.Errorf("want x^-1, got %s", expr.String())
	}
}

func TestPow_Diff_PowerRule(t *testing.T) {
	result := symexpr.Diff(symexpr.PowOf(symexpr.S("x"), symexpr.N(3)), "x")
	if result.String() != "3*x^2" {
		t.Errorf("d/dx(x^3) should be 3*x^2, got %s", result.String())
	}
}

func TestMul_Diff_ProductRule(t *testing.T) {
	// d/dx(x*sin(x)) = sin(x) + x*cos(x)
	expr := symexpr.MulOf(symexpr.S("x"), symexpr.SinOf(symexpr.S("x")))
	result := symexpr.Diff(expr, "x")
	at := func(x float64) float64 {
		f, err := symexpr.Compile(result, []string{"x"})
		if err != nil {
			t.Fatalf("compile: %v", err)
		}
		return f([]float64{x})
	}
	want := math.Sin(1.3) + 1.3*math.Cos(1.3)
	if got := at(1.3); math.Abs(got-want) > 1e-12 {
		t.Errorf("product rule at 1.3: want %g, got %g", want, got)
	}
}

// ============================================================
// Func tests
// ============================================================

func TestFunc_SinZero(t *testing.T) {
	if symexpr.SinOf(symexpr.N(0)).String() != "0" {
		t.Errorf("sin(0) should simplify to 0")
	}
}

func TestFunc_LnExpCancels(t *testing.T) {
	expr := symexpr.LnOf(symexpr.ExpOf(symexpr.S("x")))
	if expr.String() != "x" {
		t.Errorf("ln(exp(x)) should be x, got %s", expr.String())
	}
}

func TestFunc_Diff_Chain(t *testing.T) {
	// d/dx exp(2x) = 2*exp(2x)
	expr := symexpr.ExpOf(symexpr.MulOf(symexpr.N(2), symexpr.S("x")))
	result := symexpr.Diff(expr, "x")
	if result.String() != "2*exp(2*x)" {
		t.Errorf("want 2*exp(2*x), got %s", result.String())
	}
}

// ============================================================
// Deriv tests
// ============================================================

func TestDeriv_String(t *testing.T) {
	cases := map[int]string{0: "y", 1: "y'", 2: "y''", 5: "y^(5)"}
	for order, want := range cases {
		if got := symexpr.Y(order).String(); got != want {
			t.Errorf("order %d: want %s, got %s", order, want, got)
		}
	}
}

func TestDeriv_Diff_RaisesOrder(t *testing.T) {
	result := symexpr.Y(1).Diff("x")
	if !result.Equal(symexpr.Y(2)) {
		t.Errorf("d/dx(y') should be y'', got %s", result.String())
	}
}

func TestDeriv_Diff_OtherVariable(t *testing.T) {
	result := symexpr.Y(1).Diff("t")
	if result.String() != "0" {
		t.Errorf("d/dt(y') should be 0, got %s", result.String())
	}
}

func TestDeriv_AddCollectsLikeAtoms(t *testing.T) {
	expr := symexpr.AddOf(symexpr.Y(1), symexpr.Y(1))
	if expr.String() != "2*y'" {
		t.Errorf("want 2*y', got %s", expr.String())
	}
}

func TestReplaceDeriv(t *testing.T) {
	// y'' + 3y' + y with y' -> u
	expr := symexpr.AddOf(
		symexpr.Y(2),
		symexpr.MulOf(symexpr.N(3), symexpr.Y(1)),
		symexpr.Y(0),
	)
	result := symexpr.ReplaceDeriv(expr, "y", 1, symexpr.S("u"))
	if symexpr.ContainsDeriv(result, "y") == false {
		t.Fatalf("y and y'' should survive")
	}
	order, ok := symexpr.MaxDerivOrder(result, "y")
	if !ok || order != 2 {
		t.Errorf("max order after replace should be 2, got %d", order)
	}
	if _, free := symexpr.FreeSymbols(result)["u"]; !free {
		t.Errorf("u should appear after replacement, got %s", result.String())
	}
}

func TestReplaceDeriv_InsideFunc(t *testing.T) {
	expr := symexpr.SinOf(symexpr.Y(0))
	result := symexpr.ReplaceDeriv(expr, "y", 0, symexpr.S("y0"))
	if result.String() != "sin(y0)" {
		t.Errorf("want sin(y0), got %s", result.String())
	}
}

func TestMaxDerivOrder_Absent(t *testing.T) {
	_, ok := symexpr.MaxDerivOrder(symexpr.S("x"), "y")
	if ok {
		t.Errorf("x contains no derivative of y")
	}
}

// ============================================================
// Equation tests
// ============================================================

func TestEquation_Residual(t *testing.T) {
	eq := symexpr.Eq(symexpr.Y(1), symexpr.Y(0))
	res := eq.Residual()
	coeffs, ok := symexpr.AtomCoeffs(res, symexpr.Y(0))
	if !ok {
		t.Fatalf("residual should be polynomial in y")
	}
	if c, exists := coeffs[1]; !exists || c.String() != "-1" {
		t.Errorf("coefficient of y in y' - y should be -1")
	}
}

// ============================================================
// Expand / AtomCoeffs tests
// ============================================================

func TestExpand_Square(t *testing.T) {
	expr := symexpr.Expand(symexpr.PowOf(symexpr.AddOf(symexpr.S("x"), symexpr.N(1)), symexpr.N(2)))
	f, err := symexpr.Compile(expr, []string{"x"})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if got := f([]float64{3}); got != 16 {
		t.Errorf("(3+1)^2 should be 16, got %g", got)
	}
}

func TestAtomCoeffs_Linear(t *testing.T) {
	// y'' + 3y' - 4y, coefficients in y'
	expr := symexpr.AddOf(
		symexpr.Y(2),
		symexpr.MulOf(symexpr.N(3), symexpr.Y(1)),
		symexpr.MulOf(symexpr.N(-4), symexpr.Y(0)),
	)
	coeffs, ok := symexpr.AtomCoeffs(expr, symexpr.Y(1))
	if !ok {
		t.Fatalf("expected polynomial decomposition")
	}
	if coeffs[1].String() != "3" {
		t.Errorf("coefficient of y' should be 3, got %s", coeffs[1].String())
	}
}

func TestAtomCoeffs_NonPolynomial(t *testing.T) {
	_, ok := symexpr.AtomCoeffs(symexpr.SinOf(symexpr.Y(0)), symexpr.Y(0))
	if ok {
		t.Errorf("sin(y) is not polynomial in y")
	}
}

// ============================================================
// Integrate tests
// ============================================================

func TestIntegrate_PowerRule(t *testing.T) {
	result, ok := symexpr.Integrate(symexpr.S("x"), "x")
	if !ok || result.String() != "1/2*x^2" {
		t.Errorf("want 1/2*x^2, got %s (ok=%v)", symexpr.String(result), ok)
	}
}

func TestIntegrate_Reciprocal(t *testing.T) {
	result, ok := symexpr.Integrate(symexpr.PowOf(symexpr.S("x"), symexpr.N(-1)), "x")
	if !ok || result.String() != "ln(abs(x))" {
		t.Errorf("want ln(abs(x)), got %s (ok=%v)", symexpr.String(result), ok)
	}
}

func TestIntegrate_InverseSquare(t *testing.T) {
	result, ok := symexpr.Integrate(symexpr.PowOf(symexpr.S("y"), symexpr.N(-2)), "y")
	if !ok {
		t.Fatalf("y^-2 should integrate")
	}
	want := symexpr.MulOf(symexpr.N(-1), symexpr.PowOf(symexpr.S("y"), symexpr.N(-1)))
	if !result.Equal(want) {
		t.Errorf("want -y^-1, got %s", result.String())
	}
}

func TestIntegrate_ExpLinearArg(t *testing.T) {
	expr := symexpr.ExpOf(symexpr.MulOf(symexpr.N(3), symexpr.S("x")))
	result, ok := symexpr.Integrate(expr, "x")
	if !ok || result.String() != "1/3*exp(3*x)" {
		t.Errorf("want 1/3*exp(3*x), got %s (ok=%v)", symexpr.String(result), ok)
	}
}

func TestIntegrate_Unsupported(t *testing.T) {
	// x*sin(x) needs integration by parts
	expr := symexpr.MulOf(symexpr.S("x"), symexpr.SinOf(symexpr.S("x")))
	if _, ok := symexpr.Integrate(expr, "x"); ok {
		t.Errorf("x*sin(x) should not integrate with the rule set")
	}
}

// ============================================================
// Compile tests
// ============================================================

func TestCompile_Polynomial(t *testing.T) {
	expr := symexpr.AddOf(
		symexpr.PowOf(symexpr.S("x"), symexpr.N(2)),
		symexpr.MulOf(symexpr.N(2), symexpr.S("y0")),
	)
	f, err := symexpr.Compile(expr, []string{"x", "y0"})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if got := f([]float64{3, 4}); got != 17 {
		t.Errorf("3^2 + 2*4 should be 17, got %g", got)
	}
}

func TestCompile_UnboundSymbol(t *testing.T) {
	if _, err := symexpr.Compile(symexpr.S("z"), []string{"x"}); err == nil {
		t.Errorf("unbound symbol should fail to compile")
	}
}

func TestCompile_DerivAtomRejected(t *testing.T) {
	if _, err := symexpr.Compile(symexpr.Y(1), []string{"x"}); err == nil {
		t.Errorf("derivative atoms cannot be compiled")
	}
}

func TestCompile_DomainErrorIsNaN(t *testing.T) {
	f, err := symexpr.Compile(symexpr.LnOf(symexpr.S("x")), []string{"x"})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if !math.IsNaN(f([]float64{-1})) {
		t.Errorf("ln(-1) should evaluate to NaN")
	}
}

// ============================================================
// RatApprox tests
// ============================================================

func TestRatApprox_Half(t *testing.T) {
	r, ok := symexpr.RatApprox(0.5, 1000)
	if !ok || r.RatString() != "1/2" {
		t.Errorf("want 1/2, got %v (ok=%v)", r, ok)
	}
}

func TestRatApprox_NegativeThird(t *testing.T) {
	r, ok := symexpr.RatApprox(-1.0/3.0, 1000)
	if !ok || r.RatString() != "-1/3" {
		t.Errorf("want -1/3, got %v (ok=%v)", r, ok)
	}
}

func TestRatApprox_Irrational(t *testing.T) {
	if _, ok := symexpr.RatApprox(math.Sqrt2, 100); ok {
		t.Errorf("sqrt(2) should not snap with denominator bound 100")
	}
}

func TestRatApprox_NaN(t *testing.T) {
	if _, ok := symexpr.RatApprox(math.NaN(), 1000); ok {
		t.Errorf("NaN should not snap")
	}
}
