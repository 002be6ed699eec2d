package parse_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/odekit/parse"
	"github.com/njchilds90/odekit/symexpr"
)

func TestExpr_Number(t *testing.T) {
	e, err := parse.Expr("42")
	require.NoError(t, err)
	assert.Equal(t, "42", e.String())
}

func TestExpr_Decimal(t *testing.T) {
	e, err := parse.Expr("0.5")
	require.NoError(t, err)
	assert.Equal(t, "1/2", e.String())
}

func TestExpr_ImplicitMultiplication(t *testing.T) {
	e, err := parse.Expr("2x")
	require.NoError(t, err)
	assert.Equal(t, "2*x", e.String())
}

func TestExpr_ImplicitMultiplicationParen(t *testing.T) {
	e, err := parse.Expr("3(x + 1)")
	require.NoError(t, err)
	assert.True(t, e.Equal(symexpr.MulOf(symexpr.N(3), symexpr.AddOf(symexpr.S("x"), symexpr.N(1)))))
}

func TestExpr_Division(t *testing.T) {
	e, err := parse.Expr("x/2")
	require.NoError(t, err)
	assert.Equal(t, "1/2*x", e.String())
}

func TestExpr_PowerRightAssociative(t *testing.T) {
	e, err := parse.Expr("x^2")
	require.NoError(t, err)
	assert.Equal(t, "x^2", e.String())
}

func TestExpr_DoubleStarPower(t *testing.T) {
	e, err := parse.Expr("y**2")
	require.NoError(t, err)
	assert.Equal(t, "y^2", e.String())
}

func TestExpr_NegativeExponent(t *testing.T) {
	_, err := parse.Expr("x^-1")
	require.NoError(t, err)
}

func TestExpr_Function(t *testing.T) {
	e, err := parse.Expr("sin(x)")
	require.NoError(t, err)
	assert.Equal(t, "sin(x)", e.String())
}

func TestExpr_EulerPower(t *testing.T) {
	e, err := parse.Expr("e^x")
	require.NoError(t, err)
	assert.Equal(t, "exp(x)", e.String())
}

func TestExpr_Primes(t *testing.T) {
	e, err := parse.Expr("y''")
	require.NoError(t, err)
	assert.True(t, e.Equal(symexpr.Y(2)))
}

func TestExpr_FourthOrderPrimes(t *testing.T) {
	e, err := parse.Expr("y''''")
	require.NoError(t, err)
	assert.True(t, e.Equal(symexpr.Y(4)))
}

func TestExpr_ExplicitFunctionOfX(t *testing.T) {
	e, err := parse.Expr("y(x)")
	require.NoError(t, err)
	assert.True(t, e.Equal(symexpr.Y(0)))
}

func TestExpr_PrimeWithArgument(t *testing.T) {
	e, err := parse.Expr("y'(x)")
	require.NoError(t, err)
	assert.True(t, e.Equal(symexpr.Y(1)))
}

func TestExpr_UnaryMinus(t *testing.T) {
	e, err := parse.Expr("-x")
	require.NoError(t, err)
	assert.Equal(t, "-1*x", e.String())
}

func TestExpr_UnknownIdentifier(t *testing.T) {
	_, err := parse.Expr("foo")
	assert.Error(t, err)
}

func TestExpr_MissingParen(t *testing.T) {
	_, err := parse.Expr("sin(x")
	assert.Error(t, err)
}

func TestEquation_MovesRHS(t *testing.T) {
	e, err := parse.Equation("y' = y")
	require.NoError(t, err)
	coeffs, ok := symexpr.AtomCoeffs(e, symexpr.Y(0))
	require.True(t, ok)
	assert.Equal(t, "-1", coeffs[1].String())
}

func TestEquation_NoEqualsSign(t *testing.T) {
	e, err := parse.Equation("y'' + y")
	require.NoError(t, err)
	order, ok := symexpr.MaxDerivOrder(e, "y")
	require.True(t, ok)
	assert.Equal(t, 2, order)
}

func TestEquation_SecondOrderWithCoefficients(t *testing.T) {
	e, err := parse.Equation("y'' + 3y' - 4y = 0")
	require.NoError(t, err)
	coeffs, ok := symexpr.AtomCoeffs(e, symexpr.Y(1))
	require.True(t, ok)
	assert.Equal(t, "3", coeffs[1].String())
}

func TestEquation_DoubleEqualsRejected(t *testing.T) {
	_, err := parse.Equation("y' = y = 0")
	assert.Error(t, err)
}

func TestExpr_Juxtaposition(t *testing.T) {
	e, err := parse.Expr("x sin(x)")
	require.NoError(t, err)
	f, err := symexpr.Compile(e, []string{"x"})
	require.NoError(t, err)
	assert.InDelta(t, 0.8414709848078965, f([]float64{1}), 1e-12)
}
