package expr

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================
// Antiderivatives
// ============================================================

func TestIntegrateRules(t *testing.T) {
	tests := []struct {
		name, input, v, want string
	}{
		{"constant", "5", "x", "5*x"},
		{"free symbol", "y", "x", "x*y"},
		{"power", "x^2", "x", "1/3*x^3"},
		{"linear power", "(2*x + 1)^3", "x", "1/8*(2*x + 1)^4"},
		{"reciprocal", "1/x", "x", "log(abs(x))"},
		{"sin", "sin(x)", "x", "-cos(x)"},
		{"cos scaled", "cos(3*x)", "x", "1/3*sin(3*x)"},
		{"exp", "exp(2*x)", "x", "1/2*exp(2*x)"},
		{"substitution", "x*exp(x^2)", "x", "1/2*exp(x^2)"},
		{"sin cos", "sin(x)*cos(x)", "x", "-1/2*cos(x)^2"},
		{"by parts", "x*exp(x)", "x", "-exp(x) + exp(x)*x"},
		{"constant factor", "rho^2*sin(phi)", "rho", "1/3*rho^3*sin(phi)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Integrate(MustParse(tt.input), tt.v)
			require.NoError(t, err)
			assert.Equal(t, tt.want, Render(got))
		})
	}
}

func TestIntegrateDerivativeRoundTrip(t *testing.T) {
	inputs := []string{
		"x^2*sin(x)",
		"x*log(x)",
		"atan(x)",
		"cos(x)^3",
		"(x^2 + 1)^2",
		"2^x",
	}
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			e := MustParse(input)
			antideriv, err := Integrate(e, "x")
			require.NoError(t, err)
			back := Diff(antideriv, "x")
			for _, x := range []float64{0.3, 0.7, 1.9} {
				want, err := e.Eval(map[string]float64{"x": x})
				require.NoError(t, err)
				got, err := back.Eval(map[string]float64{"x": x})
				require.NoError(t, err)
				assert.InDelta(t, want, got, 1e-9, "x=%v", x)
			}
		})
	}
}

func TestIntegrateUnsupported(t *testing.T) {
	for _, input := range []string{"exp(x^2)", "sin(x)/x", "exp(x)*sin(x)"} {
		t.Run(input, func(t *testing.T) {
			_, err := Integrate(MustParse(input), "x")
			assert.ErrorIs(t, err, ErrUnsupported)
		})
	}
}

// ============================================================
// Definite integrals
// ============================================================

func TestDefinite(t *testing.T) {
	tests := []struct {
		name, input, v, lo, hi, want string
	}{
		{"sin half period", "sin(x)", "x", "0", "pi", "2"},
		{"sin squared", "sin(x)^2", "x", "0", "pi", "1/2*pi"},
		{"by parts", "x*exp(x)", "x", "0", "1", "1"},
		{"dependent bound", "z", "z", "0", "x + y", "1/2*(x + y)^2"},
		{"sphere shell", "rho^2*sin(phi)", "phi", "0", "pi", "2*rho^2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Definite(MustParse(tt.input), tt.v, MustParse(tt.lo), MustParse(tt.hi), 0)
			require.NoError(t, err)
			assert.Equal(t, tt.want, Render(got))
		})
	}
}

func TestDefiniteDivergent(t *testing.T) {
	_, err := Definite(MustParse("1/x"), "x", N(0), N(1), 0)
	assert.ErrorIs(t, err, ErrNonFinite)
}

func TestDefiniteInteriorPoles(t *testing.T) {
	tests := []struct {
		name, input, lo, hi string
	}{
		{"double pole at zero", "1/x^2", "-1", "1"},
		{"odd pole at zero", "1/x", "-1", "1"},
		{"shifted double pole", "1/(x - 1/2)^2", "-1", "1"},
		{"tangent across pi/2", "tan(x)", "0", "pi"},
		{"inverse sqrt of negative span", "1/sqrt(x)", "-1", "1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Definite(MustParse(tt.input), "x", MustParse(tt.lo), MustParse(tt.hi), 0)
			assert.ErrorIs(t, err, ErrNonFinite)
		})
	}
}

func TestDefinitePolesOutsideInterval(t *testing.T) {
	got, err := Definite(MustParse("1/x^2"), "x", N(1), N(2), 0)
	require.NoError(t, err)
	assert.Equal(t, "1/2", Render(got))

	// An endpoint pole is fine when the antiderivative stays finite.
	got, err = Definite(MustParse("1/sqrt(x)"), "x", N(0), N(1), 0)
	require.NoError(t, err)
	assert.Equal(t, "2", Render(got))
}

func TestDefiniteOverOuterValues(t *testing.T) {
	f := MustParse("1/(x + y)^2")

	_, err := DefiniteOver(f, "x", N(-1), N(1), 0, []map[string]float64{{"y": 2}, {"y": 0.5}})
	assert.ErrorIs(t, err, ErrNonFinite)

	got, err := DefiniteOver(f, "x", N(-1), N(1), 0, []map[string]float64{{"y": 2}, {"y": 3}})
	require.NoError(t, err)
	v, err := Float(got, map[string]float64{"y": 2})
	require.NoError(t, err)
	assert.InDelta(t, 1.0-1.0/3.0, v, 1e-12)

	// Without values for y the poles cannot be located.
	_, err = Definite(f, "x", N(-1), N(1), 0)
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestDefiniteNumericAgreement(t *testing.T) {
	got, err := Definite(MustParse("x^2*sin(x)"), "x", N(0), Pi, 0)
	require.NoError(t, err)
	v, ok := EvaluateIfConstant(got)
	require.True(t, ok)
	assert.InDelta(t, math.Pi*math.Pi-4, v, 1e-12)
}
