package expr

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================
// Construction and simplification
// ============================================================

func TestSimplifyCanonicalForms(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"x + 2*x", "3*x"},
		{"x*y*x", "x^2*y"},
		{"x - x", "0"},
		{"-x", "-x"},
		{"x - 2*y", "x - 2*y"},
		{"y + x", "x + y"},
		{"2^3", "8"},
		{"2**-1", "1/2"},
		{"1.5*x", "3/2*x"},
		{"(x^2)^3", "x^6"},
		{"x^2/x", "x"},
		{"4^(1/2)", "2"},
		{"sqrt(9/4)", "3/2"},
		{"sin(x)^2 + cos(x)^2", "1"},
		{"3*sin(theta)^2 + 3*cos(theta)^2 + z", "z + 3"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			e, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, Render(e))
		})
	}
}

func TestExactSpecialValues(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"sin(pi)", "0"},
		{"cos(pi)", "-1"},
		{"cos(pi/2)", "0"},
		{"sin(3*pi/2)", "-1"},
		{"cos(2*pi)", "1"},
		{"tan(pi)", "0"},
		{"exp(0)", "1"},
		{"log(1)", "0"},
		{"ln(e)", "1"},
		{"exp(log(x))", "x"},
		{"abs(-3)", "3"},
		{"sin(-x)", "-sin(x)"},
		{"cos(-x)", "cos(x)"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, Render(MustParse(tt.input)))
		})
	}
}

func TestPythagoreanAcrossFactors(t *testing.T) {
	// x^2 + y^2 in cylindrical coordinates.
	sub := map[string]Expr{
		"x": MustParse("r*cos(theta)"),
		"y": MustParse("r*sin(theta)"),
	}
	got := Substitute(MustParse("x^2 + y^2"), sub)
	assert.Equal(t, "r^2", Render(got))
	assert.True(t, MulOf(got, S("r")).Equal(MustParse("r^3")))
}

func TestPythagoreanSpherical(t *testing.T) {
	sub := map[string]Expr{
		"x": MustParse("rho*sin(phi)*cos(theta)"),
		"y": MustParse("rho*sin(phi)*sin(theta)"),
		"z": MustParse("rho*cos(phi)"),
	}
	got := Substitute(MustParse("x^2 + y^2 + z^2"), sub)
	assert.Equal(t, "rho^2", Render(got))
}

func TestSubstituteIsSimultaneous(t *testing.T) {
	got := Substitute(MustParse("x + 2*y"), map[string]Expr{
		"x": S("y"),
		"y": S("x"),
	})
	assert.Equal(t, "2*x + y", Render(got))
}

func TestEvaluateIfConstant(t *testing.T) {
	v, ok := EvaluateIfConstant(MustParse("2*pi"))
	require.True(t, ok)
	assert.InDelta(t, 2*math.Pi, v, 1e-15)

	_, ok = EvaluateIfConstant(MustParse("x + 1"))
	assert.False(t, ok)
}

func TestFloatRejectsNonFinite(t *testing.T) {
	_, err := Float(MustParse("log(x)"), map[string]float64{"x": 0})
	assert.ErrorIs(t, err, ErrNonFinite)

	_, err = Float(MustParse("x + y"), map[string]float64{"x": 1})
	assert.ErrorIs(t, err, ErrUnboundSymbol)

	v, err := Float(MustParse("x*y"), map[string]float64{"x": 2, "y": 3})
	require.NoError(t, err)
	assert.Equal(t, 6.0, v)
}

func TestFreeSymbols(t *testing.T) {
	assert.Equal(t, []string{"r", "theta", "z"}, FreeSymbols(MustParse("z*r*cos(theta) + pi")))
	assert.Empty(t, FreeSymbols(MustParse("e^2")))
	assert.True(t, DependsOn(MustParse("sin(x*y)"), "y"))
	assert.False(t, DependsOn(MustParse("sin(x)"), "y"))
}

func TestDiff(t *testing.T) {
	tests := []struct {
		input, v, want string
	}{
		{"x^3", "x", "3*x^2"},
		{"sin(2*x)", "x", "2*cos(2*x)"},
		{"x*y", "y", "x"},
		{"exp(x^2)", "x", "2*exp(x^2)*x"},
		{"log(x)", "x", "x^(-1)"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, Render(Diff(MustParse(tt.input), tt.v)))
		})
	}
}

func TestExpandAndEquivalent(t *testing.T) {
	assert.Equal(t, "2*x + x^2 + 1", Render(Expand(MustParse("(x + 1)^2"))))
	assert.True(t, Equivalent(MustParse("(x + y)*(x - y)"), MustParse("x^2 - y^2")))
	assert.False(t, Equivalent(MustParse("(x + y)^2"), MustParse("x^2 + y^2")))
}

func TestLaTeX(t *testing.T) {
	assert.Equal(t, "\\frac{1}{2}", LaTeX(F(1, 2)))
	assert.Equal(t, "\\rho^{2} \\sin\\left(\\phi\\right)", LaTeX(MustParse("rho^2*sin(phi)")))
	assert.Equal(t, "\\sqrt{x}", LaTeX(MustParse("sqrt(x)")))
}

func TestFinite(t *testing.T) {
	assert.True(t, Finite(MustParse("pi/2")))
	assert.False(t, Finite(PowOf(N(0), N(-1))))
	assert.False(t, Finite(LogOf(N(0))))
	assert.True(t, Finite(MustParse("x^(-1)")))
}

func TestErrorsAreSentinels(t *testing.T) {
	_, err := Integrate(MustParse("exp(x)*sin(x)"), "x")
	assert.True(t, errors.Is(err, ErrUnsupported))
}
