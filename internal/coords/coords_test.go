package coords

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexiusacademia/gotriple/internal/expr"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		want System
	}{
		{"rectangular", Rectangular},
		{"Rectangulares", Rectangular},
		{"cylindrical", Cylindrical},
		{"cilíndricas", Cylindrical},
		{"  CILINDRICAS ", Cylindrical},
		{"spherical", Spherical},
		{"esféricas", Spherical},
		{"sph", Spherical},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseUnsupported(t *testing.T) {
	_, err := Parse("toroidal")
	var ue *UnsupportedError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, "toroidal", ue.Name)
	assert.False(t, System(7).Valid())
	assert.Equal(t, "System(7)", System(7).String())
}

func TestVariablesAndOrders(t *testing.T) {
	assert.Equal(t, [3]string{"x", "y", "z"}, Rectangular.Variables())
	assert.Equal(t, [3]string{"z", "y", "x"}, Rectangular.DefaultOrder())
	assert.Equal(t, [3]string{"z", "r", "theta"}, Cylindrical.DefaultOrder())
	assert.Equal(t, [3]string{"rho", "phi", "theta"}, Spherical.DefaultOrder())
	assert.True(t, Spherical.IsNative("phi"))
	assert.False(t, Spherical.IsNative("z"))
}

func TestTransform(t *testing.T) {
	tests := []struct {
		system       System
		input        string
		native, full string
	}{
		{Rectangular, "x*y*z", "x*y*z", "x*y*z"},
		{Rectangular, "1", "1", "1"},
		{Cylindrical, "x^2 + y^2", "r^2", "r^3"},
		{Cylindrical, "z", "z", "r*z"},
		{Cylindrical, "1", "1", "r"},
		{Spherical, "x^2 + y^2 + z^2", "rho^2", "rho^4*sin(phi)"},
		{Spherical, "1", "1", "rho^2*sin(phi)"},
		{Spherical, "z", "cos(phi)*rho", "cos(phi)*rho^3*sin(phi)"},
	}
	for _, tt := range tests {
		t.Run(tt.system.String()+"/"+tt.input, func(t *testing.T) {
			native, full := tt.system.Transform(expr.MustParse(tt.input))
			assert.Equal(t, tt.native, expr.Render(native))
			assert.Equal(t, tt.full, expr.Render(full))
		})
	}
}

func TestSubstitutionIsCopied(t *testing.T) {
	sub := Cylindrical.Substitution()
	sub["x"] = expr.N(0)
	native, _ := Cylindrical.Transform(expr.MustParse("x"))
	assert.Equal(t, "cos(theta)*r", expr.Render(native))
	assert.Empty(t, Rectangular.Substitution())
}

func TestToCartesian(t *testing.T) {
	x, y, z := Cylindrical.ToCartesian(map[string]float64{"r": 2, "theta": math.Pi / 2, "z": 3})
	assert.InDelta(t, 0, x, 1e-12)
	assert.InDelta(t, 2, y, 1e-12)
	assert.Equal(t, 3.0, z)

	x, y, z = Spherical.ToCartesian(map[string]float64{"rho": 1, "phi": 0, "theta": 1})
	assert.InDelta(t, 0, x, 1e-12)
	assert.InDelta(t, 0, y, 1e-12)
	assert.InDelta(t, 1, z, 1e-12)
}

func TestSymbol(t *testing.T) {
	assert.Equal(t, "θ", Symbol("theta"))
	assert.Equal(t, "ρ", Symbol("rho"))
	assert.Equal(t, "x", Symbol("x"))
}
