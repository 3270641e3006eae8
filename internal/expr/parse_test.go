package expr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		position int
		token    string
	}{
		{"empty", "", 0, ""},
		{"blank", "   ", 3, ""},
		{"dangling operator", "x +* y", 3, "*"},
		{"unknown identifier", "foo + x", 0, "foo"},
		{"unbalanced", "(x + 1", 6, ""},
		{"trailing paren", "x)", 1, ")"},
		{"illegal character", "x $ y", 2, "$"},
		{"function without call", "sin x", 0, "sin"},
		{"division by zero", "x/0", 3, ""},
		{"implicit product", "2x", 1, "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			require.Error(t, err)
			var pe *ParseError
			require.True(t, errors.As(err, &pe), "want *ParseError, got %T", err)
			assert.Equal(t, tt.position, pe.Position)
			assert.Equal(t, tt.token, pe.Token)
		})
	}
}

func TestParsePrecedence(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"1 + 2*3", "7"},
		{"2^3^2", "512"},
		{"-2^2", "-4"},
		{"2*3^2", "18"},
		{"x**2", "x^2"},
		{"8/4/2", "1"},
		{"1e3", "1000"},
		{"2.5e-1", "1/4"},
		{"+x", "x"},
		{"ln(x)", "log(x)"},
		{"E", "e"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			e, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, Render(e))
		})
	}
}

func TestRenderRoundTrip(t *testing.T) {
	inputs := []string{
		"x^2 + y^2 + z^2",
		"r*z*cos(theta)",
		"rho^2*sin(phi)",
		"x - 2*y + 3/4",
		"(x + y)^(1/2)",
		"exp(-x^2)*sin(2*theta)",
		"1/(1 + x^2)",
		"-x*y",
		"2^x + e^(x*y)",
		"abs(x - 1) + atan(y)/pi",
	}
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			first := MustParse(input)
			second, err := Parse(Render(first))
			require.NoError(t, err, "rendered %q", Render(first))
			assert.True(t, first.Equal(second), "%q re-parsed as %q", Render(first), Render(second))
		})
	}
}

func TestMustParsePanics(t *testing.T) {
	assert.Panics(t, func() { MustParse("x +") })
}
