package bounds

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexiusacademia/gotriple/internal/coords"
	"github.com/alexiusacademia/gotriple/internal/expr"
)

func pair(lo, hi string) Pair {
	return Pair{Lower: expr.MustParse(lo), Upper: expr.MustParse(hi)}
}

func TestResolveScopes(t *testing.T) {
	res, err := Resolve(coords.Rectangular, [3]string{"z", "y", "x"}, map[string]Pair{
		"z": pair("0", "x + y"),
		"y": pair("0", "1 - x"),
		"x": pair("0", "1"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"y", "x"}, res.Levels[0].Scope)
	assert.Equal(t, []string{"x"}, res.Levels[1].Scope)
	assert.Empty(t, res.Levels[2].Scope)

	lo, hi, err := res.Levels[0].Limits(map[string]float64{"x": 0.25, "y": 0.5})
	require.NoError(t, err)
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 0.75, hi)

	lo, hi, err = res.Outermost()
	require.NoError(t, err)
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 1.0, hi)
	assert.Same(t, &res.Levels[1], res.Level("y"))
	assert.Nil(t, res.Level("r"))
}

func TestResolveRejectsOuterReferencingInner(t *testing.T) {
	_, err := Resolve(coords.Rectangular, [3]string{"z", "y", "x"}, map[string]Pair{
		"z": pair("0", "1"),
		"y": pair("0", "1"),
		"x": pair("0", "z"),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDependency))
	var de *DependencyError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "x", de.Variable)
	assert.Equal(t, "upper", de.Bound)
	assert.Equal(t, "z", de.Symbol)
	assert.Contains(t, de.Error(), "must be a constant")
}

func TestResolveRejectsMiddleReferencingInner(t *testing.T) {
	_, err := Resolve(coords.Cylindrical, [3]string{"z", "r", "theta"}, map[string]Pair{
		"z":     pair("0", "r"),
		"r":     pair("z", "1"),
		"theta": pair("0", "2*pi"),
	})
	var de *DependencyError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "r", de.Variable)
	assert.Equal(t, "lower", de.Bound)
	assert.Equal(t, []string{"theta"}, de.Allowed)
}

func TestResolveRejectsForeignVariables(t *testing.T) {
	_, err := Resolve(coords.Spherical, [3]string{"rho", "phi", "theta"}, map[string]Pair{
		"rho":   pair("0", "x"),
		"phi":   pair("0", "pi"),
		"theta": pair("0", "2*pi"),
	})
	assert.ErrorIs(t, err, ErrDependency)
}

func TestCheckOrder(t *testing.T) {
	assert.NoError(t, CheckOrder(coords.Spherical, [3]string{"theta", "rho", "phi"}))
	assert.ErrorIs(t, CheckOrder(coords.Spherical, [3]string{"rho", "phi", "z"}), ErrInvalidOrder)
	assert.ErrorIs(t, CheckOrder(coords.Rectangular, [3]string{"x", "x", "y"}), ErrInvalidOrder)
}

func TestResolveMissingBound(t *testing.T) {
	_, err := Resolve(coords.Rectangular, [3]string{"z", "y", "x"}, map[string]Pair{
		"z": pair("0", "1"),
		"x": pair("0", "1"),
	})
	assert.ErrorIs(t, err, ErrMissingBound)
}

func TestLimitsNonFinite(t *testing.T) {
	res, err := Resolve(coords.Rectangular, [3]string{"z", "y", "x"}, map[string]Pair{
		"z": pair("0", "log(x)"),
		"y": pair("0", "1"),
		"x": pair("0", "1"),
	})
	require.NoError(t, err)
	_, _, err = res.Levels[0].Limits(map[string]float64{"x": 0, "y": 0})
	assert.ErrorIs(t, err, ErrNonFiniteBound)

	_, _, err = res.Levels[0].Limits(map[string]float64{"y": 0})
	assert.ErrorIs(t, err, expr.ErrUnboundSymbol)
}

func TestResolveNonFiniteOutermost(t *testing.T) {
	_, err := Resolve(coords.Rectangular, [3]string{"z", "y", "x"}, map[string]Pair{
		"z": pair("0", "1"),
		"y": pair("0", "1"),
		"x": pair("log(0)", "1"),
	})
	assert.ErrorIs(t, err, ErrNonFiniteBound)
	assert.NotErrorIs(t, err, ErrDependency)
}

func TestOuterGrid(t *testing.T) {
	res, err := Resolve(coords.Rectangular, [3]string{"z", "y", "x"}, map[string]Pair{
		"z": pair("0", "x + y"),
		"y": pair("0", "2*x"),
		"x": pair("0", "1"),
	})
	require.NoError(t, err)

	envs, err := res.OuterGrid(2, 4)
	require.NoError(t, err)
	assert.Equal(t, []map[string]float64{{}}, envs)

	envs, err = res.OuterGrid(1, 4)
	require.NoError(t, err)
	require.Len(t, envs, 4)
	assert.Equal(t, []map[string]float64{{"x": 0.125}, {"x": 0.375}, {"x": 0.625}, {"x": 0.875}}, envs)

	envs, err = res.OuterGrid(0, 2)
	require.NoError(t, err)
	require.Len(t, envs, 4)
	// y follows its own limits [0, 2x] at each sampled x.
	assert.Equal(t, map[string]float64{"x": 0.25, "y": 0.125}, envs[0])
	assert.Equal(t, map[string]float64{"x": 0.25, "y": 0.375}, envs[1])
	assert.Equal(t, map[string]float64{"x": 0.75, "y": 0.375}, envs[2])
	assert.Equal(t, map[string]float64{"x": 0.75, "y": 1.125}, envs[3])

	_, err = res.OuterGrid(3, 4)
	assert.Error(t, err)
}
