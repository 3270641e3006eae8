package quadrature

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constLimits(lo, hi float64) func(map[string]float64) (float64, float64, error) {
	return func(map[string]float64) (float64, float64, error) { return lo, hi, nil }
}

func unitCube() []Level {
	return []Level{
		{Variable: "z", Limits: constLimits(0, 1)},
		{Variable: "y", Limits: constLimits(0, 1)},
		{Variable: "x", Limits: constLimits(0, 1)},
	}
}

func TestUnitCube(t *testing.T) {
	one := func(map[string]float64) (float64, error) { return 1, nil }
	est, err := Integrate(context.Background(), one, unitCube(), DefaultOptions())
	require.NoError(t, err)
	assert.InDelta(t, 1.0, est.Value, 1e-12)
	assert.Equal(t, 22*22*22, est.Evaluations)
	assert.Zero(t, est.Subdivisions)
}

func TestDependentLimits(t *testing.T) {
	f := func(env map[string]float64) (float64, error) { return env["z"], nil }
	levels := []Level{
		{Variable: "z", Limits: func(env map[string]float64) (float64, float64, error) {
			return 0, env["x"] + env["y"], nil
		}},
		{Variable: "y", Limits: constLimits(0, 1)},
		{Variable: "x", Limits: constLimits(0, 1)},
	}
	est, err := Integrate(context.Background(), f, levels, DefaultOptions())
	require.NoError(t, err)
	assert.InDelta(t, 7.0/12.0, est.Value, 1e-10)
	assert.Less(t, est.AbsError, 1e-8)
}

func TestSphereVolume(t *testing.T) {
	jacobian := func(env map[string]float64) (float64, error) {
		return env["rho"] * env["rho"] * math.Sin(env["phi"]), nil
	}
	levels := []Level{
		{Variable: "rho", Limits: constLimits(0, 1)},
		{Variable: "phi", Limits: constLimits(0, math.Pi)},
		{Variable: "theta", Limits: constLimits(0, 2*math.Pi)},
	}
	est, err := Integrate(context.Background(), jacobian, levels, DefaultOptions())
	require.NoError(t, err)
	assert.InDelta(t, 4*math.Pi/3, est.Value, 1e-9)
}

func kink(env map[string]float64) (float64, error) { return math.Abs(env["x"] - 1.0/3.0), nil }

func TestAdaptiveSubdivision(t *testing.T) {
	levels := []Level{{Variable: "x", Limits: constLimits(0, 1)}}
	est, err := Integrate(context.Background(), kink, levels, Options{AbsTol: 1e-8, RelTol: 1e-8})
	require.NoError(t, err)
	assert.InDelta(t, 5.0/18.0, est.Value, 1e-7)
	assert.Positive(t, est.Subdivisions)
}

func TestEndpointSingularities(t *testing.T) {
	tests := []struct {
		name string
		f    Integrand
		want float64
	}{
		{"sqrt", func(env map[string]float64) (float64, error) { return math.Sqrt(env["x"]), nil }, 1.0 / 1.5},
		{"inverse sqrt", func(env map[string]float64) (float64, error) { return 1 / math.Sqrt(env["x"]), nil }, 2},
		{"nested sqrt", func(env map[string]float64) (float64, error) {
			return math.Sqrt(env["x"]) * math.Sqrt(env["y"]) * math.Exp(env["z"]*env["z"]), nil
		}, 0.6500674426254141},
		{"sqrt of product", func(env map[string]float64) (float64, error) {
			return math.Sqrt(env["x"]*env["y"]) * math.Exp(env["z"]*env["z"]), nil
		}, 0.6500674426254141},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			est, err := Integrate(context.Background(), tt.f, unitCube(), DefaultOptions())
			require.NoError(t, err)
			assert.InDelta(t, tt.want, est.Value, 1e-8)
			assert.Less(t, est.Evaluations, 200_000)
		})
	}
}

func TestReversedLimits(t *testing.T) {
	f := func(env map[string]float64) (float64, error) { return env["x"], nil }
	levels := []Level{{Variable: "x", Limits: constLimits(1, 0)}}
	est, err := Integrate(context.Background(), f, levels, DefaultOptions())
	require.NoError(t, err)
	assert.InDelta(t, -0.5, est.Value, 1e-12)
}

func TestFailures(t *testing.T) {
	one := func(map[string]float64) (float64, error) { return 1, nil }
	line := []Level{{Variable: "x", Limits: constLimits(0, 1)}}

	t.Run("non-finite integrand", func(t *testing.T) {
		f := func(env map[string]float64) (float64, error) {
			if env["x"] > 0.5 {
				return math.NaN(), nil
			}
			return 1, nil
		}
		_, err := Integrate(context.Background(), f, line, DefaultOptions())
		assert.ErrorIs(t, err, ErrNonFinite)
	})

	t.Run("budget", func(t *testing.T) {
		_, err := Integrate(context.Background(), one, unitCube(), Options{MaxEvaluations: 100})
		assert.ErrorIs(t, err, ErrBudget)
	})

	t.Run("not converged", func(t *testing.T) {
		_, err := Integrate(context.Background(), kink, line, Options{AbsTol: 1e-15, RelTol: 1e-15, MaxDepth: 1})
		assert.ErrorIs(t, err, ErrNotConverged)
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := Integrate(ctx, one, unitCube(), DefaultOptions())
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("limit error", func(t *testing.T) {
		boom := errors.New("boom")
		levels := []Level{{Variable: "x", Limits: func(map[string]float64) (float64, float64, error) {
			return 0, 0, boom
		}}}
		_, err := Integrate(context.Background(), one, levels, DefaultOptions())
		assert.ErrorIs(t, err, boom)
	})

	t.Run("no levels", func(t *testing.T) {
		_, err := Integrate(context.Background(), one, nil, DefaultOptions())
		assert.Error(t, err)
	})
}
