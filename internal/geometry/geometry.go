// Package geometry samples the surfaces that bound an integration region so
// they can be drawn.
package geometry

import (
	"math"

	log "github.com/sirupsen/logrus"

	"github.com/alexiusacademia/gotriple/internal/bounds"
	"github.com/alexiusacademia/gotriple/internal/coords"
)

// Point is a position in Cartesian space.
type Point struct {
	X, Y, Z float64
}

// Mesh is a grid over the two outer variables. Row i follows the outer
// variable, column j the middle one. Lower and Upper hold the bounding
// surfaces of the innermost variable mapped to Cartesian space.
type Mesh struct {
	System coords.System
	Inner  string
	Middle string
	Outer  string

	OuterValues  []float64   // per row
	MiddleValues [][]float64 // per row and column
	InnerLower   [][]float64 // innermost limits at each node
	InnerUpper   [][]float64

	Lower [][]Point
	Upper [][]Point
}

// Rows returns the number of outer samples.
func (m *Mesh) Rows() int { return len(m.OuterValues) }

// Cols returns the number of middle samples per row.
func (m *Mesh) Cols() int {
	if len(m.MiddleValues) == 0 {
		return 0
	}
	return len(m.MiddleValues[0])
}

// Bounds returns the Cartesian bounding box of both surfaces.
func (m *Mesh) Bounds() (lo, hi Point) {
	lo = Point{math.Inf(1), math.Inf(1), math.Inf(1)}
	hi = Point{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, surface := range [][][]Point{m.Lower, m.Upper} {
		for _, row := range surface {
			for _, p := range row {
				lo.X, hi.X = math.Min(lo.X, p.X), math.Max(hi.X, p.X)
				lo.Y, hi.Y = math.Min(lo.Y, p.Y), math.Max(hi.Y, p.Y)
				lo.Z, hi.Z = math.Min(lo.Z, p.Z), math.Max(hi.Z, p.Z)
			}
		}
	}
	return lo, hi
}

// Sample evaluates the resolved limits on a resolution×resolution grid.
// It returns false when any limit cannot be evaluated to a finite number
// on the grid.
func Sample(res *bounds.Resolved, system coords.System, resolution int) (*Mesh, bool) {
	if res == nil || !system.Valid() || resolution < 2 {
		return nil, false
	}
	inner, middle, outer := &res.Levels[0], &res.Levels[1], &res.Levels[2]
	m := &Mesh{
		System:       system,
		Inner:        inner.Variable,
		Middle:       middle.Variable,
		Outer:        outer.Variable,
		OuterValues:  make([]float64, resolution),
		MiddleValues: make([][]float64, resolution),
		InnerLower:   make([][]float64, resolution),
		InnerUpper:   make([][]float64, resolution),
		Lower:        make([][]Point, resolution),
		Upper:        make([][]Point, resolution),
	}

	olo, ohi, err := outer.Limits(nil)
	if err != nil {
		log.WithError(err).Debug("outer limits not evaluable")
		return nil, false
	}
	env := make(map[string]float64, 3)
	for i := 0; i < resolution; i++ {
		o := lerp(olo, ohi, i, resolution)
		m.OuterValues[i] = o
		env[outer.Variable] = o
		mlo, mhi, err := middle.Limits(env)
		if err != nil {
			log.WithError(err).Debug("middle limits not evaluable")
			return nil, false
		}
		m.MiddleValues[i] = make([]float64, resolution)
		m.InnerLower[i] = make([]float64, resolution)
		m.InnerUpper[i] = make([]float64, resolution)
		m.Lower[i] = make([]Point, resolution)
		m.Upper[i] = make([]Point, resolution)
		for j := 0; j < resolution; j++ {
			mv := lerp(mlo, mhi, j, resolution)
			m.MiddleValues[i][j] = mv
			env[middle.Variable] = mv
			lo, hi, err := inner.Limits(env)
			if err != nil {
				log.WithError(err).Debug("inner limits not evaluable")
				return nil, false
			}
			m.InnerLower[i][j], m.InnerUpper[i][j] = lo, hi
			m.Lower[i][j] = toPoint(system, env, inner.Variable, lo)
			m.Upper[i][j] = toPoint(system, env, inner.Variable, hi)
		}
	}
	return m, true
}

func lerp(a, b float64, i, n int) float64 {
	return a + (b-a)*float64(i)/float64(n-1)
}

func toPoint(system coords.System, env map[string]float64, v string, value float64) Point {
	native := map[string]float64{v: value}
	for k, val := range env {
		if k != v {
			native[k] = val
		}
	}
	x, y, z := system.ToCartesian(native)
	return Point{x, y, z}
}
