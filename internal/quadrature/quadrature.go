// Package quadrature integrates a function over nested variable limits with
// adaptive Gauss–Legendre panels.
//
// Every panel is evaluated with a 7-point and a 15-point rule, and the
// difference is its error. Each level keeps bisecting its worst panel until
// the summed error is within max(tol, RelTol*|I|), so the relative target
// holds at any depth. Inner integrals are computed afresh for every outer
// node, so limits may depend on the outer variables.
package quadrature

import (
	"container/heap"
	"context"
	"errors"
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/integrate/quad"
)

var (
	// ErrNonFinite is returned when the integrand is NaN or infinite at a
	// sampled point.
	ErrNonFinite = errors.New("integrand is not finite")
	// ErrNotConverged is returned when a panel still misses the tolerance
	// at the maximum bisection depth.
	ErrNotConverged = errors.New("quadrature did not converge")
	// ErrBudget is returned when the evaluation budget is spent.
	ErrBudget = errors.New("evaluation budget exhausted")
)

// Integrand is evaluated at a point given by variable name.
type Integrand func(env map[string]float64) (float64, error)

// Level is one nesting level, innermost first.
type Level struct {
	Variable string
	Limits   func(env map[string]float64) (lo, hi float64, err error)
}

// Options bound the work of one integration.
type Options struct {
	AbsTol         float64
	RelTol         float64
	MaxDepth       int // bisections per level
	MaxEvaluations int // integrand calls across all levels
}

// DefaultOptions returns the tolerances used when none are configured.
func DefaultOptions() Options {
	return Options{
		AbsTol:         1e-10,
		RelTol:         1e-8,
		MaxDepth:       50,
		MaxEvaluations: 2_000_000,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.AbsTol <= 0 {
		o.AbsTol = d.AbsTol
	}
	if o.RelTol <= 0 {
		o.RelTol = d.RelTol
	}
	if o.MaxDepth <= 0 {
		o.MaxDepth = d.MaxDepth
	}
	if o.MaxEvaluations <= 0 {
		o.MaxEvaluations = d.MaxEvaluations
	}
	return o
}

// Estimate is the outcome of a successful integration.
type Estimate struct {
	Value        float64
	AbsError     float64
	Evaluations  int
	Subdivisions int
}

type rule struct{ x, w []float64 }

func newRule(n int) rule {
	r := rule{x: make([]float64, n), w: make([]float64, n)}
	quad.Legendre{}.FixedLocations(r.x, r.w, -1, 1)
	return r
}

var (
	coarseRule = newRule(7)
	fineRule   = newRule(15)
)

const ctxCheckInterval = 1024

type integrator struct {
	ctx    context.Context
	f      Integrand
	levels []Level
	opts   Options
	env    map[string]float64
	evals  int
	splits int
}

// Integrate computes the iterated integral of f over levels.
func Integrate(ctx context.Context, f Integrand, levels []Level, opts Options) (Estimate, error) {
	if len(levels) == 0 {
		return Estimate{}, errors.New("quadrature: no levels")
	}
	if err := ctx.Err(); err != nil {
		return Estimate{}, err
	}
	q := &integrator{
		ctx:    ctx,
		f:      f,
		levels: levels,
		opts:   opts.withDefaults(),
		env:    make(map[string]float64, len(levels)),
	}
	val, est, err := q.level(len(levels)-1, q.opts.AbsTol)
	log.WithFields(log.Fields{
		"evaluations":  q.evals,
		"subdivisions": q.splits,
	}).Debug("quadrature finished")
	if err != nil {
		return Estimate{Evaluations: q.evals, Subdivisions: q.splits}, err
	}
	return Estimate{Value: val, AbsError: est, Evaluations: q.evals, Subdivisions: q.splits}, nil
}

// level integrates levels[k] and everything inside it for the current
// values of the outer variables in q.env.
//
// The level runs over t in [0, 1] with x = lo + w*t^2*(3-2t). The factor
// dx/dt = 6wt(1-t) vanishes at both ends, which turns endpoint powers such
// as sqrt(x) or 1/sqrt(x) into smooth integrands in t. No node sits on an
// end, so the integrand is never evaluated at lo or hi.
func (q *integrator) level(k int, tol float64) (float64, float64, error) {
	lv := q.levels[k]
	lo, hi, err := lv.Limits(q.env)
	if err != nil {
		return 0, 0, fmt.Errorf("limits of %s: %w", lv.Variable, err)
	}
	if lo == hi {
		return 0, 0, nil
	}
	width := hi - lo
	// Inner levels also stop at RelTol of their own value, so small inner
	// integrals near a vanishing outer factor are not over-resolved.
	innerTol := tol / math.Max(math.Abs(width), 1)
	maxInner := 0.0
	g := func(t float64) (float64, error) {
		q.env[lv.Variable] = lo + width*t*t*(3-2*t)
		dx := width * 6 * t * (1 - t)
		if k == 0 {
			v, err := q.sample()
			return v * dx, err
		}
		v, e, err := q.level(k-1, innerTol)
		if err != nil {
			return 0, err
		}
		maxInner = math.Max(maxInner, e)
		return v * dx, nil
	}
	val, est, err := q.adaptive(lv.Variable, g, tol)
	if err != nil {
		return 0, 0, err
	}
	return val, est + math.Abs(width)*maxInner, nil
}

func (q *integrator) sample() (float64, error) {
	q.evals++
	if q.evals > q.opts.MaxEvaluations {
		return 0, fmt.Errorf("%w after %d evaluations", ErrBudget, q.opts.MaxEvaluations)
	}
	if q.evals%ctxCheckInterval == 0 {
		if err := q.ctx.Err(); err != nil {
			return 0, err
		}
	}
	v, err := q.f(q.env)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %v at %v", ErrNonFinite, v, q.point())
	}
	return v, nil
}

func (q *integrator) point() map[string]float64 {
	p := make(map[string]float64, len(q.env))
	for k, v := range q.env {
		p[k] = v
	}
	return p
}

// panel is one piece of a level in the t variable.
type panel struct {
	a, b  float64
	value float64
	err   float64
	depth int
}

// panelHeap pops the panel with the largest error first.
type panelHeap []panel

func (h panelHeap) Len() int           { return len(h) }
func (h panelHeap) Less(i, j int) bool { return h[i].err > h[j].err }
func (h panelHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *panelHeap) Push(x any)        { *h = append(*h, x.(panel)) }
func (h *panelHeap) Pop() any {
	old := *h
	p := old[len(old)-1]
	*h = old[:len(old)-1]
	return p
}

func (q *integrator) panel(g func(float64) (float64, error), a, b float64, depth int) (panel, error) {
	coarse, err := apply(coarseRule, g, a, b)
	if err != nil {
		return panel{}, err
	}
	fine, err := apply(fineRule, g, a, b)
	if err != nil {
		return panel{}, err
	}
	return panel{a: a, b: b, value: fine, err: math.Abs(fine - coarse), depth: depth}, nil
}

// adaptive integrates g over [0, 1], bisecting the worst panel until the
// summed error is within max(tol, RelTol*|I|) for the current total I.
func (q *integrator) adaptive(variable string, g func(float64) (float64, error), tol float64) (float64, float64, error) {
	first, err := q.panel(g, 0, 1, 0)
	if err != nil {
		return 0, 0, err
	}
	h := &panelHeap{first}
	total, errSum := first.value, first.err
	for errSum > math.Max(tol, q.opts.RelTol*math.Abs(total)) {
		worst := heap.Pop(h).(panel)
		if worst.depth >= q.opts.MaxDepth {
			return 0, 0, fmt.Errorf("%w in %s after %d bisections (error %.3g)", ErrNotConverged, variable, worst.depth, errSum)
		}
		q.splits++
		mid := worst.a + (worst.b-worst.a)/2
		left, err := q.panel(g, worst.a, mid, worst.depth+1)
		if err != nil {
			return 0, 0, err
		}
		right, err := q.panel(g, mid, worst.b, worst.depth+1)
		if err != nil {
			return 0, 0, err
		}
		heap.Push(h, left)
		heap.Push(h, right)
		total += left.value + right.value - worst.value
		errSum += left.err + right.err - worst.err
	}
	total, errSum = 0, 0
	for _, p := range *h {
		total += p.value
		errSum += p.err
	}
	return total, errSum, nil
}

func apply(r rule, g func(float64) (float64, error), a, b float64) (float64, error) {
	half := (b - a) / 2
	mid := a + half
	sum := 0.0
	for i, x := range r.x {
		v, err := g(mid + half*x)
		if err != nil {
			return 0, err
		}
		sum += r.w[i] * v
	}
	return sum * half, nil
}
