// Package engine evaluates triple integrals. Evaluate walks a fixed state
// machine: parse, transform to the target coordinate system, resolve the
// bounds, try a closed form and fall back to adaptive quadrature.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/alexiusacademia/gotriple/internal/bounds"
	"github.com/alexiusacademia/gotriple/internal/coords"
	"github.com/alexiusacademia/gotriple/internal/expr"
	"github.com/alexiusacademia/gotriple/internal/quadrature"
)

// State is a step of an evaluation.
type State int

const (
	Parsed State = iota
	Transformed
	BoundsResolved
	SymbolicAttempted
	SymbolicSucceeded
	SymbolicFailed
	NumericAttempted
	NumericFailed
	Done
	Failed
)

var stateNames = [...]string{
	Parsed:            "Parsed",
	Transformed:       "Transformed",
	BoundsResolved:    "BoundsResolved",
	SymbolicAttempted: "SymbolicAttempted",
	SymbolicSucceeded: "SymbolicSucceeded",
	SymbolicFailed:    "SymbolicFailed",
	NumericAttempted:  "NumericAttempted",
	NumericFailed:     "NumericFailed",
	Done:              "Done",
	Failed:            "Failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// MarshalText renders the state by name in JSON output.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

type evaluation struct {
	ctx    context.Context
	req    *Request
	opts   Options
	res    *Result
	logger *log.Entry
}

// Evaluate computes the integral described by req. It never returns nil;
// failures are reported in Result.Failure.
func Evaluate(ctx context.Context, req *Request, opts Options) (res *Result) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}
	ev := &evaluation{
		ctx:    ctx,
		req:    req,
		opts:   opts,
		res:    &Result{Strategy: opts.Strategy},
		logger: log.WithField("strategy", opts.Strategy.String()),
	}
	defer func() {
		if r := recover(); r != nil {
			res = ev.fail(newError(KindUnknown, nil, "internal error: %v", r))
		}
	}()
	return ev.run()
}

func (ev *evaluation) enter(s State) {
	ev.res.Path = append(ev.res.Path, s)
	ev.logger.Debug(s.String())
}

func (ev *evaluation) fail(err *Error) *Result {
	ev.res.Symbolic = nil
	ev.res.Numeric = nil
	ev.res.Failure = err
	ev.enter(Failed)
	ev.logger.WithField("kind", err.Kind.String()).Debug(err.Message)
	return ev.res
}

func (ev *evaluation) run() *Result {
	if ev.req == nil {
		return ev.fail(newError(KindInvalidSpec, nil, "no request"))
	}
	if err := ev.req.Validate(); err != nil {
		return ev.fail(newError(KindInvalidSpec, err, ""))
	}
	system, err := coords.Parse(ev.req.System)
	if err != nil {
		return ev.fail(newError(KindUnsupportedSystem, err, ""))
	}
	ev.res.System = system
	ev.logger = ev.logger.WithField("system", system.String())

	// Parse everything before any other work.
	f, err := expr.Parse(ev.req.Function)
	if err != nil {
		return ev.fail(newError(KindParse, err, "function"))
	}
	names := make([]string, 0, len(ev.req.Bounds))
	for v := range ev.req.Bounds {
		names = append(names, v)
	}
	sort.Strings(names)
	pairs := make(map[string]bounds.Pair, len(names))
	for _, v := range names {
		text := ev.req.Bounds[v]
		lo, err := expr.Parse(text[0])
		if err != nil {
			return ev.fail(newError(KindParse, err, "lower bound of %s", v))
		}
		hi, err := expr.Parse(text[1])
		if err != nil {
			return ev.fail(newError(KindParse, err, "upper bound of %s", v))
		}
		pairs[v] = bounds.Pair{Lower: lo, Upper: hi}
	}
	ev.enter(Parsed)

	order := system.DefaultOrder()
	if len(ev.req.Order) == 3 {
		copy(order[:], ev.req.Order)
	}
	ev.res.Order = order
	ev.logger = ev.logger.WithField("order", strings.Join(order[:], ","))

	native, withJacobian := system.Transform(f)
	for _, s := range expr.FreeSymbols(withJacobian) {
		if !system.IsNative(s) {
			return ev.fail(newError(KindInvalidSpec, nil,
				"function references %s, which is not a %s variable", s, system))
		}
	}
	ev.enter(Transformed)

	resolved, err := bounds.Resolve(system, order, pairs)
	if err != nil {
		kind := KindOf(err)
		if kind == KindUnknown {
			kind = KindInvalidSpec
		}
		return ev.fail(newError(kind, err, ""))
	}
	for _, v := range names {
		if resolved.Level(v) == nil {
			return ev.fail(newError(KindInvalidSpec, nil, "bounds given for %s, which is not integrated", v))
		}
	}
	ev.res.Resolved = resolved
	ev.res.Trace = FormatTrace(resolved, native)
	ev.enter(BoundsResolved)

	if ev.opts.Strategy != StrategyNumeric {
		ev.enter(SymbolicAttempted)
		sym, err := ev.symbolic(withJacobian, resolved)
		if err == nil {
			ev.res.Symbolic = sym
			ev.enter(SymbolicSucceeded)
			ev.enter(Done)
			return ev.res
		}
		ev.enter(SymbolicFailed)
		ev.logger.WithError(err).Debug("closed form not found")
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return ev.fail(newError(KindTimeout, err, "symbolic integration"))
		}
		if ev.opts.Strategy == StrategySymbolic {
			return ev.fail(newError(KindSymbolicUnsupported, err, ""))
		}
	}

	ev.enter(NumericAttempted)
	num, err := ev.numeric(withJacobian, resolved)
	if err != nil {
		ev.enter(NumericFailed)
		kind := KindNumericFailure
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			kind = KindTimeout
		}
		return ev.fail(newError(kind, err, "numeric integration"))
	}
	ev.res.Numeric = num
	ev.enter(Done)
	return ev.res
}

// poleGridCells is the number of cells per outer variable over which each
// symbolic step is checked for poles.
const poleGridCells = 16

// symbolic integrates innermost first, substituting each definite result
// into the next step. A panic inside the algebra counts as a failed
// attempt.
func (ev *evaluation) symbolic(integrand expr.Expr, res *bounds.Resolved) (sym *Symbolic, err error) {
	defer func() {
		if r := recover(); r != nil {
			sym, err = nil, fmt.Errorf("%w: %v", expr.ErrUnsupported, r)
		}
	}()
	cur := integrand
	for i, lv := range res.Levels {
		if err := ev.ctx.Err(); err != nil {
			return nil, err
		}
		outer, err := res.OuterGrid(i, poleGridCells)
		if err != nil {
			return nil, fmt.Errorf("d%s: %w", lv.Variable, err)
		}
		cur, err = expr.DefiniteOver(cur, lv.Variable, lv.Lower, lv.Upper, ev.opts.MaxSymbolicDepth, outer)
		if err != nil {
			return nil, fmt.Errorf("d%s: %w", lv.Variable, err)
		}
		ev.logger.WithField("variable", lv.Variable).Debugf("integrated: %s", cur)
	}
	sym = &Symbolic{
		Expr:  cur,
		Text:  expr.Render(cur),
		LaTeX: expr.LaTeX(cur),
	}
	if v, ok := expr.EvaluateIfConstant(cur); ok {
		if _, err := expr.Float(cur, nil); err != nil {
			return nil, err
		}
		sym.Value, sym.IsNumber = v, true
	}
	return sym, nil
}

func (ev *evaluation) numeric(integrand expr.Expr, res *bounds.Resolved) (*Numeric, error) {
	levels := make([]quadrature.Level, len(res.Levels))
	for i := range res.Levels {
		lv := &res.Levels[i]
		levels[i] = quadrature.Level{Variable: lv.Variable, Limits: lv.Limits}
	}
	f := func(env map[string]float64) (float64, error) { return integrand.Eval(env) }
	est, err := quadrature.Integrate(ev.ctx, f, levels, ev.opts.Quadrature)
	if err != nil {
		return nil, err
	}
	return &Numeric{
		Value:        est.Value,
		AbsError:     est.AbsError,
		Evaluations:  est.Evaluations,
		Subdivisions: est.Subdivisions,
	}, nil
}
