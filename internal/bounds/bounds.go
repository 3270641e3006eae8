// Package bounds binds the limits of each nested integral to the outer
// variables they are allowed to depend on.
//
// Levels are ordered innermost first. The innermost limits may use the two
// outer variables, the middle limits only the outermost variable, and the
// outermost limits must be plain numbers.
package bounds

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/alexiusacademia/gotriple/internal/coords"
	"github.com/alexiusacademia/gotriple/internal/expr"
)

var (
	// ErrDependency matches every *DependencyError.
	ErrDependency = errors.New("bound dependency violation")
	// ErrInvalidOrder is returned when the order is not a permutation of
	// the system's native variables.
	ErrInvalidOrder = errors.New("invalid integration order")
	// ErrMissingBound is returned when a variable in the order has no
	// limits.
	ErrMissingBound = errors.New("missing bound")
	// ErrNonFiniteBound is returned when a limit evaluates to NaN or an
	// infinity.
	ErrNonFiniteBound = errors.New("bound is not finite")
)

// Pair holds the parsed lower and upper limit of one variable.
type Pair struct {
	Lower expr.Expr
	Upper expr.Expr
}

// DependencyError reports a limit that references a variable outside its
// scope.
type DependencyError struct {
	Variable string   // variable whose limits are at fault
	Bound    string   // "lower" or "upper"
	Symbol   string   // offending symbol
	Allowed  []string // symbols the limit may use
}

func (e *DependencyError) Error() string {
	if len(e.Allowed) == 0 {
		return fmt.Sprintf("%s bound of %s must be a constant but references %s",
			e.Bound, e.Variable, e.Symbol)
	}
	return fmt.Sprintf("%s bound of %s references %s; only %s may appear",
		e.Bound, e.Variable, e.Symbol, strings.Join(e.Allowed, ", "))
}

func (e *DependencyError) Is(target error) bool { return target == ErrDependency }

// Level is one nesting level of the iterated integral.
type Level struct {
	Variable string
	Lower    expr.Expr
	Upper    expr.Expr
	Scope    []string // outer variables the limits may reference
}

// Limits evaluates the lower and upper limit for the given values of the
// outer variables. Variables outside the level's scope are ignored.
func (l *Level) Limits(env map[string]float64) (lo, hi float64, err error) {
	scoped := make(map[string]float64, len(l.Scope))
	for _, v := range l.Scope {
		val, ok := env[v]
		if !ok {
			return 0, 0, fmt.Errorf("limits of %s need %s: %w", l.Variable, v, expr.ErrUnboundSymbol)
		}
		scoped[v] = val
	}
	lo, err = l.eval(l.Lower, "lower", scoped)
	if err != nil {
		return 0, 0, err
	}
	hi, err = l.eval(l.Upper, "upper", scoped)
	if err != nil {
		return 0, 0, err
	}
	return lo, hi, nil
}

func (l *Level) eval(e expr.Expr, which string, env map[string]float64) (float64, error) {
	v, err := e.Eval(env)
	if err != nil {
		return 0, fmt.Errorf("%s bound of %s: %w", which, l.Variable, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %s bound of %s is %v at %v", ErrNonFiniteBound, which, l.Variable, v, env)
	}
	return v, nil
}

// Resolved is the checked set of levels for one integral.
type Resolved struct {
	System coords.System
	Order  [3]string // innermost first
	Levels [3]Level
}

// Outermost returns the constant limits of the last variable integrated.
func (r *Resolved) Outermost() (lo, hi float64, err error) {
	return r.Levels[2].Limits(nil)
}

// OuterGrid samples the variables outside level i at the midpoints of n
// cells per variable, following the dependent limits inward. The outermost
// level gets a single empty environment. Midpoints keep the samples off the
// region's boundary.
func (r *Resolved) OuterGrid(i, n int) ([]map[string]float64, error) {
	if i < 0 || i >= len(r.Levels) || n < 1 {
		return nil, fmt.Errorf("outer grid of level %d with %d cells", i, n)
	}
	envs := []map[string]float64{{}}
	for k := len(r.Levels) - 1; k > i; k-- {
		lv := &r.Levels[k]
		next := make([]map[string]float64, 0, len(envs)*n)
		for _, env := range envs {
			var lo, hi float64
			var err error
			if k == len(r.Levels)-1 {
				lo, hi, err = r.Outermost()
			} else {
				lo, hi, err = lv.Limits(env)
			}
			if err != nil {
				return nil, err
			}
			for j := 0; j < n; j++ {
				pt := make(map[string]float64, len(env)+1)
				for name, val := range env {
					pt[name] = val
				}
				pt[lv.Variable] = lo + (hi-lo)*(float64(j)+0.5)/float64(n)
				next = append(next, pt)
			}
		}
		envs = next
	}
	return envs, nil
}

// Level returns the level integrating v, or nil.
func (r *Resolved) Level(v string) *Level {
	for i := range r.Levels {
		if r.Levels[i].Variable == v {
			return &r.Levels[i]
		}
	}
	return nil
}

// Resolve checks the order against the system and each pair against its
// allowed scope. Only the outermost limits are evaluated, and they must be
// finite numbers.
func Resolve(system coords.System, order [3]string, pairs map[string]Pair) (*Resolved, error) {
	if err := CheckOrder(system, order); err != nil {
		return nil, err
	}
	res := &Resolved{System: system, Order: order}
	for i, v := range order {
		p, ok := pairs[v]
		if !ok || p.Lower == nil || p.Upper == nil {
			return nil, fmt.Errorf("%w for %s", ErrMissingBound, v)
		}
		scope := append([]string(nil), order[i+1:]...)
		for _, side := range []struct {
			name string
			e    expr.Expr
		}{{"lower", p.Lower}, {"upper", p.Upper}} {
			for _, s := range expr.FreeSymbols(side.e) {
				if !contains(scope, s) {
					return nil, &DependencyError{Variable: v, Bound: side.name, Symbol: s, Allowed: scope}
				}
			}
		}
		res.Levels[i] = Level{Variable: v, Lower: p.Lower, Upper: p.Upper, Scope: scope}
	}
	// The outermost limits must reduce to numbers.
	outer := res.Levels[2]
	for _, side := range []struct {
		name string
		e    expr.Expr
	}{{"lower", outer.Lower}, {"upper", outer.Upper}} {
		v, ok := expr.EvaluateIfConstant(side.e)
		if !ok {
			syms := expr.FreeSymbols(side.e)
			sym := ""
			if len(syms) > 0 {
				sym = syms[0]
			}
			return nil, &DependencyError{Variable: outer.Variable, Bound: side.name, Symbol: sym}
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: %s bound of %s is %s = %v", ErrNonFiniteBound, side.name, outer.Variable, side.e, v)
		}
	}
	return res, nil
}

// CheckOrder verifies that order is a permutation of the native variables
// of system.
func CheckOrder(system coords.System, order [3]string) error {
	seen := map[string]bool{}
	for _, v := range order {
		if !system.IsNative(v) {
			native := system.Variables()
			return fmt.Errorf("%w: %q is not a %s variable (want %s)",
				ErrInvalidOrder, v, system, strings.Join(native[:], ", "))
		}
		if seen[v] {
			return fmt.Errorf("%w: %q appears twice", ErrInvalidOrder, v)
		}
		seen[v] = true
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
