package expr

import (
	"fmt"
	"math"
)

// Substitute replaces every occurrence of the mapped symbols at once and
// simplifies the result.
func Substitute(e Expr, vars map[string]Expr) Expr {
	return e.Sub(vars).Simplify()
}

// EvaluateIfConstant returns the numeric value of e when it has no free
// symbols.
func EvaluateIfConstant(e Expr) (float64, bool) {
	if len(FreeSymbols(e)) > 0 {
		return 0, false
	}
	v, err := e.Eval(nil)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Float evaluates e under env and rejects NaN and infinities.
func Float(e Expr, env map[string]float64) (float64, error) {
	v, err := e.Eval(env)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %s evaluates to %v", ErrNonFinite, e, v)
	}
	return v, nil
}

// Render prints e in the notation Parse accepts.
func Render(e Expr) string { return e.String() }

// LaTeX prints e as a LaTeX math fragment.
func LaTeX(e Expr) string { return e.LaTeX() }

// Diff differentiates e with respect to v and simplifies.
func Diff(e Expr, v string) Expr { return e.Diff(v).Simplify() }

const maxExpandPower = 10

// Expand distributes products over sums and multiplies out small
// non-negative integer powers of sums.
func Expand(e Expr) Expr { return expand(e).Simplify() }

func expand(e Expr) Expr {
	switch v := e.(type) {
	case *Add:
		out := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			out[i] = expand(t)
		}
		return AddOf(out...)
	case *Mul:
		factors := make([]Expr, len(v.factors))
		for i, f := range v.factors {
			factors[i] = expand(f)
		}
		for i, f := range factors {
			sum, ok := f.(*Add)
			if !ok {
				continue
			}
			rest := make([]Expr, 0, len(factors)-1)
			rest = append(rest, factors[:i]...)
			rest = append(rest, factors[i+1:]...)
			terms := make([]Expr, len(sum.terms))
			for k, t := range sum.terms {
				terms[k] = expand(MulOf(append([]Expr{t}, rest...)...))
			}
			return AddOf(terms...)
		}
		return MulOf(factors...)
	case *Pow:
		base := expand(v.base)
		n, ok := v.exp.(*Num)
		if _, isSum := base.(*Add); isSum && ok && n.IsInteger() && !n.IsNegative() {
			k := n.val.Num().Int64()
			if k <= maxExpandPower {
				result := Expr(N(1))
				for i := int64(0); i < k; i++ {
					result = distribute(result, base)
				}
				return result
			}
		}
		return PowOf(base, v.exp)
	case *Func:
		return (&Func{name: v.name, arg: expand(v.arg)}).Simplify()
	}
	return e
}

// distribute multiplies a and b out term by term.
func distribute(a, b Expr) Expr {
	as, bs := addends(a), addends(b)
	out := make([]Expr, 0, len(as)*len(bs))
	for _, p := range as {
		for _, q := range bs {
			out = append(out, expand(MulOf(p, q)))
		}
	}
	return AddOf(out...)
}

func addends(e Expr) []Expr {
	if a, ok := e.(*Add); ok {
		return a.terms
	}
	return []Expr{e}
}

// Equivalent reports whether a and b are equal after expansion.
func Equivalent(a, b Expr) bool {
	return Expand(SubOf(a, b)).Equal(N(0))
}

// Finite reports whether the exact value e is a finite real. It rejects
// division by zero and logarithms of non-positive numbers, then checks the
// floating-point value.
func Finite(e Expr) bool {
	if !finiteTree(e) {
		return false
	}
	v, err := e.Eval(nil)
	if err != nil {
		// Free symbols: nothing more can be said.
		return true
	}
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func finiteTree(e Expr) bool {
	switch v := e.(type) {
	case *Add:
		for _, t := range v.terms {
			if !finiteTree(t) {
				return false
			}
		}
	case *Mul:
		for _, f := range v.factors {
			if !finiteTree(f) {
				return false
			}
		}
	case *Pow:
		if b, ok := v.base.(*Num); ok && b.IsZero() {
			if n, ok := v.exp.(*Num); !ok || !n.IsPositive() {
				return false
			}
		}
		return finiteTree(v.base) && finiteTree(v.exp)
	case *Func:
		if v.name == "log" {
			if n, ok := v.arg.(*Num); ok && !n.IsPositive() {
				return false
			}
		}
		return finiteTree(v.arg)
	}
	return true
}
