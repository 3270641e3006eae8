package expr

import (
	"fmt"
)

// DefaultMaxDepth bounds the nesting of integration rules, which keeps
// cyclic by-parts chains such as exp(x)*sin(x) from recursing forever.
const DefaultMaxDepth = 12

// Integrate returns an antiderivative of e with respect to v.
func Integrate(e Expr, v string) (Expr, error) {
	return IntegrateDepth(e, v, DefaultMaxDepth)
}

// IntegrateDepth is Integrate with an explicit rule-nesting limit.
func IntegrateDepth(e Expr, v string, maxDepth int) (Expr, error) {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	in := &integrator{v: v, x: S(v), maxDepth: maxDepth}
	return in.integrate(e.Simplify())
}

// Definite evaluates the integral of e over v from lo to hi as F(hi)-F(lo).
// The bounds may contain other symbols. When e or F has a pole, the limits
// must reduce to numbers; see DefiniteOver.
func Definite(e Expr, v string, lo, hi Expr, maxDepth int) (Expr, error) {
	return DefiniteOver(e, v, lo, hi, maxDepth, nil)
}

// DefiniteOver is Definite for integrals nested inside others. Each env in
// outer binds the symbols other than v, and the interval is scanned for
// poles of e and of its antiderivative under every one of them. A pole
// strictly inside the interval is ErrNonFinite; a scan that cannot be
// evaluated is ErrUnsupported.
func DefiniteOver(e Expr, v string, lo, hi Expr, maxDepth int, outer []map[string]float64) (Expr, error) {
	antideriv, err := IntegrateDepth(e, v, maxDepth)
	if err != nil {
		return nil, err
	}
	if err := checkPoles(e.Simplify(), antideriv, v, lo, hi, outer); err != nil {
		return nil, err
	}
	upper := Substitute(antideriv, map[string]Expr{v: hi})
	lower := Substitute(antideriv, map[string]Expr{v: lo})
	if !Finite(upper) || !Finite(lower) {
		return nil, fmt.Errorf("%w: antiderivative %s diverges on [%s, %s]", ErrNonFinite, antideriv, lo, hi)
	}
	result := SubOf(upper, lower)
	if !Finite(result) {
		return nil, fmt.Errorf("%w: %s", ErrNonFinite, result)
	}
	return result, nil
}

type integrator struct {
	v        string
	x        *Sym
	depth    int
	maxDepth int
}

func (in *integrator) unsupported(e Expr) error {
	return fmt.Errorf("%w: %s d%s", ErrUnsupported, e, in.v)
}

func (in *integrator) integrate(e Expr) (Expr, error) {
	if in.depth >= in.maxDepth {
		return nil, fmt.Errorf("%w: rule nesting exceeds %d", ErrUnsupported, in.maxDepth)
	}
	in.depth++
	defer func() { in.depth-- }()

	if !DependsOn(e, in.v) {
		return MulOf(e, in.x), nil
	}
	switch t := e.(type) {
	case *Sym:
		return MulOf(F(1, 2), PowOf(in.x, N(2))), nil
	case *Add:
		out := make([]Expr, len(t.terms))
		for i, term := range t.terms {
			f, err := in.integrate(term)
			if err != nil {
				return nil, err
			}
			out[i] = f
		}
		return AddOf(out...), nil
	case *Mul:
		return in.product(t)
	case *Pow:
		return in.power(t)
	case *Func:
		return in.function(t)
	}
	return nil, in.unsupported(e)
}

// slope returns du/dv when u is linear in v.
func (in *integrator) slope(u Expr) (Expr, bool) {
	a := Diff(u, in.v)
	if DependsOn(a, in.v) {
		return nil, false
	}
	if n, ok := a.(*Num); ok && n.IsZero() {
		return nil, false
	}
	return a, true
}

func (in *integrator) power(p *Pow) (Expr, error) {
	baseDep := DependsOn(p.base, in.v)
	expDep := DependsOn(p.exp, in.v)

	switch {
	case baseDep && !expDep:
		if a, ok := in.slope(p.base); ok {
			if isNum(p.exp, -1) {
				return DivOf(LogOf(AbsOf(p.base)), a), nil
			}
			n1 := AddOf(p.exp, N(1))
			return DivOf(PowOf(p.base, n1), MulOf(n1, a)), nil
		}
		if f, ok := p.base.(*Func); ok && (f.name == "sin" || f.name == "cos") {
			if n, ok := p.exp.(*Num); ok && n.IsInteger() && n.IsPositive() {
				return in.trigPower(f, n.val.Num().Int64())
			}
		}
		if _, ok := p.base.(*Add); ok {
			if n, ok := p.exp.(*Num); ok && n.IsInteger() && n.IsPositive() {
				if expanded := Expand(p); !expanded.Equal(p) {
					return in.integrate(expanded)
				}
			}
		}
	case !baseDep && expDep:
		if a, ok := in.slope(p.exp); ok {
			return DivOf(p, MulOf(a, LogOf(p.base))), nil
		}
	}
	return nil, in.unsupported(p)
}

// trigPower applies the reduction formulas for sin^n and cos^n of a linear
// argument.
func (in *integrator) trigPower(f *Func, n int64) (Expr, error) {
	a, ok := in.slope(f.arg)
	if !ok {
		return nil, in.unsupported(PowOf(f, N(n)))
	}
	rest, err := in.integrate(PowOf(f, N(n-2)))
	if err != nil {
		return nil, err
	}
	var head Expr
	if f.name == "sin" {
		head = Neg(MulOf(PowOf(f, N(n-1)), CosOf(f.arg)))
	} else {
		head = MulOf(PowOf(f, N(n-1)), SinOf(f.arg))
	}
	return AddOf(
		DivOf(head, MulOf(N(n), a)),
		MulOf(F(n-1, n), rest),
	), nil
}

func (in *integrator) function(f *Func) (Expr, error) {
	a, ok := in.slope(f.arg)
	if !ok {
		return nil, in.unsupported(f)
	}
	g, ok := antiderivative(f.name, f.arg)
	if !ok {
		return nil, in.unsupported(f)
	}
	return DivOf(g, a), nil
}

// antiderivative returns G(u) with G' = name(u).
func antiderivative(name string, u Expr) (Expr, bool) {
	switch name {
	case "sin":
		return Neg(CosOf(u)), true
	case "cos":
		return SinOf(u), true
	case "tan":
		return Neg(LogOf(AbsOf(CosOf(u)))), true
	case "exp":
		return ExpOf(u), true
	case "sinh":
		return CoshOf(u), true
	case "cosh":
		return SinhOf(u), true
	case "tanh":
		return LogOf(CoshOf(u)), true
	case "log":
		return SubOf(MulOf(u, LogOf(u)), u), true
	case "asin":
		return AddOf(MulOf(u, mustCall("asin", u)), SqrtOf(SubOf(N(1), PowOf(u, N(2))))), true
	case "acos":
		return SubOf(MulOf(u, mustCall("acos", u)), SqrtOf(SubOf(N(1), PowOf(u, N(2))))), true
	case "atan":
		return SubOf(MulOf(u, mustCall("atan", u)), MulOf(F(1, 2), LogOf(AddOf(N(1), PowOf(u, N(2)))))), true
	}
	return nil, false
}

func (in *integrator) product(m *Mul) (Expr, error) {
	var constant, dependent []Expr
	for _, f := range m.factors {
		if DependsOn(f, in.v) {
			dependent = append(dependent, f)
		} else {
			constant = append(constant, f)
		}
	}
	if len(constant) > 0 {
		inner, err := in.integrate(MulOf(dependent...))
		if err != nil {
			return nil, err
		}
		return MulOf(append(constant, inner)...), nil
	}
	if g, ok := in.substitution(dependent); ok {
		return g, nil
	}
	if expanded := Expand(m); !expanded.Equal(m) {
		if _, ok := expanded.(*Mul); !ok {
			return in.integrate(expanded)
		}
	}
	return in.byParts(dependent)
}

// substitution tries u-substitution: some factor is G'(h) or h^n, and the
// remaining factors are a constant multiple of h'.
func (in *integrator) substitution(factors []Expr) (Expr, bool) {
	for i, f := range factors {
		others := make([]Expr, 0, len(factors)-1)
		others = append(others, factors[:i]...)
		others = append(others, factors[i+1:]...)
		rest := MulOf(others...)
		for _, c := range substitutionCandidates(f) {
			dh := Diff(c.h, in.v)
			if n, ok := dh.(*Num); ok && n.IsZero() {
				continue
			}
			ratio := DivOf(rest, dh)
			if DependsOn(ratio, in.v) {
				ratio = DivOf(Expand(rest), Expand(dh))
				if DependsOn(ratio, in.v) {
					continue
				}
			}
			if g, ok := c.outer(c.h); ok {
				return MulOf(ratio, g), true
			}
		}
	}
	return nil, false
}

type candidate struct {
	h     Expr
	outer func(h Expr) (Expr, bool)
}

func substitutionCandidates(f Expr) []candidate {
	powerRule := func(n Expr) func(Expr) (Expr, bool) {
		return func(h Expr) (Expr, bool) {
			if isNum(n, -1) {
				return LogOf(AbsOf(h)), true
			}
			n1 := AddOf(n, N(1))
			return DivOf(PowOf(h, n1), n1), true
		}
	}
	var out []candidate
	switch v := f.(type) {
	case *Func:
		name := v.name
		out = append(out, candidate{h: v.arg, outer: func(h Expr) (Expr, bool) { return antiderivative(name, h) }})
		out = append(out, candidate{h: v, outer: powerRule(N(1))})
	case *Pow:
		if _, ok := v.exp.(*Num); ok {
			out = append(out, candidate{h: v.base, outer: powerRule(v.exp)})
		} else if _, ok := v.base.(*Num); ok || isConst(v.base) {
			base := v.base
			out = append(out, candidate{h: v.exp, outer: func(h Expr) (Expr, bool) {
				return DivOf(PowOf(base, h), LogOf(base)), true
			}})
		}
	}
	return out
}

func isConst(e Expr) bool {
	_, ok := e.(*Const)
	return ok
}

// liate ranks a factor as the u of integration by parts: logarithms,
// inverse trigonometric, algebraic, trigonometric, exponential.
func (in *integrator) liate(f Expr) int {
	switch v := f.(type) {
	case *Func:
		switch v.name {
		case "log":
			return 5
		case "asin", "acos", "atan":
			return 4
		case "sin", "cos":
			return 2
		case "exp":
			return 1
		}
	case *Sym:
		return 3
	case *Pow:
		if s, ok := v.base.(*Sym); ok && s.name == in.v {
			if n, ok := v.exp.(*Num); ok && n.IsInteger() && n.IsPositive() {
				return 3
			}
		}
		if !DependsOn(v.base, in.v) {
			return 1
		}
	}
	return 0
}

// byParts applies ∫u dv = u*w - ∫w du with w = ∫dv.
func (in *integrator) byParts(factors []Expr) (Expr, error) {
	best, rank := -1, 0
	for i, f := range factors {
		if r := in.liate(f); r > rank {
			best, rank = i, r
		}
	}
	if best < 0 || rank < 2 {
		return nil, in.unsupported(MulOf(factors...))
	}
	u := factors[best]
	dv := make([]Expr, 0, len(factors)-1)
	dv = append(dv, factors[:best]...)
	dv = append(dv, factors[best+1:]...)
	w, err := in.integrate(MulOf(dv...))
	if err != nil {
		return nil, err
	}
	tail, err := in.integrate(MulOf(w, Diff(u, in.v)))
	if err != nil {
		return nil, err
	}
	return SubOf(MulOf(u, w), tail), nil
}
