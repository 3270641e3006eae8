package expr

import (
	"fmt"
	"math"
)

// poleSamples is the number of steps used to scan an interval for the
// zeros of a guard.
const poleSamples = 256

// guard is a sub-expression whose zeros or negative values make the
// integrand or its antiderivative leave the reals.
type guard struct {
	e       Expr
	nonZero bool // a zero is a pole
	nonNeg  bool // a negative value is undefined
}

// collectGuards gathers the denominators, fractional-power bases, log
// arguments and tan arguments of e, keyed by their rendering.
func collectGuards(e Expr, out map[string]guard) {
	switch v := e.(type) {
	case *Add:
		for _, t := range v.terms {
			collectGuards(t, out)
		}
	case *Mul:
		for _, f := range v.factors {
			collectGuards(f, out)
		}
	case *Pow:
		collectGuards(v.base, out)
		collectGuards(v.exp, out)
		if n, ok := v.exp.(*Num); ok {
			addGuard(out, v.base, n.IsNegative(), !n.IsInteger())
		}
	case *Func:
		collectGuards(v.arg, out)
		switch v.name {
		case "log":
			if a, ok := v.arg.(*Func); ok && a.name == "abs" {
				addGuard(out, a.arg, true, false)
			} else {
				addGuard(out, v.arg, true, true)
			}
		case "tan":
			addGuard(out, CosOf(v.arg), true, false)
		}
	}
}

func addGuard(out map[string]guard, e Expr, nonZero, nonNeg bool) {
	if (!nonZero && !nonNeg) || len(FreeSymbols(e)) == 0 {
		return
	}
	key := e.String()
	if g, ok := out[key]; ok {
		nonZero = nonZero || g.nonZero
		nonNeg = nonNeg || g.nonNeg
	}
	out[key] = guard{e: e, nonZero: nonZero, nonNeg: nonNeg}
}

// scan samples g along v over [a, b] with the other symbols taken from env.
// Zeros and sign changes count only strictly inside the interval; the ends
// are left to the antiderivative's own finiteness check.
func (g guard) scan(v string, a, b float64, env map[string]float64) error {
	pt := make(map[string]float64, len(env)+1)
	for k, val := range env {
		pt[k] = val
	}
	prev := math.NaN()
	for j := 0; j <= poleSamples; j++ {
		x := a + (b-a)*float64(j)/poleSamples
		pt[v] = x
		val, err := g.e.Eval(pt)
		if err != nil {
			return fmt.Errorf("%w: cannot check %s for poles: %v", ErrUnsupported, g.e, err)
		}
		interior := j > 0 && j < poleSamples
		finite := !math.IsNaN(val) && !math.IsInf(val, 0)
		switch {
		case interior && !finite,
			interior && g.nonZero && val == 0,
			interior && g.nonNeg && val < 0:
			return fmt.Errorf("%w: %s is singular at %s = %g inside [%g, %g]", ErrNonFinite, g.e, v, x, a, b)
		case g.nonZero && finite && val != 0 && !math.IsNaN(prev) && prev != 0 && (prev < 0) != (val < 0):
			return fmt.Errorf("%w: %s changes sign for %s inside [%g, %g]", ErrNonFinite, g.e, v, a, b)
		}
		if finite {
			prev = val
		}
	}
	return nil
}

// checkPoles rejects an integral whose integrand or antiderivative has a
// pole strictly between the limits for any of the outer environments.
func checkPoles(e, antideriv Expr, v string, lo, hi Expr, outer []map[string]float64) error {
	found := map[string]guard{}
	collectGuards(e, found)
	collectGuards(antideriv, found)
	if len(found) == 0 {
		return nil
	}
	if len(outer) == 0 {
		outer = []map[string]float64{nil}
	}
	for _, env := range outer {
		a, err := Float(lo, env)
		if err != nil {
			return fmt.Errorf("%w: cannot check lower limit %s for poles: %v", ErrUnsupported, lo, err)
		}
		b, err := Float(hi, env)
		if err != nil {
			return fmt.Errorf("%w: cannot check upper limit %s for poles: %v", ErrUnsupported, hi, err)
		}
		if a == b {
			continue
		}
		for _, g := range found {
			if err := g.scan(v, a, b, env); err != nil {
				return err
			}
		}
	}
	return nil
}
