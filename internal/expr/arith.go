package expr

import (
	"math"
	"math/big"
	"sort"
	"strings"
)

// ============================================================
// Add: sum of terms
// ============================================================

type Add struct{ terms []Expr }

// AddOf returns the simplified sum of terms.
func AddOf(terms ...Expr) Expr { return (&Add{terms: terms}).Simplify() }

// Neg returns -e.
func Neg(e Expr) Expr { return MulOf(N(-1), e) }

// SubOf returns a - b.
func SubOf(a, b Expr) Expr { return AddOf(a, Neg(b)) }

func (a *Add) Simplify() Expr {
	flat := make([]Expr, 0, len(a.terms))
	for _, t := range a.terms {
		s := t.Simplify()
		if inner, ok := s.(*Add); ok {
			flat = append(flat, inner.terms...)
		} else {
			flat = append(flat, s)
		}
	}
	constant := N(0)
	coeffs := map[string]*Num{}
	rests := map[string]Expr{}
	keys := []string{}
	for _, t := range flat {
		if n, ok := t.(*Num); ok {
			constant = numAdd(constant, n)
			continue
		}
		c, rest := splitCoeff(t)
		k := rest.String()
		if _, seen := coeffs[k]; !seen {
			keys = append(keys, k)
			coeffs[k] = N(0)
			rests[k] = rest
		}
		coeffs[k] = numAdd(coeffs[k], c)
	}
	sort.Strings(keys)
	result := make([]Expr, 0, len(keys)+1)
	for _, k := range keys {
		c := coeffs[k]
		if c.IsZero() {
			continue
		}
		result = append(result, scaled(c, rests[k]))
	}
	if reduced, ok := pythagorean(result); ok {
		if !constant.IsZero() {
			reduced = append(reduced, constant)
		}
		return AddOf(reduced...)
	}
	if !constant.IsZero() {
		result = append(result, constant)
	}
	switch len(result) {
	case 0:
		return N(0)
	case 1:
		return result[0]
	}
	return &Add{terms: result}
}

// splitCoeff separates the rational coefficient of a simplified term.
func splitCoeff(e Expr) (*Num, Expr) {
	if m, ok := e.(*Mul); ok && len(m.factors) >= 2 {
		if c, ok := m.factors[0].(*Num); ok {
			rest := m.factors[1:]
			if len(rest) == 1 {
				return c, rest[0]
			}
			return c, &Mul{factors: rest}
		}
	}
	return N(1), e
}

func scaled(c *Num, rest Expr) Expr {
	if c.IsOne() {
		return rest
	}
	if m, ok := rest.(*Mul); ok {
		return &Mul{factors: append([]Expr{c}, m.factors...)}
	}
	return &Mul{factors: []Expr{c, rest}}
}

// pythagorean rewrites c*k*cos(u)^2 + c*k*sin(u)^2 as c*k.
func pythagorean(terms []Expr) ([]Expr, bool) {
	for i, t := range terms {
		c, rest := splitCoeff(t)
		factors := []Expr{rest}
		if m, ok := rest.(*Mul); ok {
			factors = m.factors
		}
		for k, f := range factors {
			p, ok := f.(*Pow)
			if !ok || !isNum(p.exp, 2) {
				continue
			}
			fn, ok := p.base.(*Func)
			if !ok || fn.name != "cos" {
				continue
			}
			cofactor := make([]Expr, 0, len(factors))
			cofactor = append(cofactor, c)
			for j, g := range factors {
				if j != k {
					cofactor = append(cofactor, g)
				}
			}
			target := MulOf(append(cofactor, PowOf(SinOf(fn.arg), N(2)))...).String()
			for j, u := range terms {
				if j == i || u.String() != target {
					continue
				}
				out := make([]Expr, 0, len(terms)-1)
				for idx, w := range terms {
					switch idx {
					case i:
						out = append(out, MulOf(cofactor...))
					case j:
					default:
						out = append(out, w)
					}
				}
				return out, true
			}
		}
	}
	return nil, false
}

func (a *Add) String() string {
	var sb strings.Builder
	for i, t := range a.terms {
		neg, abs := negated(t)
		switch {
		case i == 0 && neg:
			sb.WriteString("-" + wrapSigned(abs))
		case i == 0:
			sb.WriteString(t.String())
		case neg:
			sb.WriteString(" - " + wrapSigned(abs))
		default:
			sb.WriteString(" + " + t.String())
		}
	}
	return sb.String()
}

func (a *Add) LaTeX() string {
	var sb strings.Builder
	for i, t := range a.terms {
		neg, abs := negated(t)
		switch {
		case i == 0 && neg:
			sb.WriteString("-" + abs.LaTeX())
		case i == 0:
			sb.WriteString(t.LaTeX())
		case neg:
			sb.WriteString(" - " + abs.LaTeX())
		default:
			sb.WriteString(" + " + t.LaTeX())
		}
	}
	return sb.String()
}

// negated reports whether t carries a negative coefficient and returns -t.
func negated(t Expr) (bool, Expr) {
	switch v := t.(type) {
	case *Num:
		if v.IsNegative() {
			return true, numNeg(v)
		}
	case *Mul:
		if c, ok := v.factors[0].(*Num); ok && c.IsNegative() {
			return true, MulOf(append([]Expr{numNeg(c)}, v.factors[1:]...)...)
		}
	}
	return false, t
}

func wrapSigned(e Expr) string {
	if _, ok := e.(*Add); ok {
		return "(" + e.String() + ")"
	}
	return e.String()
}

func (a *Add) Sub(vars map[string]Expr) Expr {
	out := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		out[i] = t.Sub(vars)
	}
	return AddOf(out...)
}

func (a *Add) Diff(varName string) Expr {
	out := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		out[i] = t.Diff(varName)
	}
	return AddOf(out...)
}

func (a *Add) Eval(env map[string]float64) (float64, error) {
	acc := 0.0
	for _, t := range a.terms {
		v, err := t.Eval(env)
		if err != nil {
			return 0, err
		}
		acc += v
	}
	return acc, nil
}

func (a *Add) Equal(other Expr) bool {
	o, ok := other.(*Add)
	if !ok || len(a.terms) != len(o.terms) {
		return false
	}
	for i := range a.terms {
		if !a.terms[i].Equal(o.terms[i]) {
			return false
		}
	}
	return true
}

// ============================================================
// Mul: product of factors
// ============================================================

type Mul struct{ factors []Expr }

// MulOf returns the simplified product of factors.
func MulOf(factors ...Expr) Expr { return (&Mul{factors: factors}).Simplify() }

// DivOf returns a / b.
func DivOf(a, b Expr) Expr { return MulOf(a, PowOf(b, N(-1))) }

func (m *Mul) Simplify() Expr {
	flat := make([]Expr, 0, len(m.factors))
	for _, f := range m.factors {
		s := f.Simplify()
		if inner, ok := s.(*Mul); ok {
			flat = append(flat, inner.factors...)
		} else {
			flat = append(flat, s)
		}
	}
	coeff := N(1)
	type group struct {
		base Expr
		exps []Expr
	}
	groups := map[string]*group{}
	keys := []string{}
	for _, f := range flat {
		if n, ok := f.(*Num); ok {
			coeff = numMul(coeff, n)
			continue
		}
		base, exp := f, Expr(N(1))
		if p, ok := f.(*Pow); ok {
			base, exp = p.base, p.exp
		}
		k := base.String()
		g, seen := groups[k]
		if !seen {
			g = &group{base: base}
			groups[k] = g
			keys = append(keys, k)
		}
		g.exps = append(g.exps, exp)
	}
	if coeff.IsZero() {
		return N(0)
	}
	others := make([]Expr, 0, len(keys))
	regroup := false
	for _, k := range keys {
		g := groups[k]
		var p Expr
		if len(g.exps) == 1 {
			p = PowOf(g.base, g.exps[0])
		} else {
			p = PowOf(g.base, AddOf(g.exps...))
		}
		switch v := p.(type) {
		case *Num:
			coeff = numMul(coeff, v)
		case *Mul:
			regroup = true
			others = append(others, v)
		default:
			others = append(others, p)
		}
	}
	if regroup {
		return MulOf(append([]Expr{coeff}, others...)...)
	}
	if coeff.IsZero() {
		return N(0)
	}
	if len(others) == 0 {
		return coeff
	}
	others = sortByKey(others)
	if coeff.IsOne() {
		if len(others) == 1 {
			return others[0]
		}
		return &Mul{factors: others}
	}
	return &Mul{factors: append([]Expr{coeff}, others...)}
}

func (m *Mul) String() string {
	factors := m.factors
	prefix := ""
	if c, ok := factors[0].(*Num); ok && c.IsNegOne() && len(factors) > 1 {
		prefix = "-"
		factors = factors[1:]
	}
	parts := make([]string, len(factors))
	for i, f := range factors {
		if _, isAdd := f.(*Add); isAdd {
			parts[i] = "(" + f.String() + ")"
		} else {
			parts[i] = f.String()
		}
	}
	return prefix + strings.Join(parts, "*")
}

func (m *Mul) LaTeX() string {
	factors := m.factors
	prefix := ""
	if c, ok := factors[0].(*Num); ok && c.IsNegOne() && len(factors) > 1 {
		prefix = "-"
		factors = factors[1:]
	}
	num := []string{}
	den := []string{}
	for _, f := range factors {
		if p, ok := f.(*Pow); ok {
			if e, ok := p.exp.(*Num); ok && e.IsNegative() {
				den = append(den, PowOf(p.base, numNeg(e)).LaTeX())
				continue
			}
		}
		if _, isAdd := f.(*Add); isAdd {
			num = append(num, "\\left("+f.LaTeX()+"\\right)")
		} else {
			num = append(num, f.LaTeX())
		}
	}
	if len(num) == 0 {
		num = append(num, "1")
	}
	if len(den) == 0 {
		return prefix + strings.Join(num, " ")
	}
	return prefix + "\\frac{" + strings.Join(num, " ") + "}{" + strings.Join(den, " ") + "}"
}

func (m *Mul) Sub(vars map[string]Expr) Expr {
	out := make([]Expr, len(m.factors))
	for i, f := range m.factors {
		out[i] = f.Sub(vars)
	}
	return MulOf(out...)
}

func (m *Mul) Diff(varName string) Expr {
	terms := make([]Expr, len(m.factors))
	for i, fi := range m.factors {
		parts := make([]Expr, 0, len(m.factors))
		parts = append(parts, fi.Diff(varName))
		for j, fj := range m.factors {
			if j != i {
				parts = append(parts, fj)
			}
		}
		terms[i] = MulOf(parts...)
	}
	return AddOf(terms...)
}

func (m *Mul) Eval(env map[string]float64) (float64, error) {
	acc := 1.0
	for _, f := range m.factors {
		v, err := f.Eval(env)
		if err != nil {
			return 0, err
		}
		acc *= v
	}
	return acc, nil
}

func (m *Mul) Equal(other Expr) bool {
	o, ok := other.(*Mul)
	if !ok || len(m.factors) != len(o.factors) {
		return false
	}
	for i := range m.factors {
		if !m.factors[i].Equal(o.factors[i]) {
			return false
		}
	}
	return true
}

// ============================================================
// Pow: base^exponent
// ============================================================

type Pow struct{ base, exp Expr }

// PowOf returns the simplified power base^exp.
func PowOf(base, exp Expr) Expr { return (&Pow{base: base, exp: exp}).Simplify() }

// SqrtOf returns arg^(1/2).
func SqrtOf(arg Expr) Expr { return PowOf(arg, F(1, 2)) }

const maxExactPower = 64

func (p *Pow) Simplify() Expr {
	base := p.base.Simplify()
	exp := p.exp.Simplify()

	en, expIsNum := exp.(*Num)
	if expIsNum && en.IsZero() {
		return N(1)
	}
	if expIsNum && en.IsOne() {
		return base
	}
	if bn, ok := base.(*Num); ok {
		switch {
		case bn.IsZero():
			// 0^0 and 0^negative are left unevaluated.
			if expIsNum && en.IsPositive() {
				return N(0)
			}
			return &Pow{base: base, exp: exp}
		case bn.IsOne():
			return N(1)
		}
		if expIsNum {
			if r, ok := exactPower(bn, en); ok {
				return r
			}
		}
	}
	if expIsNum && en.IsInteger() {
		switch b := base.(type) {
		case *Pow:
			return PowOf(b.base, MulOf(b.exp, exp))
		case *Mul:
			out := make([]Expr, len(b.factors))
			for i, f := range b.factors {
				out[i] = PowOf(f, exp)
			}
			return MulOf(out...)
		}
	}
	return &Pow{base: base, exp: exp}
}

// exactPower evaluates b^e when the result is rational.
func exactPower(b, e *Num) (*Num, bool) {
	if e.IsInteger() {
		k := e.val.Num()
		if !k.IsInt64() || k.Int64() > maxExactPower || k.Int64() < -maxExactPower {
			return nil, false
		}
		n := k.Int64()
		if n < 0 {
			return numRecip(intPower(b, -n)), true
		}
		return intPower(b, n), true
	}
	// Rational exponent p/2 on a perfect square.
	if e.val.Denom().Cmp(big.NewInt(2)) != 0 || b.IsNegative() {
		return nil, false
	}
	num, ok1 := exactSqrt(b.val.Num())
	den, ok2 := exactSqrt(b.val.Denom())
	if !ok1 || !ok2 {
		return nil, false
	}
	root := newNum(new(big.Rat).SetFrac(num, den))
	return exactPower(root, newNum(new(big.Rat).SetInt(e.val.Num())))
}

func intPower(b *Num, n int64) *Num {
	num := new(big.Int).Exp(b.val.Num(), big.NewInt(n), nil)
	den := new(big.Int).Exp(b.val.Denom(), big.NewInt(n), nil)
	return newNum(new(big.Rat).SetFrac(num, den))
}

func exactSqrt(n *big.Int) (*big.Int, bool) {
	r := new(big.Int).Sqrt(n)
	return r, new(big.Int).Mul(r, r).Cmp(n) == 0
}

func (p *Pow) String() string {
	return p.baseString() + "^" + p.expString()
}

func (p *Pow) baseString() string {
	switch b := p.base.(type) {
	case *Add, *Mul, *Pow:
		return "(" + b.String() + ")"
	case *Num:
		if b.IsNegative() || !b.IsInteger() {
			return "(" + b.String() + ")"
		}
	}
	return p.base.String()
}

func (p *Pow) expString() string {
	switch e := p.exp.(type) {
	case *Sym, *Const, *Func:
		return e.String()
	case *Num:
		if e.IsInteger() && !e.IsNegative() {
			return e.String()
		}
	}
	return "(" + p.exp.String() + ")"
}

func (p *Pow) LaTeX() string {
	if e, ok := p.exp.(*Num); ok && e.val.Cmp(big.NewRat(1, 2)) == 0 {
		return "\\sqrt{" + p.base.LaTeX() + "}"
	}
	base := p.base.LaTeX()
	switch p.base.(type) {
	case *Add, *Mul, *Pow:
		base = "\\left(" + base + "\\right)"
	}
	return base + "^{" + p.exp.LaTeX() + "}"
}

func (p *Pow) Sub(vars map[string]Expr) Expr {
	return PowOf(p.base.Sub(vars), p.exp.Sub(vars))
}

func (p *Pow) Diff(varName string) Expr {
	du := p.base.Diff(varName)
	if !DependsOn(p.exp, varName) {
		return MulOf(p.exp, PowOf(p.base, AddOf(p.exp, N(-1))), du)
	}
	dv := p.exp.Diff(varName)
	if !DependsOn(p.base, varName) {
		return MulOf(PowOf(p.base, p.exp), LogOf(p.base), dv)
	}
	logTerm := MulOf(dv, LogOf(p.base))
	divTerm := MulOf(p.exp, du, PowOf(p.base, N(-1)))
	return MulOf(PowOf(p.base, p.exp), AddOf(logTerm, divTerm))
}

func (p *Pow) Eval(env map[string]float64) (float64, error) {
	b, err := p.base.Eval(env)
	if err != nil {
		return 0, err
	}
	e, err := p.exp.Eval(env)
	if err != nil {
		return 0, err
	}
	if n, ok := p.exp.(*Num); ok && n.val.Cmp(big.NewRat(1, 2)) == 0 {
		return math.Sqrt(b), nil
	}
	return math.Pow(b, e), nil
}

func (p *Pow) Equal(other Expr) bool {
	o, ok := other.(*Pow)
	return ok && p.base.Equal(o.base) && p.exp.Equal(o.exp)
}
