// Package expr is the algebra kernel behind the integral engine.
//
// Expressions are immutable trees of exact rationals, symbols, the constants
// pi and e, sums, products, powers and named functions. Every constructor
// returns a simplified tree, so two expressions that render the same are
// structurally equal.
package expr

import (
	"fmt"
	"math"
	"math/big"
	"sort"
)

// Expr is a node of an algebraic syntax tree.
type Expr interface {
	Simplify() Expr
	String() string
	LaTeX() string
	// Sub replaces symbols simultaneously. A replacement is never itself
	// substituted again.
	Sub(vars map[string]Expr) Expr
	Diff(varName string) Expr
	Eval(env map[string]float64) (float64, error)
	Equal(other Expr) bool
}

// ============================================================
// Num: exact rational number
// ============================================================

type Num struct {
	val *big.Rat
	f   float64
}

func newNum(r *big.Rat) *Num {
	f, _ := r.Float64()
	return &Num{val: r, f: f}
}

// N returns the integer n.
func N(n int64) *Num { return newNum(new(big.Rat).SetInt64(n)) }

// F returns the fraction p/q.
func F(p, q int64) *Num {
	if q == 0 {
		panic("expr: denominator is zero")
	}
	return newNum(new(big.Rat).SetFrac(big.NewInt(p), big.NewInt(q)))
}

func (n *Num) Simplify() Expr                           { return n }
func (n *Num) Sub(map[string]Expr) Expr                 { return n }
func (n *Num) Diff(string) Expr                         { return N(0) }
func (n *Num) Eval(map[string]float64) (float64, error) { return n.f, nil }
func (n *Num) Equal(other Expr) bool                    { o, ok := other.(*Num); return ok && n.val.Cmp(o.val) == 0 }
func (n *Num) Float64() float64                         { return n.f }
func (n *Num) IsZero() bool                             { return n.val.Sign() == 0 }
func (n *Num) IsOne() bool                              { return n.val.Cmp(big.NewRat(1, 1)) == 0 }
func (n *Num) IsNegOne() bool                           { return n.val.Cmp(big.NewRat(-1, 1)) == 0 }
func (n *Num) IsInteger() bool                          { return n.val.IsInt() }
func (n *Num) IsNegative() bool                         { return n.val.Sign() < 0 }
func (n *Num) IsPositive() bool                         { return n.val.Sign() > 0 }

func (n *Num) String() string {
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	return n.val.RatString()
}

func (n *Num) LaTeX() string {
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	sign := ""
	v := new(big.Rat).Set(n.val)
	if v.Sign() < 0 {
		sign = "-"
		v.Neg(v)
	}
	return fmt.Sprintf("%s\\frac{%s}{%s}", sign, v.Num().String(), v.Denom().String())
}

func numAdd(a, b *Num) *Num { return newNum(new(big.Rat).Add(a.val, b.val)) }
func numMul(a, b *Num) *Num { return newNum(new(big.Rat).Mul(a.val, b.val)) }
func numNeg(a *Num) *Num    { return newNum(new(big.Rat).Neg(a.val)) }
func numRecip(a *Num) *Num {
	if a.IsZero() {
		panic("expr: division by zero")
	}
	return newNum(new(big.Rat).Inv(a.val))
}

// ============================================================
// Sym: symbolic variable
// ============================================================

type Sym struct{ name string }

// S returns the symbol with the given name.
func S(name string) *Sym { return &Sym{name: name} }

func (s *Sym) Simplify() Expr        { return s }
func (s *Sym) String() string        { return s.name }
func (s *Sym) Name() string          { return s.name }
func (s *Sym) Equal(other Expr) bool { o, ok := other.(*Sym); return ok && s.name == o.name }

func (s *Sym) LaTeX() string {
	switch s.name {
	case "theta", "phi", "rho":
		return "\\" + s.name
	}
	return s.name
}

func (s *Sym) Sub(vars map[string]Expr) Expr {
	if v, ok := vars[s.name]; ok {
		return v
	}
	return s
}

func (s *Sym) Diff(varName string) Expr {
	if s.name == varName {
		return N(1)
	}
	return N(0)
}

func (s *Sym) Eval(env map[string]float64) (float64, error) {
	v, ok := env[s.name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnboundSymbol, s.name)
	}
	return v, nil
}

// ============================================================
// Const: named mathematical constant
// ============================================================

type Const struct {
	name  string
	value float64
}

var (
	Pi = &Const{name: "pi", value: math.Pi}
	E  = &Const{name: "e", value: math.E}
)

func (c *Const) Simplify() Expr                           { return c }
func (c *Const) String() string                           { return c.name }
func (c *Const) Sub(map[string]Expr) Expr                 { return c }
func (c *Const) Diff(string) Expr                         { return N(0) }
func (c *Const) Eval(map[string]float64) (float64, error) { return c.value, nil }
func (c *Const) Equal(other Expr) bool                    { o, ok := other.(*Const); return ok && c.name == o.name }

func (c *Const) LaTeX() string {
	if c.name == "pi" {
		return "\\pi"
	}
	return c.name
}

// ============================================================
// Tree helpers
// ============================================================

// FreeSymbols returns the sorted names of the symbols in e.
func FreeSymbols(e Expr) []string {
	seen := map[string]struct{}{}
	collectSymbols(e, seen)
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func collectSymbols(e Expr, out map[string]struct{}) {
	switch v := e.(type) {
	case *Sym:
		out[v.name] = struct{}{}
	case *Add:
		for _, t := range v.terms {
			collectSymbols(t, out)
		}
	case *Mul:
		for _, f := range v.factors {
			collectSymbols(f, out)
		}
	case *Pow:
		collectSymbols(v.base, out)
		collectSymbols(v.exp, out)
	case *Func:
		collectSymbols(v.arg, out)
	}
}

// DependsOn reports whether the symbol name occurs in e.
func DependsOn(e Expr, name string) bool {
	switch v := e.(type) {
	case *Sym:
		return v.name == name
	case *Add:
		for _, t := range v.terms {
			if DependsOn(t, name) {
				return true
			}
		}
	case *Mul:
		for _, f := range v.factors {
			if DependsOn(f, name) {
				return true
			}
		}
	case *Pow:
		return DependsOn(v.base, name) || DependsOn(v.exp, name)
	case *Func:
		return DependsOn(v.arg, name)
	}
	return false
}

func isNum(e Expr, v int64) bool {
	n, ok := e.(*Num)
	return ok && n.val.Cmp(big.NewRat(v, 1)) == 0
}

func sortByKey(es []Expr) []Expr {
	type keyed struct {
		e   Expr
		key string
	}
	ks := make([]keyed, len(es))
	for i, e := range es {
		ks[i] = keyed{e: e, key: e.String()}
	}
	sort.SliceStable(ks, func(i, j int) bool { return ks[i].key < ks[j].key })
	out := make([]Expr, len(ks))
	for i := range ks {
		out[i] = ks[i].e
	}
	return out
}
