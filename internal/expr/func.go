package expr

import (
	"fmt"
	"math"
	"math/big"
)

// ============================================================
// Func: named elementary function of one argument
// ============================================================

type Func struct {
	name string
	arg  Expr
}

type funcDef struct {
	eval  func(float64) float64
	latex string
}

var funcs = map[string]funcDef{
	"sin":  {math.Sin, "\\sin"},
	"cos":  {math.Cos, "\\cos"},
	"tan":  {math.Tan, "\\tan"},
	"exp":  {math.Exp, ""},
	"log":  {math.Log, "\\ln"},
	"abs":  {math.Abs, ""},
	"asin": {math.Asin, "\\arcsin"},
	"acos": {math.Acos, "\\arccos"},
	"atan": {math.Atan, "\\arctan"},
	"sinh": {math.Sinh, "\\sinh"},
	"cosh": {math.Cosh, "\\cosh"},
	"tanh": {math.Tanh, "\\tanh"},
}

// IsFunction reports whether name is a known function, including the
// aliases ln and sqrt.
func IsFunction(name string) bool {
	if name == "ln" || name == "sqrt" {
		return true
	}
	_, ok := funcs[name]
	return ok
}

// Call applies the named function to arg.
func Call(name string, arg Expr) (Expr, error) {
	switch name {
	case "ln":
		name = "log"
	case "sqrt":
		return SqrtOf(arg), nil
	}
	if _, ok := funcs[name]; !ok {
		return nil, fmt.Errorf("unknown function %q", name)
	}
	return (&Func{name: name, arg: arg}).Simplify(), nil
}

func mustCall(name string, arg Expr) Expr {
	e, err := Call(name, arg)
	if err != nil {
		panic(err)
	}
	return e
}

func SinOf(arg Expr) Expr  { return mustCall("sin", arg) }
func CosOf(arg Expr) Expr  { return mustCall("cos", arg) }
func TanOf(arg Expr) Expr  { return mustCall("tan", arg) }
func ExpOf(arg Expr) Expr  { return mustCall("exp", arg) }
func LogOf(arg Expr) Expr  { return mustCall("log", arg) }
func AbsOf(arg Expr) Expr  { return mustCall("abs", arg) }
func SinhOf(arg Expr) Expr { return mustCall("sinh", arg) }
func CoshOf(arg Expr) Expr { return mustCall("cosh", arg) }

func (f *Func) Simplify() Expr {
	arg := f.arg.Simplify()
	if v, ok := exactValue(f.name, arg); ok {
		return v
	}
	// Odd and even symmetry on a negated argument.
	if neg, pos := negated(arg); neg {
		switch f.name {
		case "sin", "tan", "asin", "atan", "sinh", "tanh":
			return Neg(&Func{name: f.name, arg: pos})
		case "cos", "cosh", "abs":
			return &Func{name: f.name, arg: pos}
		}
	}
	return &Func{name: f.name, arg: arg}
}

// exactValue folds the special values the engine relies on for exact
// results: trigonometric functions at multiples of pi/2, exp/log
// inverses and the zeros of the odd functions.
func exactValue(name string, arg Expr) (Expr, bool) {
	if n, ok := arg.(*Num); ok && n.IsZero() {
		switch name {
		case "sin", "tan", "asin", "atan", "sinh", "tanh", "abs":
			return N(0), true
		case "cos", "cosh", "exp":
			return N(1), true
		case "acos":
			return MulOf(F(1, 2), Pi), true
		}
	}
	switch name {
	case "sin", "cos", "tan":
		k, ok := halfPiMultiple(arg)
		if !ok {
			return nil, false
		}
		// k counts quarter turns; only integers are folded.
		if !k.IsInt() {
			return nil, false
		}
		q := new(big.Int).Mod(k.Num(), big.NewInt(4)).Int64()
		switch name {
		case "sin":
			return N([]int64{0, 1, 0, -1}[q]), true
		case "cos":
			return N([]int64{1, 0, -1, 0}[q]), true
		case "tan":
			if q%2 == 0 {
				return N(0), true
			}
		}
	case "exp":
		if g, ok := arg.(*Func); ok && g.name == "log" {
			return g.arg, true
		}
	case "log":
		if isNum(arg, 1) {
			return N(0), true
		}
		if c, ok := arg.(*Const); ok && c == E {
			return N(1), true
		}
		if g, ok := arg.(*Func); ok && g.name == "exp" {
			return g.arg, true
		}
		if p, ok := arg.(*Pow); ok {
			if c, ok := p.base.(*Const); ok && c == E {
				return p.exp, true
			}
		}
	case "acos":
		if isNum(arg, 1) {
			return N(0), true
		}
	case "abs":
		if n, ok := arg.(*Num); ok {
			if n.IsNegative() {
				return numNeg(n), true
			}
			return n, true
		}
		if _, ok := arg.(*Const); ok {
			return arg, true
		}
	}
	return nil, false
}

// halfPiMultiple returns k when arg == k*pi/2.
func halfPiMultiple(arg Expr) (*big.Rat, bool) {
	if c, ok := arg.(*Const); ok && c == Pi {
		return big.NewRat(2, 1), true
	}
	m, ok := arg.(*Mul)
	if !ok || len(m.factors) != 2 {
		return nil, false
	}
	c, ok1 := m.factors[0].(*Num)
	p, ok2 := m.factors[1].(*Const)
	if !ok1 || !ok2 || p != Pi {
		return nil, false
	}
	return new(big.Rat).Mul(c.val, big.NewRat(2, 1)), true
}

func (f *Func) String() string { return f.name + "(" + f.arg.String() + ")" }

func (f *Func) LaTeX() string {
	switch f.name {
	case "exp":
		return "e^{" + f.arg.LaTeX() + "}"
	case "abs":
		return "\\left|" + f.arg.LaTeX() + "\\right|"
	}
	return funcs[f.name].latex + "\\left(" + f.arg.LaTeX() + "\\right)"
}

func (f *Func) Sub(vars map[string]Expr) Expr {
	return (&Func{name: f.name, arg: f.arg.Sub(vars)}).Simplify()
}

func (f *Func) Diff(varName string) Expr {
	du := f.arg.Diff(varName)
	if n, ok := du.(*Num); ok && n.IsZero() {
		return N(0)
	}
	u := f.arg
	var outer Expr
	switch f.name {
	case "sin":
		outer = CosOf(u)
	case "cos":
		outer = Neg(SinOf(u))
	case "tan":
		outer = PowOf(CosOf(u), N(-2))
	case "exp":
		outer = f
	case "log":
		outer = PowOf(u, N(-1))
	case "abs":
		outer = MulOf(u, PowOf(f, N(-1)))
	case "asin":
		outer = PowOf(SubOf(N(1), PowOf(u, N(2))), F(-1, 2))
	case "acos":
		outer = Neg(PowOf(SubOf(N(1), PowOf(u, N(2))), F(-1, 2)))
	case "atan":
		outer = PowOf(AddOf(N(1), PowOf(u, N(2))), N(-1))
	case "sinh":
		outer = CoshOf(u)
	case "cosh":
		outer = SinhOf(u)
	case "tanh":
		outer = PowOf(CoshOf(u), N(-2))
	}
	return MulOf(outer, du)
}

func (f *Func) Eval(env map[string]float64) (float64, error) {
	v, err := f.arg.Eval(env)
	if err != nil {
		return 0, err
	}
	return funcs[f.name].eval(v), nil
}

func (f *Func) Equal(other Expr) bool {
	o, ok := other.(*Func)
	return ok && f.name == o.name && f.arg.Equal(o.arg)
}
