package engine

import (
	"strings"

	"github.com/alexiusacademia/gotriple/internal/bounds"
	"github.com/alexiusacademia/gotriple/internal/coords"
	"github.com/alexiusacademia/gotriple/internal/expr"
)

// Trace is the iterated integral that was actually solved.
type Trace struct {
	System    coords.System
	Order     [3]string // innermost first
	Native    expr.Expr // integrand in native variables, before the Jacobian
	Jacobian  expr.Expr
	Integrand expr.Expr // Native times Jacobian
	Lower     [3]expr.Expr
	Upper     [3]expr.Expr
	Notation  string
	LaTeX     string
}

// FormatTrace renders the iterated integral for resolved levels and the
// transformed integrand. The output depends on nothing else.
func FormatTrace(res *bounds.Resolved, native expr.Expr) *Trace {
	jac := res.System.Jacobian()
	t := &Trace{
		System:    res.System,
		Order:     res.Order,
		Native:    native,
		Jacobian:  jac,
		Integrand: expr.MulOf(native, jac),
	}
	for i, lv := range res.Levels {
		t.Lower[i] = lv.Lower
		t.Upper[i] = lv.Upper
	}
	t.Notation = t.notation()
	t.LaTeX = t.latex()
	return t
}

// hasJacobian is false for rectangular coordinates.
func (t *Trace) hasJacobian() bool {
	return !t.Jacobian.Equal(expr.N(1))
}

func (t *Trace) notation() string {
	var b strings.Builder
	for i := 2; i >= 0; i-- {
		b.WriteString("∫(")
		b.WriteString(expr.Render(t.Lower[i]))
		b.WriteString(")→(")
		b.WriteString(expr.Render(t.Upper[i]))
		b.WriteString(") ")
	}
	b.WriteString("[")
	b.WriteString(expr.Render(t.Native))
	b.WriteString("]")
	if t.hasJacobian() {
		b.WriteString(" * ")
		b.WriteString(expr.Render(t.Jacobian))
	}
	for _, v := range t.Order {
		b.WriteString(" d")
		b.WriteString(coords.Symbol(v))
	}
	return b.String()
}

func (t *Trace) latex() string {
	var b strings.Builder
	for i := 2; i >= 0; i-- {
		b.WriteString(`\int_{`)
		b.WriteString(expr.LaTeX(t.Lower[i]))
		b.WriteString(`}^{`)
		b.WriteString(expr.LaTeX(t.Upper[i]))
		b.WriteString(`} `)
	}
	b.WriteString(`\left(`)
	b.WriteString(expr.LaTeX(t.Native))
	b.WriteString(`\right)`)
	if t.hasJacobian() {
		b.WriteString(" ")
		b.WriteString(expr.LaTeX(t.Jacobian))
	}
	for _, v := range t.Order {
		b.WriteString(`\,d`)
		b.WriteString(expr.S(v).LaTeX())
	}
	return b.String()
}
