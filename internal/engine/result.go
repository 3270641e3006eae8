package engine

import (
	"fmt"

	"github.com/alexiusacademia/gotriple/internal/bounds"
	"github.com/alexiusacademia/gotriple/internal/coords"
	"github.com/alexiusacademia/gotriple/internal/expr"
)

// Symbolic is a closed-form result.
type Symbolic struct {
	Expr     expr.Expr
	Text     string
	LaTeX    string
	Value    float64 // valid when IsNumber
	IsNumber bool
}

// Numeric is a quadrature result.
type Numeric struct {
	Value        float64
	AbsError     float64
	Evaluations  int
	Subdivisions int
}

// Result is the outcome of Evaluate. Exactly one of Symbolic, Numeric and
// Failure is set.
type Result struct {
	Strategy Strategy
	System   coords.System
	Order    [3]string
	Resolved *bounds.Resolved
	Trace    *Trace
	Symbolic *Symbolic
	Numeric  *Numeric
	Failure  *Error
	Path     []State
}

// Err returns the failure as an error, or nil.
func (r *Result) Err() error {
	if r.Failure == nil {
		return nil
	}
	return r.Failure
}

// Value returns the numeric value of the integral when there is one.
func (r *Result) Value() (float64, bool) {
	switch {
	case r.Symbolic != nil && r.Symbolic.IsNumber:
		return r.Symbolic.Value, true
	case r.Numeric != nil:
		return r.Numeric.Value, true
	}
	return 0, false
}

// Method names the path that produced the result.
func (r *Result) Method() string {
	switch {
	case r.Symbolic != nil:
		return "symbolic"
	case r.Numeric != nil:
		return "numeric"
	}
	return "failed"
}

// Reached reports whether the evaluation passed through s.
func (r *Result) Reached(s State) bool {
	for _, p := range r.Path {
		if p == s {
			return true
		}
	}
	return false
}

// Decimal formats the value with the given number of decimals, or "N/A".
func (r *Result) Decimal(precision int) string {
	v, ok := r.Value()
	if !ok {
		return "N/A"
	}
	return fmt.Sprintf("%.*f", precision, v)
}

// Report is the serialisable form of a Result.
type Report struct {
	System       string       `json:"system,omitempty"`
	Order        []string     `json:"order,omitempty"`
	Method       string       `json:"method"`
	Trace        string       `json:"trace,omitempty"`
	TraceLaTeX   string       `json:"trace_latex,omitempty"`
	Integrand    string       `json:"integrand,omitempty"`
	Jacobian     string       `json:"jacobian,omitempty"`
	Symbolic     string       `json:"symbolic,omitempty"`
	Value        *float64     `json:"value,omitempty"`
	Decimal      string       `json:"decimal"`
	AbsError     *float64     `json:"abs_error,omitempty"`
	Evaluations  int          `json:"evaluations,omitempty"`
	Subdivisions int          `json:"subdivisions,omitempty"`
	Error        *ErrorReport `json:"error,omitempty"`
	Path         []State      `json:"path"`
}

// ErrorReport is the serialisable form of an Error.
type ErrorReport struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

// Report flattens the result for JSON output.
func (r *Result) Report(precision int) Report {
	rep := Report{
		Method:  r.Method(),
		Decimal: r.Decimal(precision),
		Path:    r.Path,
	}
	if r.Reached(Parsed) {
		rep.System = r.System.String()
		rep.Order = append([]string(nil), r.Order[:]...)
	}
	if r.Trace != nil {
		rep.Trace = r.Trace.Notation
		rep.TraceLaTeX = r.Trace.LaTeX
		rep.Integrand = expr.Render(r.Trace.Native)
		rep.Jacobian = expr.Render(r.Trace.Jacobian)
	}
	if v, ok := r.Value(); ok {
		rep.Value = &v
	}
	if r.Symbolic != nil {
		rep.Symbolic = r.Symbolic.Text
	}
	if r.Numeric != nil {
		e := r.Numeric.AbsError
		rep.AbsError = &e
		rep.Evaluations = r.Numeric.Evaluations
		rep.Subdivisions = r.Numeric.Subdivisions
	}
	if r.Failure != nil {
		rep.Error = &ErrorReport{Kind: r.Failure.Kind, Message: r.Failure.Message}
	}
	return rep
}
