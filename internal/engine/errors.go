package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexiusacademia/gotriple/internal/bounds"
	"github.com/alexiusacademia/gotriple/internal/coords"
	"github.com/alexiusacademia/gotriple/internal/expr"
	"github.com/alexiusacademia/gotriple/internal/quadrature"
)

// Kind classifies an evaluation failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindParse
	KindUnsupportedSystem
	KindInvalidSpec
	KindBoundDependency
	KindSymbolicUnsupported
	KindNumericFailure
	KindTimeout
)

func (k Kind) String() string {
	switch k {
	case KindParse:
		return "ParseError"
	case KindUnsupportedSystem:
		return "UnsupportedCoordinateSystem"
	case KindInvalidSpec:
		return "InvalidSpec"
	case KindBoundDependency:
		return "BoundDependencyError"
	case KindSymbolicUnsupported:
		return "SymbolicIntegrationUnsupported"
	case KindNumericFailure:
		return "NumericIntegrationFailure"
	case KindTimeout:
		return "Timeout"
	}
	return "Unknown"
}

// MarshalText renders the kind by name in JSON output.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Error is a structured evaluation failure.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, err error, format string, args ...any) *Error {
	msg := fmt.Sprintf(format, args...)
	if err != nil {
		if msg == "" {
			msg = err.Error()
		} else {
			msg += ": " + err.Error()
		}
	}
	return &Error{Kind: kind, Message: msg, Err: err}
}

// KindOf classifies err, looking through wrapped errors.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var ee *Error
	if errors.As(err, &ee) {
		return ee.Kind
	}
	var pe *expr.ParseError
	var ue *coords.UnsupportedError
	var ve *ValidationError
	switch {
	case errors.As(err, &pe):
		return KindParse
	case errors.As(err, &ue):
		return KindUnsupportedSystem
	case errors.As(err, &ve):
		return KindInvalidSpec
	case errors.Is(err, bounds.ErrDependency):
		return KindBoundDependency
	case errors.Is(err, bounds.ErrInvalidOrder), errors.Is(err, bounds.ErrMissingBound):
		return KindInvalidSpec
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return KindTimeout
	case errors.Is(err, expr.ErrUnsupported):
		return KindSymbolicUnsupported
	case errors.Is(err, quadrature.ErrNonFinite),
		errors.Is(err, quadrature.ErrNotConverged),
		errors.Is(err, quadrature.ErrBudget),
		errors.Is(err, bounds.ErrNonFiniteBound):
		return KindNumericFailure
	}
	return KindUnknown
}
