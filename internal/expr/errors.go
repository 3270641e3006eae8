package expr

import (
	"errors"
	"fmt"
)

var (
	// ErrUnboundSymbol is returned by Eval when the environment lacks a
	// symbol the expression uses.
	ErrUnboundSymbol = errors.New("unbound symbol")
	// ErrUnsupported is returned when no integration rule applies.
	ErrUnsupported = errors.New("no antiderivative rule applies")
	// ErrNonFinite is returned when an exact evaluation leaves the reals.
	ErrNonFinite = errors.New("expression is not finite")
)

// ParseError describes malformed expression text.
type ParseError struct {
	Message  string
	Position int // byte offset into the input
	Token    string
}

func (e *ParseError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("parse error at position %d: %s", e.Position, e.Message)
	}
	return fmt.Sprintf("parse error at position %d near %q: %s", e.Position, e.Token, e.Message)
}
