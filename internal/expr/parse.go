package expr

import (
	"fmt"
	"math/big"
)

// Variables lists the symbol names an expression may use.
var Variables = []string{"x", "y", "z", "r", "theta", "rho", "phi"}

var constants = map[string]Expr{
	"pi": Pi,
	"e":  E,
	"E":  E,
}

// Parse reads infix expression text. It accepts + - * / with the usual
// precedence, ^ and ** for right-associative powers, unary signs,
// parentheses, the variables x y z r theta rho phi, the constants pi and e,
// and the functions sin cos tan exp log ln sqrt abs asin acos atan sinh
// cosh tanh. Decimal literals are converted to exact rationals.
func Parse(input string) (Expr, error) {
	p := &parser{lex: &lexer{input: input}}
	p.advance()
	if p.cur.typ == tokenEOF {
		return nil, &ParseError{Message: "empty expression", Position: p.cur.position}
	}
	e, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if p.cur.typ != tokenEOF {
		return nil, p.parseError("unexpected %s after expression", p.cur.typ)
	}
	return e, nil
}

// MustParse is like Parse but panics on error. Intended for fixed
// expressions known at compile time.
func MustParse(input string) Expr {
	e, err := Parse(input)
	if err != nil {
		panic(err)
	}
	return e
}

type parser struct {
	lex *lexer
	cur token
}

func (p *parser) advance() { p.cur = p.lex.next() }

func (p *parser) parseError(format string, args ...any) *ParseError {
	return &ParseError{
		Message:  fmt.Sprintf(format, args...),
		Position: p.cur.position,
		Token:    p.cur.value,
	}
}

// parseExpression handles + and -.
func (p *parser) parseExpression() (Expr, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.cur.typ == tokenPlus || p.cur.typ == tokenMinus {
		op := p.cur.typ
		p.advance()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		if op == tokenPlus {
			left = AddOf(left, right)
		} else {
			left = SubOf(left, right)
		}
	}
	return left, nil
}

// parseTerm handles * and /.
func (p *parser) parseTerm() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.cur.typ == tokenStar || p.cur.typ == tokenSlash {
		op := p.cur.typ
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if op == tokenStar {
			left = MulOf(left, right)
			continue
		}
		if n, ok := right.(*Num); ok && n.IsZero() {
			return nil, p.parseError("division by zero")
		}
		left = DivOf(left, right)
	}
	return left, nil
}

func (p *parser) parseUnary() (Expr, error) {
	switch p.cur.typ {
	case tokenMinus:
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Neg(operand), nil
	case tokenPlus:
		p.advance()
		return p.parseUnary()
	}
	return p.parsePower()
}

func (p *parser) parsePower() (Expr, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if p.cur.typ != tokenCaret {
		return base, nil
	}
	p.advance()
	exp, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	if b, ok := base.(*Num); ok && b.IsZero() {
		if n, ok := exp.(*Num); ok && !n.IsPositive() {
			return nil, p.parseError("zero raised to a non-positive power")
		}
	}
	return PowOf(base, exp), nil
}

func (p *parser) parsePrimary() (Expr, error) {
	tok := p.cur
	switch tok.typ {
	case tokenNumber:
		r, ok := new(big.Rat).SetString(tok.value)
		if !ok {
			return nil, p.parseError("malformed number")
		}
		p.advance()
		return newNum(r), nil
	case tokenIdent:
		p.advance()
		if IsFunction(tok.value) {
			return p.parseCall(tok)
		}
		if c, ok := constants[tok.value]; ok {
			return c, nil
		}
		for _, v := range Variables {
			if v == tok.value {
				return S(v), nil
			}
		}
		return nil, &ParseError{Message: "unknown identifier", Position: tok.position, Token: tok.value}
	case tokenLeftParen:
		p.advance()
		inner, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if p.cur.typ != tokenRightParen {
			return nil, p.parseError("expected ')' but found %s", p.cur.typ)
		}
		p.advance()
		return inner, nil
	case tokenEOF:
		return nil, p.parseError("unexpected end of input")
	}
	return nil, p.parseError("unexpected %s", tok.typ)
}

func (p *parser) parseCall(name token) (Expr, error) {
	if p.cur.typ != tokenLeftParen {
		return nil, &ParseError{Message: "function call needs parentheses", Position: name.position, Token: name.value}
	}
	p.advance()
	arg, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if p.cur.typ != tokenRightParen {
		return nil, p.parseError("expected ')' but found %s", p.cur.typ)
	}
	p.advance()
	return Call(name.value, arg)
}
