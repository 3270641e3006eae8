package expr

import (
	"unicode"
	"unicode/utf8"
)

type tokenType int

const (
	tokenEOF tokenType = iota
	tokenIllegal
	tokenNumber
	tokenIdent
	tokenPlus
	tokenMinus
	tokenStar
	tokenSlash
	tokenCaret // ^ or **
	tokenLeftParen
	tokenRightParen
)

func (tt tokenType) String() string {
	switch tt {
	case tokenEOF:
		return "end of input"
	case tokenNumber:
		return "number"
	case tokenIdent:
		return "identifier"
	case tokenPlus:
		return "'+'"
	case tokenMinus:
		return "'-'"
	case tokenStar:
		return "'*'"
	case tokenSlash:
		return "'/'"
	case tokenCaret:
		return "'^'"
	case tokenLeftParen:
		return "'('"
	case tokenRightParen:
		return "')'"
	default:
		return "illegal character"
	}
}

type token struct {
	typ      tokenType
	value    string
	position int
}

type lexer struct {
	input string
	pos   int
}

func (l *lexer) next() token {
	for l.pos < len(l.input) {
		r, w := utf8.DecodeRuneInString(l.input[l.pos:])
		if !unicode.IsSpace(r) {
			break
		}
		l.pos += w
	}
	start := l.pos
	if l.pos >= len(l.input) {
		return token{typ: tokenEOF, position: start}
	}
	r, w := utf8.DecodeRuneInString(l.input[l.pos:])
	switch {
	case r == '*' && l.peekByte(1) == '*':
		l.pos += 2
		return token{typ: tokenCaret, value: "**", position: start}
	case r == '+', r == '-', r == '*', r == '/', r == '^', r == '(', r == ')':
		l.pos += w
		return token{typ: singleChar[r], value: string(r), position: start}
	case isDigit(r) || r == '.':
		return l.number()
	case unicode.IsLetter(r) || r == '_':
		for l.pos < len(l.input) {
			r, w := utf8.DecodeRuneInString(l.input[l.pos:])
			if !unicode.IsLetter(r) && !isDigit(r) && r != '_' {
				break
			}
			l.pos += w
		}
		return token{typ: tokenIdent, value: l.input[start:l.pos], position: start}
	}
	l.pos += w
	return token{typ: tokenIllegal, value: string(r), position: start}
}

var singleChar = map[rune]tokenType{
	'+': tokenPlus,
	'-': tokenMinus,
	'*': tokenStar,
	'/': tokenSlash,
	'^': tokenCaret,
	'(': tokenLeftParen,
	')': tokenRightParen,
}

// number scans digits, an optional fraction and an optional exponent.
func (l *lexer) number() token {
	start := l.pos
	l.digits()
	if l.peekByte(0) == '.' {
		l.pos++
		l.digits()
	}
	if c := l.peekByte(0); c == 'e' || c == 'E' {
		save := l.pos
		l.pos++
		if c := l.peekByte(0); c == '+' || c == '-' {
			l.pos++
		}
		if !isDigit(rune(l.peekByte(0))) {
			// Not an exponent; leave the e for the identifier scanner.
			l.pos = save
		} else {
			l.digits()
		}
	}
	text := l.input[start:l.pos]
	if text == "." {
		return token{typ: tokenIllegal, value: text, position: start}
	}
	return token{typ: tokenNumber, value: text, position: start}
}

func (l *lexer) digits() {
	for l.pos < len(l.input) && isDigit(rune(l.input[l.pos])) {
		l.pos++
	}
}

func (l *lexer) peekByte(offset int) byte {
	if l.pos+offset < len(l.input) {
		return l.input[l.pos+offset]
	}
	return 0
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }
