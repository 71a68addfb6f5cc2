package calculator

import (
	"math"
	"strconv"

	"github.com/cockroachdb/errors"
)

// MaxDepth is the maximum nesting of parentheses and unary signs
const MaxDepth = 64

var (
	ErrEmptyExpression  = errors.New("empty expression")
	ErrUnexpectedToken  = errors.New("unexpected token")
	ErrDivisionByZero   = errors.New("division by zero")
	ErrTooDeep          = errors.New("expression is nested too deep")
	ErrNotFinite        = errors.New("result is not a finite number")
	ErrInvalidNumber    = errors.New("invalid number")
	ErrUnbalancedParens = errors.New("unbalanced parentheses")
)

// Evaluate parses and evaluates an arithmetic expression:
//
//	expr   := term   (('+' | '-') term)*
//	term   := factor (('*' | '/') factor)*
//	factor := ('+' | '-') factor | number | '(' expr ')'
//	number := digits ['.' digits] | '.' digits
//
// Whitespace between tokens is ignored.
func Evaluate(expression string) (float64, error) {
	p := &parser{src: expression}
	p.skipSpaces()
	if p.eof() {
		return 0, errors.WithStack(ErrEmptyExpression)
	}

	v, err := p.expr()
	if err != nil {
		return 0, err
	}

	p.skipSpaces()
	if !p.eof() {
		if p.peek() == ')' {
			return 0, errors.WithStack(ErrUnbalancedParens)
		}
		return 0, p.unexpected()
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.WithStack(ErrNotFinite)
	}
	if v == 0 {
		// negative zero
		return 0, nil
	}
	return v, nil
}

type parser struct {
	src   string
	pos   int
	depth int
}

func (p *parser) eof() bool {
	return p.pos >= len(p.src)
}

func (p *parser) peek() byte {
	return p.src[p.pos]
}

func (p *parser) skipSpaces() {
	for !p.eof() {
		switch p.peek() {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) unexpected() error {
	if p.eof() {
		return errors.Wrap(ErrUnexpectedToken, "unexpected end of expression")
	}
	return errors.Wrapf(ErrUnexpectedToken, "%q at position %d", p.peek(), p.pos)
}

func (p *parser) enter() error {
	p.depth++
	if p.depth > MaxDepth {
		return errors.WithStack(ErrTooDeep)
	}
	return nil
}

func (p *parser) leave() {
	p.depth--
}

func (p *parser) expr() (float64, error) {
	left, err := p.term()
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpaces()
		if p.eof() {
			return left, nil
		}
		op := p.peek()
		if op != '+' && op != '-' {
			return left, nil
		}
		p.pos++

		right, err := p.term()
		if err != nil {
			return 0, err
		}
		if op == '+' {
			left += right
		} else {
			left -= right
		}
	}
}

func (p *parser) term() (float64, error) {
	left, err := p.factor()
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpaces()
		if p.eof() {
			return left, nil
		}
		op := p.peek()
		if op != '*' && op != '/' {
			return left, nil
		}
		p.pos++

		right, err := p.factor()
		if err != nil {
			return 0, err
		}
		if op == '*' {
			left *= right
		} else {
			if right == 0 {
				return 0, errors.WithStack(ErrDivisionByZero)
			}
			left /= right
		}
	}
}

func (p *parser) factor() (float64, error) {
	p.skipSpaces()
	if p.eof() {
		return 0, p.unexpected()
	}

	switch c := p.peek(); {
	case c == '+' || c == '-':
		if err := p.enter(); err != nil {
			return 0, err
		}
		defer p.leave()

		p.pos++
		v, err := p.factor()
		if err != nil {
			return 0, err
		}
		if c == '-' {
			v = -v
		}
		return v, nil
	case c == '(':
		if err := p.enter(); err != nil {
			return 0, err
		}
		defer p.leave()

		p.pos++
		v, err := p.expr()
		if err != nil {
			return 0, err
		}
		p.skipSpaces()
		if p.eof() || p.peek() != ')' {
			return 0, errors.WithStack(ErrUnbalancedParens)
		}
		p.pos++
		return v, nil
	case isDigit(c) || c == '.':
		return p.number()
	default:
		return 0, p.unexpected()
	}
}

func (p *parser) number() (float64, error) {
	start := p.pos
	intDigits := p.digits()
	fracDigits := 0
	if !p.eof() && p.peek() == '.' {
		p.pos++
		fracDigits = p.digits()
		if fracDigits == 0 {
			return 0, errors.Wrapf(ErrInvalidNumber, "%q", p.src[start:p.pos])
		}
	}
	if intDigits == 0 && fracDigits == 0 {
		return 0, p.unexpected()
	}

	lit := p.src[start:p.pos]
	v, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidNumber, "%q", lit)
	}
	return v, nil
}

func (p *parser) digits() int {
	n := 0
	for !p.eof() && isDigit(p.peek()) {
		p.pos++
		n++
	}
	return n
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
