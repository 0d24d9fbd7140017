package builtins

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// evalArithmetic evaluates a restricted arithmetic expression: decimal
// numbers, + - * / %, unary minus, and parentheses. Expressions are
// stateless and side-effect-free; there is deliberately no identifier or
// call syntax.
func evalArithmetic(input string) (float64, error) {
	p := &calcParser{input: input}
	value, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	p.skipSpace()
	if p.pos < len(p.input) {
		return 0, fmt.Errorf("unexpected character %q at position %d", p.input[p.pos], p.pos)
	}
	return value, nil
}

// calcParser is a recursive-descent parser with the grammar:
//
//	expr   = term (('+' | '-') term)*
//	term   = unary (('*' | '/' | '%') unary)*
//	unary  = '-' unary | primary
//	primary = number | '(' expr ')'
type calcParser struct {
	input string
	pos   int
}

func (p *calcParser) parseExpr() (float64, error) {
	left, err := p.parseTerm()
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpace()
		switch {
		case p.accept('+'):
			right, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			left += right
		case p.accept('-'):
			right, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			left -= right
		default:
			return left, nil
		}
	}
}

func (p *calcParser) parseTerm() (float64, error) {
	left, err := p.parseUnary()
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpace()
		switch {
		case p.accept('*'):
			right, err := p.parseUnary()
			if err != nil {
				return 0, err
			}
			left *= right
		case p.accept('/'):
			right, err := p.parseUnary()
			if err != nil {
				return 0, err
			}
			if right == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			left /= right
		case p.accept('%'):
			right, err := p.parseUnary()
			if err != nil {
				return 0, err
			}
			if right == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			left = math.Mod(left, right)
		default:
			return left, nil
		}
	}
}

func (p *calcParser) parseUnary() (float64, error) {
	p.skipSpace()
	if p.accept('-') {
		value, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		return -value, nil
	}
	return p.parsePrimary()
}

func (p *calcParser) parsePrimary() (float64, error) {
	p.skipSpace()
	if p.accept('(') {
		value, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		p.skipSpace()
		if !p.accept(')') {
			return 0, fmt.Errorf("missing closing parenthesis")
		}
		return value, nil
	}
	return p.parseNumber()
}

func (p *calcParser) parseNumber() (float64, error) {
	start := p.pos
	for p.pos < len(p.input) && (unicode.IsDigit(rune(p.input[p.pos])) || p.input[p.pos] == '.') {
		p.pos++
	}
	if start == p.pos {
		if p.pos >= len(p.input) {
			return 0, fmt.Errorf("unexpected end of expression")
		}
		return 0, fmt.Errorf("unexpected character %q at position %d", p.input[p.pos], p.pos)
	}
	value, err := strconv.ParseFloat(p.input[start:p.pos], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", p.input[start:p.pos])
	}
	return value, nil
}

func (p *calcParser) accept(ch byte) bool {
	if p.pos < len(p.input) && p.input[p.pos] == ch {
		p.pos++
		return true
	}
	return false
}

func (p *calcParser) skipSpace() {
	for p.pos < len(p.input) && strings.ContainsRune(" \t", rune(p.input[p.pos])) {
		p.pos++
	}
}

// formatNumber renders a result without a trailing ".000000" for integral
// values: 4 rather than 4.000000.
func formatNumber(value float64) string {
	if value == math.Trunc(value) && math.Abs(value) < 1e15 {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'g', -1, 64)
}
