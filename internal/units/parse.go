package units

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"unicode"
)

var cache sync.Map // string -> Unit

// Parse parses a unit expression. The grammar is
//
//	expr   = term { ("*" | "/") term }
//	term   = factor [ ("**" | "^") integer ]
//	factor = name | number | "(" expr ")"
//
// Offset units (degC, degF) keep their offset only when they stand alone;
// inside a compound expression they count as temperature differences.
func Parse(expr string) (Unit, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return Dimensionless, nil
	}
	if u, ok := cache.Load(expr); ok {
		return u.(Unit), nil
	}
	p := &parser{src: expr}
	p.next()
	u, err := p.expr()
	if err != nil {
		return Unit{}, fmt.Errorf("invalid unit '%s': %w", expr, err)
	}
	if p.tok != tokEOF {
		return Unit{}, fmt.Errorf("invalid unit '%s': unexpected '%s' at %d", expr, p.text, p.pos)
	}
	u.Expr = expr
	if !p.compound {
		if d, ok := lookup(expr); ok {
			u.Offset = d.offset
		}
	}
	cache.Store(expr, u)
	return u, nil
}

// MustParse is Parse for expressions known to be valid.
func MustParse(expr string) Unit {
	u, err := Parse(expr)
	if err != nil {
		panic(err)
	}
	return u
}

type token int

const (
	tokEOF token = iota
	tokName
	tokNumber
	tokMul
	tokDiv
	tokPow
	tokLParen
	tokRParen
)

type parser struct {
	src      string
	pos      int
	tok      token
	text     string
	compound bool
}

func (p *parser) next() {
	for p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}
	if p.pos >= len(p.src) {
		p.tok, p.text = tokEOF, ""
		return
	}
	start := p.pos
	c := p.src[p.pos]
	switch {
	case c == '*':
		p.pos++
		p.tok = tokMul
		if p.pos < len(p.src) && p.src[p.pos] == '*' {
			p.pos++
			p.tok = tokPow
		}
	case c == '^':
		p.pos++
		p.tok = tokPow
	case c == '/':
		p.pos++
		p.tok = tokDiv
	case c == '(':
		p.pos++
		p.tok = tokLParen
	case c == ')':
		p.pos++
		p.tok = tokRParen
	case c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9'):
		p.pos++
		for p.pos < len(p.src) {
			ch := p.src[p.pos]
			prev := p.src[p.pos-1]
			exp := (ch == '-' || ch == '+') && (prev == 'e' || prev == 'E')
			if !exp && strings.IndexByte("0123456789.eE", ch) < 0 {
				break
			}
			p.pos++
		}
		p.tok = tokNumber
	default:
		for p.pos < len(p.src) {
			r := rune(p.src[p.pos])
			if r < 0x80 && !unicode.IsLetter(r) && r != '_' {
				break
			}
			p.pos++
		}
		if p.pos == start {
			p.pos++
		}
		p.tok = tokName
	}
	p.text = p.src[start:p.pos]
}

func (p *parser) expr() (Unit, error) {
	u, err := p.term()
	if err != nil {
		return Unit{}, err
	}
	for p.tok == tokMul || p.tok == tokDiv {
		p.compound = true
		op := p.tok
		p.next()
		r, err := p.term()
		if err != nil {
			return Unit{}, err
		}
		if op == tokMul {
			u.Scale *= r.Scale
			u.Dim = u.Dim.mul(r.Dim, 1)
		} else {
			u.Scale /= r.Scale
			u.Dim = u.Dim.mul(r.Dim, -1)
		}
	}
	return u, nil
}

func (p *parser) term() (Unit, error) {
	u, err := p.factor()
	if err != nil {
		return Unit{}, err
	}
	if p.tok != tokPow {
		return u, nil
	}
	p.compound = true
	p.next()
	if p.tok != tokNumber {
		return Unit{}, fmt.Errorf("expected integer exponent, got '%s'", p.text)
	}
	n, err := strconv.Atoi(p.text)
	if err != nil || n < -127 || n > 127 {
		return Unit{}, fmt.Errorf("bad exponent '%s'", p.text)
	}
	p.next()
	r := Unit{Scale: 1, Dim: u.Dim.pow(int8(n))}
	for i := 0; i < abs(n); i++ {
		r.Scale *= u.Scale
	}
	if n < 0 {
		r.Scale = 1 / r.Scale
	}
	return r, nil
}

func (p *parser) factor() (Unit, error) {
	switch p.tok {
	case tokLParen:
		p.compound = true
		p.next()
		u, err := p.expr()
		if err != nil {
			return Unit{}, err
		}
		if p.tok != tokRParen {
			return Unit{}, fmt.Errorf("missing ')'")
		}
		p.next()
		return u, nil
	case tokNumber:
		p.compound = true
		v, err := strconv.ParseFloat(p.text, 64)
		if err != nil || v == 0 {
			return Unit{}, fmt.Errorf("bad number '%s'", p.text)
		}
		p.next()
		return Unit{Scale: v}, nil
	case tokName:
		d, ok := lookup(p.text)
		if !ok {
			return Unit{}, fmt.Errorf("unknown unit '%s'", p.text)
		}
		p.next()
		return Unit{Scale: d.scale, Dim: d.dim}, nil
	}
	return Unit{}, fmt.Errorf("unexpected '%s'", p.text)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
