package expr

import (
	"strconv"
	"strings"

	"go.trai.ch/qcache/internal/core/domain"
	"go.trai.ch/zerr"
)

// Parse reads an expression in canonical form, e.g. "Mean(Sub($close,$open),5)".
// Whitespace between tokens is ignored, so Parse(n.String()) rebuilds n.
func Parse(src string) (Node, error) {
	p := &parser{src: src}
	n, err := p.expr()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, p.fail("unexpected trailing input")
	}
	return n, nil
}

type parser struct {
	src string
	pos int
}

func (p *parser) fail(msg string) error {
	return zerr.With(zerr.With(zerr.Wrap(domain.ErrParseExpression, msg), "expression", p.src), "offset", p.pos)
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) && strings.ContainsRune(" \t\n\r", rune(p.src[p.pos])) {
		p.pos++
	}
}

func (p *parser) peek() byte {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) expect(c byte) error {
	if p.peek() != c {
		return p.fail("expected '" + string(c) + "'")
	}
	p.pos++
	return nil
}

func isWordByte(c byte) bool {
	return c == '_' || c == '.' || c == '-' || c == '+' ||
		('0' <= c && c <= '9') || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

// word reads a run of identifier, name or number characters.
func (p *parser) word() string {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) && isWordByte(p.src[p.pos]) {
		// Exponent signs belong to numbers; everywhere else '+' and '-' only lead.
		if c := p.src[p.pos]; (c == '+' || c == '-') && p.pos > start {
			if prev := p.src[p.pos-1]; prev != 'e' && prev != 'E' {
				break
			}
		}
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *parser) expr() (Node, error) {
	if p.peek() == '$' {
		return p.leaf()
	}

	offset := p.pos
	w := p.word()
	if w == "" {
		return nil, p.fail("expected an expression")
	}

	if p.peek() != '(' {
		v, err := strconv.ParseFloat(w, 64)
		if err != nil {
			p.pos = offset
			return nil, p.fail("expected a number or operator call")
		}
		return Const(v), nil
	}
	p.pos++

	n, err := p.call(w, offset)
	if err != nil {
		return nil, err
	}
	if err := p.expect(')'); err != nil {
		return nil, err
	}
	return n, nil
}

func (p *parser) leaf() (Node, error) {
	p.pos++
	period := false
	if p.pos < len(p.src) && p.src[p.pos] == '$' {
		period = true
		p.pos++
	}
	name := p.word()
	if period {
		return PeriodFeature(name)
	}
	return Feature(name)
}

func (p *parser) call(op string, offset int) (Node, error) {
	if u, ok := unaryByName[op]; ok {
		child, err := p.expr()
		if err != nil {
			return nil, err
		}
		return NewUnary(u, child), nil
	}

	if b, ok := binaryByName[op]; ok {
		left, err := p.expr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(','); err != nil {
			return nil, err
		}
		right, err := p.expr()
		if err != nil {
			return nil, err
		}
		return NewBinary(b, left, right), nil
	}

	if r, ok := rollingByName[op]; ok {
		child, err := p.expr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(','); err != nil {
			return nil, err
		}
		w := p.word()
		n, err := strconv.Atoi(w)
		if err != nil {
			return nil, p.fail("window must be an integer")
		}
		return NewRolling(r, child, n)
	}

	if op == "ChangeInstrument" {
		code := p.word()
		if err := p.expect(','); err != nil {
			return nil, err
		}
		child, err := p.expr()
		if err != nil {
			return nil, err
		}
		return ChangeInstrument(code, child)
	}

	return nil, zerr.With(zerr.With(zerr.Wrap(domain.ErrUnknownOperator, "cannot parse expression"), "operator", op), "offset", offset)
}
