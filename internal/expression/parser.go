package expression

import "math"

type parser struct {
	input string
	toks  []token
	pos   int
}

func (p *parser) done() bool { return p.pos >= len(p.toks) }

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) endPos() int { return len(p.input) }

func (p *parser) parseExpr() (int64, error) {
	left, err := p.parseTerm()
	if err != nil {
		return 0, err
	}
	for !p.done() {
		op := p.peek()
		if op.kind != tokPlus && op.kind != tokMinus {
			break
		}
		p.pos++
		right, err := p.parseTerm()
		if err != nil {
			return 0, err
		}
		if op.kind == tokPlus {
			if right > 0 && left > math.MaxInt64-right {
				return 0, malformed(p.input, op.pos, "result overflows")
			}
			left += right
		} else {
			if right > 0 && left < math.MinInt64+right {
				return 0, malformed(p.input, op.pos, "result overflows")
			}
			left -= right
		}
	}
	return left, nil
}

func (p *parser) parseTerm() (int64, error) {
	left, err := p.parseFactor()
	if err != nil {
		return 0, err
	}
	for !p.done() {
		op := p.peek()
		if op.kind != tokStar && op.kind != tokSlash {
			break
		}
		p.pos++
		right, err := p.parseFactor()
		if err != nil {
			return 0, err
		}
		if op.kind == tokStar {
			if left != 0 && right != 0 {
				prod := left * right
				if prod/right != left || (left == -1 && right == math.MinInt64) || (right == -1 && left == math.MinInt64) {
					return 0, malformed(p.input, op.pos, "result overflows")
				}
			}
			left *= right
			continue
		}
		if right == 0 {
			return 0, malformed(p.input, op.pos, "division by zero")
		}
		if left%right != 0 {
			return 0, malformed(p.input, op.pos, "%d/%d is not a whole quantity", left, right)
		}
		left /= right
	}
	return left, nil
}

func (p *parser) parseFactor() (int64, error) {
	if p.done() {
		return 0, malformed(p.input, p.endPos(), "unexpected end of expression")
	}
	t := p.peek()
	switch t.kind {
	case tokNumber:
		p.pos++
		return t.value, nil
	case tokLParen:
		p.pos++
		v, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		if p.done() {
			return 0, malformed(p.input, p.endPos(), "missing ')'")
		}
		if closing := p.peek(); closing.kind != tokRParen {
			return 0, malformed(p.input, closing.pos, "expected ')' but found %q", closing.text)
		}
		p.pos++
		return v, nil
	default:
		return 0, malformed(p.input, t.pos, "unexpected %q", t.text)
	}
}
