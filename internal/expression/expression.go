// Package expression evaluates the arithmetic formulas counters type instead
// of raw quantities, e.g. "2*5+3*4" for two boxes of five and three of four.
//
// The grammar is fixed and deliberately small:
//
//	expr   := term (('+'|'-') term)*
//	term   := factor (('*'|'/') factor)*
//	factor := NUMBER | '(' expr ')'
//
// Evaluation is integer only. A result is rejected when it cannot be a
// stock quantity: division by zero, inexact division, int64 overflow or a
// negative final value.
package expression

import (
	"fmt"
	"math"
	"strings"

	"github.com/fekuna/omnipos-stockcount-service/internal/apperr"
)

// SyntaxError describes why an expression was rejected. It is always
// returned wrapped in an apperr.Error with CodeMalformedExpression.
type SyntaxError struct {
	Input string
	Pos   int
	Msg   string
}

func (e *SyntaxError) Error() string {
	if e.Pos < 0 {
		return e.Msg
	}
	return fmt.Sprintf("%s at position %d", e.Msg, e.Pos+1)
}

func malformed(input string, pos int, format string, args ...interface{}) error {
	return apperr.Wrap(apperr.CodeMalformedExpression, &SyntaxError{
		Input: input,
		Pos:   pos,
		Msg:   fmt.Sprintf(format, args...),
	})
}

// Evaluate returns the quantity denoted by text. Empty or blank input is 0.
func Evaluate(text string) (int64, error) {
	toks, err := tokenize(text)
	if err != nil {
		return 0, err
	}
	if len(toks) == 0 {
		return 0, nil
	}
	p := &parser{input: text, toks: toks}
	v, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	if !p.done() {
		t := p.peek()
		return 0, malformed(text, t.pos, "unexpected %q", t.text)
	}
	if v < 0 {
		return 0, malformed(text, -1, "quantity cannot be negative (%d)", v)
	}
	return v, nil
}

// DecomposeBySum splits text on its top-level '+' operators and returns the
// literal operands in order, trimmed of surrounding blanks. Parenthesised
// groups and '*', '/', '-' chains are never split, so joining the parts with
// "+" yields an expression with the same value. Blank input yields no parts.
// A part need not be a valid count by itself: "2-3+5" yields "2-3" and "5".
func DecomposeBySum(text string) ([]string, error) {
	if _, err := Evaluate(text); err != nil {
		return nil, err
	}
	toks, _ := tokenize(text)
	if len(toks) == 0 {
		return []string{}, nil
	}

	var (
		parts []string
		depth int
		start = 0
	)
	for _, t := range toks {
		switch t.kind {
		case tokLParen:
			depth++
		case tokRParen:
			depth--
		case tokPlus:
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(text[start:t.pos]))
				start = t.pos + 1
			}
		}
	}
	parts = append(parts, strings.TrimSpace(text[start:]))
	return parts, nil
}

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokLParen
	tokRParen
)

type token struct {
	kind  tokenKind
	text  string
	value int64
	pos   int
}

func tokenize(s string) ([]token, error) {
	var toks []token
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c >= '0' && c <= '9':
			start := i
			var v int64
			for i < len(s) && s[i] >= '0' && s[i] <= '9' {
				d := int64(s[i] - '0')
				if v > (math.MaxInt64-d)/10 {
					return nil, malformed(s, start, "number too large")
				}
				v = v*10 + d
				i++
			}
			toks = append(toks, token{kind: tokNumber, text: s[start:i], value: v, pos: start})
		default:
			kind, ok := operators[c]
			if !ok {
				return nil, malformed(s, i, "unexpected character %q", string(c))
			}
			toks = append(toks, token{kind: kind, text: string(c), pos: i})
			i++
		}
	}
	return toks, nil
}

var operators = map[byte]tokenKind{
	'+': tokPlus,
	'-': tokMinus,
	'*': tokStar,
	'/': tokSlash,
	'(': tokLParen,
	')': tokRParen,
}
