package expression

import (
	"errors"
	"strings"
	"testing"

	"github.com/fekuna/omnipos-stockcount-service/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int64
	}{
		{name: "empty", in: "", want: 0},
		{name: "blank", in: "   \t", want: 0},
		{name: "literal", in: "42", want: 42},
		{name: "sum of products", in: "2*5+3*4", want: 22},
		{name: "precedence", in: "2+3*4", want: 14},
		{name: "left to right subtraction", in: "10-4-3", want: 3},
		{name: "left to right division", in: "100/10/5", want: 2},
		{name: "parentheses", in: "(2+3)*4", want: 20},
		{name: "nested parentheses", in: "((1+1)*(2+2))", want: 8},
		{name: "whitespace between tokens", in: " 12 * 3 + 4 ", want: 40},
		{name: "negative intermediate", in: "2-5+10", want: 7},
		{name: "exact division", in: "24/6", want: 4},
		{name: "leading zeros", in: "007", want: 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluateRejects(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantMsg string
	}{
		{name: "dangling operator", in: "2+", wantMsg: "unexpected end of expression"},
		{name: "leading operator", in: "+2", wantMsg: "unexpected \"+\""},
		{name: "unary minus", in: "-2", wantMsg: "unexpected \"-\""},
		{name: "identifier", in: "2*x", wantMsg: "unexpected character \"x\""},
		{name: "decimal", in: "2.5", wantMsg: "unexpected character \".\""},
		{name: "unbalanced open", in: "(2+3", wantMsg: "missing ')'"},
		{name: "unbalanced close", in: "2+3)", wantMsg: "unexpected \")\""},
		{name: "empty parens", in: "()", wantMsg: "unexpected \")\""},
		{name: "adjacent numbers", in: "2 3", wantMsg: "unexpected \"3\""},
		{name: "division by zero", in: "4/0", wantMsg: "division by zero"},
		{name: "inexact division", in: "7/2", wantMsg: "7/2 is not a whole quantity"},
		{name: "negative result", in: "3-8", wantMsg: "quantity cannot be negative (-5)"},
		{name: "huge literal", in: "99999999999999999999", wantMsg: "number too large"},
		{name: "overflowing product", in: "9223372036854775807*2", wantMsg: "result overflows"},
		{name: "code injection", in: "process.exit()", wantMsg: "unexpected character"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Evaluate(tt.in)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperr.ErrMalformedExpression)

			var syn *SyntaxError
			require.True(t, errors.As(err, &syn))
			assert.Contains(t, syn.Error(), tt.wantMsg)
		})
	}
}

func TestEvaluateIsDeterministic(t *testing.T) {
	for i := 0; i < 5; i++ {
		got, err := Evaluate("3*(4+2)-1")
		require.NoError(t, err)
		assert.Equal(t, int64(17), got)
	}
}

func TestDecomposeBySum(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{in: "2*5+3*4", want: []string{"2*5", "3*4"}},
		{in: "12", want: []string{"12"}},
		{in: "", want: []string{}},
		{in: " 2 * 5 + 3 ", want: []string{"2 * 5", "3"}},
		{in: "(1+2)*3+4", want: []string{"(1+2)*3", "4"}},
		{in: "10-2+3", want: []string{"10-2", "3"}},
		{in: "8/4+6-1", want: []string{"8/4", "6-1"}},
		{in: "2*(3+(4+5))", want: []string{"2*(3+(4+5))"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := DecomposeBySum(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecomposeBySumPreservesValue(t *testing.T) {
	inputs := []string{
		"2*5+3*4",
		"1+1+1+1",
		"(2+3)*4+10/5",
		"100-20+5*2",
		"7",
		"3*(1+2)+4*(5-1)+0",
		"",
	}
	for _, in := range inputs {
		want, err := Evaluate(in)
		require.NoError(t, err, in)

		parts, err := DecomposeBySum(in)
		require.NoError(t, err, in)

		got, err := Evaluate(strings.Join(parts, " + "))
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestDecomposeBySumRejectsMalformed(t *testing.T) {
	_, err := DecomposeBySum("2*+5")
	assert.ErrorIs(t, err, apperr.ErrMalformedExpression)
}
