package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMatchesByCode(t *testing.T) {
	err := New(CodeIncompleteCount, "p-1", "p-2")
	wrapped := fmt.Errorf("finalize: %w", err)

	assert.ErrorIs(t, wrapped, ErrIncompleteCount)
	assert.NotErrorIs(t, wrapped, ErrRoundClosed)
	assert.Equal(t, CodeIncompleteCount, CodeOf(wrapped))
	assert.Equal(t, []string{"p-1", "p-2"}, DetailsOf(wrapped))
	assert.Equal(t, Code(""), CodeOf(errors.New("boom")))
}

func TestErrorString(t *testing.T) {
	err := Wrap(CodeMalformedExpression, errors.New("unexpected ')' at 3"))
	assert.Equal(t, "malformed expression: unexpected ')' at 3", err.Error())
	assert.Equal(t, "round closed", ErrRoundClosed.Error())
}

func TestLocalize(t *testing.T) {
	err := New(CodeIncompleteCount, "p-1", "p-2")

	tests := []struct {
		name  string
		langs []string
		want  string
	}{
		{name: "default english", want: "2 product(s) still need a count: p-1, p-2"},
		{name: "spanish", langs: []string{"es-AR"}, want: "Faltan 2 producto(s) por contar: p-1, p-2"},
		{name: "unsupported falls back", langs: []string{"fr"}, want: "2 product(s) still need a count: p-1, p-2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Localize(err, tt.langs...))
		})
	}

	assert.Equal(t, "boom", Localize(errors.New("boom"), "es"))
}
