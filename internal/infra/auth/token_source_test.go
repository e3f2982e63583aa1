package auth

import (
	"testing"

	"chrono/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomTokenSource_NewToken(t *testing.T) {
	source := NewRandomTokenSource()

	token, err := source.NewToken()
	require.NoError(t, err)
	assert.Len(t, token, entity.SessionTokenLength)
	assert.Regexp(t, "^[0-9a-f]+$", token)
}

func TestRandomTokenSource_TokensAreUnique(t *testing.T) {
	source := NewRandomTokenSource()

	seen := make(map[string]bool)
	for range 100 {
		token, err := source.NewToken()
		require.NoError(t, err)
		assert.False(t, seen[token], "token minted twice: %s", token)
		seen[token] = true
	}
}
