package txid

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratorNext(t *testing.T) {
	gen, err := NewGenerator("test-salt")
	require.NoError(t, err)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id, err := gen.Next()
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(id, "TXN"), "id %q missing prefix", id)
		assert.GreaterOrEqual(t, len(id), 13)
		assert.False(t, seen[id], "duplicate id %q", id)
		seen[id] = true
	}
}

func TestGeneratorSaltChangesOutput(t *testing.T) {
	a, err := NewGenerator("salt-a")
	require.NoError(t, err)
	b, err := NewGenerator("salt-b")
	require.NoError(t, err)

	idA, err := a.Next()
	require.NoError(t, err)
	idB, err := b.Next()
	require.NoError(t, err)

	assert.NotEqual(t, idA, idB)
}
