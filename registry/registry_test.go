package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterRejectsCollision(t *testing.T) {
	r := NewBaseRegistry[int]()
	require.NoError(t, r.Register("a", 1))
	err := r.Register("a", 2)
	require.Error(t, err)

	got, ok := r.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, got)
}

func TestReplaceIsLastWriteWins(t *testing.T) {
	r := NewBaseRegistry[string]()
	require.NoError(t, r.Replace("scout", "v1"))
	require.NoError(t, r.Replace("scout", "v2"))

	got, ok := r.Get("scout")
	require.True(t, ok)
	assert.Equal(t, "v2", got)
	assert.Equal(t, 1, r.Count())
}

func TestListPreservesRegistrationOrder(t *testing.T) {
	r := NewBaseRegistry[string]()
	require.NoError(t, r.Register("c", "third"))
	require.NoError(t, r.Register("a", "first"))
	require.NoError(t, r.Register("b", "second"))

	assert.Equal(t, []string{"c", "a", "b"}, r.Names())
}

func TestRemoveAndClear(t *testing.T) {
	r := NewBaseRegistry[int]()
	require.NoError(t, r.Register("a", 1))
	require.NoError(t, r.Remove("a"))
	assert.Equal(t, 0, r.Count())
	assert.Error(t, r.Remove("a"))

	require.NoError(t, r.Register("b", 2))
	r.Clear()
	assert.Equal(t, 0, r.Count())
}
