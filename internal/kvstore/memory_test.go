// ABOUTME: Tests for the in-memory KV backend
// ABOUTME: Verifies it honors the same contract the SQLite backend does

package kvstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryKV_Contract(t *testing.T) {
	kv := NewMemoryKV()
	ctx := context.Background()

	_, err := kv.Get(ctx, "absent")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, kv.Set(ctx, KeyUser, "a"))
	require.NoError(t, kv.Set(ctx, KeyAuthToken, "b"))
	require.NoError(t, kv.Set(ctx, PrefixChat+"x", "c"))

	got, err := kv.GetMulti(ctx, []string{KeyUser, "absent", PrefixChat + "x"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{KeyUser: "a", PrefixChat + "x": "c"}, got)

	keys, err := kv.Keys(ctx)
	require.NoError(t, err)
	assert.Len(t, keys, 3)

	require.NoError(t, kv.Remove(ctx, "absent"))
	require.NoError(t, kv.RemoveMulti(ctx, []string{KeyUser, KeyAuthToken}))

	keys, err = kv.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{PrefixChat + "x"}, keys)
}
