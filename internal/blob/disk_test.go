package blob

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "admitly/pkg/domain-errors"
)

func TestDiskStore_PutOpenDelete(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	key, err := store.Put(ctx, strings.NewReader("personal statement v1"))
	require.NoError(t, err)
	require.NotEmpty(t, key)

	rc, err := store.Open(ctx, key)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "personal statement v1", string(data))

	require.NoError(t, store.Delete(ctx, key))
	_, err = store.Open(ctx, key)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestDiskStore_IdenticalUploadsGetDistinctKeys(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	first, err := store.Put(ctx, strings.NewReader("same bytes"))
	require.NoError(t, err)
	second, err := store.Put(ctx, strings.NewReader("same bytes"))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)

	// Deleting one copy leaves the other readable.
	require.NoError(t, store.Delete(ctx, first))
	rc, err := store.Open(ctx, second)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
}

func TestDiskStore_DeleteMissingIsIdempotent(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	assert.NoError(t, store.Delete(context.Background(), "deadbeefdeadbeef/no-such-object"))
}

func TestDiskStore_RejectsTraversalKeys(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	for _, key := range []string{"../etc/passwd", "..", "/etc/passwd", "."} {
		_, err := store.Open(ctx, key)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput), "key %q", key)
	}
}
