//go:build integration

package blob

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "admitly/pkg/domain-errors"
	"admitly/pkg/testutil/containers"
)

func TestRedisSigner(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	ctx := context.Background()

	t.Run("round trip", func(t *testing.T) {
		signer := NewRedisSigner(rc.Client, "https://admitly.test/files", time.Hour)

		signed, err := signer.Sign(ctx, "a1b2c3d4e5f60718/doc-object")
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(signed.URL, "https://admitly.test/files/"))

		token := strings.TrimPrefix(signed.URL, "https://admitly.test/files/")
		key, err := signer.Resolve(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, "a1b2c3d4e5f60718/doc-object", key)
	})

	t.Run("tokens are single-use random values", func(t *testing.T) {
		signer := NewRedisSigner(rc.Client, "https://admitly.test/files", time.Hour)

		first, err := signer.Sign(ctx, "prefix/object")
		require.NoError(t, err)
		second, err := signer.Sign(ctx, "prefix/object")
		require.NoError(t, err)
		assert.NotEqual(t, first.URL, second.URL)
	})

	t.Run("expired token resolves to not found", func(t *testing.T) {
		signer := NewRedisSigner(rc.Client, "https://admitly.test/files", time.Second)

		signed, err := signer.Sign(ctx, "prefix/object")
		require.NoError(t, err)
		token := strings.TrimPrefix(signed.URL, "https://admitly.test/files/")

		require.Eventually(t, func() bool {
			_, err := signer.Resolve(ctx, token)
			return dErrors.HasCode(err, dErrors.CodeNotFound)
		}, 5*time.Second, 200*time.Millisecond)
	})

	t.Run("unknown token resolves to not found", func(t *testing.T) {
		signer := NewRedisSigner(rc.Client, "https://admitly.test/files", time.Hour)

		_, err := signer.Resolve(ctx, "token-that-was-never-issued")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}
