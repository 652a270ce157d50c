package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBalanceCacheRepository_GetSet(t *testing.T) {
	_, client := setupRedis(t)
	repo := NewBalanceCacheRepository(client)
	ctx := context.Background()

	t.Run("missing player", func(t *testing.T) {
		balance, found, err := repo.GetBalance(ctx, 100)
		require.NoError(t, err)
		assert.False(t, found)
		assert.Equal(t, int64(0), balance)
	})

	t.Run("round trip", func(t *testing.T) {
		require.NoError(t, repo.SetBalance(ctx, 100, 12345))

		balance, found, err := repo.GetBalance(ctx, 100)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, int64(12345), balance)
	})

	t.Run("last writer wins", func(t *testing.T) {
		require.NoError(t, repo.SetBalance(ctx, 100, 500))
		require.NoError(t, repo.SetBalance(ctx, 100, 700))

		balance, found, err := repo.GetBalance(ctx, 100)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, int64(700), balance)
	})
}

func TestBalanceCacheRepository_MalformedValue(t *testing.T) {
	mr, client := setupRedis(t)
	repo := NewBalanceCacheRepository(client)
	ctx := context.Background()

	mr.Set("balance:100", "not-a-number")

	balance, found, err := repo.GetBalance(ctx, 100)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, int64(0), balance)
}
