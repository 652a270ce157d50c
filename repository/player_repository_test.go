package repository

import (
	"context"
	"errors"
	"testing"

	"slotbot/models"
	"slotbot/repository/testutil"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlayerRepository_CreateAndGet(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewPlayerRepository(testDB.DB)
	ctx := context.Background()

	t.Run("get missing player", func(t *testing.T) {
		player, err := repo.GetByDiscordID(ctx, 999)
		require.NoError(t, err)
		assert.Nil(t, player)
	})

	t.Run("create and get", func(t *testing.T) {
		created, err := repo.Create(ctx, 100, "alice", 10000)
		require.NoError(t, err)
		assert.Equal(t, int64(10000), created.Balance)

		player, err := repo.GetByDiscordID(ctx, 100)
		require.NoError(t, err)
		require.NotNil(t, player)
		assert.Equal(t, "alice", player.Username)
		assert.Equal(t, int64(10000), player.Balance)
	})
}

func TestPlayerRepository_DeductBalance(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewPlayerRepository(testDB.DB)
	ctx := context.Background()

	_, err := repo.Create(ctx, 100, "alice", 1000)
	require.NoError(t, err)

	t.Run("sufficient balance", func(t *testing.T) {
		newBalance, ok, err := repo.DeductBalance(ctx, 100, 300)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, int64(700), newBalance)
	})

	t.Run("insufficient balance leaves row untouched", func(t *testing.T) {
		_, ok, err := repo.DeductBalance(ctx, 100, 800)
		require.NoError(t, err)
		assert.False(t, ok)

		player, err := repo.GetByDiscordID(ctx, 100)
		require.NoError(t, err)
		assert.Equal(t, int64(700), player.Balance)
	})

	t.Run("exact balance drains to zero", func(t *testing.T) {
		newBalance, ok, err := repo.DeductBalance(ctx, 100, 700)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, int64(0), newBalance)
	})

	t.Run("missing player", func(t *testing.T) {
		_, ok, err := repo.DeductBalance(ctx, 999, 100)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("non-positive amount rejected", func(t *testing.T) {
		_, _, err := repo.DeductBalance(ctx, 100, 0)
		assert.Error(t, err)
	})
}

func TestPlayerRepository_CreditBalance(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewPlayerRepository(testDB.DB)
	ctx := context.Background()

	_, err := repo.Create(ctx, 100, "alice", 1000)
	require.NoError(t, err)

	t.Run("credit below cap", func(t *testing.T) {
		newBalance, found, err := repo.CreditBalance(ctx, 100, 500, 10000)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, int64(1500), newBalance)
	})

	t.Run("credit clamps at cap", func(t *testing.T) {
		newBalance, found, err := repo.CreditBalance(ctx, 100, 9999999, 10000)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, int64(10000), newBalance)
	})

	t.Run("missing player", func(t *testing.T) {
		_, found, err := repo.CreditBalance(ctx, 999, 100, 10000)
		require.NoError(t, err)
		assert.False(t, found)
	})
}

func TestPlayerRepository_SetBalance(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewPlayerRepository(testDB.DB)
	ctx := context.Background()

	_, err := repo.Create(ctx, 100, "alice", 1000)
	require.NoError(t, err)

	require.NoError(t, repo.SetBalance(ctx, 100, 0))

	player, err := repo.GetByDiscordID(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(0), player.Balance)

	assert.Error(t, repo.SetBalance(ctx, 999, 0))
}

func TestPlayerRepository_WithTransaction(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewPlayerRepository(testDB.DB)
	historyRepo := NewBalanceHistoryRepository(testDB.DB)
	ctx := context.Background()

	t.Run("rollback leaves no rows", func(t *testing.T) {
		boom := errors.New("boom")
		err := testDB.DB.WithTransaction(ctx, func(tx pgx.Tx) error {
			txRepo := NewPlayerRepositoryWithTx(tx)
			if _, err := txRepo.Create(ctx, 200, "bob", 10000); err != nil {
				return err
			}
			return boom
		})
		require.ErrorIs(t, err, boom)

		player, err := repo.GetByDiscordID(ctx, 200)
		require.NoError(t, err)
		assert.Nil(t, player)
	})

	t.Run("commit persists player and history together", func(t *testing.T) {
		err := testDB.DB.WithTransaction(ctx, func(tx pgx.Tx) error {
			txRepo := NewPlayerRepositoryWithTx(tx)
			txHistory := NewBalanceHistoryRepositoryWithTx(tx)

			player, err := txRepo.Create(ctx, 201, "carol", 10000)
			if err != nil {
				return err
			}
			return txHistory.Record(ctx, &models.BalanceHistory{
				DiscordID:       player.DiscordID,
				BalanceBefore:   0,
				BalanceAfter:    player.Balance,
				ChangeAmount:    player.Balance,
				TransactionType: models.TransactionTypeInitial,
			})
		})
		require.NoError(t, err)

		player, err := repo.GetByDiscordID(ctx, 201)
		require.NoError(t, err)
		require.NotNil(t, player)

		entries, err := historyRepo.GetByPlayer(ctx, 201, 10)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, models.TransactionTypeInitial, entries[0].TransactionType)
	})
}
