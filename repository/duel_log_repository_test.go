package repository

import (
	"context"
	"testing"

	"slotbot/models"
	"slotbot/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuelLogRepository_RecordAndGet(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewDuelLogRepository(testDB.DB)
	ctx := context.Background()

	t.Run("decisive duel", func(t *testing.T) {
		entry := testutil.CreateTestDuelLogEntry(100, 200, 500)
		require.NoError(t, repo.Record(ctx, entry))
		assert.NotZero(t, entry.ID)
		assert.False(t, entry.CreatedAt.IsZero())

		entries, err := repo.GetByPlayer(ctx, 100, 10)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, int64(1000), entries[0].Pot)
		require.NotNil(t, entries[0].WinnerID)
		assert.Equal(t, int64(100), *entries[0].WinnerID)
	})

	t.Run("tie records null winner", func(t *testing.T) {
		entry := &models.DuelLogEntry{
			ChallengerID:    300,
			TargetID:        400,
			Amount:          200,
			ChallengerGrid:  "cherry lemon orange",
			TargetGrid:      "orange lemon cherry",
			ChallengerScore: 6,
			TargetScore:     6,
			WinnerID:        nil,
			Pot:             400,
		}
		require.NoError(t, repo.Record(ctx, entry))

		entries, err := repo.GetByPlayer(ctx, 400, 10)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Nil(t, entries[0].WinnerID)
	})

	t.Run("matches either side of the duel", func(t *testing.T) {
		entries, err := repo.GetByPlayer(ctx, 200, 10)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})
}
