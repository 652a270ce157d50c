package service

import (
	"context"
	"testing"

	"slotbot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testStartingBalance = int64(10_000)

func TestPlayerService_GetOrCreate_ExistingPlayer(t *testing.T) {
	ctx := context.Background()

	mockPlayers := new(MockPlayerRepository)
	mockCache := new(MockBalanceCacheRepository)

	existing := &models.Player{DiscordID: 111, Username: "alice", Balance: 4200}
	mockPlayers.On("GetByDiscordID", ctx, int64(111)).Return(existing, nil)

	service := NewPlayerService(mockPlayers, mockCache, nil, new(MockLedgerService), nopPublisher{}, testStartingBalance)

	player, err := service.GetOrCreate(ctx, 111, "alice")

	require.NoError(t, err)
	assert.Equal(t, existing, player)
	mockPlayers.AssertNotCalled(t, "Create")
}

func TestPlayerService_GetOrCreate_BootstrapsNewPlayer(t *testing.T) {
	ctx := context.Background()

	mockPlayers := new(MockPlayerRepository)
	mockCache := new(MockBalanceCacheRepository)
	mockHistory := new(MockBalanceHistoryRepository)

	mockPlayers.On("GetByDiscordID", ctx, int64(111)).Return(nil, nil)
	created := &models.Player{DiscordID: 111, Username: "alice", Balance: testStartingBalance}
	mockPlayers.On("Create", ctx, int64(111), "alice", testStartingBalance).Return(created, nil)
	mockCache.On("SetBalance", ctx, int64(111), testStartingBalance).Return(nil)
	mockHistory.On("Record", ctx, mock.MatchedBy(func(h *models.BalanceHistory) bool {
		return h.DiscordID == 111 &&
			h.BalanceBefore == 0 &&
			h.BalanceAfter == testStartingBalance &&
			h.TransactionType == models.TransactionTypeInitial
	})).Return(nil)

	service := NewPlayerService(mockPlayers, mockCache, mockHistory, new(MockLedgerService), nopPublisher{}, testStartingBalance)

	player, err := service.GetOrCreate(ctx, 111, "alice")

	require.NoError(t, err)
	assert.Equal(t, testStartingBalance, player.Balance)
	mockPlayers.AssertExpectations(t)
	mockCache.AssertExpectations(t)
	mockHistory.AssertExpectations(t)
}

func TestPlayerService_GetOrCreate_FallbackWithoutRelationalStore(t *testing.T) {
	ctx := context.Background()

	t.Run("existing balance key", func(t *testing.T) {
		mockCache := new(MockBalanceCacheRepository)
		mockCache.On("GetBalance", ctx, int64(111)).Return(int64(777), true, nil)

		service := NewPlayerService(nil, mockCache, nil, new(MockLedgerService), nopPublisher{}, testStartingBalance)

		player, err := service.GetOrCreate(ctx, 111, "alice")

		require.NoError(t, err)
		assert.Equal(t, int64(777), player.Balance)
		mockCache.AssertNotCalled(t, "SetBalance")
	})

	t.Run("first contact seeds the starting balance", func(t *testing.T) {
		mockCache := new(MockBalanceCacheRepository)
		mockCache.On("GetBalance", ctx, int64(111)).Return(int64(0), false, nil)
		mockCache.On("SetBalance", ctx, int64(111), testStartingBalance).Return(nil)

		service := NewPlayerService(nil, mockCache, nil, new(MockLedgerService), nopPublisher{}, testStartingBalance)

		player, err := service.GetOrCreate(ctx, 111, "alice")

		require.NoError(t, err)
		assert.Equal(t, testStartingBalance, player.Balance)
		mockCache.AssertExpectations(t)
	})

	t.Run("a zero balance still counts as existing", func(t *testing.T) {
		mockCache := new(MockBalanceCacheRepository)
		mockCache.On("GetBalance", ctx, int64(111)).Return(int64(0), true, nil)

		service := NewPlayerService(nil, mockCache, nil, new(MockLedgerService), nopPublisher{}, testStartingBalance)

		player, err := service.GetOrCreate(ctx, 111, "alice")

		require.NoError(t, err)
		assert.Equal(t, int64(0), player.Balance)
		mockCache.AssertNotCalled(t, "SetBalance")
	})
}

func TestPlayerService_Transfer_Success(t *testing.T) {
	ctx := context.Background()

	mockPlayers := new(MockPlayerRepository)
	mockLedger := new(MockLedgerService)
	mockHistory := new(MockBalanceHistoryRepository)

	mockPlayers.On("GetByDiscordID", ctx, int64(222)).Return(&models.Player{DiscordID: 222, Username: "bob", Balance: 500}, nil)
	mockLedger.On("Deduct", ctx, int64(111), int64(300)).Return(int64(700), true, nil)
	mockLedger.On("Credit", ctx, int64(222), int64(300)).Return(int64(800), nil)
	mockHistory.On("Record", ctx, mock.MatchedBy(func(h *models.BalanceHistory) bool {
		return h.DiscordID == 111 && h.ChangeAmount == -300 && h.TransactionType == models.TransactionTypeTransferOut
	})).Return(nil)
	mockHistory.On("Record", ctx, mock.MatchedBy(func(h *models.BalanceHistory) bool {
		return h.DiscordID == 222 && h.ChangeAmount == 300 && h.TransactionType == models.TransactionTypeTransferIn
	})).Return(nil)

	service := NewPlayerService(mockPlayers, new(MockBalanceCacheRepository), mockHistory, mockLedger, nopPublisher{}, testStartingBalance)

	result, err := service.Transfer(ctx, 111, 222, 300)

	require.NoError(t, err)
	assert.Equal(t, int64(300), result.Amount)
	assert.Equal(t, "bob", result.RecipientName)
	assert.Equal(t, int64(700), result.NewBalance)
	mockLedger.AssertExpectations(t)
	mockHistory.AssertExpectations(t)
}

func TestPlayerService_Transfer_InsufficientBalance(t *testing.T) {
	ctx := context.Background()

	mockPlayers := new(MockPlayerRepository)
	mockLedger := new(MockLedgerService)

	mockPlayers.On("GetByDiscordID", ctx, int64(222)).Return(&models.Player{DiscordID: 222, Username: "bob"}, nil)
	mockLedger.On("Deduct", ctx, int64(111), int64(300)).Return(int64(100), false, nil)

	service := NewPlayerService(mockPlayers, new(MockBalanceCacheRepository), nil, mockLedger, nopPublisher{}, testStartingBalance)

	_, err := service.Transfer(ctx, 111, 222, 300)

	assert.ErrorIs(t, err, ErrInsufficientBalance)
	mockLedger.AssertNotCalled(t, "Credit")
}

func TestPlayerService_Transfer_UnknownRecipient(t *testing.T) {
	ctx := context.Background()

	mockPlayers := new(MockPlayerRepository)
	mockLedger := new(MockLedgerService)
	mockPlayers.On("GetByDiscordID", ctx, int64(999)).Return(nil, nil)

	service := NewPlayerService(mockPlayers, new(MockBalanceCacheRepository), nil, mockLedger, nopPublisher{}, testStartingBalance)

	_, err := service.Transfer(ctx, 111, 999, 300)

	assert.ErrorIs(t, err, ErrRecipientNotFound)
	mockLedger.AssertNotCalled(t, "Deduct")
}

func TestPlayerService_Transfer_RejectsSelfAndNonPositive(t *testing.T) {
	ctx := context.Background()

	service := NewPlayerService(new(MockPlayerRepository), new(MockBalanceCacheRepository), nil, new(MockLedgerService), nopPublisher{}, testStartingBalance)

	_, err := service.Transfer(ctx, 111, 111, 100)
	assert.Error(t, err)

	_, err = service.Transfer(ctx, 111, 222, 0)
	assert.Error(t, err)
}

func TestPlayerService_RecentHistory(t *testing.T) {
	ctx := context.Background()

	t.Run("delegates to the history repository", func(t *testing.T) {
		entries := []*models.BalanceHistory{
			{DiscordID: 111, ChangeAmount: -100, BalanceAfter: 900, TransactionType: models.TransactionTypeSpinLoss},
		}
		mockHistory := new(MockBalanceHistoryRepository)
		mockHistory.On("GetByPlayer", ctx, int64(111), 5).Return(entries, nil)

		service := NewPlayerService(new(MockPlayerRepository), new(MockBalanceCacheRepository), mockHistory, new(MockLedgerService), nopPublisher{}, testStartingBalance)

		got, err := service.RecentHistory(ctx, 111, 5)
		require.NoError(t, err)
		assert.Equal(t, entries, got)
		mockHistory.AssertExpectations(t)
	})

	t.Run("empty without a relational store", func(t *testing.T) {
		service := NewPlayerService(nil, new(MockBalanceCacheRepository), nil, new(MockLedgerService), nopPublisher{}, testStartingBalance)

		got, err := service.RecentHistory(ctx, 111, 5)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}
