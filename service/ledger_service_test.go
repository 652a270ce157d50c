package service

import (
	"context"
	"errors"
	"testing"

	"slotbot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMaxBalance = int64(10_000_000)

func TestLedgerService_GetBalance_CacheHit(t *testing.T) {
	ctx := context.Background()

	mockPlayers := new(MockPlayerRepository)
	mockCache := new(MockBalanceCacheRepository)

	mockCache.On("GetBalance", ctx, int64(111)).Return(int64(5000), true, nil)

	ledger := NewLedgerService(mockPlayers, mockCache, testMaxBalance, true)

	balance, err := ledger.GetBalance(ctx, 111)

	require.NoError(t, err)
	assert.Equal(t, int64(5000), balance)

	// The relational store must not be touched on a cache hit
	mockPlayers.AssertNotCalled(t, "GetByDiscordID")
	mockCache.AssertExpectations(t)
}

func TestLedgerService_GetBalance_CacheMissBackfillsMirror(t *testing.T) {
	ctx := context.Background()

	mockPlayers := new(MockPlayerRepository)
	mockCache := new(MockBalanceCacheRepository)

	mockCache.On("GetBalance", ctx, int64(111)).Return(int64(0), false, nil)
	mockPlayers.On("GetByDiscordID", ctx, int64(111)).Return(&models.Player{
		DiscordID: 111,
		Username:  "alice",
		Balance:   7500,
	}, nil)
	mockCache.On("SetBalance", ctx, int64(111), int64(7500)).Return(nil)

	ledger := NewLedgerService(mockPlayers, mockCache, testMaxBalance, true)

	balance, err := ledger.GetBalance(ctx, 111)

	require.NoError(t, err)
	assert.Equal(t, int64(7500), balance)
	mockPlayers.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestLedgerService_GetBalance_UnknownPlayerReadsZero(t *testing.T) {
	ctx := context.Background()

	mockPlayers := new(MockPlayerRepository)
	mockCache := new(MockBalanceCacheRepository)

	mockCache.On("GetBalance", ctx, int64(999)).Return(int64(0), false, nil)
	mockPlayers.On("GetByDiscordID", ctx, int64(999)).Return(nil, nil)

	ledger := NewLedgerService(mockPlayers, mockCache, testMaxBalance, true)

	balance, err := ledger.GetBalance(ctx, 999)

	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)
	mockCache.AssertNotCalled(t, "SetBalance")
}

func TestLedgerService_Deduct_SuccessMirrors(t *testing.T) {
	ctx := context.Background()

	mockPlayers := new(MockPlayerRepository)
	mockCache := new(MockBalanceCacheRepository)

	mockPlayers.On("DeductBalance", ctx, int64(111), int64(300)).Return(int64(700), true, nil)
	mockCache.On("SetBalance", ctx, int64(111), int64(700)).Return(nil)

	ledger := NewLedgerService(mockPlayers, mockCache, testMaxBalance, true)

	newBalance, ok, err := ledger.Deduct(ctx, 111, 300)

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(700), newBalance)
	mockPlayers.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestLedgerService_Deduct_InsufficientDoesNotMirror(t *testing.T) {
	ctx := context.Background()

	mockPlayers := new(MockPlayerRepository)
	mockCache := new(MockBalanceCacheRepository)

	mockPlayers.On("DeductBalance", ctx, int64(111), int64(9999)).Return(int64(0), false, nil)

	ledger := NewLedgerService(mockPlayers, mockCache, testMaxBalance, true)

	_, ok, err := ledger.Deduct(ctx, 111, 9999)

	require.NoError(t, err)
	assert.False(t, ok)
	mockCache.AssertNotCalled(t, "SetBalance")
}

func TestLedgerService_Deduct_RelationalDownDegradesToFallback(t *testing.T) {
	ctx := context.Background()

	mockPlayers := new(MockPlayerRepository)
	mockCache := new(MockBalanceCacheRepository)

	mockPlayers.On("DeductBalance", ctx, int64(111), int64(300)).Return(int64(0), false, errors.New("connection refused"))
	mockCache.On("GetBalance", ctx, int64(111)).Return(int64(1000), true, nil)
	mockCache.On("SetBalance", ctx, int64(111), int64(700)).Return(nil)

	ledger := NewLedgerService(mockPlayers, mockCache, testMaxBalance, true)

	newBalance, ok, err := ledger.Deduct(ctx, 111, 300)

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(700), newBalance)
	mockCache.AssertExpectations(t)
}

func TestLedgerService_Deduct_FallbackInsufficient(t *testing.T) {
	ctx := context.Background()

	mockCache := new(MockBalanceCacheRepository)
	mockCache.On("GetBalance", ctx, int64(111)).Return(int64(100), true, nil)

	// No relational store configured at all
	ledger := NewLedgerService(nil, mockCache, testMaxBalance, true)

	balance, ok, err := ledger.Deduct(ctx, 111, 300)

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, int64(100), balance)
	mockCache.AssertNotCalled(t, "SetBalance")
}

func TestLedgerService_Deduct_RejectsNonPositiveAmount(t *testing.T) {
	ctx := context.Background()

	ledger := NewLedgerService(nil, new(MockBalanceCacheRepository), testMaxBalance, true)

	_, _, err := ledger.Deduct(ctx, 111, 0)
	assert.Error(t, err)

	_, _, err = ledger.Deduct(ctx, 111, -5)
	assert.Error(t, err)
}

func TestLedgerService_Credit_SuccessMirrors(t *testing.T) {
	ctx := context.Background()

	mockPlayers := new(MockPlayerRepository)
	mockCache := new(MockBalanceCacheRepository)

	mockPlayers.On("CreditBalance", ctx, int64(111), int64(500), testMaxBalance).Return(int64(1500), true, nil)
	mockCache.On("SetBalance", ctx, int64(111), int64(1500)).Return(nil)

	ledger := NewLedgerService(mockPlayers, mockCache, testMaxBalance, true)

	newBalance, err := ledger.Credit(ctx, 111, 500)

	require.NoError(t, err)
	assert.Equal(t, int64(1500), newBalance)
	mockCache.AssertExpectations(t)
}

func TestLedgerService_Credit_MissingPlayerIsError(t *testing.T) {
	ctx := context.Background()

	mockPlayers := new(MockPlayerRepository)
	mockCache := new(MockBalanceCacheRepository)

	mockPlayers.On("CreditBalance", ctx, int64(999), int64(500), testMaxBalance).Return(int64(0), false, nil)

	ledger := NewLedgerService(mockPlayers, mockCache, testMaxBalance, true)

	_, err := ledger.Credit(ctx, 999, 500)

	assert.Error(t, err)
	mockCache.AssertNotCalled(t, "SetBalance")
}

func TestLedgerService_Credit_FallbackCapsAtMax(t *testing.T) {
	ctx := context.Background()

	mockCache := new(MockBalanceCacheRepository)
	mockCache.On("GetBalance", ctx, int64(111)).Return(testMaxBalance-10, true, nil)
	mockCache.On("SetBalance", ctx, int64(111), testMaxBalance).Return(nil)

	ledger := NewLedgerService(nil, mockCache, testMaxBalance, true)

	newBalance, err := ledger.Credit(ctx, 111, 100)

	require.NoError(t, err)
	assert.Equal(t, testMaxBalance, newBalance)
	mockCache.AssertExpectations(t)
}

func TestLedgerService_Zero_WritesBothStores(t *testing.T) {
	ctx := context.Background()

	mockPlayers := new(MockPlayerRepository)
	mockCache := new(MockBalanceCacheRepository)

	mockPlayers.On("SetBalance", ctx, int64(111), int64(0)).Return(nil)
	mockCache.On("SetBalance", ctx, int64(111), int64(0)).Return(nil)

	ledger := NewLedgerService(mockPlayers, mockCache, testMaxBalance, true)

	require.NoError(t, ledger.Zero(ctx, 111))
	mockPlayers.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestLedgerService_MirrorWritesDisabled(t *testing.T) {
	ctx := context.Background()

	mockPlayers := new(MockPlayerRepository)
	mockCache := new(MockBalanceCacheRepository)

	mockPlayers.On("DeductBalance", ctx, int64(111), int64(300)).Return(int64(700), true, nil)

	ledger := NewLedgerService(mockPlayers, mockCache, testMaxBalance, false)

	newBalance, ok, err := ledger.Deduct(ctx, 111, 300)

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(700), newBalance)
	mockCache.AssertNotCalled(t, "SetBalance")
}
