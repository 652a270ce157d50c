package service

import (
	"context"
	"math/rand"
	"testing"

	"slotbot/models"
	"slotbot/slots"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestSpinService(ledger LedgerService, history BalanceHistoryRepository) *spinService {
	gen := slots.NewGenerator(rand.New(rand.NewSource(1)))
	return NewSpinService(ledger, history, gen, nopPublisher{}, 10).(*spinService)
}

func TestSpinService_Spin_RejectsBelowMinimumStake(t *testing.T) {
	ctx := context.Background()
	service := newTestSpinService(new(MockLedgerService), nil)

	_, _, err := service.Spin(ctx, 111, 5, slots.Modifiers{})

	assert.Error(t, err)
}

func TestSpinService_Spin_InsufficientBalance(t *testing.T) {
	ctx := context.Background()

	mockLedger := new(MockLedgerService)
	mockLedger.On("Deduct", ctx, int64(111), int64(100)).Return(int64(40), false, nil)

	service := newTestSpinService(mockLedger, nil)

	result, ok, err := service.Spin(ctx, 111, 100, slots.Modifiers{})

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, result)
	mockLedger.AssertNotCalled(t, "Credit")
}

func TestSpinService_Spin_TripleCreditsPayout(t *testing.T) {
	ctx := context.Background()

	mockLedger := new(MockLedgerService)
	mockLedger.On("Deduct", ctx, int64(111), int64(100)).Return(int64(900), true, nil)
	mockLedger.On("Credit", ctx, int64(111), int64(1000)).Return(int64(1900), nil)

	mockHistory := new(MockBalanceHistoryRepository)
	mockHistory.On("Record", ctx, mock.MatchedBy(func(h *models.BalanceHistory) bool {
		return h.DiscordID == 111 &&
			h.BalanceBefore == 1000 &&
			h.BalanceAfter == 1900 &&
			h.ChangeAmount == 900 &&
			h.TransactionType == models.TransactionTypeSpinWin
	})).Return(nil)

	service := newTestSpinService(mockLedger, mockHistory)
	service.draw = func(slots.Modifiers) slots.Grid {
		return slots.Grid{slots.SymbolSeven, slots.SymbolSeven, slots.SymbolSeven}
	}

	result, ok, err := service.Spin(ctx, 111, 100, slots.Modifiers{})

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(1000), result.Payout)
	assert.Equal(t, int64(1900), result.NewBalance)
	mockLedger.AssertExpectations(t)
	mockHistory.AssertExpectations(t)
}

func TestSpinService_Spin_NoMatchKeepsStake(t *testing.T) {
	ctx := context.Background()

	mockLedger := new(MockLedgerService)
	mockLedger.On("Deduct", ctx, int64(111), int64(100)).Return(int64(900), true, nil)

	mockHistory := new(MockBalanceHistoryRepository)
	mockHistory.On("Record", ctx, mock.MatchedBy(func(h *models.BalanceHistory) bool {
		return h.ChangeAmount == -100 && h.TransactionType == models.TransactionTypeSpinLoss
	})).Return(nil)

	service := newTestSpinService(mockLedger, mockHistory)
	service.draw = func(slots.Modifiers) slots.Grid {
		return slots.Grid{slots.SymbolCherry, slots.SymbolLemon, slots.SymbolOrange}
	}

	result, ok, err := service.Spin(ctx, 111, 100, slots.Modifiers{})

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(0), result.Payout)
	assert.Equal(t, int64(900), result.NewBalance)
	mockLedger.AssertNotCalled(t, "Credit")
	mockHistory.AssertExpectations(t)
}

func TestSpinService_Spin_PairPaysDouble(t *testing.T) {
	ctx := context.Background()

	mockLedger := new(MockLedgerService)
	mockLedger.On("Deduct", ctx, int64(111), int64(50)).Return(int64(950), true, nil)
	mockLedger.On("Credit", ctx, int64(111), int64(100)).Return(int64(1050), nil)

	service := newTestSpinService(mockLedger, nil)
	service.draw = func(slots.Modifiers) slots.Grid {
		return slots.Grid{slots.SymbolBell, slots.SymbolBell, slots.SymbolCherry}
	}

	result, ok, err := service.Spin(ctx, 111, 50, slots.Modifiers{})

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(100), result.Payout)
	mockLedger.AssertExpectations(t)
}
