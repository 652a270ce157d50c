package service

import (
	"context"
	"fmt"

	"slotbot/events"
	"slotbot/models"
	"slotbot/slots"

	log "github.com/sirupsen/logrus"
)

type spinService struct {
	ledger   LedgerService
	history  BalanceHistoryRepository // nil when the relational store is not configured
	eventBus EventPublisher
	minStake int64
	draw     func(slots.Modifiers) slots.Grid
}

// NewSpinService creates a new spin service
func NewSpinService(ledger LedgerService, history BalanceHistoryRepository, gen *slots.Generator, eventBus EventPublisher, minStake int64) SpinService {
	return &spinService{
		ledger:   ledger,
		history:  history,
		eventBus: eventBus,
		minStake: minStake,
		draw:     gen.Generate,
	}
}

// Spin deducts the stake up front, draws the grid under the player's active
// modifiers, and credits any payout. The stake is gone whatever the grid
// shows; the payout already prices that in.
func (s *spinService) Spin(ctx context.Context, discordID int64, stake int64, mods slots.Modifiers) (*models.SpinResult, bool, error) {
	if stake < s.minStake {
		return nil, false, fmt.Errorf("stake must be at least %d", s.minStake)
	}

	balanceAfterStake, ok, err := s.ledger.Deduct(ctx, discordID, stake)
	if err != nil {
		return nil, false, fmt.Errorf("failed to deduct stake: %w", err)
	}
	if !ok {
		return nil, false, nil
	}

	grid := s.draw(mods)
	payout := slots.Payout(grid, stake, mods)

	newBalance := balanceAfterStake
	if payout > 0 {
		newBalance, err = s.ledger.Credit(ctx, discordID, payout)
		if err != nil {
			// Stake gone, payout not paid. Same reconciliation situation as
			// a half-settled wager.
			log.WithFields(log.Fields{
				"player": discordID,
				"stake":  stake,
				"payout": payout,
			}).Error("spin payout credit failed after stake deduction; manual reconciliation required")
			return nil, false, fmt.Errorf("failed to credit payout: %w", err)
		}
	}

	txType := models.TransactionTypeSpinLoss
	if payout > stake {
		txType = models.TransactionTypeSpinWin
	}
	entry := &models.BalanceHistory{
		DiscordID:       discordID,
		BalanceBefore:   balanceAfterStake + stake,
		BalanceAfter:    newBalance,
		ChangeAmount:    newBalance - (balanceAfterStake + stake),
		TransactionType: txType,
		TransactionMetadata: map[string]any{
			"stake":  stake,
			"grid":   grid.String(),
			"payout": payout,
		},
	}
	if err := RecordBalanceChange(ctx, s.history, s.eventBus, entry); err != nil {
		log.WithField("player", discordID).Errorf("failed to record spin balance change: %v", err)
	}

	s.eventBus.Emit(ctx, events.SpinEvent{
		PlayerID: discordID,
		Stake:    stake,
		Grid:     grid.String(),
		Payout:   payout,
	})

	return &models.SpinResult{
		Stake:      stake,
		Grid:       grid.String(),
		Payout:     payout,
		NewBalance: newBalance,
	}, true, nil
}
