package service

import (
	"context"
	"fmt"

	"slotbot/events"
	"slotbot/models"

	log "github.com/sirupsen/logrus"
)

// RecordBalanceChange records a balance history entry and emits the balance
// change event. This is the single entry point for all balance-change
// bookkeeping. The history row needs the relational store; when it is not
// configured the row is skipped and only the event goes out.
func RecordBalanceChange(ctx context.Context, historyRepo BalanceHistoryRepository, publisher EventPublisher, history *models.BalanceHistory) error {
	if historyRepo != nil {
		if err := historyRepo.Record(ctx, history); err != nil {
			return fmt.Errorf("failed to record balance history: %w", err)
		}
	} else {
		log.WithFields(log.Fields{
			"player": history.DiscordID,
			"type":   history.TransactionType,
		}).Debug("relational store not configured, skipping balance history row")
	}

	publisher.Emit(ctx, events.BalanceChangeEvent{
		PlayerID:        history.DiscordID,
		OldBalance:      history.BalanceBefore,
		NewBalance:      history.BalanceAfter,
		TransactionType: history.TransactionType,
		ChangeAmount:    history.ChangeAmount,
	})

	return nil
}
