package service

import (
	"context"
	"errors"
	"fmt"

	"slotbot/events"
	"slotbot/models"

	log "github.com/sirupsen/logrus"
)

var (
	// ErrInsufficientBalance indicates the sender cannot cover a transfer
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrRecipientNotFound indicates the transfer recipient has never played
	ErrRecipientNotFound = errors.New("recipient not found")
)

type playerService struct {
	players         PlayerRepository // nil when the relational store is not configured
	cache           BalanceCacheRepository
	history         BalanceHistoryRepository // nil when the relational store is not configured
	ledger          LedgerService
	eventBus        EventPublisher
	startingBalance int64
}

// NewPlayerService creates a new player service
func NewPlayerService(players PlayerRepository, cache BalanceCacheRepository, history BalanceHistoryRepository, ledger LedgerService, eventBus EventPublisher, startingBalance int64) PlayerService {
	return &playerService{
		players:         players,
		cache:           cache,
		history:         history,
		ledger:          ledger,
		eventBus:        eventBus,
		startingBalance: startingBalance,
	}
}

// GetOrCreate retrieves a player or bootstraps them with the starting
// balance on first contact.
func (s *playerService) GetOrCreate(ctx context.Context, discordID int64, username string) (*models.Player, error) {
	if s.players == nil {
		return s.fallbackGetOrCreate(ctx, discordID, username)
	}

	player, err := s.players.GetByDiscordID(ctx, discordID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	if player != nil {
		return player, nil
	}

	player, err = s.players.Create(ctx, discordID, username, s.startingBalance)
	if err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}

	if err := s.cache.SetBalance(ctx, discordID, player.Balance); err != nil {
		log.WithField("player", discordID).Warnf("failed to seed balance mirror: %v", err)
	}

	s.recordBootstrap(ctx, player.DiscordID, username, player.Balance)
	return player, nil
}

// fallbackGetOrCreate bootstraps against the key/value store alone. A
// present balance key, even a zero one, means the player already exists.
func (s *playerService) fallbackGetOrCreate(ctx context.Context, discordID int64, username string) (*models.Player, error) {
	balance, found, err := s.cache.GetBalance(ctx, discordID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player balance: %w", err)
	}
	if found {
		return &models.Player{DiscordID: discordID, Username: username, Balance: balance}, nil
	}

	if err := s.cache.SetBalance(ctx, discordID, s.startingBalance); err != nil {
		return nil, fmt.Errorf("failed to seed player balance: %w", err)
	}

	s.recordBootstrap(ctx, discordID, username, s.startingBalance)
	return &models.Player{DiscordID: discordID, Username: username, Balance: s.startingBalance}, nil
}

func (s *playerService) recordBootstrap(ctx context.Context, discordID int64, username string, balance int64) {
	entry := &models.BalanceHistory{
		DiscordID:       discordID,
		BalanceBefore:   0,
		BalanceAfter:    balance,
		ChangeAmount:    balance,
		TransactionType: models.TransactionTypeInitial,
	}
	if err := RecordBalanceChange(ctx, s.history, s.eventBus, entry); err != nil {
		log.WithField("player", discordID).Errorf("failed to record initial balance: %v", err)
	}

	s.eventBus.Emit(ctx, events.PlayerCreatedEvent{
		PlayerID:       discordID,
		Username:       username,
		InitialBalance: balance,
	})
}

// Transfer moves amount from sender to recipient. The recipient must
// already exist; transfers never bootstrap players.
func (s *playerService) Transfer(ctx context.Context, fromDiscordID, toDiscordID int64, amount int64) (*models.TransferResult, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("transfer amount must be positive")
	}
	if fromDiscordID == toDiscordID {
		return nil, fmt.Errorf("cannot transfer to yourself")
	}

	recipientName, err := s.recipientName(ctx, toDiscordID)
	if err != nil {
		return nil, err
	}

	newBalance, ok, err := s.ledger.Deduct(ctx, fromDiscordID, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to deduct transfer: %w", err)
	}
	if !ok {
		return nil, ErrInsufficientBalance
	}

	recipientBalance, err := s.ledger.Credit(ctx, toDiscordID, amount)
	if err != nil {
		// Sender debited, recipient not credited. No transaction spans the
		// two writes; reconciliation is manual.
		log.WithFields(log.Fields{
			"from":   fromDiscordID,
			"to":     toDiscordID,
			"amount": amount,
		}).Error("transfer half-completed: sender debited, recipient not credited; manual reconciliation required")
		return nil, fmt.Errorf("failed to credit recipient: %w", err)
	}

	outEntry := &models.BalanceHistory{
		DiscordID:       fromDiscordID,
		BalanceBefore:   newBalance + amount,
		BalanceAfter:    newBalance,
		ChangeAmount:    -amount,
		TransactionType: models.TransactionTypeTransferOut,
		TransactionMetadata: map[string]any{
			"recipient": toDiscordID,
		},
	}
	if err := RecordBalanceChange(ctx, s.history, s.eventBus, outEntry); err != nil {
		log.WithField("player", fromDiscordID).Errorf("failed to record transfer out: %v", err)
	}

	inEntry := &models.BalanceHistory{
		DiscordID:       toDiscordID,
		BalanceBefore:   recipientBalance - amount,
		BalanceAfter:    recipientBalance,
		ChangeAmount:    amount,
		TransactionType: models.TransactionTypeTransferIn,
		TransactionMetadata: map[string]any{
			"sender": fromDiscordID,
		},
	}
	if err := RecordBalanceChange(ctx, s.history, s.eventBus, inEntry); err != nil {
		log.WithField("player", toDiscordID).Errorf("failed to record transfer in: %v", err)
	}

	return &models.TransferResult{
		Amount:        amount,
		RecipientName: recipientName,
		NewBalance:    newBalance,
	}, nil
}

func (s *playerService) recipientName(ctx context.Context, toDiscordID int64) (string, error) {
	if s.players != nil {
		recipient, err := s.players.GetByDiscordID(ctx, toDiscordID)
		if err != nil {
			return "", fmt.Errorf("failed to look up recipient: %w", err)
		}
		if recipient == nil {
			return "", ErrRecipientNotFound
		}
		return recipient.Username, nil
	}

	_, found, err := s.cache.GetBalance(ctx, toDiscordID)
	if err != nil {
		return "", fmt.Errorf("failed to look up recipient: %w", err)
	}
	if !found {
		return "", ErrRecipientNotFound
	}
	return "", nil
}

// RecentHistory returns the player's most recent balance changes
func (s *playerService) RecentHistory(ctx context.Context, discordID int64, limit int) ([]*models.BalanceHistory, error) {
	if s.history == nil {
		return nil, nil
	}
	return s.history.GetByPlayer(ctx, discordID, limit)
}
