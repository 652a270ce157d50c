package repository

import (
	"context"
	"fmt"

	"slotbot/database"
	"slotbot/models"

	"github.com/jackc/pgx/v5"
)

// PlayerRepository provides access to player rows in the relational store.
// The conditioned balance updates here are the atomic half of the ledger:
// check-and-mutate happens in a single UPDATE, so no read/then-write race
// window exists on this path.
type PlayerRepository struct {
	q queryable
}

// NewPlayerRepository creates a new player repository
func NewPlayerRepository(db *database.DB) *PlayerRepository {
	return &PlayerRepository{q: db.Pool}
}

// NewPlayerRepositoryWithTx creates a player repository bound to a transaction
func NewPlayerRepositoryWithTx(tx queryable) *PlayerRepository {
	return &PlayerRepository{q: tx}
}

// GetByDiscordID retrieves a player by their Discord ID
func (r *PlayerRepository) GetByDiscordID(ctx context.Context, discordID int64) (*models.Player, error) {
	query := `
		SELECT discord_id, username, balance, created_at, updated_at
		FROM players
		WHERE discord_id = $1
	`

	var player models.Player
	err := r.q.QueryRow(ctx, query, discordID).Scan(
		&player.DiscordID,
		&player.Username,
		&player.Balance,
		&player.CreatedAt,
		&player.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player %d: %w", discordID, err)
	}

	return &player, nil
}

// Create creates a new player with the initial balance
func (r *PlayerRepository) Create(ctx context.Context, discordID int64, username string, initialBalance int64) (*models.Player, error) {
	query := `
		INSERT INTO players (discord_id, username, balance)
		VALUES ($1, $2, $3)
		RETURNING discord_id, username, balance, created_at, updated_at
	`

	var player models.Player
	err := r.q.QueryRow(ctx, query, discordID, username, initialBalance).Scan(
		&player.DiscordID,
		&player.Username,
		&player.Balance,
		&player.CreatedAt,
		&player.UpdatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create player %d: %w", discordID, err)
	}

	return &player, nil
}

// DeductBalance subtracts amount from a player's balance in a single
// conditioned update. Returns ok=false without mutating anything when the
// balance does not cover the amount (or the player does not exist); that is
// a normal business outcome, not an error.
func (r *PlayerRepository) DeductBalance(ctx context.Context, discordID int64, amount int64) (newBalance int64, ok bool, err error) {
	if amount <= 0 {
		return 0, false, fmt.Errorf("amount must be positive")
	}

	query := `
		UPDATE players
		SET balance = balance - $1, updated_at = NOW()
		WHERE discord_id = $2 AND balance >= $1
		RETURNING balance
	`

	err = r.q.QueryRow(ctx, query, amount, discordID).Scan(&newBalance)
	if err == pgx.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to deduct balance for player %d: %w", discordID, err)
	}

	return newBalance, true, nil
}

// CreditBalance adds amount to a player's balance, capped at maxBalance, in a
// single conditioned update. Excess beyond the cap is silently dropped; the
// amount actually added is newBalance minus the balance observed beforehand.
// found=false when no such player row exists.
func (r *PlayerRepository) CreditBalance(ctx context.Context, discordID int64, amount int64, maxBalance int64) (newBalance int64, found bool, err error) {
	if amount <= 0 {
		return 0, false, fmt.Errorf("amount must be positive")
	}

	query := `
		UPDATE players
		SET balance = LEAST(balance + $1, $2), updated_at = NOW()
		WHERE discord_id = $3
		RETURNING balance
	`

	err = r.q.QueryRow(ctx, query, amount, maxBalance, discordID).Scan(&newBalance)
	if err == pgx.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to credit balance for player %d: %w", discordID, err)
	}

	return newBalance, true, nil
}

// SetBalance overwrites a player's balance. Administrative use only (balances
// are never deleted, only zeroed).
func (r *PlayerRepository) SetBalance(ctx context.Context, discordID int64, balance int64) error {
	query := `
		UPDATE players
		SET balance = $1, updated_at = NOW()
		WHERE discord_id = $2
	`

	result, err := r.q.Exec(ctx, query, balance, discordID)
	if err != nil {
		return fmt.Errorf("failed to set balance for player %d: %w", discordID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("player %d not found", discordID)
	}

	return nil
}
