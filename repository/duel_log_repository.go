package repository

import (
	"context"
	"fmt"

	"slotbot/database"
	"slotbot/models"
)

// DuelLogRepository stores the append-only history of resolved duels. Entries
// are write-once and never consulted by gameplay logic.
type DuelLogRepository struct {
	q queryable
}

// NewDuelLogRepository creates a new duel log repository
func NewDuelLogRepository(db *database.DB) *DuelLogRepository {
	return &DuelLogRepository{q: db.Pool}
}

// NewDuelLogRepositoryWithTx creates a duel log repository bound to a transaction
func NewDuelLogRepositoryWithTx(tx queryable) *DuelLogRepository {
	return &DuelLogRepository{q: tx}
}

// Record appends a duel log entry
func (r *DuelLogRepository) Record(ctx context.Context, entry *models.DuelLogEntry) error {
	query := `
		INSERT INTO duel_log
		(challenger_discord_id, target_discord_id, amount, challenger_grid, target_grid,
		 challenger_score, target_score, winner_discord_id, pot)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		entry.ChallengerID,
		entry.TargetID,
		entry.Amount,
		entry.ChallengerGrid,
		entry.TargetGrid,
		entry.ChallengerScore,
		entry.TargetScore,
		entry.WinnerID,
		entry.Pot,
	).Scan(&entry.ID, &entry.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to record duel log entry: %w", err)
	}

	return nil
}

// GetByPlayer returns the most recent duels a player took part in, on either side
func (r *DuelLogRepository) GetByPlayer(ctx context.Context, discordID int64, limit int) ([]*models.DuelLogEntry, error) {
	query := `
		SELECT id, challenger_discord_id, target_discord_id, amount, challenger_grid,
		       target_grid, challenger_score, target_score, winner_discord_id, pot, created_at
		FROM duel_log
		WHERE challenger_discord_id = $1 OR target_discord_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, discordID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get duel log for player %d: %w", discordID, err)
	}
	defer rows.Close()

	var entries []*models.DuelLogEntry
	for rows.Next() {
		var entry models.DuelLogEntry
		err := rows.Scan(
			&entry.ID,
			&entry.ChallengerID,
			&entry.TargetID,
			&entry.Amount,
			&entry.ChallengerGrid,
			&entry.TargetGrid,
			&entry.ChallengerScore,
			&entry.TargetScore,
			&entry.WinnerID,
			&entry.Pot,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan duel log entry: %w", err)
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate duel log: %w", err)
	}

	return entries, nil
}
