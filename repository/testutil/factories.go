package testutil

import (
	"time"

	"slotbot/models"
)

// CreateTestPlayer creates a test player with default values
func CreateTestPlayer(discordID int64, username string) *models.Player {
	now := time.Now()
	return &models.Player{
		DiscordID: discordID,
		Username:  username,
		Balance:   10000,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CreateTestChallenge creates a pending duel challenge
func CreateTestChallenge(challengerID, targetID int64, amount int64) *models.DuelChallenge {
	return &models.DuelChallenge{
		ChallengerID: challengerID,
		TargetID:     targetID,
		Amount:       amount,
		CreatedAt:    time.Now().UTC().Truncate(time.Millisecond),
	}
}

// CreateTestDuelLogEntry creates a duel log entry with a decisive winner
func CreateTestDuelLogEntry(challengerID, targetID int64, amount int64) *models.DuelLogEntry {
	winner := challengerID
	return &models.DuelLogEntry{
		ChallengerID:    challengerID,
		TargetID:        targetID,
		Amount:          amount,
		ChallengerGrid:  "bell bell bell",
		TargetGrid:      "cherry lemon orange",
		ChallengerScore: 10015,
		TargetScore:     6,
		WinnerID:        &winner,
		Pot:             2 * amount,
	}
}
