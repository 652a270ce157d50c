package models

import (
	"time"
)

// DuelChallenge represents a pending head-to-head challenge. A challenger may
// have at most one outstanding challenge; the record is immutable once created
// and is destroyed by accept, decline, or expiry.
type DuelChallenge struct {
	ChallengerID int64     `json:"challenger_id"`
	TargetID     int64     `json:"target_id"`
	Amount       int64     `json:"amount"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsExpired reports whether the challenge has outlived its time-to-live.
func (c *DuelChallenge) IsExpired(now time.Time, ttl time.Duration) bool {
	return now.After(c.CreatedAt.Add(ttl))
}

// AcceptReason explains why an accept attempt did not succeed.
type AcceptReason string

const (
	AcceptReasonNone           AcceptReason = ""
	AcceptReasonNotFound       AcceptReason = "not_found"
	AcceptReasonExpired        AcceptReason = "expired"
	AcceptReasonAlreadyClaimed AcceptReason = "already_claimed"
	AcceptReasonRaceCondition  AcceptReason = "race_condition"
	AcceptReasonError          AcceptReason = "error"
)

// AcceptResult is the outcome of an accept attempt. Exactly one concurrent
// accept of the same challenge observes Accepted=true.
type AcceptResult struct {
	Accepted bool
	Reason   AcceptReason
	Duel     *DuelResult
}

// DuelResult describes a settled (or voided) duel.
type DuelResult struct {
	Challenge       *DuelChallenge
	ChallengerGrid  string
	TargetGrid      string
	ChallengerScore int64
	TargetScore     int64
	WinnerID        *int64 // nil on a tie
	Pot             int64
	Voided          bool // loser could no longer cover the wager
	NewBalances     map[int64]int64
}

// DuelLogEntry is the append-only historical record of a resolved duel.
// Write-once; used for history and audit, never for gameplay decisions.
type DuelLogEntry struct {
	ID              int64     `db:"id"`
	ChallengerID    int64     `db:"challenger_discord_id"`
	TargetID        int64     `db:"target_discord_id"`
	Amount          int64     `db:"amount"`
	ChallengerGrid  string    `db:"challenger_grid"`
	TargetGrid      string    `db:"target_grid"`
	ChallengerScore int64     `db:"challenger_score"`
	TargetScore     int64     `db:"target_score"`
	WinnerID        *int64    `db:"winner_discord_id"`
	Pot             int64     `db:"pot"`
	CreatedAt       time.Time `db:"created_at"`
}
