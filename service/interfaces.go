package service

import (
	"context"
	"time"

	"slotbot/events"
	"slotbot/models"
	"slotbot/slots"
)

// PlayerRepository defines the interface for player data access in the
// relational store
type PlayerRepository interface {
	// GetByDiscordID retrieves a player by their Discord ID, nil when absent
	GetByDiscordID(ctx context.Context, discordID int64) (*models.Player, error)

	// Create creates a new player with the initial balance
	Create(ctx context.Context, discordID int64, username string, initialBalance int64) (*models.Player, error)

	// DeductBalance subtracts amount in a single conditioned update.
	// ok=false (with no mutation) when the balance does not cover the amount.
	DeductBalance(ctx context.Context, discordID int64, amount int64) (newBalance int64, ok bool, err error)

	// CreditBalance adds amount capped at maxBalance in a single conditioned
	// update. found=false when the player row does not exist.
	CreditBalance(ctx context.Context, discordID int64, amount int64, maxBalance int64) (newBalance int64, found bool, err error)

	// SetBalance overwrites the balance (administrative)
	SetBalance(ctx context.Context, discordID int64, balance int64) error
}

// BalanceCacheRepository defines the interface for the key/value balance
// mirror
type BalanceCacheRepository interface {
	// GetBalance retrieves the mirrored balance, found=false when absent
	GetBalance(ctx context.Context, discordID int64) (balance int64, found bool, err error)

	// SetBalance overwrites the mirrored balance (last writer wins)
	SetBalance(ctx context.Context, discordID int64, balance int64) error
}

// DuelRepository defines the interface for the duel registry, claim locks,
// cooldowns, and opt-out flags
type DuelRepository interface {
	// CreateChallenge stores a pending challenge unless one already exists
	CreateChallenge(ctx context.Context, challenge *models.DuelChallenge, ttl time.Duration) (created bool, err error)

	// GetChallenge retrieves the pending challenge for a challenger, nil when absent
	GetChallenge(ctx context.Context, challengerID int64) (*models.DuelChallenge, error)

	// DeleteChallenge removes a pending challenge. deleted=false means the
	// record was already gone.
	DeleteChallenge(ctx context.Context, challengerID int64) (deleted bool, err error)

	// ListChallenges returns every pending challenge
	ListChallenges(ctx context.Context) ([]*models.DuelChallenge, error)

	// Claim writes the exclusive marker for one challenge instance
	Claim(ctx context.Context, challengerID int64, createdAt time.Time, ttl time.Duration) (claimed bool, err error)

	// ReleaseClaim removes the claim marker early
	ReleaseClaim(ctx context.Context, challengerID int64, createdAt time.Time)

	// SetCooldown starts the challenger's cooldown window
	SetCooldown(ctx context.Context, challengerID int64, d time.Duration) error

	// CooldownRemaining returns time left on the cooldown, zero when none
	CooldownRemaining(ctx context.Context, challengerID int64) (time.Duration, error)

	// SetOptOut toggles whether a player can be challenged
	SetOptOut(ctx context.Context, discordID int64, optedOut bool) error

	// IsOptedOut reports whether a player has opted out of duels
	IsOptedOut(ctx context.Context, discordID int64) (bool, error)
}

// DuelLogRepository defines the interface for the append-only duel history
type DuelLogRepository interface {
	// Record appends a duel log entry
	Record(ctx context.Context, entry *models.DuelLogEntry) error

	// GetByPlayer returns recent duels for a player, either side
	GetByPlayer(ctx context.Context, discordID int64, limit int) ([]*models.DuelLogEntry, error)
}

// BalanceHistoryRepository defines the interface for balance history tracking
type BalanceHistoryRepository interface {
	// Record creates a new balance history entry
	Record(ctx context.Context, history *models.BalanceHistory) error

	// GetByPlayer returns balance history for a specific player
	GetByPlayer(ctx context.Context, discordID int64, limit int) ([]*models.BalanceHistory, error)
}

// LedgerService is the only component allowed to mutate balances. It prefers
// the relational store's conditioned updates and degrades to the key/value
// fallback when the relational store is not available.
type LedgerService interface {
	// GetBalance returns the player's current balance (zero for unknown players)
	GetBalance(ctx context.Context, discordID int64) (int64, error)

	// Deduct subtracts amount. ok=false with no mutation when the balance
	// does not cover it: a normal business outcome, not an error.
	Deduct(ctx context.Context, discordID int64, amount int64) (newBalance int64, ok bool, err error)

	// Credit adds amount capped at the configured maximum; the excess beyond
	// the cap is silently dropped
	Credit(ctx context.Context, discordID int64, amount int64) (newBalance int64, err error)

	// Zero resets a player's balance to zero (administrative)
	Zero(ctx context.Context, discordID int64) error
}

// DuelCreateReason explains why a challenge was not created
type DuelCreateReason string

const (
	DuelCreateReasonNone                   DuelCreateReason = ""
	DuelCreateReasonSelfChallenge          DuelCreateReason = "self_challenge"
	DuelCreateReasonBelowMinimum           DuelCreateReason = "below_minimum"
	DuelCreateReasonPendingExists          DuelCreateReason = "pending_exists"
	DuelCreateReasonOnCooldown             DuelCreateReason = "on_cooldown"
	DuelCreateReasonTargetOptedOut         DuelCreateReason = "target_opted_out"
	DuelCreateReasonChallengerInsufficient DuelCreateReason = "challenger_insufficient"
	DuelCreateReasonTargetInsufficient     DuelCreateReason = "target_insufficient"
)

// DuelService drives the challenge lifecycle and settlement
type DuelService interface {
	// Create issues a new challenge and starts the cooldown. A nil challenge
	// comes with the reason; both are expected business outcomes.
	Create(ctx context.Context, challengerID, targetID int64, amount int64) (challenge *models.DuelChallenge, reason DuelCreateReason, err error)

	// FindIncoming scans pending challenges for one aimed at the player,
	// lazily deleting expired entries encountered along the way
	FindIncoming(ctx context.Context, discordID int64) (*models.DuelChallenge, error)

	// Accept runs the race-safe accept protocol and, on winning it, settles
	// the duel. Exactly one concurrent accept succeeds.
	Accept(ctx context.Context, challengerID, accepterID int64) (*models.AcceptResult, error)

	// Decline removes a pending challenge without settlement
	Decline(ctx context.Context, challengerID, declinerID int64) (bool, error)

	// SetOptOut toggles whether a player can be challenged
	SetOptOut(ctx context.Context, discordID int64, optedOut bool) error

	// IsOptedOut reports whether a player has opted out
	IsOptedOut(ctx context.Context, discordID int64) (bool, error)

	// CooldownRemaining reports time until the player may issue a new challenge
	CooldownRemaining(ctx context.Context, discordID int64) (time.Duration, error)

	// RecentDuels returns the player's most recent duel log entries, empty
	// when no relational store is configured
	RecentDuels(ctx context.Context, discordID int64, limit int) ([]*models.DuelLogEntry, error)

	// ChallengeTTL returns the configured challenge lifetime
	ChallengeTTL() time.Duration
}

// SpinService runs ordinary slot spins
type SpinService interface {
	// Spin deducts the stake, draws a grid with the player's modifiers, and
	// credits any payout. ok=false when the stake is not covered.
	Spin(ctx context.Context, discordID int64, stake int64, mods slots.Modifiers) (result *models.SpinResult, ok bool, err error)
}

// PlayerService defines the interface for player bootstrap and transfers
type PlayerService interface {
	// GetOrCreate retrieves an existing player or creates one with the
	// starting balance
	GetOrCreate(ctx context.Context, discordID int64, username string) (*models.Player, error)

	// Transfer moves amount from sender to recipient through the ledger
	Transfer(ctx context.Context, fromDiscordID, toDiscordID int64, amount int64) (*models.TransferResult, error)

	// RecentHistory returns the player's most recent balance changes, empty
	// when no relational store is configured
	RecentHistory(ctx context.Context, discordID int64, limit int) ([]*models.BalanceHistory, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Emit(ctx context.Context, event events.Event)
}
