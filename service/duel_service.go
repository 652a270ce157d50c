package service

import (
	"context"
	"fmt"
	"time"

	"slotbot/events"
	"slotbot/models"
	"slotbot/slots"

	log "github.com/sirupsen/logrus"
)

// DuelConfig carries the duel lifecycle timings and limits
type DuelConfig struct {
	MinAmount    int64
	ChallengeTTL time.Duration
	Cooldown     time.Duration
	ClaimTTL     time.Duration
}

type duelService struct {
	duels    DuelRepository
	ledger   LedgerService
	duelLog  DuelLogRepository        // nil when the relational store is not configured
	history  BalanceHistoryRepository // nil when the relational store is not configured
	eventBus EventPublisher
	cfg      DuelConfig
	now      func() time.Time
	draw     func() slots.Grid
}

// NewDuelService creates a new duel service
func NewDuelService(duels DuelRepository, ledger LedgerService, duelLog DuelLogRepository, history BalanceHistoryRepository, gen *slots.Generator, eventBus EventPublisher, cfg DuelConfig) DuelService {
	return &duelService{
		duels:    duels,
		ledger:   ledger,
		duelLog:  duelLog,
		history:  history,
		eventBus: eventBus,
		cfg:      cfg,
		now:      time.Now,
		draw:     gen.FairGrid,
	}
}

// Create issues a new challenge. Every rejection here is a normal business
// outcome reported through the reason, not an error.
func (s *duelService) Create(ctx context.Context, challengerID, targetID int64, amount int64) (*models.DuelChallenge, DuelCreateReason, error) {
	if challengerID == targetID {
		return nil, DuelCreateReasonSelfChallenge, nil
	}
	if amount < s.cfg.MinAmount {
		return nil, DuelCreateReasonBelowMinimum, nil
	}

	remaining, err := s.duels.CooldownRemaining(ctx, challengerID)
	if err != nil {
		return nil, DuelCreateReasonNone, fmt.Errorf("failed to check cooldown: %w", err)
	}
	if remaining > 0 {
		return nil, DuelCreateReasonOnCooldown, nil
	}

	optedOut, err := s.duels.IsOptedOut(ctx, targetID)
	if err != nil {
		return nil, DuelCreateReasonNone, fmt.Errorf("failed to check opt-out: %w", err)
	}
	if optedOut {
		return nil, DuelCreateReasonTargetOptedOut, nil
	}

	// Both parties must cover the wager now. This is re-validated at
	// settlement time; balances can move while the challenge is pending.
	challengerBalance, err := s.ledger.GetBalance(ctx, challengerID)
	if err != nil {
		return nil, DuelCreateReasonNone, fmt.Errorf("failed to check challenger balance: %w", err)
	}
	if challengerBalance < amount {
		return nil, DuelCreateReasonChallengerInsufficient, nil
	}

	targetBalance, err := s.ledger.GetBalance(ctx, targetID)
	if err != nil {
		return nil, DuelCreateReasonNone, fmt.Errorf("failed to check target balance: %w", err)
	}
	if targetBalance < amount {
		return nil, DuelCreateReasonTargetInsufficient, nil
	}

	challenge := &models.DuelChallenge{
		ChallengerID: challengerID,
		TargetID:     targetID,
		Amount:       amount,
		CreatedAt:    s.now().UTC(),
	}

	created, err := s.duels.CreateChallenge(ctx, challenge, s.cfg.ChallengeTTL)
	if err != nil {
		return nil, DuelCreateReasonNone, fmt.Errorf("failed to store challenge: %w", err)
	}
	if !created {
		return nil, DuelCreateReasonPendingExists, nil
	}

	// The challenge is live at this point; a cooldown write failure should
	// not unwind it.
	if err := s.duels.SetCooldown(ctx, challengerID, s.cfg.Cooldown); err != nil {
		log.WithField("challenger", challengerID).Warnf("failed to set duel cooldown: %v", err)
	}

	return challenge, DuelCreateReasonNone, nil
}

// FindIncoming scans the registry for a pending challenge aimed at the
// player. There is no per-target index; expired entries encountered during
// the scan are deleted as a side effect.
func (s *duelService) FindIncoming(ctx context.Context, discordID int64) (*models.DuelChallenge, error) {
	challenges, err := s.duels.ListChallenges(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list challenges: %w", err)
	}

	now := s.now()
	var incoming *models.DuelChallenge
	for _, challenge := range challenges {
		if challenge.IsExpired(now, s.cfg.ChallengeTTL) {
			if _, err := s.duels.DeleteChallenge(ctx, challenge.ChallengerID); err != nil {
				log.WithField("challenger", challenge.ChallengerID).Warnf("failed to lazily delete expired challenge: %v", err)
			}
			continue
		}
		if incoming == nil && challenge.TargetID == discordID {
			incoming = challenge
		}
	}

	return incoming, nil
}

// Accept runs the race-safe accept protocol. The primary store has no
// compare-and-swap, so exclusivity is manufactured: an instance-scoped claim
// marker filters most collisions cheaply, then delete-and-verify decides the
// authoritative winner. On winning, the duel is settled before returning.
//
// The returned result always carries Accepted and Reason; err is non-nil
// only for storage faults (Reason "error").
func (s *duelService) Accept(ctx context.Context, challengerID, accepterID int64) (*models.AcceptResult, error) {
	challenge, err := s.duels.GetChallenge(ctx, challengerID)
	if err != nil {
		return &models.AcceptResult{Reason: models.AcceptReasonError}, err
	}
	if challenge == nil || challenge.TargetID != accepterID {
		return &models.AcceptResult{Reason: models.AcceptReasonNotFound}, nil
	}

	if challenge.IsExpired(s.now(), s.cfg.ChallengeTTL) {
		if _, err := s.duels.DeleteChallenge(ctx, challengerID); err != nil {
			log.WithField("challenger", challengerID).Warnf("failed to delete expired challenge: %v", err)
		}
		return &models.AcceptResult{Reason: models.AcceptReasonExpired}, nil
	}

	// The claim key includes the challenge's creation time, so a marker left
	// over from a previous, already-resolved challenge can never block this
	// one.
	claimed, err := s.duels.Claim(ctx, challengerID, challenge.CreatedAt, s.cfg.ClaimTTL)
	if err != nil {
		return &models.AcceptResult{Reason: models.AcceptReasonError}, err
	}
	if !claimed {
		return &models.AcceptResult{Reason: models.AcceptReasonAlreadyClaimed}, nil
	}

	deleted, err := s.duels.DeleteChallenge(ctx, challengerID)
	if err != nil {
		s.duels.ReleaseClaim(ctx, challengerID, challenge.CreatedAt)
		return &models.AcceptResult{Reason: models.AcceptReasonError}, err
	}
	if !deleted {
		// The record was already gone: a winner who claimed, consumed, and
		// released before our claim landed. Without this check a late claim
		// against an already-settled challenge would settle it twice.
		s.duels.ReleaseClaim(ctx, challengerID, challenge.CreatedAt)
		return &models.AcceptResult{Reason: models.AcceptReasonRaceCondition}, nil
	}

	// Verify the delete stuck and nobody re-created the key. If it is still
	// present another writer won; back off.
	stillThere, err := s.duels.GetChallenge(ctx, challengerID)
	if err != nil {
		s.duels.ReleaseClaim(ctx, challengerID, challenge.CreatedAt)
		return &models.AcceptResult{Reason: models.AcceptReasonError}, err
	}
	if stillThere != nil {
		s.duels.ReleaseClaim(ctx, challengerID, challenge.CreatedAt)
		return &models.AcceptResult{Reason: models.AcceptReasonRaceCondition}, nil
	}

	// This accept is authoritative from here on.
	result, err := s.settle(ctx, challenge)
	s.duels.ReleaseClaim(ctx, challengerID, challenge.CreatedAt)
	if err != nil {
		return &models.AcceptResult{Reason: models.AcceptReasonError}, err
	}

	return &models.AcceptResult{Accepted: true, Duel: result}, nil
}

// settle draws both grids, scores them, and moves the wager. Both duelists
// draw from the identical unmodified distribution: no buffs, boosts, or
// peeks apply inside a duel, whatever the players have active elsewhere.
func (s *duelService) settle(ctx context.Context, challenge *models.DuelChallenge) (*models.DuelResult, error) {
	challengerGrid := s.draw()
	targetGrid := s.draw()
	challengerScore := slots.Score(challengerGrid)
	targetScore := slots.Score(targetGrid)
	outcome := slots.ResolveDuel(challengerScore, targetScore, challenge.Amount)

	result := &models.DuelResult{
		Challenge:       challenge,
		ChallengerGrid:  challengerGrid.String(),
		TargetGrid:      targetGrid.String(),
		ChallengerScore: challengerScore,
		TargetScore:     targetScore,
		Pot:             outcome.Pot,
		NewBalances:     make(map[int64]int64),
	}

	if outcome.Winner == slots.WinnerNone {
		// True tie: both players keep their stake, no mutation at all.
		s.logDuel(ctx, result)
		s.emitResolved(ctx, result)
		return result, nil
	}

	winnerID, loserID := challenge.ChallengerID, challenge.TargetID
	if outcome.Winner == slots.WinnerTarget {
		winnerID, loserID = challenge.TargetID, challenge.ChallengerID
	}

	// Deduct the loser first, re-validating their balance now rather than at
	// challenge-creation time. The conditioned update makes this a single
	// atomic check-and-mutate.
	newLoserBalance, ok, err := s.ledger.Deduct(ctx, loserID, challenge.Amount)
	if err != nil {
		return nil, fmt.Errorf("failed to deduct loser stake: %w", err)
	}
	if !ok {
		// The loser spent below the wager while the challenge was pending.
		// Nothing was deducted; the duel is voided.
		result.Voided = true
		s.emitResolved(ctx, result)
		return result, nil
	}

	winnerBefore, err := s.ledger.GetBalance(ctx, winnerID)
	if err != nil {
		log.WithField("winner", winnerID).Warnf("failed to read winner balance before credit: %v", err)
	}

	// The winner's own stake is never touched; they receive the loser's
	// stake as net winnings. A failure between the deduct above and this
	// credit leaves funds half-moved with no transaction to roll back:
	// fatal, alertable, needs reconciliation.
	newWinnerBalance, err := s.ledger.Credit(ctx, winnerID, challenge.Amount)
	if err != nil {
		log.WithFields(log.Fields{
			"winner": winnerID,
			"loser":  loserID,
			"amount": challenge.Amount,
		}).Error("duel settlement half-completed: loser debited, winner not credited; manual reconciliation required")
		return nil, fmt.Errorf("failed to credit winner: %w", err)
	}

	result.WinnerID = &winnerID
	result.NewBalances[loserID] = newLoserBalance
	result.NewBalances[winnerID] = newWinnerBalance

	s.recordSettlementHistory(ctx, challenge, winnerID, loserID, winnerBefore, newWinnerBalance, newLoserBalance)
	s.logDuel(ctx, result)
	s.emitResolved(ctx, result)

	return result, nil
}

// recordSettlementHistory writes the winner and loser history rows. History
// is bookkeeping: failures are logged, never allowed to unwind a settlement
// that already moved money.
func (s *duelService) recordSettlementHistory(ctx context.Context, challenge *models.DuelChallenge, winnerID, loserID, winnerBefore, newWinnerBalance, newLoserBalance int64) {
	winnerHistory := &models.BalanceHistory{
		DiscordID:       winnerID,
		BalanceBefore:   winnerBefore,
		BalanceAfter:    newWinnerBalance,
		ChangeAmount:    newWinnerBalance - winnerBefore,
		TransactionType: models.TransactionTypeDuelWin,
		TransactionMetadata: map[string]any{
			"opponent": loserID,
			"amount":   challenge.Amount,
		},
	}
	if err := RecordBalanceChange(ctx, s.history, s.eventBus, winnerHistory); err != nil {
		log.WithField("winner", winnerID).Errorf("failed to record winner balance change: %v", err)
	}

	loserHistory := &models.BalanceHistory{
		DiscordID:       loserID,
		BalanceBefore:   newLoserBalance + challenge.Amount,
		BalanceAfter:    newLoserBalance,
		ChangeAmount:    -challenge.Amount,
		TransactionType: models.TransactionTypeDuelLoss,
		TransactionMetadata: map[string]any{
			"opponent": winnerID,
			"amount":   challenge.Amount,
		},
	}
	if err := RecordBalanceChange(ctx, s.history, s.eventBus, loserHistory); err != nil {
		log.WithField("loser", loserID).Errorf("failed to record loser balance change: %v", err)
	}
}

// logDuel appends the immutable duel record. Fire-and-forget: the log is for
// history and audit only, so a failure must not fail the duel.
func (s *duelService) logDuel(ctx context.Context, result *models.DuelResult) {
	if s.duelLog == nil {
		return
	}

	entry := &models.DuelLogEntry{
		ChallengerID:    result.Challenge.ChallengerID,
		TargetID:        result.Challenge.TargetID,
		Amount:          result.Challenge.Amount,
		ChallengerGrid:  result.ChallengerGrid,
		TargetGrid:      result.TargetGrid,
		ChallengerScore: result.ChallengerScore,
		TargetScore:     result.TargetScore,
		WinnerID:        result.WinnerID,
		Pot:             result.Pot,
	}

	if err := s.duelLog.Record(ctx, entry); err != nil {
		log.WithFields(log.Fields{
			"challenger": entry.ChallengerID,
			"target":     entry.TargetID,
		}).Errorf("failed to append duel log entry: %v", err)
	}
}

func (s *duelService) emitResolved(ctx context.Context, result *models.DuelResult) {
	s.eventBus.Emit(ctx, events.DuelResolvedEvent{
		ChallengerID: result.Challenge.ChallengerID,
		TargetID:     result.Challenge.TargetID,
		Amount:       result.Challenge.Amount,
		WinnerID:     result.WinnerID,
		Pot:          result.Pot,
		Voided:       result.Voided,
	})
}

// Decline removes a pending challenge without settlement. Only the
// challenge's target may decline it.
func (s *duelService) Decline(ctx context.Context, challengerID, declinerID int64) (bool, error) {
	challenge, err := s.duels.GetChallenge(ctx, challengerID)
	if err != nil {
		return false, fmt.Errorf("failed to get challenge: %w", err)
	}
	if challenge == nil || challenge.TargetID != declinerID {
		return false, nil
	}

	deleted, err := s.duels.DeleteChallenge(ctx, challengerID)
	if err != nil {
		return false, fmt.Errorf("failed to delete challenge: %w", err)
	}

	return deleted, nil
}

// SetOptOut toggles whether a player can be challenged
func (s *duelService) SetOptOut(ctx context.Context, discordID int64, optedOut bool) error {
	return s.duels.SetOptOut(ctx, discordID, optedOut)
}

// IsOptedOut reports whether a player has opted out
func (s *duelService) IsOptedOut(ctx context.Context, discordID int64) (bool, error) {
	return s.duels.IsOptedOut(ctx, discordID)
}

// CooldownRemaining reports time until the player may issue a new challenge
func (s *duelService) CooldownRemaining(ctx context.Context, discordID int64) (time.Duration, error) {
	return s.duels.CooldownRemaining(ctx, discordID)
}

// ChallengeTTL returns the configured challenge lifetime
func (s *duelService) ChallengeTTL() time.Duration {
	return s.cfg.ChallengeTTL
}

// RecentDuels returns the player's most recent duel log entries
func (s *duelService) RecentDuels(ctx context.Context, discordID int64, limit int) ([]*models.DuelLogEntry, error) {
	if s.duelLog == nil {
		return nil, nil
	}
	return s.duelLog.GetByPlayer(ctx, discordID, limit)
}
