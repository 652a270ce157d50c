package service

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// ledgerService implements the LedgerService interface over the two stores.
//
// The relational store, when configured, is the source of truth: both deduct
// and credit run as single conditioned updates there, so the check and the
// mutation are one atomic operation and no interleaving can corrupt a
// balance. After each successful relational write the key/value mirror is
// overwritten with the authoritative value (last writer wins).
//
// Without the relational store everything runs against the key/value store
// alone with plain read-modify-write. That path has a TOCTOU window between
// the read and the write and is NOT safe under concurrent mutation of the
// same player. It is tolerated only because the call sites that reach it
// already serialize per player: a wager settles at most once thanks to the
// claim lock, and cooldowns throttle spin and transfer floods. Do not
// "improve" callers in ways that break that assumption.
type ledgerService struct {
	players      PlayerRepository // nil when the relational store is not configured
	cache        BalanceCacheRepository
	maxBalance   int64
	mirrorWrites bool
}

// NewLedgerService creates a new ledger service. players may be nil when no
// relational store is configured; mirrorWrites controls the fan-out of
// relational writes to the key/value mirror.
func NewLedgerService(players PlayerRepository, cache BalanceCacheRepository, maxBalance int64, mirrorWrites bool) LedgerService {
	return &ledgerService{
		players:      players,
		cache:        cache,
		maxBalance:   maxBalance,
		mirrorWrites: mirrorWrites,
	}
}

// GetBalance returns the player's current balance. The key/value store is
// the primary read path; a miss falls through to the relational store and
// backfills the mirror. Unknown players read as zero.
func (s *ledgerService) GetBalance(ctx context.Context, discordID int64) (int64, error) {
	balance, found, err := s.cache.GetBalance(ctx, discordID)
	if err != nil {
		return 0, err
	}
	if found {
		return balance, nil
	}

	if s.players == nil {
		return 0, nil
	}

	player, err := s.players.GetByDiscordID(ctx, discordID)
	if err != nil {
		return 0, fmt.Errorf("failed to read balance: %w", err)
	}
	if player == nil {
		return 0, nil
	}

	if s.mirrorWrites {
		if mErr := s.cache.SetBalance(ctx, discordID, player.Balance); mErr != nil {
			log.WithField("player", discordID).Warnf("failed to backfill balance mirror: %v", mErr)
		}
	}

	return player.Balance, nil
}

// Deduct subtracts amount from the player's balance. ok=false means the
// balance did not cover the amount and nothing was mutated.
func (s *ledgerService) Deduct(ctx context.Context, discordID int64, amount int64) (int64, bool, error) {
	if amount <= 0 {
		return 0, false, fmt.Errorf("deduct amount must be positive")
	}

	if s.players != nil {
		newBalance, ok, err := s.players.DeductBalance(ctx, discordID, amount)
		if err == nil {
			if ok {
				s.mirror(ctx, discordID, newBalance)
			}
			return newBalance, ok, nil
		}
		log.WithField("player", discordID).Warnf("relational deduct failed, degrading to key/value fallback: %v", err)
	}

	return s.fallbackDeduct(ctx, discordID, amount)
}

// Credit adds amount to the player's balance, capped at the configured
// maximum. The excess beyond the cap is silently dropped; callers can
// recover the amount actually added as newBalance minus the old balance.
func (s *ledgerService) Credit(ctx context.Context, discordID int64, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("credit amount must be positive")
	}

	if s.players != nil {
		newBalance, found, err := s.players.CreditBalance(ctx, discordID, amount, s.maxBalance)
		if err == nil {
			if !found {
				return 0, fmt.Errorf("player %d not found", discordID)
			}
			s.mirror(ctx, discordID, newBalance)
			return newBalance, nil
		}
		log.WithField("player", discordID).Warnf("relational credit failed, degrading to key/value fallback: %v", err)
	}

	return s.fallbackCredit(ctx, discordID, amount)
}

// Zero resets a player's balance to zero. Administrative action; balances
// are never deleted.
func (s *ledgerService) Zero(ctx context.Context, discordID int64) error {
	if s.players != nil {
		if err := s.players.SetBalance(ctx, discordID, 0); err != nil {
			return err
		}
	}
	return s.cache.SetBalance(ctx, discordID, 0)
}

// mirror fans a relational write out to the key/value store. A mirror
// failure only costs read freshness, not correctness, so it is logged and
// swallowed.
func (s *ledgerService) mirror(ctx context.Context, discordID int64, balance int64) {
	if !s.mirrorWrites {
		return
	}
	if err := s.cache.SetBalance(ctx, discordID, balance); err != nil {
		log.WithField("player", discordID).Warnf("failed to mirror balance write: %v", err)
	}
}

// fallbackDeduct is the read-modify-write path against the key/value store
// alone. A concurrent mutation between the read and the write can be lost;
// see the type comment for why that is tolerated.
func (s *ledgerService) fallbackDeduct(ctx context.Context, discordID int64, amount int64) (int64, bool, error) {
	balance, _, err := s.cache.GetBalance(ctx, discordID)
	if err != nil {
		return 0, false, err
	}
	if balance < amount {
		return balance, false, nil
	}

	newBalance := balance - amount
	if err := s.cache.SetBalance(ctx, discordID, newBalance); err != nil {
		return 0, false, err
	}
	return newBalance, true, nil
}

// fallbackCredit is the read-modify-write credit path, with the same cap
// semantics as the relational path.
func (s *ledgerService) fallbackCredit(ctx context.Context, discordID int64, amount int64) (int64, error) {
	balance, _, err := s.cache.GetBalance(ctx, discordID)
	if err != nil {
		return 0, err
	}

	newBalance := balance + amount
	if newBalance > s.maxBalance {
		newBalance = s.maxBalance
	}
	if err := s.cache.SetBalance(ctx, discordID, newBalance); err != nil {
		return 0, err
	}
	return newBalance, nil
}
