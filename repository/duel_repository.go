package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"slotbot/models"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
)

const (
	// challengeKeyPrefix keys pending challenges by challenger: at most one
	// outstanding challenge per challenger.
	challengeKeyPrefix = "duel:challenge:"
	// claimKeyPrefix keys claim markers by challenger and the challenge's
	// creation timestamp, so a stale marker from an already-resolved
	// challenge can never block a new one.
	claimKeyPrefix    = "duel:claim:"
	cooldownKeyPrefix = "duel:cooldown:"
	optOutKeyPrefix   = "duel:optout:"

	challengeScanCount = 100
)

// DuelRepository holds the duel registry, claim locks, cooldowns, and opt-out
// flags in the key/value store.
type DuelRepository struct {
	client *redis.Client
}

// NewDuelRepository creates a new duel repository
func NewDuelRepository(client *redis.Client) *DuelRepository {
	return &DuelRepository{client: client}
}

func makeChallengeKey(challengerID int64) string {
	return fmt.Sprintf("%s%d", challengeKeyPrefix, challengerID)
}

func makeClaimKey(challengerID int64, createdAt time.Time) string {
	return fmt.Sprintf("%s%d:%d", claimKeyPrefix, challengerID, createdAt.UnixNano())
}

func makeCooldownKey(challengerID int64) string {
	return fmt.Sprintf("%s%d", cooldownKeyPrefix, challengerID)
}

func makeOptOutKey(discordID int64) string {
	return fmt.Sprintf("%s%d", optOutKeyPrefix, discordID)
}

// CreateChallenge stores a pending challenge with the registry TTL. Returns
// created=false when the challenger already has a pending challenge; the
// existing record is left untouched.
func (r *DuelRepository) CreateChallenge(ctx context.Context, challenge *models.DuelChallenge, ttl time.Duration) (created bool, err error) {
	data, err := json.Marshal(challenge)
	if err != nil {
		return false, fmt.Errorf("failed to marshal challenge: %w", err)
	}

	created, err = r.client.SetNX(ctx, makeChallengeKey(challenge.ChallengerID), data, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to store challenge for %d: %w", challenge.ChallengerID, err)
	}

	return created, nil
}

// GetChallenge retrieves the pending challenge keyed by challenger, or nil if
// there is none. A corrupted record is logged, removed, and reported as
// absent.
func (r *DuelRepository) GetChallenge(ctx context.Context, challengerID int64) (*models.DuelChallenge, error) {
	key := makeChallengeKey(challengerID)

	data, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get challenge for %d: %w", challengerID, err)
	}

	var challenge models.DuelChallenge
	if err := json.Unmarshal([]byte(data), &challenge); err != nil {
		log.WithFields(log.Fields{
			"challenger": challengerID,
			"value":      data,
		}).Error("malformed challenge record in key/value store")
		r.client.Del(ctx, key)
		return nil, nil
	}

	return &challenge, nil
}

// DeleteChallenge removes a pending challenge. deleted=false means the record
// was already gone, which tells a racing accepter that someone else consumed
// the challenge first.
func (r *DuelRepository) DeleteChallenge(ctx context.Context, challengerID int64) (bool, error) {
	n, err := r.client.Del(ctx, makeChallengeKey(challengerID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to delete challenge for %d: %w", challengerID, err)
	}
	return n > 0, nil
}

// ListChallenges returns every pending challenge in the registry. There is no
// per-target index: finding a challenge aimed at a player is a scan.
func (r *DuelRepository) ListChallenges(ctx context.Context) ([]*models.DuelChallenge, error) {
	var challenges []*models.DuelChallenge

	iter := r.client.Scan(ctx, 0, challengeKeyPrefix+"*", challengeScanCount).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()

		data, err := r.client.Get(ctx, key).Result()
		if err == redis.Nil {
			// Expired between scan and read.
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read challenge %s: %w", key, err)
		}

		var challenge models.DuelChallenge
		if err := json.Unmarshal([]byte(data), &challenge); err != nil {
			log.WithFields(log.Fields{
				"key":   key,
				"value": data,
			}).Error("malformed challenge record in key/value store")
			r.client.Del(ctx, key)
			continue
		}

		challenges = append(challenges, &challenge)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan challenges: %w", err)
	}

	return challenges, nil
}

// Claim writes the advisory exclusive marker for one specific challenge
// instance. Returns claimed=false when another accept already holds it. The
// marker expires on its own so an abandoned accept cannot deadlock later
// attempts.
func (r *DuelRepository) Claim(ctx context.Context, challengerID int64, createdAt time.Time, ttl time.Duration) (claimed bool, err error) {
	claimed, err = r.client.SetNX(ctx, makeClaimKey(challengerID, createdAt), "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim challenge for %d: %w", challengerID, err)
	}
	return claimed, nil
}

// ReleaseClaim removes the claim marker early. Failures are harmless since
// the marker expires on its own.
func (r *DuelRepository) ReleaseClaim(ctx context.Context, challengerID int64, createdAt time.Time) {
	if err := r.client.Del(ctx, makeClaimKey(challengerID, createdAt)).Err(); err != nil {
		log.WithField("challenger", challengerID).Warnf("failed to release claim marker: %v", err)
	}
}

// SetCooldown starts the challenger's cooldown window
func (r *DuelRepository) SetCooldown(ctx context.Context, challengerID int64, d time.Duration) error {
	if err := r.client.Set(ctx, makeCooldownKey(challengerID), "1", d).Err(); err != nil {
		return fmt.Errorf("failed to set cooldown for %d: %w", challengerID, err)
	}
	return nil
}

// CooldownRemaining returns how long until the challenger may issue a new
// challenge, or zero when not on cooldown.
func (r *DuelRepository) CooldownRemaining(ctx context.Context, challengerID int64) (time.Duration, error) {
	ttl, err := r.client.TTL(ctx, makeCooldownKey(challengerID)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get cooldown for %d: %w", challengerID, err)
	}
	if ttl < 0 {
		// -1 no expiry, -2 missing key: either way not on cooldown.
		return 0, nil
	}
	return ttl, nil
}

// SetOptOut toggles whether a player can be challenged
func (r *DuelRepository) SetOptOut(ctx context.Context, discordID int64, optedOut bool) error {
	key := makeOptOutKey(discordID)

	var err error
	if optedOut {
		err = r.client.Set(ctx, key, "1", 0).Err()
	} else {
		err = r.client.Del(ctx, key).Err()
	}
	if err != nil {
		return fmt.Errorf("failed to set opt-out for %d: %w", discordID, err)
	}
	return nil
}

// IsOptedOut reports whether a player has opted out of duels
func (r *DuelRepository) IsOptedOut(ctx context.Context, discordID int64) (bool, error) {
	n, err := r.client.Exists(ctx, makeOptOutKey(discordID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check opt-out for %d: %w", discordID, err)
	}
	return n > 0, nil
}
