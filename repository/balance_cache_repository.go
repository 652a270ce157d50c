package repository

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
)

// balanceKeyPrefix is the prefix for balance mirror keys
const balanceKeyPrefix = "balance:"

// BalanceCacheRepository is the key/value half of the dual-store ledger. It
// serves reads and acts as the only store when the relational one is not
// configured. Note that Get followed by Set is not atomic; the ledger
// documents where that is tolerated.
type BalanceCacheRepository struct {
	client *redis.Client
}

// NewBalanceCacheRepository creates a new balance cache repository
func NewBalanceCacheRepository(client *redis.Client) *BalanceCacheRepository {
	return &BalanceCacheRepository{client: client}
}

func makeBalanceKey(discordID int64) string {
	return fmt.Sprintf("%s%d", balanceKeyPrefix, discordID)
}

// GetBalance retrieves a player's mirrored balance. found=false when the
// player has no entry yet.
func (r *BalanceCacheRepository) GetBalance(ctx context.Context, discordID int64) (balance int64, found bool, err error) {
	data, err := r.client.Get(ctx, makeBalanceKey(discordID)).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to get balance for player %d: %w", discordID, err)
	}

	balance, parseErr := strconv.ParseInt(data, 10, 64)
	if parseErr != nil {
		// Corrupted value: treat as absent rather than failing the command.
		log.WithFields(log.Fields{
			"player": discordID,
			"value":  data,
		}).Error("malformed balance value in key/value store")
		return 0, false, nil
	}

	return balance, true, nil
}

// SetBalance overwrites a player's mirrored balance. Last writer wins: after
// a relational write this is called with the authoritative value.
func (r *BalanceCacheRepository) SetBalance(ctx context.Context, discordID int64, balance int64) error {
	if err := r.client.Set(ctx, makeBalanceKey(discordID), strconv.FormatInt(balance, 10), 0).Err(); err != nil {
		return fmt.Errorf("failed to set balance for player %d: %w", discordID, err)
	}
	return nil
}
