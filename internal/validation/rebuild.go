package validation

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/vialocal/contact-trust-backend/internal/platform/database"
)

// deleteKeysByPrefix removes all keys under a prefix in SCAN batches, so the
// rebuild never issues an unbounded KEYS command against a live instance.
func deleteKeysByPrefix(ctx context.Context, rdb *redis.Client, prefix string) error {
	var cursor uint64
	matchPattern := prefix + "*"
	const batchSize = 500

	for {
		keys, nextCursor, err := rdb.Scan(ctx, cursor, matchPattern, batchSize).Result()
		if err != nil {
			return err
		}

		if len(keys) > 0 {
			if err := rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}

		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	return nil
}

// RebuildCooldownLedger reconstructs the Redis cooldown keys from the
// validation store. It runs at startup and whenever a Redis restart is
// detected: without it, bouncing Redis would erase every active cooldown and
// open a free resubmission window.
func RebuildCooldownLedger(ctx context.Context, store Store) error {
	zap.S().Info("rebuilding cooldown ledger from validation store")

	now := time.Now()
	recent, err := store.Since(ctx, now.Add(-CooldownWindow))
	if err != nil {
		return fmt.Errorf("failed to read recent validations: %w", err)
	}

	// Keep only the latest expiry per key; a voter may legitimately have an
	// older record for the same key just outside the window.
	expiries := make(map[CooldownKey]time.Time, len(recent))
	for _, record := range recent {
		key := CooldownKey{
			VoterIdentity: record.VoterIdentity,
			BusinessID:    record.BusinessID,
			Channel:       record.Channel,
		}
		expiresAt := record.SubmittedAt.Add(CooldownWindow)
		if current, ok := expiries[key]; !ok || expiresAt.After(current) {
			expiries[key] = expiresAt
		}
	}

	if err := deleteKeysByPrefix(ctx, database.RDB, cooldownKeyPrefix); err != nil {
		return fmt.Errorf("failed to clear stale cooldown keys: %w", err)
	}

	if len(expiries) == 0 {
		zap.S().Info("cooldown ledger rebuild: no active cooldowns to restore")
		return nil
	}

	pipe := database.RDB.Pipeline()
	for key, expiresAt := range expiries {
		ttl := expiresAt.Sub(now)
		if ttl <= 0 {
			continue
		}
		pipe.Set(ctx, key.redisKey(), expiresAt.UnixMilli(), ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to restore cooldown keys: %w", err)
	}

	zap.S().Infow("cooldown ledger rebuilt", "activeCooldowns", len(expiries))
	return nil
}
