package trust

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/vialocal/contact-trust-backend/internal/platform/database"
	"github.com/vialocal/contact-trust-backend/internal/platform/metrics"
	"github.com/vialocal/contact-trust-backend/internal/validation"
)

// Service derives business trust statistics from the validation store. The
// store is the single source of truth; the Redis cache is a disposable
// acceleration layer that is always rebuilt from a fresh recomputation when
// it is missing, stale or inconsistent.
type Service struct {
	store validation.Store
}

// NewService creates the aggregation service over a validation store.
func NewService(store validation.Store) *Service {
	return &Service{store: store}
}

// ComputeBusinessStats recomputes the full trust picture from the validation
// store. Idempotent and side-effect-free: this is the authoritative
// computation every cached value must agree with.
func (s *Service) ComputeBusinessStats(ctx context.Context, businessID string) (BusinessStats, error) {
	records, err := s.store.ByBusiness(ctx, businessID, nil)
	if err != nil {
		return BusinessStats{}, fmt.Errorf("failed to load validations for %s: %w", businessID, err)
	}
	metrics.TrustRecomputations.Inc()

	type counts struct{ positive, negative int }
	var overall counts
	perChannel := map[validation.ContactChannel]*counts{
		validation.ChannelPhone:    {},
		validation.ChannelEmail:    {},
		validation.ChannelWhatsApp: {},
	}

	for _, record := range records {
		if record.Verdict {
			overall.positive++
		} else {
			overall.negative++
		}
		// GENERAL contributes to the pooled overall level only.
		if bucket, ok := perChannel[record.Channel]; ok {
			if record.Verdict {
				bucket.positive++
			} else {
				bucket.negative++
			}
		}
	}

	stats := BusinessStats{
		BusinessID: businessID,
		Overall:    buildChannelStats(overall.positive, overall.negative),
		ByChannel:  make(map[validation.ContactChannel]ChannelStats, len(perChannel)),
		ComputedAt: time.Now(),
	}
	for channel, bucket := range perChannel {
		stats.ByChannel[channel] = buildChannelStats(bucket.positive, bucket.negative)
	}
	return stats, nil
}

// GetBusinessStats serves the trust picture for a business, from cache when
// it is present and clean, recomputing and repairing the cache otherwise.
func (s *Service) GetBusinessStats(ctx context.Context, businessID string) (BusinessStats, error) {
	if cached, ok := s.readCache(ctx, businessID); ok {
		return cached, nil
	}

	stats, err := s.ComputeBusinessStats(ctx, businessID)
	if err != nil {
		return BusinessStats{}, err
	}
	s.writeCache(ctx, stats)
	return stats, nil
}

// MarkDirty flags a business's cached stats as stale. Called by the
// submission orchestrator after every accepted validation; losing the flag
// is harmless because the reconciler or the next cache miss recomputes.
func (s *Service) MarkDirty(ctx context.Context, businessID string) {
	if database.RDB == nil || !database.IsRedisHealthy() {
		return
	}
	if err := database.RDB.SAdd(ctx, DirtySetKey, businessID).Err(); err != nil {
		zap.S().Warnw("failed to mark business stats dirty", "business", businessID, "error", err)
	}
}

// RepairCachedStats recomputes a business's stats from the store and
// overwrites the cache. The fresh recomputation is authoritative; whatever
// the cache held before is simply discarded.
func (s *Service) RepairCachedStats(ctx context.Context, businessID string) error {
	stats, err := s.ComputeBusinessStats(ctx, businessID)
	if err != nil {
		return err
	}
	s.writeCache(ctx, stats)
	return nil
}

// readCache returns the cached stats when Redis is healthy, the entry exists
// and the business is not flagged dirty.
func (s *Service) readCache(ctx context.Context, businessID string) (BusinessStats, bool) {
	if database.RDB == nil || !database.IsRedisHealthy() {
		return BusinessStats{}, false
	}

	dirty, err := database.RDB.SIsMember(ctx, DirtySetKey, businessID).Result()
	if err != nil || dirty {
		return BusinessStats{}, false
	}

	payload, err := database.RDB.HGet(ctx, StatsKey, businessID).Result()
	if err != nil {
		return BusinessStats{}, false
	}

	var stats BusinessStats
	if err := json.Unmarshal([]byte(payload), &stats); err != nil {
		// A corrupt cache entry counts as an inconsistency: drop it and let
		// the caller recompute.
		zap.S().Warnw("discarding corrupt cached stats", "business", businessID, "error", err)
		database.RDB.HDel(ctx, StatsKey, businessID)
		return BusinessStats{}, false
	}
	return stats, true
}

// writeCache stores freshly computed stats and clears the dirty flag in one
// transaction. Cache write failures are logged, never propagated: the stats
// were already computed from the authoritative store.
func (s *Service) writeCache(ctx context.Context, stats BusinessStats) {
	if database.RDB == nil || !database.IsRedisHealthy() {
		return
	}

	payload, err := json.Marshal(stats)
	if err != nil {
		return
	}

	pipe := database.RDB.TxPipeline()
	pipe.HSet(ctx, StatsKey, stats.BusinessID, payload)
	pipe.SRem(ctx, DirtySetKey, stats.BusinessID)
	if _, err := pipe.Exec(ctx); err != nil {
		zap.S().Warnw("failed to cache business stats", "business", stats.BusinessID, "error", err)
	}
}

// ResetCache erases the trust cache entirely. Used when the cache is known
// to be invalid, such as after a Redis restart; entries are repopulated
// lazily on the next read of each business.
func ResetCache(ctx context.Context) error {
	pipe := database.RDB.Pipeline()
	pipe.Del(ctx, StatsKey)
	pipe.Del(ctx, DirtySetKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to reset trust cache: %w", err)
	}
	return nil
}
