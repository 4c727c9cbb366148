package reputation

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/vialocal/contact-trust-backend/internal/platform/database"
	"github.com/vialocal/contact-trust-backend/internal/validation"
)

// Service derives voter reputation from the validation store. As with trust
// stats, the store is authoritative and the Redis hash plus ranking zset are
// a rebuildable acceleration layer.
type Service struct {
	store validation.Store
}

// NewService creates the reputation service over a validation store.
func NewService(store validation.Store) *Service {
	return &Service{store: store}
}

// ComputeVoterStats derives a voter's reputation from their record count.
// The read always goes to the store so a stale cache can never misreport a
// level; the cache is refreshed as a side effect.
func (s *Service) ComputeVoterStats(ctx context.Context, voterIdentity string) (VoterStats, error) {
	count, err := s.store.CountByVoter(ctx, voterIdentity)
	if err != nil {
		return VoterStats{}, fmt.Errorf("failed to count validations for voter: %w", err)
	}

	stats := StatsFor(voterIdentity, int(count))
	s.writeCache(ctx, stats)
	return stats, nil
}

// RecordAccepted updates the cached reputation after an accepted submission.
// Failures are logged only: the submission is already durable, and the next
// ComputeVoterStats will converge the cache.
func (s *Service) RecordAccepted(ctx context.Context, voterIdentity string, newTotal int) {
	s.writeCache(ctx, StatsFor(voterIdentity, newTotal))
}

func (s *Service) writeCache(ctx context.Context, stats VoterStats) {
	if database.RDB == nil || !database.IsRedisHealthy() {
		return
	}

	payload, err := json.Marshal(stats)
	if err != nil {
		return
	}

	pipe := database.RDB.TxPipeline()
	pipe.HSet(ctx, StatsKey, stats.VoterIdentity, payload)
	pipe.ZAdd(ctx, RankingKey, redis.Z{
		Score:  float64(stats.TotalValidations),
		Member: stats.VoterIdentity,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		zap.S().Warnw("failed to cache voter reputation", "error", err)
	}
}

// LeaderboardEntry is one row of the validator leaderboard.
type LeaderboardEntry struct {
	VoterIdentity    string `json:"voter_identity"`
	TotalValidations int    `json:"total_validations"`
	Points           int    `json:"points"`
	Level            Level  `json:"level"`
}

// Leaderboard returns the top validators by validation count. It prefers the
// ranking zset and falls back to a store aggregation when Redis is down.
func (s *Service) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if database.RDB != nil && database.IsRedisHealthy() {
		members, err := database.RDB.ZRevRangeWithScores(ctx, RankingKey, 0, int64(limit-1)).Result()
		if err == nil {
			entries := make([]LeaderboardEntry, 0, len(members))
			for _, member := range members {
				identity, _ := member.Member.(string)
				total := int(member.Score)
				entries = append(entries, LeaderboardEntry{
					VoterIdentity:    identity,
					TotalValidations: total,
					Points:           PointsFor(total),
					Level:            LevelFor(total),
				})
			}
			return entries, nil
		}
		zap.S().Warnw("leaderboard zset read failed, falling back to store", "error", err)
	}

	totals, err := s.store.VoterTotals(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate voter totals: %w", err)
	}

	entries := make([]LeaderboardEntry, 0, len(totals))
	for identity, total := range totals {
		entries = append(entries, LeaderboardEntry{
			VoterIdentity:    identity,
			TotalValidations: int(total),
			Points:           PointsFor(int(total)),
			Level:            LevelFor(int(total)),
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].TotalValidations != entries[j].TotalValidations {
			return entries[i].TotalValidations > entries[j].TotalValidations
		}
		return entries[i].VoterIdentity < entries[j].VoterIdentity
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// WarmupCache rebuilds the ranking zset and stats hash from the validation
// store. Runs at startup and after a Redis restart.
func (s *Service) WarmupCache(ctx context.Context) error {
	totals, err := s.store.VoterTotals(ctx)
	if err != nil {
		return fmt.Errorf("failed to load voter totals: %w", err)
	}

	pipe := database.RDB.Pipeline()
	pipe.Del(ctx, StatsKey)
	pipe.Del(ctx, RankingKey)

	members := make([]redis.Z, 0, len(totals))
	statsFields := make(map[string]interface{}, len(totals))
	for identity, total := range totals {
		stats := StatsFor(identity, int(total))
		payload, err := json.Marshal(stats)
		if err != nil {
			continue
		}
		statsFields[identity] = payload
		members = append(members, redis.Z{Score: float64(total), Member: identity})
	}
	if len(members) > 0 {
		pipe.ZAdd(ctx, RankingKey, members...)
		pipe.HSet(ctx, StatsKey, statsFields)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to warm reputation cache: %w", err)
	}

	zap.S().Infow("reputation cache warmed", "voters", len(totals))
	return nil
}
