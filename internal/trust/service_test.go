package trust

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vialocal/contact-trust-backend/internal/validation"
)

func seedRecords(t *testing.T, store *validation.MemoryStore, businessID string, channel validation.ContactChannel, positive, negative int) {
	t.Helper()
	for i := 0; i < positive; i++ {
		require.NoError(t, store.Append(context.Background(), &validation.Record{
			BusinessID:    businessID,
			Channel:       channel,
			Verdict:       true,
			VoterIdentity: fmt.Sprintf("voter-%s-pos-%d", channel, i),
			SubmittedAt:   time.Now(),
		}))
	}
	for i := 0; i < negative; i++ {
		require.NoError(t, store.Append(context.Background(), &validation.Record{
			BusinessID:    businessID,
			Channel:       channel,
			Verdict:       false,
			VoterIdentity: fmt.Sprintf("voter-%s-neg-%d", channel, i),
			SubmittedAt:   time.Now(),
		}))
	}
}

func TestLevelFor(t *testing.T) {
	tests := []struct {
		name  string
		total int
		pct   int
		want  Level
	}{
		{"no validations", 0, 0, LevelLow},
		{"one perfect vote stays low", 1, 100, LevelLow},
		{"two perfect votes stay low", 2, 100, LevelLow},
		{"three at fifty reaches medium", 3, 50, LevelMedium},
		{"three below fifty stays low", 3, 49, LevelLow},
		{"nine at ninety still medium", 9, 90, LevelMedium},
		{"ten at seventy five reaches high", 10, 75, LevelHigh},
		{"ten at seventy four stays medium", 10, 74, LevelMedium},
		{"nineteen at hundred capped at high", 19, 100, LevelHigh},
		{"twenty at ninety reaches verified", 20, 90, LevelVerified},
		{"twenty at eighty nine stays high", 20, 89, LevelHigh},
		{"large sample low percentage", 100, 40, LevelLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, levelFor(tt.total, tt.pct))
		})
	}
}

func TestPercentageRoundsAndGuardsZero(t *testing.T) {
	tests := []struct {
		positive, total, want int
	}{
		{0, 0, 0},
		{1, 1, 100},
		{23, 25, 92},
		{1, 3, 33},
		{2, 3, 67},
		{1, 6, 17},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, percentage(tt.positive, tt.total),
			"percentage(%d, %d)", tt.positive, tt.total)
	}
}

func TestComputeBusinessStatsEmptyBusiness(t *testing.T) {
	svc := NewService(validation.NewMemoryStore())

	stats, err := svc.ComputeBusinessStats(context.Background(), "biz-empty")
	require.NoError(t, err)

	require.Equal(t, 0, stats.Overall.Total)
	require.Equal(t, 0, stats.Overall.Percentage)
	require.Equal(t, LevelLow, stats.Overall.Level)
	for channel, cs := range stats.ByChannel {
		require.Equal(t, LevelLow, cs.Level, "channel %s", channel)
		require.Equal(t, 0, cs.Percentage, "channel %s", channel)
	}
}

func TestComputeBusinessStatsVerifiedScenario(t *testing.T) {
	store := validation.NewMemoryStore()
	seedRecords(t, store, "biz-1", validation.ChannelPhone, 23, 2)
	svc := NewService(store)

	stats, err := svc.ComputeBusinessStats(context.Background(), "biz-1")
	require.NoError(t, err)

	phone := stats.ByChannel[validation.ChannelPhone]
	require.Equal(t, 25, phone.Total)
	require.Equal(t, 92, phone.Percentage)
	require.Equal(t, LevelVerified, phone.Level)

	require.Equal(t, 25, stats.Overall.Total)
	require.Equal(t, LevelVerified, stats.Overall.Level)
}

func TestComputeBusinessStatsSampleSizeGateOverridesPercentage(t *testing.T) {
	store := validation.NewMemoryStore()
	seedRecords(t, store, "biz-2", validation.ChannelPhone, 1, 0)
	svc := NewService(store)

	stats, err := svc.ComputeBusinessStats(context.Background(), "biz-2")
	require.NoError(t, err)

	phone := stats.ByChannel[validation.ChannelPhone]
	require.Equal(t, 100, phone.Percentage)
	require.Equal(t, LevelLow, phone.Level, "1 vote must not escape LOW")
	require.Equal(t, LevelLow, stats.Overall.Level)
}

func TestGeneralChannelCountsOnlyTowardOverall(t *testing.T) {
	store := validation.NewMemoryStore()
	seedRecords(t, store, "biz-3", validation.ChannelGeneral, 4, 0)
	seedRecords(t, store, "biz-3", validation.ChannelPhone, 1, 1)
	svc := NewService(store)

	stats, err := svc.ComputeBusinessStats(context.Background(), "biz-3")
	require.NoError(t, err)

	// Overall pools GENERAL: 5 positive, 1 negative.
	require.Equal(t, 6, stats.Overall.Total)
	require.Equal(t, 83, stats.Overall.Percentage)
	require.Equal(t, LevelMedium, stats.Overall.Level)

	// Per-channel buckets exclude GENERAL entirely.
	require.NotContains(t, stats.ByChannel, validation.ChannelGeneral)
	phone := stats.ByChannel[validation.ChannelPhone]
	require.Equal(t, 2, phone.Total)

	// Channels with no records stay present with zero values.
	email := stats.ByChannel[validation.ChannelEmail]
	require.Equal(t, 0, email.Total)
	require.Equal(t, LevelLow, email.Level)
}

func TestComputeBusinessStatsIsIdempotent(t *testing.T) {
	store := validation.NewMemoryStore()
	seedRecords(t, store, "biz-4", validation.ChannelEmail, 7, 3)
	svc := NewService(store)

	first, err := svc.ComputeBusinessStats(context.Background(), "biz-4")
	require.NoError(t, err)
	second, err := svc.ComputeBusinessStats(context.Background(), "biz-4")
	require.NoError(t, err)

	require.Equal(t, first.Overall, second.Overall)
	require.Equal(t, first.ByChannel, second.ByChannel)
}
