package validation

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseChannel(t *testing.T) {
	tests := []struct {
		input string
		want  ContactChannel
		ok    bool
	}{
		{"PHONE", ChannelPhone, true},
		{"phone", ChannelPhone, true},
		{" whatsapp ", ChannelWhatsApp, true},
		{"EMAIL", ChannelEmail, true},
		{"GENERAL", ChannelGeneral, true},
		{"FAX", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseChannel(tt.input)
		require.Equal(t, tt.ok, ok, "input %q", tt.input)
		require.Equal(t, tt.want, got, "input %q", tt.input)
	}
}

func TestNormalizeComment(t *testing.T) {
	trimmed, err := NormalizeComment("  el teléfono funciona  ")
	require.NoError(t, err)
	require.Equal(t, "el teléfono funciona", trimmed)

	atLimit, err := NormalizeComment(strings.Repeat("a", MaxCommentLength))
	require.NoError(t, err)
	require.Len(t, atLimit, MaxCommentLength)

	_, err = NormalizeComment(strings.Repeat("a", MaxCommentLength+1))
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)

	// Whitespace that trims back under the limit is fine.
	padded, err := NormalizeComment(strings.Repeat("a", MaxCommentLength) + "   ")
	require.NoError(t, err)
	require.Len(t, padded, MaxCommentLength)
}

func TestMemoryStoreAppendAssignsSequentialIDs(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		record := &Record{
			BusinessID:    "biz-1",
			Channel:       ChannelPhone,
			Verdict:       true,
			VoterIdentity: "voter-1",
			SubmittedAt:   time.Now(),
		}
		require.NoError(t, store.Append(ctx, record))
		require.Equal(t, uint(i+1), record.ID)
	}
	require.Equal(t, 3, store.Len())
}

func TestMemoryStoreQueries(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	base := time.Now()

	records := []Record{
		{BusinessID: "biz-1", Channel: ChannelPhone, Verdict: true, VoterIdentity: "voter-1", SubmittedAt: base.Add(-48 * time.Hour)},
		{BusinessID: "biz-1", Channel: ChannelEmail, Verdict: false, VoterIdentity: "voter-1", SubmittedAt: base.Add(-1 * time.Hour)},
		{BusinessID: "biz-2", Channel: ChannelPhone, Verdict: true, VoterIdentity: "voter-2", SubmittedAt: base},
	}
	for i := range records {
		require.NoError(t, store.Append(ctx, &records[i]))
	}

	byBusiness, err := store.ByBusiness(ctx, "biz-1", nil)
	require.NoError(t, err)
	require.Len(t, byBusiness, 2)

	phone := ChannelPhone
	byChannel, err := store.ByBusiness(ctx, "biz-1", &phone)
	require.NoError(t, err)
	require.Len(t, byChannel, 1)

	count, err := store.CountByVoter(ctx, "voter-1")
	require.NoError(t, err)
	require.EqualValues(t, 2, count)

	recent, err := store.Since(ctx, base.Add(-24*time.Hour))
	require.NoError(t, err)
	require.Len(t, recent, 2)

	totals, err := store.VoterTotals(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, totals["voter-1"])
	require.EqualValues(t, 1, totals["voter-2"])
}
