package submission

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/vialocal/contact-trust-backend/internal/reputation"
	"github.com/vialocal/contact-trust-backend/internal/trust"
	"github.com/vialocal/contact-trust-backend/internal/validation"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fixture wires the orchestrator to in-memory collaborators with a
// controllable clock shared by the service and the ledger.
type fixture struct {
	svc    *Service
	store  *validation.MemoryStore
	ledger *validation.MemoryLedger
	now    time.Time
	mu     sync.Mutex
}

func newFixture() *fixture {
	f := &fixture{
		store:  validation.NewMemoryStore(),
		ledger: validation.NewMemoryLedger(),
		now:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time {
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.now
	}
	f.ledger.Now = clock
	f.svc = NewService(f.store, f.ledger, trust.NewService(f.store), reputation.NewService(f.store))
	f.svc.now = clock
	return f
}

func (f *fixture) advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func validInput() Input {
	return Input{
		BusinessID:    "biz-1",
		Channel:       "PHONE",
		Verdict:       true,
		Comment:       "  contestaron enseguida  ",
		VoterIdentity: "voter-1",
	}
}

func TestSubmitAcceptedAwardsTenPoints(t *testing.T) {
	f := newFixture()

	result, err := f.svc.Submit(context.Background(), validInput())
	require.NoError(t, err)
	require.Equal(t, 10, result.PointsEarned)
	require.Nil(t, result.NewLevel, "first validation stays NOVATO")
	require.Equal(t, 1, f.store.Len())

	records, err := f.store.ByVoter(context.Background(), "voter-1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "contestaron enseguida", records[0].Comment, "comment must be trimmed at write time")
	require.Equal(t, validation.ChannelPhone, records[0].Channel)
	require.True(t, records[0].Verdict)
}

func TestSubmitSecondAttemptRejectedByCooldown(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.Submit(ctx, validInput())
	require.NoError(t, err)

	_, err = f.svc.Submit(ctx, validInput())
	var cooldownErr *validation.CooldownActiveError
	require.ErrorAs(t, err, &cooldownErr)
	require.Greater(t, cooldownErr.RetryAfter, time.Duration(0))
	require.LessOrEqual(t, cooldownErr.RetryAfter, validation.CooldownWindow)
	require.Equal(t, 1, f.store.Len(), "rejected submission must not be stored")
}

func TestSubmitSameBusinessDifferentChannelAllowed(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.Submit(ctx, validInput())
	require.NoError(t, err)

	input := validInput()
	input.Channel = "EMAIL"
	input.Verdict = false
	_, err = f.svc.Submit(ctx, input)
	require.NoError(t, err, "cooldown is scoped per channel, not per business")
	require.Equal(t, 2, f.store.Len())
}

func TestSubmitAllowedAgainAfterWindowElapses(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.Submit(ctx, validInput())
	require.NoError(t, err)

	f.advance(validation.CooldownWindow - time.Second)
	_, err = f.svc.Submit(ctx, validInput())
	var cooldownErr *validation.CooldownActiveError
	require.ErrorAs(t, err, &cooldownErr)

	f.advance(2 * time.Second)
	_, err = f.svc.Submit(ctx, validInput())
	require.NoError(t, err, "window elapsed, submission must succeed")
	require.Equal(t, 2, f.store.Len())
}

func TestSubmitRejectsMalformedInputBeforeAnyStateChange(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Input)
	}{
		{"missing business id", func(in *Input) { in.BusinessID = "" }},
		{"missing voter identity", func(in *Input) { in.VoterIdentity = "" }},
		{"unknown channel", func(in *Input) { in.Channel = "FAX" }},
		{"oversized comment", func(in *Input) { in.Comment = strings.Repeat("x", 201) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			input := validInput()
			tt.mutate(&input)

			_, err := f.svc.Submit(context.Background(), input)
			var validationErr *validation.ValidationError
			require.ErrorAs(t, err, &validationErr)
			require.Equal(t, 0, f.store.Len(), "store must be untouched")

			// The cooldown ledger must be untouched: a valid submission for
			// the same key must still go through.
			if input.BusinessID != "" && input.VoterIdentity != "" {
				_, err = f.svc.Submit(context.Background(), validInput())
				require.NoError(t, err)
			}
		})
	}
}

// failingStore makes Append fail while delegating everything else.
type failingStore struct {
	validation.Store
}

func (s *failingStore) Append(context.Context, *validation.Record) error {
	return errors.New("disk on fire")
}

func TestSubmitStorageFailureLeavesNoPartialState(t *testing.T) {
	f := newFixture()
	broken := &failingStore{Store: f.store}
	svc := NewService(broken, f.ledger, trust.NewService(broken), reputation.NewService(broken))
	svc.now = f.svc.now
	ctx := context.Background()

	_, err := svc.Submit(ctx, validInput())
	var storageErr *validation.StorageError
	require.ErrorAs(t, err, &storageErr)
	require.Equal(t, 0, f.store.Len())

	// The failed attempt must not have consumed the cooldown slot.
	_, err = f.svc.Submit(ctx, validInput())
	require.NoError(t, err)
}

func TestSubmitFiftiethValidationPromotesToExperto(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	// 49 prior validations across distinct businesses.
	for i := 0; i < 49; i++ {
		require.NoError(t, f.store.Append(ctx, &validation.Record{
			BusinessID:    fmt.Sprintf("biz-%d", i),
			Channel:       validation.ChannelPhone,
			Verdict:       true,
			VoterIdentity: "voter-1",
			SubmittedAt:   f.svc.now().Add(-48 * time.Hour),
		}))
	}

	result, err := f.svc.Submit(ctx, validInput())
	require.NoError(t, err)
	require.NotNil(t, result.NewLevel, "50th validation must report the promotion")
	require.Equal(t, reputation.LevelExperto, *result.NewLevel)

	// The 51st does not cross a boundary.
	input := validInput()
	input.BusinessID = "biz-other"
	result, err = f.svc.Submit(ctx, input)
	require.NoError(t, err)
	require.Nil(t, result.NewLevel)
}

func TestSubmitConcurrentSameKeyAdmitsExactlyOne(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	const workers = 25
	var wg sync.WaitGroup
	outcomes := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Submit(ctx, validInput())
			outcomes <- err
		}()
	}
	wg.Wait()
	close(outcomes)

	accepted, rejected := 0, 0
	for err := range outcomes {
		if err == nil {
			accepted++
			continue
		}
		var cooldownErr *validation.CooldownActiveError
		require.ErrorAs(t, err, &cooldownErr)
		rejected++
	}

	require.Equal(t, 1, accepted, "exactly one concurrent submission may win")
	require.Equal(t, workers-1, rejected)
	require.Equal(t, 1, f.store.Len())
}
