package submission

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/vialocal/contact-trust-backend/internal/reputation"
	"github.com/vialocal/contact-trust-backend/internal/trust"
	"github.com/vialocal/contact-trust-backend/internal/validation"
)

// Input is one proposed validation as received from the API boundary.
type Input struct {
	BusinessID    string
	Channel       string
	Verdict       bool
	Comment       string
	VoterIdentity string
}

// Result is returned to the caller on an accepted submission, feeding the
// reward feedback in the UI.
type Result struct {
	PointsEarned int               `json:"points_earned"`
	NewLevel     *reputation.Level `json:"new_level,omitempty"`
}

// Service is the single entry point for validation submissions. Per attempt:
// validate input, atomically acquire the cooldown slot, append the record,
// then update the derived trust and reputation state. Any failure before the
// append commits leaves all state unchanged; a failure after it is safe
// because every aggregate is recomputable from the store.
type Service struct {
	store  validation.Store
	ledger validation.Ledger
	trust  *trust.Service
	rep    *reputation.Service

	// now supplies the trusted clock; tests substitute a fake. Cooldown
	// expiry is always re-derived from this clock, never from anything the
	// client reports.
	now func() time.Time
}

// NewService wires the orchestrator to its collaborators.
func NewService(store validation.Store, ledger validation.Ledger, trustSvc *trust.Service, repSvc *reputation.Service) *Service {
	return &Service{
		store:  store,
		ledger: ledger,
		trust:  trustSvc,
		rep:    repSvc,
		now:    time.Now,
	}
}

// Submit runs one submission attempt through the full state machine.
// Returned errors are one of *validation.ValidationError,
// *validation.CooldownActiveError or *validation.StorageError.
func (s *Service) Submit(ctx context.Context, input Input) (*Result, error) {
	// 1. Validate input shape before touching any state.
	if input.BusinessID == "" {
		return nil, &validation.ValidationError{Reason: "missing business id"}
	}
	if input.VoterIdentity == "" {
		return nil, &validation.ValidationError{Reason: "missing voter identity"}
	}
	channel, ok := validation.ParseChannel(input.Channel)
	if !ok {
		return nil, &validation.ValidationError{Reason: "unknown channel: " + input.Channel}
	}
	comment, err := validation.NormalizeComment(input.Comment)
	if err != nil {
		return nil, err
	}

	// 2. Atomically claim the cooldown slot. This single check-and-set is
	// what closes the race between two concurrent submissions for the same
	// key: at most one of them obtains the reservation.
	key := validation.CooldownKey{
		VoterIdentity: input.VoterIdentity,
		BusinessID:    input.BusinessID,
		Channel:       channel,
	}
	reservation, remaining, err := s.ledger.Acquire(ctx, key, validation.CooldownWindow)
	if err != nil {
		return nil, &validation.StorageError{Op: "cooldown check", Err: err}
	}
	if reservation == nil {
		return nil, &validation.CooldownActiveError{RetryAfter: remaining}
	}
	defer reservation.RollbackUnlessCommitted()

	// 3. Append the record. If the write fails, the deferred rollback frees
	// the cooldown slot again and nothing else has changed.
	record := &validation.Record{
		BusinessID:    input.BusinessID,
		Channel:       channel,
		Verdict:       input.Verdict,
		Comment:       comment,
		VoterIdentity: input.VoterIdentity,
		SubmittedAt:   s.now(),
	}
	if err := s.store.Append(ctx, record); err != nil {
		return nil, &validation.StorageError{Op: "record append", Err: err}
	}

	// 4. The record is durable; keep the cooldown.
	reservation.Commit()

	// 5. Update derived state. From here on failures no longer fail the
	// submission: the aggregates converge from the store on the next read.
	result := &Result{PointsEarned: reputation.PointsPerValidation}

	s.trust.MarkDirty(ctx, input.BusinessID)

	newTotal, err := s.store.CountByVoter(ctx, input.VoterIdentity)
	if err != nil {
		zap.S().Warnw("accepted submission, reputation refresh deferred", "error", err)
		return result, nil
	}

	total := int(newTotal)
	if reputation.LevelFor(total) != reputation.LevelFor(total-1) {
		level := reputation.LevelFor(total)
		result.NewLevel = &level
	}
	s.rep.RecordAccepted(ctx, input.VoterIdentity, total)

	return result, nil
}
