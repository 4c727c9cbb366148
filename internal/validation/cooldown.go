package validation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/vialocal/contact-trust-backend/internal/platform/database"
)

// CooldownWindow is the enforced minimum interval between two validations
// from the same voter for the same business and channel.
const CooldownWindow = 24 * time.Hour

// cooldownKeyPrefix namespaces the ledger's Redis keys.
const cooldownKeyPrefix = "cooldown:"

// CooldownKey identifies one cooldown slot. The ledger is scoped per contact
// channel: a voter who validates a business's phone may still immediately
// validate its email.
type CooldownKey struct {
	VoterIdentity string
	BusinessID    string
	Channel       ContactChannel
}

func (k CooldownKey) redisKey() string {
	return cooldownKeyPrefix + k.VoterIdentity + ":" + k.BusinessID + ":" + string(k.Channel)
}

// Reservation is the rollback handle for one acquired cooldown slot. It is
// designed to be released via defer: if the surrounding submission fails
// before Commit, RollbackUnlessCommitted frees the slot again so the failure
// leaves no partial cooldown behind.
type Reservation interface {
	Commit()
	RollbackUnlessCommitted()
}

// Ledger tracks, per (voter, business, channel), when the next validation is
// permitted. Acquire is a single atomic check-and-set: two concurrent
// submissions for the same key can never both obtain a reservation.
type Ledger interface {
	// Acquire claims the key for the given window. When an unexpired entry
	// already exists it returns a nil reservation and the remaining wait.
	Acquire(ctx context.Context, key CooldownKey, window time.Duration) (Reservation, time.Duration, error)

	// Remaining reports the unexpired time left on a key, zero when free.
	// Advisory only; Acquire remains the authoritative check.
	Remaining(ctx context.Context, key CooldownKey) (time.Duration, error)
}

// --- Redis-backed ledger ---

// redisLedger implements the Ledger over Redis TTL keys. SET NX PX gives the
// conditional insert the atomicity argument in the design rests on; expiry is
// handled entirely by Redis, no tombstones to clean up.
type redisLedger struct{}

// NewRedisLedger returns the production ledger backed by the shared Redis
// client.
func NewRedisLedger() Ledger {
	return &redisLedger{}
}

func (l *redisLedger) Acquire(ctx context.Context, key CooldownKey, window time.Duration) (Reservation, time.Duration, error) {
	if !database.IsRedisHealthy() {
		return nil, 0, errors.New("cooldown ledger unavailable")
	}

	rkey := key.redisKey()
	expiresAt := strconv.FormatInt(time.Now().Add(window).UnixMilli(), 10)

	// The key may expire between a failed SET NX and the PTTL probe, so one
	// retry is allowed before reporting the leftover TTL.
	for attempt := 0; attempt < 2; attempt++ {
		ok, err := database.RDB.SetNX(ctx, rkey, expiresAt, window).Result()
		if err != nil {
			return nil, 0, fmt.Errorf("cooldown check-and-set failed: %w", err)
		}
		if ok {
			return &redisReservation{key: rkey}, 0, nil
		}

		remaining, err := database.RDB.PTTL(ctx, rkey).Result()
		if err != nil {
			return nil, 0, fmt.Errorf("cooldown ttl lookup failed: %w", err)
		}
		if remaining > 0 {
			return nil, remaining, nil
		}
		// Key vanished between the two commands; try to claim it again.
	}

	return nil, window, nil
}

func (l *redisLedger) Remaining(ctx context.Context, key CooldownKey) (time.Duration, error) {
	remaining, err := database.RDB.PTTL(ctx, key.redisKey()).Result()
	if err != nil {
		return 0, err
	}
	if remaining < 0 {
		return 0, nil
	}
	return remaining, nil
}

// redisReservation compensates a successful SET NX when the submission that
// claimed it fails further down the line.
type redisReservation struct {
	key       string
	committed bool
}

func (r *redisReservation) Commit() {
	r.committed = true
}

func (r *redisReservation) RollbackUnlessCommitted() {
	if r.committed {
		return
	}
	if err := database.RDB.Del(database.Ctx, r.key).Err(); err != nil {
		// The main flow already failed; the slot will free itself when the
		// TTL runs out, so this is logged and not propagated.
		zap.S().Errorw("cooldown rollback failed", "key", r.key, "error", err)
	}
}

// --- In-memory ledger ---

// MemoryLedger is a Ledger held in process memory with an injectable clock.
// It backs the test suites and honors the same atomic check-and-set contract
// under its mutex.
type MemoryLedger struct {
	mu      sync.Mutex
	entries map[CooldownKey]time.Time

	// Now supplies the trusted clock; tests substitute a fake.
	Now func() time.Time
}

// NewMemoryLedger creates an empty in-memory ledger using the wall clock.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		entries: make(map[CooldownKey]time.Time),
		Now:     time.Now,
	}
}

func (l *MemoryLedger) Acquire(_ context.Context, key CooldownKey, window time.Duration) (Reservation, time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.Now()
	if expiresAt, ok := l.entries[key]; ok && expiresAt.After(now) {
		return nil, expiresAt.Sub(now), nil
	}

	expiresAt := now.Add(window)
	l.entries[key] = expiresAt
	return &memoryReservation{ledger: l, key: key, expiresAt: expiresAt}, 0, nil
}

func (l *MemoryLedger) Remaining(_ context.Context, key CooldownKey) (time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	expiresAt, ok := l.entries[key]
	if !ok {
		return 0, nil
	}
	remaining := expiresAt.Sub(l.Now())
	if remaining < 0 {
		return 0, nil
	}
	return remaining, nil
}

type memoryReservation struct {
	ledger    *MemoryLedger
	key       CooldownKey
	expiresAt time.Time
	committed bool
}

func (r *memoryReservation) Commit() {
	r.committed = true
}

func (r *memoryReservation) RollbackUnlessCommitted() {
	if r.committed {
		return
	}
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	// Only release the slot if it still belongs to this reservation.
	if expiresAt, ok := r.ledger.entries[r.key]; ok && expiresAt.Equal(r.expiresAt) {
		delete(r.ledger.entries, r.key)
	}
}
