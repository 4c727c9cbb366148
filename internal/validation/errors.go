package validation

import (
	"fmt"
	"time"
)

// ValidationError reports malformed input: unknown channel, oversized
// comment, missing business id. The caller can recover by resubmitting
// corrected input; it is never retried automatically.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid submission: " + e.Reason
}

// CooldownActiveError is the expected, frequent outcome of resubmitting
// within the cooldown window. It is surfaced to the end user with the
// remaining wait time and is not logged as an error.
type CooldownActiveError struct {
	RetryAfter time.Duration
}

func (e *CooldownActiveError) Error() string {
	return fmt.Sprintf("cooldown active, retry in %s", e.RetryAfter.Round(time.Second))
}

// StorageError wraps a failure of the underlying store or ledger. Safe to
// retry: the orchestrator guarantees no partial state is left behind.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return "storage failure during " + e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
