package lifecycle

import (
	"context"
	"time"
)

// Handle is the lifecycle controller handed to each background service.
// It is created by a Manager and encapsulates the service's shutdown wiring.
type Handle struct {
	ctx context.Context
	// Close tells the Manager that the owning service has finished shutting
	// down. It should be deferred before the service goroutine exits.
	Close func()
}

// Ctx returns the handle's context.
func (h *Handle) Ctx() context.Context {
	return h.ctx
}

// Done returns a channel that is closed when the manager broadcasts shutdown.
func (h *Handle) Done() <-chan struct{} {
	return h.ctx.Done()
}

// Err reports why the handle's context was cancelled once Done() is closed.
func (h *Handle) Err() error {
	return h.ctx.Err()
}

// Sleep pauses for the given duration but returns early with the context
// error if the handle is cancelled. Background retry loops should sleep
// through this method rather than time.Sleep.
func (h *Handle) Sleep(duration time.Duration) error {
	timer := time.NewTimer(duration)

	select {
	case <-h.Done():
		if !timer.Stop() {
			<-timer.C
		}
		return h.Err()
	case <-timer.C:
		return nil
	}
}
