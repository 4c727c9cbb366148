package shutdown

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/vialocal/contact-trust-backend/internal/trust"
	"github.com/vialocal/contact-trust-backend/pkg/lifecycle"
)

// Coordinator orchestrates the graceful shutdown sequence. It holds the two
// lifecycle managers and coordinates the two-phase stop: first ask services
// to finish their work, then force the stragglers.
type Coordinator struct {
	GracefulManager *lifecycle.Manager
	ForcefulManager *lifecycle.Manager
}

// NewCoordinator creates a shutdown coordinator over the given managers.
func NewCoordinator(gracefulMgr, forcefulMgr *lifecycle.Manager) *Coordinator {
	return &Coordinator{
		GracefulManager: gracefulMgr,
		ForcefulManager: forcefulMgr,
	}
}

// ListenForSignalsAndShutdown blocks until SIGINT/SIGTERM, then drives the
// shutdown sequence to completion.
func (c *Coordinator) ListenForSignalsAndShutdown(server *http.Server) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	zap.S().Info("shutdown signal received, starting graceful shutdown")

	// Stop accepting requests, let in-flight ones finish.
	httpTimeout := 15 * time.Second
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), httpTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zap.S().Errorw("http server shutdown error", "error", err)
	} else {
		zap.S().Info("http server closed")
	}

	// Phase one: graceful stop.
	gracefulTimeout := 30 * time.Second
	c.GracefulManager.Shutdown()
	remainingServices := c.GracefulManager.WaitWithTimeout(gracefulTimeout)
	if len(remainingServices) == 0 {
		zap.S().Info("all services stopped in phase one")
	} else {
		// Phase two: force the rest.
		forcefulTimeout := 1 * time.Second
		zap.S().Warnw("phase one timed out, forcing stop", "remaining", remainingServices)
		c.ForcefulManager.Shutdown()
		c.ForcefulManager.WaitWithTimeout(forcefulTimeout)
	}

	// Leave a consistent cache behind for the next start.
	trust.FlushDirty()

	zap.S().Info("graceful shutdown complete")
}
