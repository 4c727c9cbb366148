package startup

import (
	"context"

	"go.uber.org/zap"

	"github.com/vialocal/contact-trust-backend/internal/reputation"
	"github.com/vialocal/contact-trust-backend/internal/submission"
	"github.com/vialocal/contact-trust-backend/internal/trust"
	"github.com/vialocal/contact-trust-backend/internal/validation"
)

// moduleStore keeps the store created during initialization so that cache
// rebuilds reuse the same instance.
var (
	moduleStore   validation.Store
	reputationSvc *reputation.Service
)

// InitializeApplication runs the full first-start sequence: migrate the
// store, wire the modules together, and build every Redis-derived structure
// from the authoritative record set.
func InitializeApplication() error {
	zap.S().Info("initializing application modules")

	store, err := validation.PrimeDB()
	if err != nil {
		return err
	}
	moduleStore = store

	trustSvc := trust.Setup(store)
	reputationSvc = reputation.Setup(store)
	submission.Setup(store, validation.NewRedisLedger(), trustSvc, reputationSvc)

	if err := RebuildCache(); err != nil {
		return err
	}

	zap.S().Info("application initialization complete")
	return nil
}

// RebuildCache reconstructs every Redis structure from the validation store.
// It runs at startup and again whenever the health checker detects a Redis
// restart; nothing in Redis is authoritative, so a full rebuild is always
// valid.
func RebuildCache() error {
	ctx := context.Background()

	if err := validation.RebuildCooldownLedger(ctx, moduleStore); err != nil {
		return err
	}
	if err := trust.ResetCache(ctx); err != nil {
		return err
	}
	if err := reputationSvc.WarmupCache(ctx); err != nil {
		return err
	}
	return nil
}
