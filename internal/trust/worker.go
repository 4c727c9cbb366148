package trust

import (
	"time"

	"go.uber.org/zap"

	"github.com/vialocal/contact-trust-backend/internal/platform/database"
	"github.com/vialocal/contact-trust-backend/pkg/lifecycle"
)

const (
	reconcileInterval = 30 * time.Second
	reconcileBatch    = 100
)

// StartReconciler runs the background loop that recomputes cached stats for
// businesses flagged dirty. Readers do not depend on it — a cache miss or a
// dirty flag already forces a recomputation on read — but it keeps cached
// entries from staying stale for businesses nobody happens to be viewing.
func StartReconciler(handle *lifecycle.Handle) {
	defer handle.Close()
	zap.S().Info("trust reconciler started")

	ticker := time.NewTicker(reconcileInterval)
	defer ticker.Stop()

	for {
		select {
		case <-handle.Done():
			zap.S().Info("trust reconciler stopped")
			return
		case <-ticker.C:
			reconcileOnce(handle)
		}
	}
}

func reconcileOnce(handle *lifecycle.Handle) {
	if database.RDB == nil || !database.IsRedisHealthy() {
		return
	}

	businessIDs, err := database.RDB.SPopN(handle.Ctx(), DirtySetKey, reconcileBatch).Result()
	if err != nil {
		zap.S().Warnw("trust reconciler: failed to pop dirty set", "error", err)
		return
	}

	for _, businessID := range businessIDs {
		select {
		case <-handle.Done():
			// Put the rest back; the flags survive for the next run or for
			// the shutdown flush.
			requeue(businessIDs, businessID)
			return
		default:
		}

		if err := moduleService.RepairCachedStats(handle.Ctx(), businessID); err != nil {
			zap.S().Warnw("trust reconciler: recompute failed", "business", businessID, "error", err)
			database.RDB.SAdd(handle.Ctx(), DirtySetKey, businessID)
		}
	}
}

func requeue(businessIDs []string, from string) {
	found := false
	for _, id := range businessIDs {
		if id == from {
			found = true
		}
		if found {
			database.RDB.SAdd(database.Ctx, DirtySetKey, id)
		}
	}
}

// FlushDirty recomputes every remaining dirty business synchronously. Called
// once during graceful shutdown so the cache left behind is consistent.
func FlushDirty() {
	if database.RDB == nil || !database.IsRedisHealthy() || moduleService == nil {
		return
	}

	businessIDs, err := database.RDB.SMembers(database.Ctx, DirtySetKey).Result()
	if err != nil || len(businessIDs) == 0 {
		return
	}

	zap.S().Infow("flushing dirty trust stats before shutdown", "count", len(businessIDs))
	for _, businessID := range businessIDs {
		if err := moduleService.RepairCachedStats(database.Ctx, businessID); err != nil {
			zap.S().Warnw("shutdown flush: recompute failed", "business", businessID, "error", err)
		}
	}
}
