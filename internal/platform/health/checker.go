package health

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.uber.org/zap"

	"github.com/vialocal/contact-trust-backend/internal/platform/database"
	"github.com/vialocal/contact-trust-backend/internal/platform/startup"
	"github.com/vialocal/contact-trust-backend/pkg/lifecycle"
)

const (
	checkInterval = 5 * time.Second
	pingTimeout   = 2 * time.Second
)

var runIDPattern = regexp.MustCompile(`run_id:([a-f0-9]+)`)

// getRedisRunID extracts run_id from the Redis server info. The run_id
// changes on every restart, which is how a flushed cooldown ledger is
// detected.
func getRedisRunID() (string, error) {
	ctx, cancel := context.WithTimeout(database.Ctx, pingTimeout)
	defer cancel()
	info, err := database.RDB.Info(ctx, "server").Result()
	if err != nil {
		return "", err
	}
	matches := runIDPattern.FindStringSubmatch(info)
	if len(matches) < 2 {
		return "", fmt.Errorf("run_id not found in redis INFO output")
	}
	return matches[1], nil
}

// InitializeRunID runs once at startup to capture the initial run_id.
func InitializeRunID() error {
	runID, err := getRedisRunID()
	if err != nil {
		return fmt.Errorf("failed to read initial redis run_id: %w", err)
	}
	database.SetInitialRunID(runID)
	zap.S().Infow("initial redis run_id captured", "runID", runID)
	return nil
}

// triggerAtomicRebuild rebuilds every Redis-derived structure and verifies
// that Redis did not restart again mid-rebuild; only then is the rebuild
// considered valid.
func triggerAtomicRebuild(idBeforeRebuild string) bool {
	zap.S().Warn("health: redis restart detected, rebuilding caches from store")

	if err := startup.RebuildCache(); err != nil {
		zap.S().Errorw("health: cache rebuild failed", "error", err)
		return false
	}

	idAfterRebuild, err := getRedisRunID()
	if err != nil {
		zap.S().Error("health: redis unreachable after rebuild, rebuild void")
		return false
	}
	if idBeforeRebuild != idAfterRebuild {
		zap.S().Errorw("health: redis restarted again during rebuild, rebuild void",
			"before", idBeforeRebuild, "after", idAfterRebuild)
		return false
	}

	zap.S().Info("health: cache rebuild succeeded and passed atomicity check")
	return true
}

// PerformCheck executes one full health check and any repair it implies.
func PerformCheck() {
	currentRunID, err := getRedisRunID()
	if err != nil {
		database.UpdateStatus(false, "")
		return
	}

	lastKnownRunID := database.GetLastKnownRunID()
	if currentRunID != lastKnownRunID {
		if triggerAtomicRebuild(currentRunID) {
			database.UpdateStatus(true, currentRunID)
		} else {
			database.UpdateStatus(false, "")
		}
		return
	}

	database.UpdateStatus(true, currentRunID)
}

// StartRedisHealthCheck runs the periodic health check loop until shutdown.
func StartRedisHealthCheck(handle *lifecycle.Handle) {
	defer handle.Close()
	zap.S().Info("redis health checker started")

	for {
		if err := handle.Sleep(checkInterval); err != nil {
			zap.S().Info("redis health checker stopped")
			return
		}
		PerformCheck()
	}
}
