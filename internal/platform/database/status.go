package database

import (
	"sync"

	"go.uber.org/zap"
)

// statusManager tracks the Redis health state in a thread-safe way.
// Every write path that depends on the cooldown ledger consults it before
// touching Redis, so a dead cache degrades to an explicit error instead of
// hanging requests.
type statusManager struct {
	mu             sync.RWMutex
	isRedisHealthy bool
	lastKnownRunID string
}

var globalStatus = &statusManager{
	isRedisHealthy: true, // assumed healthy at startup, verified immediately after
}

// IsRedisHealthy returns the current Redis health state.
func IsRedisHealthy() bool {
	globalStatus.mu.RLock()
	defer globalStatus.mu.RUnlock()
	return globalStatus.isRedisHealthy
}

// SetInitialRunID records the run_id observed during startup.
func SetInitialRunID(runID string) {
	globalStatus.mu.Lock()
	defer globalStatus.mu.Unlock()
	globalStatus.lastKnownRunID = runID
}

// UpdateStatus updates the health state. The run_id is only advanced while
// healthy so that a restart during rebuild is still detected.
func UpdateStatus(isHealthy bool, newRunID string) {
	globalStatus.mu.Lock()
	defer globalStatus.mu.Unlock()

	if globalStatus.isRedisHealthy != isHealthy {
		globalStatus.isRedisHealthy = isHealthy
		if isHealthy {
			zap.S().Info("health: redis marked available")
		} else {
			zap.S().Warn("health: redis marked unavailable")
		}
	}

	if isHealthy {
		globalStatus.lastKnownRunID = newRunID
	}
}

// GetLastKnownRunID returns the last run_id observed while healthy.
func GetLastKnownRunID() string {
	globalStatus.mu.RLock()
	defer globalStatus.mu.RUnlock()
	return globalStatus.lastKnownRunID
}
