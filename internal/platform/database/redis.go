package database

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/vialocal/contact-trust-backend/internal/platform/config"
)

// RDB is the global Redis client used for the cooldown ledger and the
// derived-stats caches.
var RDB *redis.Client

// Ctx is the shared background context for Redis operations.
var Ctx = context.Background()

// InitRedis connects to Redis and verifies the connection with a ping.
func InitRedis(cfg config.RedisConfig) error {
	RDB = redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if _, err := RDB.Ping(Ctx).Result(); err != nil {
		return err
	}

	zap.S().Infow("redis connected", "address", cfg.Address)
	return nil
}
