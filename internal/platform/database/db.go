package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/vialocal/contact-trust-backend/internal/platform/config"
)

// DB is the global GORM handle over the authoritative relational store.
var DB *gorm.DB

// InitDB opens the relational database selected by configuration.
// SQLite serves local development; production runs against the directory's
// managed Postgres.
func InitDB(cfg config.SQLConfig) error {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	case "sqlite", "":
		dialector = sqlite.Open(cfg.DSN)
	default:
		return fmt.Errorf("unsupported sql driver: %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to %s database: %w", cfg.Driver, err)
	}

	DB = db
	zap.S().Infow("relational database connected", "driver", cfg.Driver)
	return nil
}
