// Package logger configures the process-wide zap logger. Modules log through
// zap's globals (zap.S()) so that no package needs a logger dependency wired
// through its constructors.
package logger

import (
	"go.uber.org/zap"
)

// Init builds the global logger. In debug mode it uses the human-readable
// development encoder; in release mode, sampled JSON production output.
func Init(mode string) error {
	var (
		log *zap.Logger
		err error
	)
	if mode == "debug" {
		log, err = zap.NewDevelopment()
	} else {
		log, err = zap.NewProduction()
	}
	if err != nil {
		return err
	}
	zap.ReplaceGlobals(log)
	return nil
}

// Sync flushes buffered log entries. Deferred from main.
func Sync() {
	_ = zap.L().Sync()
}
