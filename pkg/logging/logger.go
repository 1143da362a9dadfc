// Package logging holds logger construction and log sanitization helpers.
package logging

import (
	"go.uber.org/zap"
)

// NewLogger builds the zap logger for the engine. env follows the config
// convention: "local" gets a human-readable development logger, anything
// else gets production JSON output.
func NewLogger(env string) (*zap.Logger, error) {
	if env == "local" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// OrNop returns the logger unchanged, or a no-op logger when nil. Engine
// components accept nil loggers so library callers aren't forced to wire
// logging.
func OrNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
