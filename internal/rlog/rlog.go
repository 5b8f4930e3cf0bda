// Package rlog provides relayd's process-wide diagnostic logger. The
// handful of literal lifecycle lines spec.md §6 mandates on stdout
// ("Server started", "Server stopped", "Config reloaded successfully",
// and reload failure diagnostics) are printed directly with fmt, not
// through this logger — they are testable invariants and must not
// gain a timestamp or level prefix. Everything else (log-and-continue
// accept errors, TLS handshake failures, per-connection debug detail)
// goes through the zap logger built here, the same way the teacher's
// caddy.Log() builds its default logger.
package rlog

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the package-wide structured logger, writing to stderr so
// it never interleaves with the literal stdout lifecycle lines. It
// keeps zap's production level (Info), so Debug entries such as TLS
// handshake failures and per-connection detail are not emitted.
func New() *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build()
	if err != nil {
		// zap's own production config never fails to build in
		// practice; falling back to a no-op logger keeps relayd
		// running rather than crashing on a logging misconfiguration.
		return zap.NewNop()
	}
	return logger
}
