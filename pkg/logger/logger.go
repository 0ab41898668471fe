// Package logger builds the zap.SugaredLogger instances injected into every
// layer of the engine (scsi, partition, ltfsindex, indexsync, writer,
// reader) via their Config structs, the same way the teacher threads a
// single *zap.SugaredLogger from pkg/ignite down into internal/engine and
// internal/storage.
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a production-style structured logger scoped to service, used
// as the top-level service name (e.g. "ltfsctl"). Every log line carries a
// "service" field so output from multiple components interleaves cleanly.
func New(service string) *zap.SugaredLogger {
	return NewWithLevel(service, zapcore.InfoLevel)
}

// NewWithLevel builds a logger at the given minimum level. Tests and
// CLI verbose flags use this to drop to zapcore.DebugLevel.
func NewWithLevel(service string, level zapcore.Level) *zap.SugaredLogger {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.Lock(os.Stderr),
		level,
	)

	base := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	return base.Sugar().Named(service).With("service", service)
}

// NewNop returns a logger that discards all output, for tests that need a
// non-nil *zap.SugaredLogger but don't care about its content.
func NewNop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
