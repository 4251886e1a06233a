package logger

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var log *zap.Logger

// SetLogger installs the global logger instance.
func SetLogger(l *zap.Logger) {
	log = l
}

// L returns the global logger, initializing a console fallback if needed.
func L() *zap.Logger {
	if log == nil {
		InitFallback()
	}
	return log
}

// GetLogger returns the global logger instance.
func GetLogger() *zap.Logger {
	return L()
}

// Sync flushes any buffered log entries. Should be called before the application exits.
func Sync() error {
	if log == nil {
		return nil
	}
	return log.Sync()
}

// GenerateTraceID returns a short 8-char trace ID.
func GenerateTraceID() string {
	return uuid.New().String()[:8]
}
