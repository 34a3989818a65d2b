// Package log provides a structured logging interface for the converter.
//
// The interface is slog-compatible so callers write key/value pairs, while the
// default backend is zerolog. Encoders obtain a component logger with
// GetLoggerWithName and attach estimator context with With:
//
//	logger := log.GetLoggerWithName("sklearn.ensemble").With(
//	    log.EstimatorKey, "sklearn.ensemble.GradientBoostingClassifier",
//	)
//	logger.Debug("Encoding boosted trees",
//	    log.SegmentsKey, 300,
//	    log.ClassesKey, 3,
//	)
package log

import (
	"context"
)

// Logger defines a structured logging interface compatible with Go's log/slog.
type Logger interface {
	// Debug logs detailed diagnostic information, such as which revision
	// branch an encoder took.
	Debug(msg string, fields ...any)

	// Info logs general operational information.
	Info(msg string, fields ...any)

	// Warn logs potentially problematic situations, such as an estimator
	// pickled with an untested library version.
	Warn(msg string, fields ...any)

	// Error logs an error condition. If an error value is passed as the first
	// field it is attached together with its stack trace.
	//
	//	logger.Error("Conversion failed", err, log.FileKey, path)
	Error(msg string, fields ...any)

	// With returns a new Logger with the given fields pre-populated.
	With(fields ...any) Logger

	// Enabled reports whether the logger emits log records at the given level.
	Enabled(ctx context.Context, level Level) bool
}

// Level represents a logging level, compatible with slog.Level.
type Level int

// Standard logging levels, values are compatible with slog.Level.
const (
	LevelDebug Level = -4
	LevelInfo  Level = 0
	LevelWarn  Level = 4
	LevelError Level = 8
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// LoggerProvider creates and configures loggers.
type LoggerProvider interface {
	// GetLogger returns the default logger instance.
	GetLogger() Logger

	// GetLoggerWithName returns a logger tagged with a component name.
	GetLoggerWithName(name string) Logger

	// SetLevel sets the minimum log level for all loggers created by this provider.
	SetLevel(level Level)
}
