// Package logger defines the logging contract used across the service.
// Concrete backends live in infra/logger so core packages never depend on a
// logging library directly.
package logger

// Logger is the leveled logging interface accepted by every component.
type Logger interface {
	// Debugf logs a formatted message at debug level.
	Debugf(format string, args ...any)
	// Infof logs a formatted message at info level.
	Infof(format string, args ...any)
	// Warnf logs a formatted message at warn level.
	Warnf(format string, args ...any)
	// Errorf logs a formatted message at error level.
	Errorf(format string, args ...any)
	// Debugw logs a debug message with structured fields attached.
	Debugw(msg string, fields map[string]any)
}
