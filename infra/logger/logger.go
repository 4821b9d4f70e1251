// Package logger provides the zerolog-backed implementation of the core
// logging interface.
package logger

import corelogger "github.com/unirides/dispatch/core/logger"

// Logger re-exports the core contract for convenience.
type Logger = corelogger.Logger

// NopLogger discards everything. Handy default for tests and optional
// dependencies.
type NopLogger struct{}

func (NopLogger) Debugf(string, ...any)         {}
func (NopLogger) Debugw(string, map[string]any) {}
func (NopLogger) Infof(string, ...any)          {}
func (NopLogger) Warnf(string, ...any)          {}
func (NopLogger) Errorf(string, ...any)         {}

// New returns the standard service logger for the given component.
func New(component string) Logger {
	return NewZerologLogger(component)
}
