package logging

import (
	"maps"

	"github.com/goliatone/go-postmigrate/pkg/interfaces"
)

// WithFields attaches structured fields to a logger. Callers can pass nil or
// an empty map to skip allocation.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	if logger == nil {
		return NoOp()
	}
	if len(fields) == 0 {
		return logger
	}

	copied := make(map[string]any, len(fields))
	maps.Copy(copied, fields)
	return logger.WithFields(copied)
}

// EnsureLogger returns logger, or a no-op logger when logger is nil.
func EnsureLogger(logger interfaces.Logger) interfaces.Logger {
	if logger == nil {
		return NoOp()
	}
	return logger
}
