package logging

import (
	"context"

	"github.com/felixgeelhaar/relay/internal/ports"
)

// NopLogger discards all messages.
type NopLogger struct{}

// NewNopLogger creates a new no-op logger.
func NewNopLogger() *NopLogger {
	return &NopLogger{}
}

// Debug does nothing.
func (l *NopLogger) Debug(_ context.Context, _ string, _ ...ports.Field) {}

// Info does nothing.
func (l *NopLogger) Info(_ context.Context, _ string, _ ...ports.Field) {}

// Warn does nothing.
func (l *NopLogger) Warn(_ context.Context, _ string, _ ...ports.Field) {}

// Error does nothing.
func (l *NopLogger) Error(_ context.Context, _ string, _ ...ports.Field) {}

// With returns itself.
func (l *NopLogger) With(_ ...ports.Field) ports.Logger {
	return l
}

// Level returns Error so callers can skip expensive field construction.
func (l *NopLogger) Level() ports.Level {
	return ports.LevelError
}

// Ensure NopLogger implements Logger.
var _ ports.Logger = (*NopLogger)(nil)
