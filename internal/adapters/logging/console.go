// Package logging provides implementations of the ports.Logger interface:
// a ConsoleLogger for structured text or JSON output and a NopLogger for
// disabled logging.
package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/felixgeelhaar/relay/internal/ports"
)

// ConsoleLogger logs structured messages to a writer.
type ConsoleLogger struct {
	mu     sync.Mutex
	out    io.Writer
	level  ports.Level
	fields []ports.Field
	asJSON bool
}

// Option configures the console logger.
type Option func(*ConsoleLogger)

// WithOutput sets the output writer (default: os.Stderr).
func WithOutput(w io.Writer) Option {
	return func(l *ConsoleLogger) {
		l.out = w
	}
}

// WithLevel sets the minimum log level (default: Info).
func WithLevel(level ports.Level) Option {
	return func(l *ConsoleLogger) {
		l.level = level
	}
}

// WithJSON switches output to one JSON object per line.
func WithJSON(enabled bool) Option {
	return func(l *ConsoleLogger) {
		l.asJSON = enabled
	}
}

// NewConsoleLogger creates a new console logger.
func NewConsoleLogger(opts ...Option) *ConsoleLogger {
	l := &ConsoleLogger{
		out:   os.Stderr,
		level: ports.LevelInfo,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Debug logs a debug message.
func (l *ConsoleLogger) Debug(ctx context.Context, msg string, fields ...ports.Field) {
	l.log(ctx, ports.LevelDebug, msg, fields)
}

// Info logs an informational message.
func (l *ConsoleLogger) Info(ctx context.Context, msg string, fields ...ports.Field) {
	l.log(ctx, ports.LevelInfo, msg, fields)
}

// Warn logs a warning message.
func (l *ConsoleLogger) Warn(ctx context.Context, msg string, fields ...ports.Field) {
	l.log(ctx, ports.LevelWarn, msg, fields)
}

// Error logs an error message.
func (l *ConsoleLogger) Error(ctx context.Context, msg string, fields ...ports.Field) {
	l.log(ctx, ports.LevelError, msg, fields)
}

// With returns a logger carrying additional fields on every entry.
func (l *ConsoleLogger) With(fields ...ports.Field) ports.Logger {
	merged := make([]ports.Field, 0, len(l.fields)+len(fields))
	merged = append(merged, l.fields...)
	merged = append(merged, fields...)

	return &ConsoleLogger{
		out:    l.out,
		level:  l.level,
		fields: merged,
		asJSON: l.asJSON,
	}
}

// Level returns the minimum log level.
func (l *ConsoleLogger) Level() ports.Level {
	return l.level
}

func (l *ConsoleLogger) log(_ context.Context, level ports.Level, msg string, fields []ports.Field) {
	if level < l.level {
		return
	}

	all := make([]ports.Field, 0, len(l.fields)+len(fields))
	all = append(all, l.fields...)
	all = append(all, fields...)

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.asJSON {
		l.writeJSON(level, msg, all)
		return
	}
	l.writeText(level, msg, all)
}

func (l *ConsoleLogger) writeJSON(level ports.Level, msg string, fields []ports.Field) {
	entry := map[string]any{
		"time":  time.Now().UTC().Format(time.RFC3339),
		"level": level.String(),
		"msg":   msg,
	}
	for _, f := range fields {
		entry[f.Key] = f.Value
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintln(l.out, string(data))
}

func (l *ConsoleLogger) writeText(level ports.Level, msg string, fields []ports.Field) {
	line := fmt.Sprintf("%s [%s] %s", time.Now().Format("15:04:05"), level.String(), msg)
	for _, f := range fields {
		line += fmt.Sprintf(" %s=%v", f.Key, f.Value)
	}
	_, _ = fmt.Fprintln(l.out, line)
}

// Ensure ConsoleLogger implements Logger.
var _ ports.Logger = (*ConsoleLogger)(nil)
