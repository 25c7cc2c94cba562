// Package logging provides structured logging with trace ID propagation.
package logging

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type contextKey string

const (
	// TraceIDKey carries the per-request trace ID.
	TraceIDKey contextKey = "trace_id"
	// IdentityKey carries the authenticated wallet public key.
	IdentityKey contextKey = "identity"
)

// Logger wraps logrus with context-aware field extraction.
type Logger struct {
	*logrus.Logger
}

// New creates a logger writing JSON to the given writer at the given level.
// Level parsing is forgiving; unknown levels fall back to info.
func New(out io.Writer, level string) *Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(&logrus.JSONFormatter{})

	parsed, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		parsed = logrus.InfoLevel
	}
	l.SetLevel(parsed)

	return &Logger{Logger: l}
}

// Default returns a logger writing to stdout at info level.
func Default() *Logger {
	return New(os.Stdout, "info")
}

// WithContext returns an entry annotated with trace ID and identity from ctx.
func (l *Logger) WithContext(ctx context.Context) *logrus.Entry {
	entry := logrus.NewEntry(l.Logger)
	if traceID := GetTraceID(ctx); traceID != "" {
		entry = entry.WithField("trace_id", traceID)
	}
	if identity := GetIdentity(ctx); identity != "" {
		entry = entry.WithField("identity", identity)
	}
	return entry
}

// NewTraceID generates a fresh trace ID.
func NewTraceID() string {
	return uuid.New().String()
}

// WithTraceID stores a trace ID in the context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// GetTraceID extracts the trace ID from the context.
func GetTraceID(ctx context.Context) string {
	if v, ok := ctx.Value(TraceIDKey).(string); ok {
		return v
	}
	return ""
}

// WithIdentity stores the authenticated public key in the context.
func WithIdentity(ctx context.Context, publicKey string) context.Context {
	return context.WithValue(ctx, IdentityKey, publicKey)
}

// GetIdentity extracts the authenticated public key from the context.
func GetIdentity(ctx context.Context) string {
	if v, ok := ctx.Value(IdentityKey).(string); ok {
		return v
	}
	return ""
}
