package infrastructure

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// NewSessionID creates a new unique session ID using UUID v4
func NewSessionID() string {
	return uuid.New().String()
}

// WithSessionID adds a session ID to the context
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, SessionIDContextKey, id)
}

// GetSessionID retrieves the session ID from context
func GetSessionID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(SessionIDContextKey).(string); ok {
		return id
	}
	return ""
}

// EnsureSessionID returns ctx if it already carries a session ID, otherwise
// a child context with a new one
func EnsureSessionID(ctx context.Context) context.Context {
	if GetSessionID(ctx) == "" {
		return WithSessionID(ctx, NewSessionID())
	}
	return ctx
}

// WithComponent creates a logger with a component field
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	return logger.With("component", component)
}
