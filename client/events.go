package client

import (
	"context"
	"log/slog"
)

// AuthEvent identifies a step in the session lifecycle.
type AuthEvent string

const (
	EventLoginSucceeded   AuthEvent = "login_succeeded"
	EventRefreshStarted   AuthEvent = "refresh_started"
	EventRefreshSucceeded AuthEvent = "refresh_succeeded"
	EventRefreshFailed    AuthEvent = "refresh_failed"
	EventRetryCompleted   AuthEvent = "retry_completed"
	EventSessionCleared   AuthEvent = "session_cleared"
	EventLogout           AuthEvent = "logout"
)

// authLogger writes session lifecycle events. Token values are never logged.
type authLogger struct {
	logger *slog.Logger
}

func newAuthLogger(logger *slog.Logger) *authLogger {
	return &authLogger{logger: logger.With("component", "auth")}
}

func (al *authLogger) log(ctx context.Context, event AuthEvent, attrs ...slog.Attr) {
	al.logAt(ctx, slog.LevelInfo, event, attrs...)
}

func (al *authLogger) logAt(ctx context.Context, level slog.Level, event AuthEvent, attrs ...slog.Attr) {
	base := make([]slog.Attr, 0, len(attrs)+1)
	base = append(base, slog.String("event", string(event)))
	base = append(base, attrs...)
	al.logger.LogAttrs(ctx, level, "auth", base...)
}
