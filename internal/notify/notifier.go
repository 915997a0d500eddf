// Package notify surfaces sync outcomes to the user.
package notify

import (
	"context"
	"log/slog"

	"github.com/yangwenmai/solvesync/internal/model"
)

// Notifier delivers a user-facing message. Delivery is fire-and-forget.
type Notifier interface {
	Notify(ctx context.Context, message string, severity model.Severity)
}

// Log writes notifications to a structured logger.
type Log struct {
	Logger *slog.Logger
}

// Notify logs at info or error level depending on severity.
func (l Log) Notify(ctx context.Context, message string, severity model.Severity) {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	level := slog.LevelInfo
	if severity == model.SeverityError {
		level = slog.LevelError
	}
	logger.Log(ctx, level, "notification", "message", message, "severity", string(severity))
}

// Multi fans a notification out to every Notifier in order.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, message string, severity model.Severity) {
	for _, n := range m {
		n.Notify(ctx, message, severity)
	}
}
