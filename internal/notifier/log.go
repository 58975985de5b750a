package notifier

import (
	"context"
	"log/slog"

	"internwatch/internal/model"
)

// Ensure LogNotifier implements model.Notifier.
var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier writes the digest to the given logger. Used in check mode and
// for local runs without credentials.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier that logs the message via slog.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs the message. Returns nil (stdout logging does not fail).
func (n *LogNotifier) Notify(_ context.Context, text string) error {
	n.logger.Info("notification", "message", text)
	return nil
}
