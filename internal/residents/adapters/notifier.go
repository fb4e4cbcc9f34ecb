// Package adapters holds outbound ports of the resident service that are not
// persistence: today only the approval notifier.
package adapters

import (
	"context"
	"log/slog"

	id "civreg/pkg/domain"
)

// LogNotifier records approval notifications in the structured log. It stands
// in for the external delivery channel in deployments without one.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) NotifyApproved(ctx context.Context, residentID id.ResidentID, name string) error {
	n.logger.InfoContext(ctx, "resident approved notification",
		"resident_id", residentID,
		"name", name,
	)
	return nil
}
