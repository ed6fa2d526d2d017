package app

import (
	"context"
	"fmt"
	"time"

	"devdeck/internal/journal"
)

// Events returns recent daemon journal events, newest first.
func (a *App) Events(ctx context.Context, timeout time.Duration, projectPath string, limit int) ([]journal.Event, error) {
	var events []journal.Event
	err := a.withClient(ctx, timeout, func(ctx context.Context, client apiClient) error {
		out, err := client.Events(ctx, projectPath, limit)
		if err != nil {
			return fmt.Errorf("daemon events query failed: %w", err)
		}
		events = out
		return nil
	})
	return events, err
}
