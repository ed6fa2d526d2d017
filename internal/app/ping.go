package app

import (
	"context"
	"fmt"
	"time"
)

// Ping contacts the daemon and returns its health response.
func (a *App) Ping(ctx context.Context, timeout time.Duration) (string, error) {
	var msg string
	err := a.withClient(ctx, timeout, func(ctx context.Context, client apiClient) error {
		reply, err := client.Ping(ctx)
		if err != nil {
			return fmt.Errorf("daemon ping failed: %w", err)
		}
		msg = reply
		return nil
	})
	return msg, err
}
