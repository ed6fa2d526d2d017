package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"devdeck/internal/daemon"
)

// Launch opens the configured editor plus a terminal on the project
// directory and returns what got registered.
func (a *App) Launch(ctx context.Context, timeout time.Duration, path, name string) (daemon.LaunchResponse, error) {
	if strings.TrimSpace(path) == "" {
		return daemon.LaunchResponse{}, errors.New("project path must not be empty")
	}
	var resp daemon.LaunchResponse
	err := a.withClient(ctx, timeout, func(ctx context.Context, client apiClient) error {
		out, err := client.Launch(ctx, path, name)
		if err != nil {
			return fmt.Errorf("daemon launch failed: %w", err)
		}
		resp = out
		return nil
	})
	return resp, err
}
