package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"devdeck/internal/daemon"
)

// Kill asks the daemon to terminate pid. The result reports whether the
// signal (or container stop) was delivered; a refusal is data in the
// result, not an error.
func (a *App) Kill(ctx context.Context, timeout time.Duration, pid int, force bool) (daemon.KillResult, error) {
	if pid <= 0 {
		return daemon.KillResult{}, fmt.Errorf("invalid pid: %d", pid)
	}
	var res daemon.KillResult
	err := a.withClient(ctx, timeout, func(ctx context.Context, client apiClient) error {
		out, err := client.Kill(ctx, pid, force)
		if err != nil {
			return fmt.Errorf("daemon kill failed: %w", err)
		}
		res = out
		return nil
	})
	return res, err
}

// KillProject asks the daemon to terminate every process of a project.
// Per-process outcomes come back individually; one failure never aborts
// the rest.
func (a *App) KillProject(ctx context.Context, timeout time.Duration, path string, force bool) ([]daemon.KillResult, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("project path must not be empty")
	}
	var results []daemon.KillResult
	err := a.withClient(ctx, timeout, func(ctx context.Context, client apiClient) error {
		out, err := client.KillProject(ctx, path, force)
		if err != nil {
			return fmt.Errorf("daemon project kill failed: %w", err)
		}
		results = out
		return nil
	})
	return results, err
}
