package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"devdeck/internal/registry"
)

// Processes returns the merged process list across every known project.
func (a *App) Processes(ctx context.Context, timeout time.Duration) ([]registry.Proc, error) {
	var procs []registry.Proc
	err := a.withClient(ctx, timeout, func(ctx context.Context, client apiClient) error {
		out, err := client.Processes(ctx)
		if err != nil {
			return fmt.Errorf("daemon process list failed: %w", err)
		}
		procs = out
		return nil
	})
	return procs, err
}

// ProjectProcesses returns the merged process list for one project.
func (a *App) ProjectProcesses(ctx context.Context, timeout time.Duration, path, name string) ([]registry.Proc, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("project path must not be empty")
	}
	var procs []registry.Proc
	err := a.withClient(ctx, timeout, func(ctx context.Context, client apiClient) error {
		out, err := client.ProjectProcesses(ctx, path, name)
		if err != nil {
			return fmt.Errorf("daemon project process list failed: %w", err)
		}
		procs = out
		return nil
	})
	return procs, err
}

// ByPort looks up the processes listening on port, pid ascending.
func (a *App) ByPort(ctx context.Context, timeout time.Duration, port int) ([]registry.Proc, error) {
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("invalid port: %d", port)
	}
	var procs []registry.Proc
	err := a.withClient(ctx, timeout, func(ctx context.Context, client apiClient) error {
		out, err := client.FindByPort(ctx, port)
		if err != nil {
			return fmt.Errorf("daemon port lookup failed: %w", err)
		}
		procs = out
		return nil
	})
	return procs, err
}
