package app

import (
	"context"
	"errors"
	"time"

	"devdeck/internal/daemon"
	"devdeck/internal/journal"
	"devdeck/internal/registry"
)

// apiClient is the slice of the daemon socket client the facade uses.
// Tests swap in fakes through the package-level function vars below.
type apiClient interface {
	Ping(ctx context.Context) (string, error)
	Processes(ctx context.Context) ([]registry.Proc, error)
	ProjectProcesses(ctx context.Context, path, name string) ([]registry.Proc, error)
	Kill(ctx context.Context, pid int, force bool) (daemon.KillResult, error)
	KillProject(ctx context.Context, path string, force bool) ([]daemon.KillResult, error)
	FindByPort(ctx context.Context, port int) ([]registry.Proc, error)
	Launch(ctx context.Context, path, name string) (daemon.LaunchResponse, error)
	Events(ctx context.Context, projectPath string, limit int) ([]journal.Event, error)
}

var (
	daemonIsRunning          = daemon.IsRunning
	newAPIClient             = func() apiClient { return daemon.NewClient() }
	_               apiClient = (*daemon.Client)(nil)
)

func resetDaemonDeps() {
	daemonIsRunning = daemon.IsRunning
	newAPIClient = func() apiClient { return daemon.NewClient() }
}

func (a *App) withClient(ctx context.Context, timeout time.Duration, fn func(context.Context, apiClient) error) error {
	if timeout <= 0 {
		return errors.New("timeout must be greater than 0")
	}
	if !daemonIsRunning() {
		return errors.New("daemon is not running")
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return fn(ctx, newAPIClient())
}
