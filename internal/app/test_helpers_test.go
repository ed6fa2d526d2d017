package app

import (
	"context"
	"errors"
	"testing"

	"devdeck/internal/daemon"
	"devdeck/internal/journal"
	"devdeck/internal/registry"
)

// fakeClient implements apiClient with per-method hooks. Unset hooks
// fail loudly so tests only exercise what they stub.
type fakeClient struct {
	ping            func(ctx context.Context) (string, error)
	processes       func(ctx context.Context) ([]registry.Proc, error)
	projectProcs    func(ctx context.Context, path, name string) ([]registry.Proc, error)
	kill            func(ctx context.Context, pid int, force bool) (daemon.KillResult, error)
	killProject     func(ctx context.Context, path string, force bool) ([]daemon.KillResult, error)
	findByPort      func(ctx context.Context, port int) ([]registry.Proc, error)
	launch          func(ctx context.Context, path, name string) (daemon.LaunchResponse, error)
	eventsByProject func(ctx context.Context, projectPath string, limit int) ([]journal.Event, error)
}

func (f *fakeClient) Ping(ctx context.Context) (string, error) {
	if f.ping == nil {
		return "", errors.New("ping not stubbed")
	}
	return f.ping(ctx)
}

func (f *fakeClient) Processes(ctx context.Context) ([]registry.Proc, error) {
	if f.processes == nil {
		return nil, errors.New("processes not stubbed")
	}
	return f.processes(ctx)
}

func (f *fakeClient) ProjectProcesses(ctx context.Context, path, name string) ([]registry.Proc, error) {
	if f.projectProcs == nil {
		return nil, errors.New("project processes not stubbed")
	}
	return f.projectProcs(ctx, path, name)
}

func (f *fakeClient) Kill(ctx context.Context, pid int, force bool) (daemon.KillResult, error) {
	if f.kill == nil {
		return daemon.KillResult{}, errors.New("kill not stubbed")
	}
	return f.kill(ctx, pid, force)
}

func (f *fakeClient) KillProject(ctx context.Context, path string, force bool) ([]daemon.KillResult, error) {
	if f.killProject == nil {
		return nil, errors.New("kill project not stubbed")
	}
	return f.killProject(ctx, path, force)
}

func (f *fakeClient) FindByPort(ctx context.Context, port int) ([]registry.Proc, error) {
	if f.findByPort == nil {
		return nil, errors.New("find by port not stubbed")
	}
	return f.findByPort(ctx, port)
}

func (f *fakeClient) Launch(ctx context.Context, path, name string) (daemon.LaunchResponse, error) {
	if f.launch == nil {
		return daemon.LaunchResponse{}, errors.New("launch not stubbed")
	}
	return f.launch(ctx, path, name)
}

func (f *fakeClient) Events(ctx context.Context, projectPath string, limit int) ([]journal.Event, error) {
	if f.eventsByProject == nil {
		return nil, errors.New("events not stubbed")
	}
	return f.eventsByProject(ctx, projectPath, limit)
}

func stubDaemon(t *testing.T, running bool, client apiClient) {
	t.Helper()
	resetDaemonDeps()
	daemonIsRunning = func() bool { return running }
	if client == nil {
		client = &fakeClient{}
	}
	newAPIClient = func() apiClient { return client }
	t.Cleanup(resetDaemonDeps)
}
