package main

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"devdeck/internal/app"
	"devdeck/internal/daemon"
	"devdeck/internal/journal"
	"devdeck/internal/registry"
)

type stubController struct {
	pingFunc func(ctx context.Context, timeout time.Duration) (string, error)
}

func (s *stubController) Ping(ctx context.Context, timeout time.Duration) (string, error) {
	if s.pingFunc != nil {
		return s.pingFunc(ctx, timeout)
	}
	return "", errors.New("ping not implemented")
}

func (s *stubController) Processes(ctx context.Context, timeout time.Duration) ([]registry.Proc, error) {
	panic("Processes not implemented")
}

func (s *stubController) ProjectProcesses(ctx context.Context, timeout time.Duration, path, name string) ([]registry.Proc, error) {
	panic("ProjectProcesses not implemented")
}

func (s *stubController) Kill(ctx context.Context, timeout time.Duration, pid int, force bool) (daemon.KillResult, error) {
	panic("Kill not implemented")
}

func (s *stubController) KillProject(ctx context.Context, timeout time.Duration, path string, force bool) ([]daemon.KillResult, error) {
	panic("KillProject not implemented")
}

func (s *stubController) ByPort(ctx context.Context, timeout time.Duration, port int) ([]registry.Proc, error) {
	panic("ByPort not implemented")
}

func (s *stubController) Launch(ctx context.Context, timeout time.Duration, path, name string) (daemon.LaunchResponse, error) {
	panic("Launch not implemented")
}

func (s *stubController) Events(ctx context.Context, timeout time.Duration, projectPath string, limit int) ([]journal.Event, error) {
	panic("Events not implemented")
}

func (s *stubController) Status() (app.DaemonStatus, error) {
	panic("Status not implemented")
}

func (s *stubController) StartDaemon(logger *zap.Logger) (*app.DaemonHandle, error) {
	panic("StartDaemon not implemented")
}

func (s *stubController) StopDaemon(force bool) error {
	panic("StopDaemon not implemented")
}

func withController(t *testing.T, stub controllerAPI) {
	t.Helper()
	origFactory := controllerFactory
	controllerFactory = func() controllerAPI {
		return stub
	}
	t.Cleanup(func() {
		controllerFactory = origFactory
	})
}

func withPingOutput(t *testing.T) (*bytes.Buffer, func()) {
	t.Helper()
	buf := &bytes.Buffer{}
	origOut := cmdPing.OutOrStdout()
	cmdPing.SetOut(buf)
	return buf, func() {
		cmdPing.SetOut(origOut)
	}
}

func TestPingSuccess(t *testing.T) {
	withController(t, &stubController{
		pingFunc: func(ctx context.Context, timeout time.Duration) (string, error) {
			if timeout != 2*time.Second {
				t.Fatalf("expected timeout 2s, got %v", timeout)
			}
			return "ok", nil
		},
	})
	buf, restore := withPingOutput(t)
	defer restore()

	oldTimeout := pingTimeoutSeconds
	pingTimeoutSeconds = 2
	t.Cleanup(func() { pingTimeoutSeconds = oldTimeout })

	if err := cmdPing.RunE(cmdPing, nil); err != nil {
		t.Fatalf("RunE error: %v", err)
	}
	if got := buf.String(); got != "ok\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestPingError(t *testing.T) {
	expected := errors.New("daemon down")
	withController(t, &stubController{
		pingFunc: func(ctx context.Context, timeout time.Duration) (string, error) {
			return "", expected
		},
	})
	oldTimeout := pingTimeoutSeconds
	pingTimeoutSeconds = 1
	t.Cleanup(func() { pingTimeoutSeconds = oldTimeout })

	err := cmdPing.RunE(cmdPing, nil)
	if !errors.Is(err, expected) {
		t.Fatalf("expected error %v, got %v", expected, err)
	}
}
