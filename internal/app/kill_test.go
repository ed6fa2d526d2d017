package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"devdeck/internal/daemon"
)

func TestAppKillSuccess(t *testing.T) {
	var gotPID int
	var gotForce bool
	stubDaemon(t, true, &fakeClient{
		kill: func(_ context.Context, pid int, force bool) (daemon.KillResult, error) {
			gotPID = pid
			gotForce = force
			return daemon.KillResult{PID: pid, Success: true}, nil
		},
	})

	app := New(Options{})
	res, err := app.Kill(context.Background(), time.Second, 4242, true)
	if err != nil {
		t.Fatalf("Kill returned error: %v", err)
	}
	if !res.Success || res.PID != 4242 {
		t.Fatalf("unexpected result %+v", res)
	}
	if gotPID != 4242 || !gotForce {
		t.Fatalf("daemon saw pid=%d force=%t", gotPID, gotForce)
	}
}

func TestAppKillRefusalIsData(t *testing.T) {
	stubDaemon(t, true, &fakeClient{
		kill: func(_ context.Context, pid int, _ bool) (daemon.KillResult, error) {
			return daemon.KillResult{PID: pid, Success: false, Error: "operation not permitted"}, nil
		},
	})

	app := New(Options{})
	res, err := app.Kill(context.Background(), time.Second, 77, false)
	if err != nil {
		t.Fatalf("a kill refusal must not be an error, got %v", err)
	}
	if res.Success || res.Error != "operation not permitted" {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestAppKillInvalidPID(t *testing.T) {
	stubDaemon(t, true, nil)

	app := New(Options{})
	if _, err := app.Kill(context.Background(), time.Second, 0, false); err == nil {
		t.Fatal("expected error for pid 0")
	}
}

func TestAppKillNotRunning(t *testing.T) {
	stubDaemon(t, false, nil)

	app := New(Options{})
	if _, err := app.Kill(context.Background(), time.Second, 42, false); err == nil || err.Error() != "daemon is not running" {
		t.Fatalf("expected daemon not running error, got %v", err)
	}
}

func TestAppKillProjectBestEffort(t *testing.T) {
	stubDaemon(t, true, &fakeClient{
		killProject: func(_ context.Context, path string, _ bool) ([]daemon.KillResult, error) {
			if path != "/w/app" {
				t.Fatalf("unexpected path %q", path)
			}
			return []daemon.KillResult{
				{PID: 100, Success: true},
				{PID: 200, Success: false, Error: "no such process"},
				{PID: 300, Success: true},
			}, nil
		},
	})

	app := New(Options{})
	results, err := app.KillProject(context.Background(), time.Second, "/w/app", false)
	if err != nil {
		t.Fatalf("KillProject returned error: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[1].Success || results[1].Error == "" {
		t.Fatalf("expected failed middle result, got %+v", results[1])
	}
}

func TestAppKillProjectEmptyPath(t *testing.T) {
	stubDaemon(t, true, nil)

	app := New(Options{})
	if _, err := app.KillProject(context.Background(), time.Second, "  ", false); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestAppKillProjectClientError(t *testing.T) {
	stubDaemon(t, true, &fakeClient{
		killProject: func(context.Context, string, bool) ([]daemon.KillResult, error) {
			return nil, errors.New("boom")
		},
	})

	app := New(Options{})
	if _, err := app.KillProject(context.Background(), time.Second, "/w/app", false); err == nil {
		t.Fatal("expected wrapped client error")
	}
}
