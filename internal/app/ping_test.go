package app

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestAppPingNotRunning(t *testing.T) {
	stubDaemon(t, false, nil)

	app := New(Options{})
	if _, err := app.Ping(context.Background(), time.Second); err == nil || err.Error() != "daemon is not running" {
		t.Fatalf("expected daemon not running error, got %v", err)
	}
}

func TestAppPingSuccess(t *testing.T) {
	stubDaemon(t, true, &fakeClient{
		ping: func(context.Context) (string, error) { return "ok", nil },
	})

	app := New(Options{})
	msg, err := app.Ping(context.Background(), 500*time.Millisecond)
	if err != nil {
		t.Fatalf("Ping returned error: %v", err)
	}
	if msg != "ok" {
		t.Fatalf("expected ok, got %q", msg)
	}
}

func TestAppPingClientError(t *testing.T) {
	stubDaemon(t, true, &fakeClient{
		ping: func(context.Context) (string, error) { return "", errors.New("socket gone") },
	})

	app := New(Options{})
	if _, err := app.Ping(context.Background(), time.Second); err == nil || err.Error() != "daemon ping failed: socket gone" {
		t.Fatalf("expected wrapped ping error, got %v", err)
	}
}

func TestAppPingInvalidTimeout(t *testing.T) {
	stubDaemon(t, true, &fakeClient{
		ping: func(context.Context) (string, error) {
			t.Fatal("ping must not be called with an invalid timeout")
			return "", nil
		},
	})

	app := New(Options{})
	if _, err := app.Ping(context.Background(), 0); err == nil || err.Error() != "timeout must be greater than 0" {
		t.Fatalf("expected timeout error, got %v", err)
	}
}
