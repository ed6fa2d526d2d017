package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "events.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAppendFillsIDAndTimestamp(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	if err := s.Append(ctx, Event{Kind: KindLaunched, PID: 100, ProjectPath: "/dev/web"}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	got, err := s.Events(ctx, Query{})
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Events = %+v", got)
	}
	if got[0].ID == "" || got[0].Timestamp.IsZero() {
		t.Fatalf("id/timestamp not filled: %+v", got[0])
	}
}

func TestAppendRequiresKind(t *testing.T) {
	s := openTest(t)
	if err := s.Append(context.Background(), Event{PID: 1}); err == nil {
		t.Fatal("expected error for missing kind")
	}
}

func TestEventsNewestFirstAndFiltered(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	base := time.Now().UTC().Add(-time.Minute)

	events := []Event{
		{Kind: KindLaunched, PID: 1, ProjectPath: "/dev/web", Timestamp: base},
		{Kind: KindKilled, PID: 1, ProjectPath: "/dev/web", Timestamp: base.Add(time.Second)},
		{Kind: KindLaunched, PID: 2, ProjectPath: "/dev/api", Timestamp: base.Add(2 * time.Second)},
		{Kind: KindPruned, PID: 3, ProjectPath: "/dev/web", Timestamp: base.Add(3 * time.Second)},
	}
	for _, ev := range events {
		if err := s.Append(ctx, ev); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	all, err := s.Events(ctx, Query{})
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	if len(all) != 4 || all[0].Kind != KindPruned || all[3].Kind != KindLaunched {
		t.Fatalf("order wrong: %+v", all)
	}

	web, err := s.Events(ctx, Query{Project: "/dev/web"})
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	if len(web) != 3 {
		t.Fatalf("project filter = %+v", web)
	}

	kills, err := s.Events(ctx, Query{Kinds: []Kind{KindKilled, KindPruned}})
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	if len(kills) != 2 {
		t.Fatalf("kind filter = %+v", kills)
	}

	limited, err := s.Events(ctx, Query{Limit: 2})
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	if len(limited) != 2 || limited[0].Kind != KindPruned {
		t.Fatalf("limit = %+v", limited)
	}
}

func TestOpenEmptyPath(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestReopenKeepsEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.db")
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Append(ctx, Event{Kind: KindKilled, PID: 9}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()
	got, err := s2.Events(ctx, Query{})
	if err != nil || len(got) != 1 || got[0].PID != 9 {
		t.Fatalf("Events after reopen = %+v, %v", got, err)
	}
}
