package scan

import (
	"context"
	"errors"
	"strings"
	"testing"

	"devdeck/internal/container"
	"devdeck/internal/proc"
	"devdeck/internal/registry"
)

type fakeContainers struct {
	byProject map[string][]container.Container
	err       error
}

func (f *fakeContainers) ForProject(_ context.Context, path string) ([]container.Container, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byProject[path], nil
}

func (f *fakeContainers) Runtime() string { return "docker" }

func table(entries ...proc.Entry) *proc.Table {
	return proc.NewTable(entries, nil)
}

func TestProjectRequiresBothSignals(t *testing.T) {
	s := New(nil, nil, 0, nil)
	tbl := table(
		// Path reference without a dev tool: an idle shell.
		proc.Entry{PID: 10, PPID: 1, Name: "bash", Cmdline: "bash -c 'cd /home/me/dev/web'"},
		// Dev tool without the path: someone else's build.
		proc.Entry{PID: 20, PPID: 1, Name: "npm", Cmdline: "npm run build --prefix /home/me/dev/other"},
		// Both: counts.
		proc.Entry{PID: 30, PPID: 1, Name: "npm", Cmdline: "npm run dev --prefix /home/me/dev/web"},
	)

	got := s.Project(context.Background(), tbl, "/home/me/dev/web", "web")
	if len(got) != 1 || got[0].PID != 30 {
		t.Fatalf("Project = %+v, want only pid 30", got)
	}
}

func TestProjectPathBoundary(t *testing.T) {
	s := New(nil, nil, 0, nil)
	tbl := table(
		proc.Entry{PID: 10, PPID: 1, Name: "npm", Cmdline: "npm run dev --prefix /home/me/dev/webapp"},
		proc.Entry{PID: 20, PPID: 1, Name: "node", Cmdline: "node /home/me/dev/web/server.js"},
	)

	got := s.Project(context.Background(), tbl, "/home/me/dev/web", "web")
	if len(got) != 1 || got[0].PID != 20 {
		t.Fatalf("Project = %+v, want only pid 20 (webapp is a different project)", got)
	}
}

func TestProjectClassifiesEditors(t *testing.T) {
	s := New(nil, nil, 0, nil)
	tbl := table(
		proc.Entry{PID: 10, PPID: 1, Name: "code", Cmdline: "/usr/share/code/code /home/me/dev/web"},
		proc.Entry{PID: 20, PPID: 1, Name: "npm", Cmdline: "npm run dev --prefix /home/me/dev/web"},
	)

	got := s.Project(context.Background(), tbl, "/home/me/dev/web", "web")
	if len(got) != 2 {
		t.Fatalf("Project = %+v", got)
	}
	types := map[int]registry.Type{}
	for _, p := range got {
		types[p.PID] = p.Type
	}
	if types[10] != registry.TypeEditor {
		t.Fatalf("pid 10 type = %s, want editor", types[10])
	}
	if types[20] != registry.TypeTerminal {
		t.Fatalf("pid 20 type = %s, want terminal", types[20])
	}
}

func TestProjectResolvesPorts(t *testing.T) {
	s := New(nil, nil, 0, nil)
	tbl := proc.NewTable(
		[]proc.Entry{
			{PID: 10, PPID: 1, Name: "node", Cmdline: "node /home/me/dev/web/server.js :3000"},
			{PID: 20, PPID: 1, Name: "npm", Cmdline: "npm run dev --prefix /home/me/dev/web"},
		},
		map[int][]int{20: {5173}},
	)

	got := s.Project(context.Background(), tbl, "/home/me/dev/web", "web")
	ports := map[int]int{}
	for _, p := range got {
		ports[p.PID] = p.Port
	}
	if ports[10] != 3000 {
		t.Fatalf("pid 10 port = %d, want 3000", ports[10])
	}
	if ports[20] != 5173 {
		t.Fatalf("pid 20 port = %d, want 5173", ports[20])
	}
}

func TestProjectExtraTools(t *testing.T) {
	tbl := table(
		proc.Entry{PID: 10, PPID: 1, Name: "bazel", Cmdline: "bazel build //web --workspace /home/me/dev/web"},
	)

	if got := New(nil, nil, 0, nil).Project(context.Background(), tbl, "/home/me/dev/web", "web"); len(got) != 0 {
		t.Fatalf("bazel matched without extra tools: %+v", got)
	}
	got := New(nil, []string{"bazel"}, 0, nil).Project(context.Background(), tbl, "/home/me/dev/web", "web")
	if len(got) != 1 || got[0].PID != 10 {
		t.Fatalf("Project = %+v", got)
	}
}

func TestProjectTruncatesCommand(t *testing.T) {
	long := "npm run dev --prefix /home/me/dev/web " + strings.Repeat("-v ", 60)
	s := New(nil, nil, 50, nil)
	tbl := table(proc.Entry{PID: 10, PPID: 1, Name: "npm", Cmdline: long})

	got := s.Project(context.Background(), tbl, "/home/me/dev/web", "web")
	if len(got) != 1 {
		t.Fatalf("Project = %+v", got)
	}
	if len([]rune(got[0].Command)) != 50 || !strings.HasSuffix(got[0].Command, "...") {
		t.Fatalf("Command = %q (len %d)", got[0].Command, len(got[0].Command))
	}
}

func TestProjectAppendsContainers(t *testing.T) {
	fc := &fakeContainers{byProject: map[string][]container.Container{
		"/home/me/dev/web": {{ID: "abc123", Name: "web-db", Image: "postgres:16", HostPort: 5433}},
	}}
	s := New(fc, nil, 0, nil)

	got := s.Project(context.Background(), table(), "/home/me/dev/web", "web")
	if len(got) != 1 {
		t.Fatalf("Project = %+v", got)
	}
	c := got[0]
	if c.PID != container.PseudoPID("abc123") {
		t.Fatalf("container pid = %d", c.PID)
	}
	if c.Command != "docker: web-db (postgres:16)" {
		t.Fatalf("container command = %q", c.Command)
	}
	if c.Type != registry.TypeTerminal || c.Port != 5433 {
		t.Fatalf("container entry = %+v", c)
	}
}

func TestProjectContainerFailureDegrades(t *testing.T) {
	fc := &fakeContainers{err: errors.New("docker daemon unreachable")}
	s := New(fc, nil, 0, nil)
	tbl := table(proc.Entry{PID: 10, PPID: 1, Name: "npm", Cmdline: "npm run dev --prefix /home/me/dev/web"})

	got := s.Project(context.Background(), tbl, "/home/me/dev/web", "web")
	if len(got) != 1 || got[0].PID != 10 {
		t.Fatalf("Project = %+v, want OS process only", got)
	}
}
