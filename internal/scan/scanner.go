// Package scan discovers the processes working on a project directory.
// Discovery is heuristic: a process counts only when its command line
// references the project path AND it looks like development tooling.
// Either signal alone produces junk (shells idling in a directory; a
// global npm install), together they are precise enough for a dashboard.
package scan

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"devdeck/internal/container"
	"devdeck/internal/ports"
	"devdeck/internal/proc"
	"devdeck/internal/registry"
)

// ContainerSource lists the containers bound to a project directory.
type ContainerSource interface {
	ForProject(ctx context.Context, projectPath string) ([]container.Container, error)
	Runtime() string
}

// Scanner turns a process table plus container state into per-project
// process lists.
type Scanner struct {
	containers ContainerSource
	tools      []string
	maxCommand int
	log        *zap.Logger
}

// New builds a Scanner. extraTools extends the built-in dev-tool set;
// containers may be nil when container correlation is disabled.
func New(containers ContainerSource, extraTools []string, maxCommand int, logger *zap.Logger) *Scanner {
	if maxCommand <= 0 {
		maxCommand = 120
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	tools := make([]string, 0, len(devTools)+len(editorBins)+len(extraTools))
	tools = append(tools, devTools...)
	tools = append(tools, editorBins...)
	tools = append(tools, extraTools...)
	return &Scanner{
		containers: containers,
		tools:      tools,
		maxCommand: maxCommand,
		log:        logger,
	}
}

// Project scans the table for processes working on the project at path
// and appends the project's running containers. Entries are not
// de-duplicated against the registry here; merging is the caller's job.
func (s *Scanner) Project(ctx context.Context, t *proc.Table, path, name string) []registry.Proc {
	scanTime := time.Now().UTC()
	var out []registry.Proc

	for _, e := range t.Entries() {
		if !referencesPath(e.Cmdline, path) {
			continue
		}
		if !matchesAny(e.Name, e.Cmdline, s.tools) {
			continue
		}
		typ := registry.TypeTerminal
		if isEditor(e.Name) {
			typ = registry.TypeEditor
		}
		out = append(out, registry.Proc{
			PID:         e.PID,
			ProjectPath: path,
			ProjectName: name,
			Type:        typ,
			Command:     truncate(e.Cmdline, s.maxCommand),
			LaunchTime:  scanTime,
			Port:        ports.Resolve(t, e.PID),
		})
	}

	out = append(out, s.projectContainers(ctx, path, name, scanTime)...)
	return out
}

// projectContainers converts the project's containers into list entries
// with pseudo-pids. A failing runtime degrades to no entries.
func (s *Scanner) projectContainers(ctx context.Context, path, name string, scanTime time.Time) []registry.Proc {
	if s.containers == nil {
		return nil
	}
	conts, err := s.containers.ForProject(ctx, path)
	if err != nil {
		s.log.Debug("container scan failed", zap.String("project", path), zap.Error(err))
		return nil
	}

	out := make([]registry.Proc, 0, len(conts))
	for _, c := range conts {
		out = append(out, registry.Proc{
			PID:         container.PseudoPID(c.ID),
			ProjectPath: path,
			ProjectName: name,
			Type:        registry.TypeTerminal,
			Command:     truncate(fmt.Sprintf("%s: %s (%s)", s.containers.Runtime(), c.Name, c.Image), s.maxCommand),
			LaunchTime:  scanTime,
			Port:        c.HostPort,
		})
	}
	return out
}

func referencesPath(cmdline, path string) bool {
	if path == "" || cmdline == "" {
		return false
	}
	return containsPath(cmdline, path)
}

// containsPath looks for path inside cmdline as a path, not as raw
// bytes: a match may continue with a separator or argument boundary but
// not with more name characters, so /dev/web never claims /dev/webapp.
func containsPath(cmdline, path string) bool {
	clean := strings.TrimRight(path, "/")
	if clean == "" {
		return false
	}
	start := 0
	for {
		i := strings.Index(cmdline[start:], clean)
		if i < 0 {
			return false
		}
		end := start + i + len(clean)
		if end >= len(cmdline) || !isPathNameChar(cmdline[end]) {
			return true
		}
		start += i + 1
	}
}

func isPathNameChar(b byte) bool {
	switch {
	case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9':
		return true
	}
	return b == '-' || b == '_' || b == '.'
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}
