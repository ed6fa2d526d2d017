// Package launch opens editors and terminals on project directories and
// records what it started in the registry.
//
// Editors are easy: we spawn them, so we know the pid. Terminals are
// not: most terminal commands are thin launchers that hand off to a
// running server and exit, so after a short delay we go looking for a
// fresh shell whose working directory is the project. Not finding one
// is fine; the next scan will.
package launch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"devdeck/internal/proc"
	"devdeck/internal/registry"
)

type startFunc func(bin string, args ...string) (pid int, wait func(), err error)

type spawnTermFunc func(path string) error

type finderFunc func(path string) (int, bool)

// Orchestrator launches editor and terminal processes for projects.
type Orchestrator struct {
	reg            *registry.Registry
	editorCmd      string
	discoveryDelay time.Duration
	log            *zap.Logger

	start     startFunc
	spawnTerm spawnTermFunc
	findTerm  finderFunc

	wg sync.WaitGroup
}

// NewOrchestrator builds an Orchestrator around the given registry.
// editorCmd is the command line to launch an editor with, e.g. "code".
func NewOrchestrator(reg *registry.Registry, editorCmd string, discoveryDelay time.Duration, logger *zap.Logger) *Orchestrator {
	if discoveryDelay <= 0 {
		discoveryDelay = time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		reg:            reg,
		editorCmd:      editorCmd,
		discoveryDelay: discoveryDelay,
		log:            logger,
		start:          startDetached,
		spawnTerm:      spawnTerminal,
		findTerm:       findTerminalShell,
	}
}

// OpenEditor launches the configured editor on the project directory
// and registers the spawned pid. A reaper goroutine unregisters it once
// the editor exits.
func (o *Orchestrator) OpenEditor(ctx context.Context, path, name string) (registry.Proc, error) {
	if strings.TrimSpace(path) == "" {
		return registry.Proc{}, errors.New("project path must not be empty")
	}
	fields := strings.Fields(o.editorCmd)
	if len(fields) == 0 {
		return registry.Proc{}, errors.New("no editor command configured")
	}
	args := append(fields[1:], path)

	pid, wait, err := o.start(fields[0], args...)
	if err != nil {
		return registry.Proc{}, fmt.Errorf("launch editor: %w", err)
	}

	p := registry.Proc{
		PID:         pid,
		ProjectPath: path,
		ProjectName: name,
		Type:        registry.TypeEditor,
		Command:     strings.Join(append(fields, path), " "),
		LaunchTime:  time.Now().UTC(),
	}
	if err := o.reg.Register(p); err != nil {
		return registry.Proc{}, fmt.Errorf("register editor: %w", err)
	}

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		wait()
		o.reg.Unregister(pid)
	}()

	return p, nil
}

// OpenTerminal launches a platform-native terminal in the project
// directory, waits briefly, then tries to locate the new shell and
// register it. The bool result reports whether a shell was found;
// false without an error means the terminal opened but could not be
// identified, which is not a failure.
func (o *Orchestrator) OpenTerminal(ctx context.Context, path, name string) (registry.Proc, bool, error) {
	if strings.TrimSpace(path) == "" {
		return registry.Proc{}, false, errors.New("project path must not be empty")
	}
	if err := o.spawnTerm(path); err != nil {
		return registry.Proc{}, false, fmt.Errorf("launch terminal: %w", err)
	}

	select {
	case <-ctx.Done():
		return registry.Proc{}, false, ctx.Err()
	case <-time.After(o.discoveryDelay):
	}

	pid, ok := o.findTerm(path)
	if !ok {
		o.log.Debug("terminal shell not identified", zap.String("project", path))
		return registry.Proc{}, false, nil
	}

	command := proc.CommandLine(pid)
	if command == "" {
		command = "shell"
	}
	p := registry.Proc{
		PID:         pid,
		ProjectPath: path,
		ProjectName: name,
		Type:        registry.TypeTerminal,
		Command:     command,
		LaunchTime:  time.Now().UTC(),
	}
	if err := o.reg.Register(p); err != nil {
		return registry.Proc{}, false, fmt.Errorf("register terminal: %w", err)
	}
	return p, true, nil
}

// Drain blocks until all reaper goroutines have finished. Only shutdown
// and tests call it.
func (o *Orchestrator) Drain() {
	o.wg.Wait()
}
