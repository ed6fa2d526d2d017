package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"devdeck/internal/proc"
)

// AliveFunc reports whether a pid currently exists.
type AliveFunc func(pid int) bool

// Registry is a threadsafe catalog of processes this app launched.
// The byProject index enables cheap per-project queries. Every mutation
// persists the full set, so restarts never lose launched processes.
type Registry struct {
	mu        sync.RWMutex
	byPID     map[int]*Proc
	byProject map[string]map[int]struct{}
	alive     AliveFunc
	log       *zap.Logger

	// Where to snapshot. If empty, snapshotting is disabled.
	SnapshotPath string
}

// New loads the snapshot if present, sweeps out entries whose pid no
// longer exists, and returns a ready registry. A missing snapshot file
// starts empty; an unreadable one is logged and also starts empty, the
// registry must never take the daemon down with it.
func New(snapshotPath string, alive AliveFunc, logger *zap.Logger) *Registry {
	if alive == nil {
		alive = proc.Alive
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Registry{
		byPID:        make(map[int]*Proc),
		byProject:    make(map[string]map[int]struct{}),
		alive:        alive,
		log:          logger,
		SnapshotPath: snapshotPath,
	}
	if snapshotPath != "" {
		if err := r.loadSnapshot(snapshotPath); err != nil {
			r.log.Warn("registry snapshot unreadable, starting empty", zap.Error(err))
		}
	}
	r.Sweep()
	return r
}

// Register inserts or replaces the entry for p.PID and persists.
func (r *Registry) Register(p Proc) error {
	if p.PID <= 0 {
		return errors.New("pid must be > 0")
	}
	if !p.Type.Valid() {
		return fmt.Errorf("unknown process type %q", p.Type)
	}
	if p.ProjectPath == "" {
		return errors.New("project path must not be empty")
	}
	p.ProjectName = normalizeProjectName(p.ProjectName)
	if p.LaunchTime.IsZero() {
		p.LaunchTime = now()
	}

	r.mu.Lock()
	if old, ok := r.byPID[p.PID]; ok {
		r.dropProjectRefLocked(old.ProjectPath, p.PID)
	}
	cp := p
	r.byPID[p.PID] = &cp
	r.addProjectRefLocked(p.ProjectPath, p.PID)
	r.mu.Unlock()

	r.maybeSave()
	return nil
}

// Unregister removes the entry for pid and persists. Removing a pid
// that is not tracked is a no-op, callers retry freely.
func (r *Registry) Unregister(pid int) bool {
	r.mu.Lock()
	p, ok := r.byPID[pid]
	if !ok {
		r.mu.Unlock()
		return false
	}
	delete(r.byPID, pid)
	r.dropProjectRefLocked(p.ProjectPath, pid)
	r.mu.Unlock()

	r.maybeSave()
	return true
}

// Sweep removes entries whose pid no longer exists and returns the
// removed pids. Runs on load and again whenever reads notice staleness.
func (r *Registry) Sweep() []int {
	r.mu.Lock()
	var dead []int
	for pid, p := range r.byPID {
		if r.alive(pid) {
			continue
		}
		dead = append(dead, pid)
		delete(r.byPID, pid)
		r.dropProjectRefLocked(p.ProjectPath, pid)
	}
	r.mu.Unlock()

	if len(dead) > 0 {
		sort.Ints(dead)
		r.maybeSave()
	}
	return dead
}

// Get returns a copy of the entry for pid.
func (r *Registry) Get(pid int) (Proc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byPID[pid]
	if !ok {
		return Proc{}, false
	}
	return *p, true
}

// ByProject returns the tracked processes of one project, sorted by pid.
func (r *Registry) ByProject(path string) []Proc {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.byProject[path]
	out := make([]Proc, 0, len(ids))
	for pid := range ids {
		out = append(out, *r.byPID[pid])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PID < out[j].PID })
	return out
}

// All returns every tracked process, sorted by pid.
func (r *Registry) All() []Proc {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Proc, 0, len(r.byPID))
	for _, p := range r.byPID {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PID < out[j].PID })
	return out
}

// Projects returns the distinct project paths with tracked processes.
func (r *Registry) Projects() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.byProject))
	for path := range r.byProject {
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}

// Len reports the number of tracked processes.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byPID)
}

func (r *Registry) addProjectRefLocked(path string, pid int) {
	if _, ok := r.byProject[path]; !ok {
		r.byProject[path] = make(map[int]struct{})
	}
	r.byProject[path][pid] = struct{}{}
}

func (r *Registry) dropProjectRefLocked(path string, pid int) {
	delete(r.byProject[path], pid)
	if len(r.byProject[path]) == 0 {
		delete(r.byProject, path)
	}
}

// maybeSave performs a best-effort snapshot write if a path is configured.
func (r *Registry) maybeSave() {
	if r.SnapshotPath == "" {
		return
	}
	if err := r.saveSnapshot(r.SnapshotPath); err != nil {
		r.log.Warn("registry snapshot failed", zap.Error(err))
	}
}
