package registry

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// Snapshot schema versioning for forward-compatibility.
const snapshotVersion = 1

type snapshot struct {
	Version int    `json:"version"`
	Procs   []Proc `json:"procs"`
	Saved   int64  `json:"saved_unix"`
}

func (r *Registry) loadSnapshot(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	var s snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s.Version != snapshotVersion {
		// Future migrations can be implemented here; for now we accept the data.
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.byPID = make(map[int]*Proc)
	r.byProject = make(map[string]map[int]struct{})
	for i := range s.Procs {
		p := s.Procs[i]
		if p.PID <= 0 || !p.Type.Valid() {
			continue
		}
		cp := p
		r.byPID[cp.PID] = &cp
		r.addProjectRefLocked(cp.ProjectPath, cp.PID)
	}
	return nil
}

func (r *Registry) saveSnapshot(path string) error {
	tmp := path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}

	r.mu.RLock()
	s := snapshot{
		Version: snapshotVersion,
		Saved:   now().Unix(),
	}
	s.Procs = make([]Proc, 0, len(r.byPID))
	for _, p := range r.byPID {
		s.Procs = append(s.Procs, *p)
	}
	r.mu.RUnlock()

	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
