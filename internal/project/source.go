// Package project supplies the project list the daemon works across.
// Project discovery proper (manifests, git state, language detection)
// is someone else's job; here a project is simply a directory.
package project

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// Project is a named project directory.
type Project struct {
	Path string `json:"path"`
	Name string `json:"name"`
}

// Source lists known projects.
type Source interface {
	Projects(ctx context.Context) ([]Project, error)
}

// DirSource treats every visible immediate subdirectory of Root as a
// project. An empty or missing root yields no projects, not an error.
type DirSource struct {
	Root string
}

func (s DirSource) Projects(_ context.Context) ([]Project, error) {
	if s.Root == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(s.Root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var out []Project
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		out = append(out, Project{
			Path: filepath.Join(s.Root, e.Name()),
			Name: e.Name(),
		})
	}
	return out, nil
}
