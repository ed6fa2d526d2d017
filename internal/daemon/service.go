package daemon

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"devdeck/internal/journal"
	"devdeck/internal/kill"
	"devdeck/internal/launch"
	"devdeck/internal/proc"
	"devdeck/internal/project"
	"devdeck/internal/registry"
	"devdeck/internal/scan"
)

// Killer terminates a process or container by pid.
type Killer interface {
	Kill(ctx context.Context, pid int, force bool) kill.Result
}

// Launcher opens editors and terminals on a project.
type Launcher interface {
	OpenEditor(ctx context.Context, path, name string) (registry.Proc, error)
	OpenTerminal(ctx context.Context, path, name string) (registry.Proc, bool, error)
}

// Service implements the socket API. Every handler degrades rather than
// fails: a broken scanner, container runtime, or journal must never take
// the daemon down or turn a process listing into a 500.
type Service struct {
	reg      *registry.Registry
	scanner  *scan.Scanner
	killer   Killer
	launcher Launcher
	projects project.Source
	events   *journal.Store
	log      *zap.Logger
	started  time.Time

	// snapshot is swapped in tests to serve canned process tables.
	snapshot func(ctx context.Context) (*proc.Table, error)
}

// NewService wires the daemon's components behind the HTTP API.
// events may be nil when the journal is disabled.
func NewService(reg *registry.Registry, scanner *scan.Scanner, killer Killer, launcher Launcher, projects project.Source, events *journal.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		reg:      reg,
		scanner:  scanner,
		killer:   killer,
		launcher: launcher,
		projects: projects,
		events:   events,
		log:      logger,
		started:  time.Now().UTC(),
		snapshot: proc.Snapshot,
	}
}

// Router builds the chi router for the socket API.
func (s *Service) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeText(w, http.StatusOK, "ok\n")
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/processes", s.handleAllProcesses)
		r.Get("/processes/project", s.handleProjectProcesses)
		r.Post("/processes/kill", s.handleKill)
		r.Post("/projects/kill", s.handleKillProject)
		r.Get("/ports/{port}", s.handlePortLookup)
		r.Post("/launch", s.handleLaunch)
		r.Get("/events", s.handleEvents)
	})

	return r
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{
		PID:       os.Getpid(),
		Tracked:   s.reg.Len(),
		StartedAt: s.started,
		Socket:    SocketPath(),
	})
}

func (s *Service) handleAllProcesses(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s.sweep(ctx)

	projects, err := s.projects.Projects(ctx)
	if err != nil {
		s.log.Warn("project listing failed", zap.Error(err))
	}
	// Projects with tracked processes count even when the workspace
	// listing does not know them.
	known := make(map[string]struct{}, len(projects))
	for _, p := range projects {
		known[p.Path] = struct{}{}
	}
	for _, path := range s.reg.Projects() {
		if _, ok := known[path]; !ok {
			projects = append(projects, project.Project{Path: path, Name: filepath.Base(path)})
		}
	}
	sort.Slice(projects, func(i, j int) bool { return projects[i].Path < projects[j].Path })

	table := s.table(ctx)
	out := make([]registry.Proc, 0)
	for _, p := range projects {
		out = append(out, s.mergeProject(ctx, table, p.Path, p.Name)...)
	}
	writeJSON(w, http.StatusOK, ProcessListResponse{Processes: out})
}

func (s *Service) handleProjectProcesses(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	path := strings.TrimSpace(r.URL.Query().Get("path"))
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "path query parameter is required"})
		return
	}
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		name = filepath.Base(path)
	}

	s.sweep(ctx)
	procs := s.mergeProject(ctx, s.table(ctx), path, name)
	writeJSON(w, http.StatusOK, ProcessListResponse{Processes: procs})
}

func (s *Service) handleKill(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req KillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid json"})
		return
	}
	if req.PID <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "pid must be > 0"})
		return
	}

	projectPath := ""
	if tracked, ok := s.reg.Get(req.PID); ok {
		projectPath = tracked.ProjectPath
	}
	res := s.killer.Kill(ctx, req.PID, req.Force)
	s.journalKill(ctx, projectPath, res, req.Force)
	writeJSON(w, http.StatusOK, toKillResult(res))
}

func (s *Service) handleKillProject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req ProjectKillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid json"})
		return
	}
	req.Path = strings.TrimSpace(req.Path)
	if req.Path == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "path is required"})
		return
	}

	s.sweep(ctx)
	procs := s.mergeProject(ctx, s.table(ctx), req.Path, filepath.Base(req.Path))

	// Best effort across the board: one stubborn process must not
	// shield the rest of the project.
	results := make([]KillResult, 0, len(procs))
	for _, p := range procs {
		res := s.killer.Kill(ctx, p.PID, req.Force)
		s.journalKill(ctx, p.ProjectPath, res, req.Force)
		results = append(results, toKillResult(res))
	}
	writeJSON(w, http.StatusOK, ProjectKillResponse{Results: results})
}

func (s *Service) handlePortLookup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	port, err := strconv.Atoi(chi.URLParam(r, "port"))
	if err != nil || port <= 0 || port > 65535 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid port"})
		return
	}

	table := s.table(ctx)
	procs := make([]registry.Proc, 0)
	for _, pid := range table.Listeners(port) {
		entry := registry.Proc{
			PID:        pid,
			Type:       registry.TypeTerminal,
			LaunchTime: time.Now().UTC(),
			Port:       port,
		}
		if e, found := table.Lookup(pid); found {
			entry.Command = e.Cmdline
		}
		if tracked, found := s.reg.Get(pid); found {
			entry = tracked
			entry.Port = port
		}
		procs = append(procs, entry)
	}
	writeJSON(w, http.StatusOK, PortLookupResponse{Processes: procs})
}

func (s *Service) handleLaunch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req LaunchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid json"})
		return
	}
	req.Path = strings.TrimSpace(req.Path)
	if req.Path == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "path is required"})
		return
	}
	if req.Name == "" {
		req.Name = filepath.Base(req.Path)
	}

	resp := LaunchResponse{Processes: []registry.Proc{}}

	editor, err := s.launcher.OpenEditor(ctx, req.Path, req.Name)
	if err != nil {
		resp.Errors = append(resp.Errors, err.Error())
	} else {
		resp.Processes = append(resp.Processes, editor)
		s.journal(ctx, journal.Event{
			Kind:        journal.KindLaunched,
			PID:         editor.PID,
			ProjectPath: req.Path,
			Detail:      "editor",
		})
	}

	term, found, err := s.launcher.OpenTerminal(ctx, req.Path, req.Name)
	switch {
	case err != nil:
		resp.Errors = append(resp.Errors, err.Error())
	case found:
		resp.Processes = append(resp.Processes, term)
		s.journal(ctx, journal.Event{
			Kind:        journal.KindLaunched,
			PID:         term.PID,
			ProjectPath: req.Path,
			Detail:      "terminal",
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Service) handleEvents(w http.ResponseWriter, r *http.Request) {
	if s.events == nil {
		writeJSON(w, http.StatusOK, EventsResponse{Events: []journal.Event{}})
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	evs, err := s.events.Events(r.Context(), journal.Query{
		Project: strings.TrimSpace(r.URL.Query().Get("project")),
		Limit:   limit,
	})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	if evs == nil {
		evs = []journal.Event{}
	}
	writeJSON(w, http.StatusOK, EventsResponse{Events: evs})
}

// table snapshots the process list, degrading to an empty table when
// enumeration fails so registry-backed responses still go out.
func (s *Service) table(ctx context.Context) *proc.Table {
	table, err := s.snapshot(ctx)
	if err != nil {
		s.log.Warn("process enumeration failed", zap.Error(err))
		return proc.NewTable(nil, nil)
	}
	return table
}

// mergeProject unions registry entries with scan results for a project,
// de-duplicated by pid. The registry entry wins a collision: its launch
// time and type come from the launch itself, not from a heuristic.
func (s *Service) mergeProject(ctx context.Context, table *proc.Table, path, name string) []registry.Proc {
	tracked := s.reg.ByProject(path)
	out := append([]registry.Proc{}, tracked...)
	seen := make(map[int]struct{}, len(tracked))
	for _, p := range tracked {
		seen[p.PID] = struct{}{}
	}
	for _, p := range s.scanner.Project(ctx, table, path, name) {
		if _, ok := seen[p.PID]; ok {
			continue
		}
		seen[p.PID] = struct{}{}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PID < out[j].PID })
	return out
}

// sweep prunes dead registry entries and journals what fell out.
func (s *Service) sweep(ctx context.Context) {
	for _, pid := range s.reg.Sweep() {
		s.journal(ctx, journal.Event{Kind: journal.KindPruned, PID: pid})
	}
}

func (s *Service) journal(ctx context.Context, ev journal.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Append(ctx, ev); err != nil {
		s.log.Warn("journal append failed", zap.Error(err))
	}
}

func (s *Service) journalKill(ctx context.Context, projectPath string, res kill.Result, force bool) {
	kind := journal.KindKilled
	detail := "graceful"
	if force {
		detail = "forced"
	}
	if !res.Success {
		kind = journal.KindKillFailed
		if res.Err != nil {
			detail = res.Err.Error()
		}
	}
	s.journal(ctx, journal.Event{Kind: kind, PID: res.PID, ProjectPath: projectPath, Detail: detail})
}

func toKillResult(res kill.Result) KillResult {
	kr := KillResult{PID: res.PID, Success: res.Success}
	if res.Err != nil {
		kr.Error = res.Err.Error()
	}
	return kr
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

var (
	_ Killer   = (*kill.Controller)(nil)
	_ Launcher = (*launch.Orchestrator)(nil)
)
