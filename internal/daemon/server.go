package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"syscall"
	"time"

	"go.uber.org/zap"

	"devdeck/internal/config"
	"devdeck/internal/container"
	"devdeck/internal/journal"
	"devdeck/internal/kill"
	"devdeck/internal/launch"
	"devdeck/internal/project"
	"devdeck/internal/registry"
	"devdeck/internal/scan"
)

// Server wraps the UNIX listener, the HTTP server on top of it, and the
// components serving behind it.
type Server struct {
	ln   net.Listener
	path string
	http *http.Server
	log  *zap.Logger

	events   *journal.Store
	killer   *kill.Controller
	launcher *launch.Orchestrator
}

// StartDaemon loads the config, wires the registry, scanner, kill
// controller, launcher and journal together, binds the UNIX socket and
// serves the API. Exactly one Registry is constructed here and handed
// to every component that needs it.
func StartDaemon(configPath string, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	if err := EnsureRuntimeDir(); err != nil {
		return nil, err
	}
	path := SocketPath()

	// If a stale socket file exists but no daemon answers, remove it.
	if _, err := os.Stat(path); err == nil && !IsRunning() {
		if err := os.Remove(path); err != nil {
			return nil, err
		}
	}

	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, err
	}
	if err := os.Chmod(path, 0o600); err != nil {
		ln.Close()
		return nil, err
	}

	reg := registry.New(cfg.SnapshotPath, nil, logger)

	var events *journal.Store
	if cfg.JournalPath != "" {
		events, err = journal.Open(cfg.JournalPath)
		if err != nil {
			logger.Warn("journal unavailable, events will not be recorded", zap.Error(err))
			events = nil
		}
	}

	containers := container.NewClient(cfg.ContainerRuntime, cfg.ContainerTimeout, logger)
	scanner := scan.New(containers, cfg.ExtraTools, cfg.MaxCommandLen, logger)
	killer := kill.NewController(reg, containers, cfg.GracePeriod, logger)
	launcher := launch.NewOrchestrator(reg, cfg.EditorCommand, cfg.DiscoveryDelay, logger)
	svc := NewService(reg, scanner, killer, launcher, project.DirSource{Root: cfg.WorkspaceRoot}, events, logger)

	s := &Server{
		ln:   ln,
		path: path,
		http: &http.Server{
			Handler:           svc.Router(),
			ReadHeaderTimeout: 5 * time.Second,
		},
		log:      logger,
		events:   events,
		killer:   killer,
		launcher: launcher,
	}
	if err := WritePID(os.Getpid()); err != nil {
		_ = s.Close()
		return nil, err
	}

	go func() {
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("daemon serve failed", zap.Error(err))
		}
	}()
	logger.Info("daemon listening", zap.String("socket", path), zap.Int("tracked", reg.Len()))
	return s, nil
}

// Close stops serving, waits for pending kill escalations and launch
// reapers, and unlinks the socket and pid file.
func (s *Server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.http.Shutdown(ctx); err != nil {
		_ = s.http.Close()
	}

	if s.killer != nil {
		s.killer.Drain()
	}
	if s.launcher != nil {
		s.launcher.Drain()
	}
	if s.events != nil {
		if err := s.events.Close(); err != nil {
			s.log.Warn("journal close failed", zap.Error(err))
		}
	}

	if s.path != "" {
		if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return RemovePID()
}

// StopRunningDaemon sends a termination signal to the currently running daemon if any.
func StopRunningDaemon(force bool) error {
	pid, err := RunningPID()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if IsRunning() {
				return fmt.Errorf("daemon is running but PID file %q is missing; stop it manually", PIDPath())
			}
			return nil
		}
		return fmt.Errorf("unable to read daemon PID: %w", err)
	}
	if pid == os.Getpid() {
		return errors.New("refusing to stop current process")
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	if err := sendSignal(proc, syscall.SIGTERM); err != nil {
		return err
	}
	if waitForShutdown(3 * time.Second) {
		return nil
	}
	if !force {
		return fmt.Errorf("daemon process %d did not exit after SIGTERM", pid)
	}
	if err := sendSignal(proc, syscall.SIGKILL); err != nil {
		return err
	}
	if waitForShutdown(2 * time.Second) {
		return nil
	}
	return fmt.Errorf("daemon process %d did not exit after SIGKILL", pid)
}

func sendSignal(proc *os.Process, sig syscall.Signal) error {
	if err := proc.Signal(sig); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			_ = RemovePID()
			return nil
		}
		return err
	}
	return nil
}

func waitForShutdown(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		if !IsRunning() {
			_ = RemovePID()
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(100 * time.Millisecond)
	}
}
