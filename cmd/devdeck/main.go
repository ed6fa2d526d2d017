package main

import (
	"context"
	"log"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"devdeck/internal/app"
	"devdeck/internal/daemon"
	"devdeck/internal/journal"
	"devdeck/internal/registry"
)

var rootCmd = &cobra.Command{
	Use:   "devdeck [command]",
	Short: "devdeck: workspace process dashboard",
	Long:  `devdeck tracks the editors, dev servers and containers working on your projects, launches new ones, and shuts them down cleanly.`,
}

var configPath string

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file")
}

// controllerAPI is the facade surface the commands use; tests swap the
// factory for a stub.
type controllerAPI interface {
	Ping(ctx context.Context, timeout time.Duration) (string, error)
	Processes(ctx context.Context, timeout time.Duration) ([]registry.Proc, error)
	ProjectProcesses(ctx context.Context, timeout time.Duration, path, name string) ([]registry.Proc, error)
	Kill(ctx context.Context, timeout time.Duration, pid int, force bool) (daemon.KillResult, error)
	KillProject(ctx context.Context, timeout time.Duration, path string, force bool) ([]daemon.KillResult, error)
	ByPort(ctx context.Context, timeout time.Duration, port int) ([]registry.Proc, error)
	Launch(ctx context.Context, timeout time.Duration, path, name string) (daemon.LaunchResponse, error)
	Events(ctx context.Context, timeout time.Duration, projectPath string, limit int) ([]journal.Event, error)
	Status() (app.DaemonStatus, error)
	StartDaemon(logger *zap.Logger) (*app.DaemonHandle, error)
	StopDaemon(force bool) error
}

var controllerFactory = func() controllerAPI {
	return app.New(app.Options{ConfigPath: configPath})
}

func controller() controllerAPI {
	return controllerFactory()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
