package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultEditorCommand    = "code"
	defaultGracePeriod      = 3 * time.Second
	defaultDiscoveryDelay   = time.Second
	defaultContainerRuntime = "docker"
	defaultContainerTimeout = 5 * time.Second
	defaultMaxCommandLen    = 120

	envWorkspaceRoot    = "DEVDECK_WORKSPACE_ROOT"
	envEditorCommand    = "DEVDECK_EDITOR"
	envGracePeriod      = "DEVDECK_GRACE_PERIOD"
	envContainerRuntime = "DEVDECK_CONTAINER_RUNTIME"
	envMaxCommandLen    = "DEVDECK_MAX_COMMAND_LEN"
)

// Config aggregates the daemon's tunables: where projects live, how
// launches and kills behave, and where state is persisted.
type Config struct {
	WorkspaceRoot    string
	EditorCommand    string
	GracePeriod      time.Duration
	DiscoveryDelay   time.Duration
	ContainerRuntime string
	ContainerTimeout time.Duration
	ExtraTools       []string
	MaxCommandLen    int
	SnapshotPath     string
	JournalPath      string
}

// Load builds a Config from an optional YAML file path plus environment overrides.
func Load(path string) (Config, error) {
	cfg := Config{
		EditorCommand:    defaultEditorCommand,
		GracePeriod:      defaultGracePeriod,
		DiscoveryDelay:   defaultDiscoveryDelay,
		ContainerRuntime: defaultContainerRuntime,
		ContainerTimeout: defaultContainerTimeout,
		MaxCommandLen:    defaultMaxCommandLen,
		SnapshotPath:     stateFile("processes.json"),
		JournalPath:      stateFile("events.db"),
	}

	if path != "" {
		if err := mergeFile(&cfg, path); err != nil {
			return cfg, fmt.Errorf("load config %s: %w", path, err)
		}
	}

	applyEnvOverrides(&cfg)
	return cfg, nil
}

type fileConfig struct {
	Workspace struct {
		Root string `yaml:"root"`
	} `yaml:"workspace"`
	Launch struct {
		Editor         string `yaml:"editor"`
		DiscoveryDelay string `yaml:"discovery_delay"`
	} `yaml:"launch"`
	Kill struct {
		GracePeriod string `yaml:"grace_period"`
	} `yaml:"kill"`
	Scan struct {
		ExtraTools    []string `yaml:"extra_tools"`
		MaxCommandLen int      `yaml:"max_command_length"`
	} `yaml:"scan"`
	Containers struct {
		Runtime string `yaml:"runtime"`
		Timeout string `yaml:"timeout"`
	} `yaml:"containers"`
	Storage struct {
		SnapshotPath string `yaml:"snapshot_path"`
		JournalPath  string `yaml:"journal_path"`
	} `yaml:"storage"`
}

func mergeFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var raw fileConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return err
	}

	if raw.Workspace.Root != "" {
		cfg.WorkspaceRoot = raw.Workspace.Root
	}
	if raw.Launch.Editor != "" {
		cfg.EditorCommand = raw.Launch.Editor
	}
	if raw.Launch.DiscoveryDelay != "" {
		dur, err := parsePositiveDuration("launch.discovery_delay", raw.Launch.DiscoveryDelay)
		if err != nil {
			return err
		}
		cfg.DiscoveryDelay = dur
	}
	if raw.Kill.GracePeriod != "" {
		dur, err := parsePositiveDuration("kill.grace_period", raw.Kill.GracePeriod)
		if err != nil {
			return err
		}
		cfg.GracePeriod = dur
	}
	if len(raw.Scan.ExtraTools) > 0 {
		cfg.ExtraTools = raw.Scan.ExtraTools
	}
	if raw.Scan.MaxCommandLen > 0 {
		cfg.MaxCommandLen = raw.Scan.MaxCommandLen
	}
	if raw.Containers.Runtime != "" {
		cfg.ContainerRuntime = raw.Containers.Runtime
	}
	if raw.Containers.Timeout != "" {
		dur, err := parsePositiveDuration("containers.timeout", raw.Containers.Timeout)
		if err != nil {
			return err
		}
		cfg.ContainerTimeout = dur
	}
	if raw.Storage.SnapshotPath != "" {
		cfg.SnapshotPath = raw.Storage.SnapshotPath
	}
	if raw.Storage.JournalPath != "" {
		cfg.JournalPath = raw.Storage.JournalPath
	}

	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(envWorkspaceRoot); v != "" {
		cfg.WorkspaceRoot = v
	}
	if v := os.Getenv(envEditorCommand); v != "" {
		cfg.EditorCommand = v
	}
	if v := os.Getenv(envContainerRuntime); v != "" {
		cfg.ContainerRuntime = v
	}

	if v := os.Getenv(envGracePeriod); v != "" {
		if dur, err := time.ParseDuration(v); err == nil && dur > 0 {
			cfg.GracePeriod = dur
		} else if err != nil {
			log.Printf("invalid %s value %q: %v", envGracePeriod, v, err)
		}
	}

	if v := os.Getenv(envMaxCommandLen); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxCommandLen = n
		} else if err != nil {
			log.Printf("invalid %s value %q: %v", envMaxCommandLen, v, err)
		}
	}
}

func parsePositiveDuration(key, value string) (time.Duration, error) {
	dur, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if dur <= 0 {
		return 0, errors.New(key + " must be > 0")
	}
	return dur, nil
}

// stateFile resolves a file name under the per-user devdeck state dir.
func stateFile(name string) string {
	base, err := os.UserConfigDir()
	if err != nil || base == "" {
		base = os.TempDir()
	}
	return filepath.Join(base, "devdeck", name)
}
