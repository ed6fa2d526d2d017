// Package container correlates running containers with project
// directories by their bind-mount sources. It talks to the container
// runtime CLI (docker, podman) instead of a daemon API so that an
// absent runtime degrades to "no containers" rather than an error.
package container

import (
	"context"
	"encoding/json"
	"os/exec"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Container is one running container with the fields correlation needs.
type Container struct {
	ID           string
	Name         string
	Image        string
	MountSources []string
	HostPort     int
}

type runFunc func(ctx context.Context, bin string, args ...string) ([]byte, error)

type lookPathFunc func(file string) (string, error)

// Client shells out to the configured container runtime.
type Client struct {
	bin     string
	timeout time.Duration
	log     *zap.Logger
	run     runFunc
	look    lookPathFunc
}

// NewClient returns a client for the given runtime binary ("docker" by
// convention; any CLI with compatible ps/inspect/stop verbs works).
func NewClient(bin string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		bin:     bin,
		timeout: timeout,
		log:     logger,
		run:     runCommand,
		look:    exec.LookPath,
	}
}

func runCommand(ctx context.Context, bin string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, bin, args...).Output()
}

// Runtime returns the configured runtime binary name.
func (c *Client) Runtime() string {
	return c.bin
}

// Available reports whether the runtime binary is on PATH.
func (c *Client) Available() bool {
	if c.bin == "" {
		return false
	}
	_, err := c.look(c.bin)
	return err == nil
}

// Running lists the running containers. An unavailable runtime yields
// an empty list and no error; a present-but-failing runtime yields an
// error the caller downgrades to empty results.
func (c *Client) Running(ctx context.Context) ([]Container, error) {
	if !c.Available() {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	out, err := c.run(ctx, c.bin, "ps", "-q", "--no-trunc")
	if err != nil {
		return nil, err
	}
	ids := splitLines(string(out))
	if len(ids) == 0 {
		return nil, nil
	}

	args := append([]string{"inspect"}, ids...)
	out, err = c.run(ctx, c.bin, args...)
	containers := parseInspect(out, c.log)
	// inspect exits non-zero when any id vanished between the two
	// calls; whatever it did print is still good.
	if err != nil && len(containers) == 0 {
		return nil, err
	}
	return containers, nil
}

// ForProject returns the running containers whose bind mounts come from
// projectPath or a directory beneath it.
func (c *Client) ForProject(ctx context.Context, projectPath string) ([]Container, error) {
	all, err := c.Running(ctx)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	var out []Container
	for _, cont := range all {
		if MountedUnder(cont, projectPath) {
			out = append(out, cont)
		}
	}
	return out, nil
}

// Stop stops a container by id.
func (c *Client) Stop(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	_, err := c.run(ctx, c.bin, "stop", id)
	return err
}

// MountedUnder reports whether any of the container's mount sources is
// projectPath itself or lives beneath it. Plain prefix matching is not
// enough: /home/me/web must not claim /home/me/webapp.
func MountedUnder(c Container, projectPath string) bool {
	if projectPath == "" {
		return false
	}
	clean := strings.TrimRight(projectPath, "/")
	for _, src := range c.MountSources {
		if src == clean || strings.HasPrefix(src, clean+"/") {
			return true
		}
	}
	return false
}

type inspectRecord struct {
	ID    string `json:"Id"`
	Name  string `json:"Name"`
	State struct {
		Running bool `json:"Running"`
	} `json:"State"`
	Config struct {
		Image string `json:"Image"`
	} `json:"Config"`
	Mounts []struct {
		Source string `json:"Source"`
	} `json:"Mounts"`
	NetworkSettings struct {
		Ports map[string][]struct {
			HostIP   string `json:"HostIp"`
			HostPort string `json:"HostPort"`
		} `json:"Ports"`
	} `json:"NetworkSettings"`
}

// parseInspect decodes `inspect` output element by element so one
// malformed record cannot poison the rest.
func parseInspect(out []byte, log *zap.Logger) []Container {
	var raw []json.RawMessage
	if err := json.Unmarshal(out, &raw); err != nil {
		return nil
	}

	containers := make([]Container, 0, len(raw))
	for _, msg := range raw {
		var rec inspectRecord
		if err := json.Unmarshal(msg, &rec); err != nil {
			log.Debug("skipping malformed inspect record", zap.Error(err))
			continue
		}
		if rec.ID == "" {
			continue
		}
		cont := Container{
			ID:       rec.ID,
			Name:     strings.TrimPrefix(rec.Name, "/"),
			Image:    rec.Config.Image,
			HostPort: firstHostPort(rec),
		}
		for _, m := range rec.Mounts {
			if m.Source != "" {
				cont.MountSources = append(cont.MountSources, m.Source)
			}
		}
		containers = append(containers, cont)
	}
	return containers
}

func firstHostPort(rec inspectRecord) int {
	keys := make([]string, 0, len(rec.NetworkSettings.Ports))
	for k := range rec.NetworkSettings.Ports {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, binding := range rec.NetworkSettings.Ports[k] {
			if binding.HostPort == "" {
				continue
			}
			if n, err := strconv.Atoi(binding.HostPort); err == nil && n > 0 {
				return n
			}
		}
	}
	return 0
}

func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
