package daemon

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"devdeck/internal/journal"
	"devdeck/internal/registry"
)

// Client calls the daemon's socket API. The request URLs carry a dummy
// host; the transport always dials the UNIX socket.
type Client struct {
	http *http.Client
	base string
}

// NewClient returns a client bound to the current user's daemon socket.
func NewClient() *Client {
	return &Client{
		http: socketHTTPClient(),
		base: "http://devdeck",
	}
}

// Ping performs a health check and returns the daemon's reply.
func (c *Client) Ping(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/healthz", nil)
	if err != nil {
		return "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 256))
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("daemon health check returned %s", resp.Status)
	}
	return strings.TrimSpace(string(body)), nil
}

// Status returns the daemon's status report.
func (c *Client) Status(ctx context.Context) (StatusResponse, error) {
	var out StatusResponse
	err := c.getJSON(ctx, "/api/v1/status", &out)
	return out, err
}

// Processes returns the merged process list across all known projects.
func (c *Client) Processes(ctx context.Context) ([]registry.Proc, error) {
	var out ProcessListResponse
	if err := c.getJSON(ctx, "/api/v1/processes", &out); err != nil {
		return nil, err
	}
	return out.Processes, nil
}

// ProjectProcesses returns the merged process list for one project.
func (c *Client) ProjectProcesses(ctx context.Context, path, name string) ([]registry.Proc, error) {
	q := url.Values{}
	q.Set("path", path)
	if name != "" {
		q.Set("name", name)
	}
	var out ProcessListResponse
	if err := c.getJSON(ctx, "/api/v1/processes/project?"+q.Encode(), &out); err != nil {
		return nil, err
	}
	return out.Processes, nil
}

// Kill asks the daemon to terminate pid.
func (c *Client) Kill(ctx context.Context, pid int, force bool) (KillResult, error) {
	var out KillResult
	err := c.postJSON(ctx, "/api/v1/processes/kill", KillRequest{PID: pid, Force: force}, &out)
	return out, err
}

// KillProject asks the daemon to terminate every process of a project.
func (c *Client) KillProject(ctx context.Context, path string, force bool) ([]KillResult, error) {
	var out ProjectKillResponse
	if err := c.postJSON(ctx, "/api/v1/projects/kill", ProjectKillRequest{Path: path, Force: force}, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

// FindByPort looks up the processes listening on port, pid ascending.
// An empty result with a nil error means nothing is listening there.
func (c *Client) FindByPort(ctx context.Context, port int) ([]registry.Proc, error) {
	var out PortLookupResponse
	if err := c.getJSON(ctx, "/api/v1/ports/"+strconv.Itoa(port), &out); err != nil {
		return nil, err
	}
	return out.Processes, nil
}

// Launch opens the editor and a terminal on a project directory.
func (c *Client) Launch(ctx context.Context, path, name string) (LaunchResponse, error) {
	var out LaunchResponse
	err := c.postJSON(ctx, "/api/v1/launch", LaunchRequest{Path: path, Name: name}, &out)
	return out, err
}

// Events returns recent journal events, newest first.
func (c *Client) Events(ctx context.Context, projectPath string, limit int) ([]journal.Event, error) {
	q := url.Values{}
	if projectPath != "" {
		q.Set("project", projectPath)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	path := "/api/v1/events"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var out EventsResponse
	if err := c.getJSON(ctx, path, &out); err != nil {
		return nil, err
	}
	return out.Events, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var e errorResponse
		if json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&e) == nil && e.Error != "" {
			return fmt.Errorf("daemon: %s", e.Error)
		}
		return fmt.Errorf("daemon returned %s for %s", resp.Status, req.URL.Path)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
