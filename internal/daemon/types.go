package daemon

import (
	"time"

	"devdeck/internal/journal"
	"devdeck/internal/registry"
)

// Wire types for the socket API. Process entries and journal events
// cross the boundary in their storage shapes; only request/response
// envelopes live here.

type ProcessListResponse struct {
	Processes []registry.Proc `json:"processes"`
}

type KillRequest struct {
	PID   int  `json:"pid"`
	Force bool `json:"force"`
}

type KillResult struct {
	PID     int    `json:"pid"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type ProjectKillRequest struct {
	Path  string `json:"path"`
	Force bool   `json:"force"`
}

type ProjectKillResponse struct {
	Results []KillResult `json:"results"`
}

type LaunchRequest struct {
	Path string `json:"path"`
	Name string `json:"name,omitempty"`
}

type LaunchResponse struct {
	Processes []registry.Proc `json:"processes"`
	Errors    []string        `json:"errors,omitempty"`
}

type PortLookupResponse struct {
	Processes []registry.Proc `json:"processes"`
}

type EventsResponse struct {
	Events []journal.Event `json:"events"`
}

type StatusResponse struct {
	PID       int       `json:"pid"`
	Tracked   int       `json:"tracked"`
	StartedAt time.Time `json:"started_at"`
	Socket    string    `json:"socket"`
}

type errorResponse struct {
	Error string `json:"error"`
}
