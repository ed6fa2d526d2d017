package registry

import "time"

// Type classifies how a tracked process relates to a project.
type Type string

const (
	TypeEditor   Type = "editor"
	TypeTerminal Type = "terminal"
)

// Valid reports whether t is a known process type.
func (t Type) Valid() bool {
	return t == TypeEditor || t == TypeTerminal
}

// Proc is one tracked process. The OS pid is its identity: registering
// the same pid again replaces the previous entry.
type Proc struct {
	PID         int       `json:"pid"`
	ProjectPath string    `json:"project_path"`
	ProjectName string    `json:"project_name"`
	Type        Type      `json:"type"`
	Command     string    `json:"command"`
	LaunchTime  time.Time `json:"launch_time"`
	Port        int       `json:"port,omitempty"`
}
