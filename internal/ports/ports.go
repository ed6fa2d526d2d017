// Package ports resolves the port a development process serves on.
//
// Resolution is heuristic and layered: an explicit ":NNNN" in the command
// line wins, then the process's own TCP listeners, then listeners of its
// descendants (package-manager wrappers rarely hold the socket themselves;
// the spawned server does). Zero means no port, which is a normal outcome.
package ports

import (
	"regexp"
	"strconv"

	"devdeck/internal/proc"
)

var portPattern = regexp.MustCompile(`:(\d{4,5})\b`)

// FromCommand extracts a port from a command line: the first ":" followed
// by exactly 4 or 5 digits that parses into the valid port range.
func FromCommand(cmdline string) int {
	for _, m := range portPattern.FindAllStringSubmatch(cmdline, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if n > 0 && n <= 65535 {
			return n
		}
	}
	return 0
}

// Resolve returns the port pid serves on, or 0.
func Resolve(t *proc.Table, pid int) int {
	if e, ok := t.Lookup(pid); ok {
		if port := FromCommand(e.Cmdline); port != 0 {
			return port
		}
	}
	if own := t.ListenPorts(pid); len(own) > 0 {
		return own[0]
	}
	return descend(t, pid, map[int]bool{pid: true})
}

// descend walks the child tree depth-first for the first listener. The
// visited set breaks cycles a stale or recycled-pid table could contain.
func descend(t *proc.Table, pid int, visited map[int]bool) int {
	for _, child := range t.Children(pid) {
		if visited[child] {
			continue
		}
		visited[child] = true
		if ports := t.ListenPorts(child); len(ports) > 0 {
			return ports[0]
		}
		if port := descend(t, child, visited); port != 0 {
			return port
		}
	}
	return 0
}
