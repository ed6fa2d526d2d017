package proc

import (
	"context"
	"fmt"

	gopsnet "github.com/shirou/gopsutil/v4/net"
	"github.com/shirou/gopsutil/v4/process"
)

// Snapshot enumerates the OS process list and the TCP listener map into
// a Table. Rows that disappear or deny access mid-walk are skipped. A
// failing listener enumeration yields a table without port information
// rather than an error; ports are optional everywhere downstream.
func Snapshot(ctx context.Context) (*Table, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("enumerate processes: %w", err)
	}

	entries := make([]Entry, 0, len(procs))
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil {
			continue
		}
		cmdline, err := p.CmdlineWithContext(ctx)
		if err != nil {
			cmdline = ""
		}
		ppid, err := p.PpidWithContext(ctx)
		if err != nil {
			ppid = 0
		}
		entries = append(entries, Entry{
			PID:     int(p.Pid),
			PPID:    int(ppid),
			Name:    name,
			Cmdline: cmdline,
		})
	}

	return NewTable(entries, listenerMap(ctx)), nil
}

func listenerMap(ctx context.Context) map[int][]int {
	conns, err := gopsnet.ConnectionsWithContext(ctx, "tcp")
	if err != nil {
		return nil
	}
	listeners := make(map[int][]int)
	for _, c := range conns {
		if c.Status != "LISTEN" || c.Pid <= 0 {
			continue
		}
		listeners[int(c.Pid)] = append(listeners[int(c.Pid)], int(c.Laddr.Port))
	}
	return listeners
}

// Alive reports whether pid currently exists.
func Alive(pid int) bool {
	ok, err := process.PidExists(int32(pid))
	return err == nil && ok
}

// CwdOf returns the working directory of pid, best effort.
func CwdOf(pid int) (string, bool) {
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return "", false
	}
	cwd, err := p.Cwd()
	if err != nil || cwd == "" {
		return "", false
	}
	return cwd, true
}

// CommandLine returns pid's command line, or "" when unreadable.
func CommandLine(pid int) string {
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return ""
	}
	cmdline, err := p.Cmdline()
	if err != nil {
		return ""
	}
	return cmdline
}
