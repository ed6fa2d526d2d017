//go:build unix

package launch

import (
	"strings"

	"github.com/shirou/gopsutil/v4/process"
)

var shellNames = map[string]bool{
	"bash": true,
	"zsh":  true,
	"fish": true,
	"sh":   true,
	"dash": true,
	"tcsh": true,
	"nu":   true,
}

// findTerminalShell locates the youngest shell whose working directory
// is the project path. Right after a terminal opens, that is with high
// probability the shell inside it.
func findTerminalShell(path string) (int, bool) {
	procs, err := process.Processes()
	if err != nil {
		return 0, false
	}
	clean := strings.TrimRight(path, "/")

	var best int
	var bestCreated int64 = -1
	for _, p := range procs {
		name, err := p.Name()
		if err != nil || !shellNames[name] {
			continue
		}
		cwd, err := p.Cwd()
		if err != nil || strings.TrimRight(cwd, "/") != clean {
			continue
		}
		created, err := p.CreateTime()
		if err != nil {
			created = 0
		}
		if created > bestCreated {
			best = int(p.Pid)
			bestCreated = created
		}
	}
	return best, best > 0
}
