//go:build windows

package kill

import (
	"os"
	"syscall"
)

// Windows has no SIGTERM delivery; both steps collapse into Kill.
func defaultSignal(pid int, _ syscall.Signal) error {
	p, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return p.Kill()
}
