//go:build unix

package launch

import (
	"os/exec"
	"syscall"
)

// startDetached spawns bin in its own process group so daemon signals
// never propagate into launched editors. The returned wait func reaps
// the child when it exits.
func startDetached(bin string, args ...string) (int, func(), error) {
	cmd := exec.Command(bin, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	if err := cmd.Start(); err != nil {
		return 0, nil, err
	}
	wait := func() { _ = cmd.Wait() }
	return cmd.Process.Pid, wait, nil
}
