//go:build windows

package launch

import "os/exec"

func startDetached(bin string, args ...string) (int, func(), error) {
	cmd := exec.Command(bin, args...)
	if err := cmd.Start(); err != nil {
		return 0, nil, err
	}
	wait := func() { _ = cmd.Wait() }
	return cmd.Process.Pid, wait, nil
}
