//go:build windows

package launch

import "os/exec"

func spawnTerminal(path string) error {
	cmd := exec.Command("cmd", "/c", "start", "cmd")
	cmd.Dir = path
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
