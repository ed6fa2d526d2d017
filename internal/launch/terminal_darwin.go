//go:build darwin

package launch

import "os/exec"

func spawnTerminal(path string) error {
	cmd := exec.Command("open", "-a", "Terminal", path)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
