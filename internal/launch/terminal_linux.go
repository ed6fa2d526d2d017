//go:build linux

package launch

import (
	"errors"
	"os/exec"
)

// spawnTerminal opens the first available terminal emulator in the
// project directory. Emulators that ignore the inherited working
// directory get it passed explicitly.
func spawnTerminal(path string) error {
	candidates := []struct {
		bin  string
		args []string
	}{
		{"x-terminal-emulator", nil},
		{"gnome-terminal", []string{"--working-directory=" + path}},
		{"konsole", []string{"--workdir", path}},
		{"xfce4-terminal", []string{"--working-directory=" + path}},
		{"alacritty", []string{"--working-directory", path}},
		{"kitty", []string{"--directory", path}},
		{"xterm", nil},
	}

	for _, c := range candidates {
		if _, err := exec.LookPath(c.bin); err != nil {
			continue
		}
		cmd := exec.Command(c.bin, c.args...)
		cmd.Dir = path
		if err := cmd.Start(); err != nil {
			continue
		}
		go func() { _ = cmd.Wait() }()
		return nil
	}
	return errors.New("no terminal emulator found")
}
