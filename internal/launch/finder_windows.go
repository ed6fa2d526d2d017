//go:build windows

package launch

// Shell discovery needs per-process working directories, which Windows
// does not expose cheaply; the scanner picks the terminal up instead.
func findTerminalShell(string) (int, bool) {
	return 0, false
}
