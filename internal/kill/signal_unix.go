//go:build unix

package kill

import "syscall"

func defaultSignal(pid int, sig syscall.Signal) error {
	return syscall.Kill(pid, sig)
}
