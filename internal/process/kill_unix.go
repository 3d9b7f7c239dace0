//go:build !windows

package process

import "syscall"

// KillTree sends SIGKILL to the process group led by pid.
// Non-positive pids are ignored: -0 would target the caller's own group.
func KillTree(pid int) error {
	if pid <= 0 {
		return nil
	}
	return syscall.Kill(-pid, syscall.SIGKILL)
}
