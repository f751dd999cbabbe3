//go:build !windows

// Package process terminates the headless browser together with the
// helper processes it spawns.
package process

import (
	"errors"
	"syscall"
)

// KillTree sends SIGKILL to the process group led by pid. A group that
// has already exited is not an error.
func KillTree(pid int) error {
	if pid <= 0 {
		return ErrInvalidPID
	}
	if err := syscall.Kill(-pid, syscall.SIGKILL); err != nil && !errors.Is(err, syscall.ESRCH) {
		return err
	}
	return nil
}
