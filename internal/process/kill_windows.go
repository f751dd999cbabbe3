//go:build windows

// Package process terminates the headless browser together with the
// helper processes it spawns.
package process

import (
	"os/exec"
	"strconv"
)

// KillTree force-terminates pid and its children with taskkill.
func KillTree(pid int) error {
	if pid <= 0 {
		return ErrInvalidPID
	}
	return exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(pid)).Run() // #nosec G204 -- pid is numeric
}
