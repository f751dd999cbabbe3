//go:build !windows

package main

import (
	"os"
	"syscall"
)

// stopSignals end a live session or abort a one-shot conversion.
var stopSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}
