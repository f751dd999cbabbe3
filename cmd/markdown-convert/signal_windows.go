//go:build windows

package main

import "os"

// stopSignals end a live session or abort a one-shot conversion.
// SIGTERM is never delivered on Windows.
var stopSignals = []os.Signal{os.Interrupt}
