package main

import (
	"context"
	"os/signal"
)

// notifyContext derives a context canceled by the first stop signal.
// The live loop only checks it between ticks, so a render already in
// progress finishes before the process exits.
func notifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, stopSignals...)
}
