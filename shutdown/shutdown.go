// Package shutdown turns interrupt and termination signals into context
// cancellation.
package shutdown

import (
	"context"
	"os"
	"os/signal"
)

// Context returns a child of parent that is cancelled by the first shutdown
// signal. onSignal, if set, sees the signal before cancellation.
func Context(parent context.Context, onSignal func(os.Signal)) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, signals...)
	go func() {
		defer signal.Stop(ch)
		select {
		case s := <-ch:
			if onSignal != nil {
				onSignal(s)
			}
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
