//go:build gui

package main

import (
	"runtime"

	"hark/gui"
	"hark/log"
)

// runGUI takes the main thread for fyne and returns when the window closes.
func runGUI(a *app) int {
	runtime.LockOSThread()

	ctx, cancel := signalContext()
	defer cancel()
	defer a.close()

	var g *gui.App
	g = gui.NewApp(a.toggle, func() {
		go a.queue.Run(ctx, g)
		a.startHotkey(ctx.Done())
	})

	exited := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			g.Quit()
		case <-exited:
		}
	}()

	err := gui.Run(g)
	close(exited)
	if err != nil {
		log.Errorf("GUI error: %v", err)
		return 1
	}
	return 0
}
