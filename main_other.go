//go:build !linux

package main

import (
	"os"
	"runtime"

	"golang.design/x/hotkey/mainthread"

	"hark/config"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	a := setup()
	if a.cfg.UI == config.UIDesktop {
		os.Exit(runGUI(a)) // takes the main thread
	}
	code := 0
	mainthread.Init(func() { code = a.serve() })
	os.Exit(code)
}
