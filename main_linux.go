//go:build linux

package main

import (
	"os"

	"hark/config"
)

func main() {
	a := setup()
	if a.cfg.UI == config.UIDesktop {
		os.Exit(runGUI(a))
	}
	os.Exit(a.serve())
}
