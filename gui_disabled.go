//go:build !gui

package main

import (
	"fmt"
	"os"
)

func runGUI(a *app) int {
	a.close()
	fmt.Fprintln(os.Stderr, "hark: built without GUI support (rebuild with -tags gui)")
	return 1
}
