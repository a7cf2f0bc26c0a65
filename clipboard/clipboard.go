// Package clipboard copies final transcripts to the system clipboard.
package clipboard

import (
	"errors"
	"fmt"
	"time"

	cb "github.com/atotto/clipboard"
)

var ErrUnsupported = errors.New("no clipboard utility available")

func Read() (string, error) {
	if cb.Unsupported {
		return "", ErrUnsupported
	}
	return cb.ReadAll()
}

func Copy(text string) error {
	if cb.Unsupported {
		return ErrUnsupported
	}
	return cb.WriteAll(text)
}

// Verify writes probe, reads it back and restores the previous contents.
// Clipboard helpers can hang without a display, so it gives up after timeout.
func Verify(probe string, timeout time.Duration) error {
	res := make(chan error, 1)
	go func() {
		prev, _ := Read()
		if err := Copy(probe); err != nil {
			res <- fmt.Errorf("write: %w", err)
			return
		}
		got, err := Read()
		if prev != "" {
			Copy(prev)
		}
		switch {
		case err != nil:
			res <- fmt.Errorf("read back: %w", err)
		case got != probe:
			res <- fmt.Errorf("read back %q, want %q", got, probe)
		default:
			res <- nil
		}
	}()
	select {
	case err := <-res:
		return err
	case <-time.After(timeout):
		return fmt.Errorf("clipboard timed out after %v", timeout)
	}
}
