// Package hotkey delivers presses of the global Ctrl+Shift+Space chord.
package hotkey

const Chord = "Ctrl+Shift+Space"

type Hotkey interface {
	Register() error
	Unregister()
	// Presses receives one value per chord press. Presses that arrive
	// while a previous one is unread are dropped.
	Presses() <-chan struct{}
}

func notify(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
