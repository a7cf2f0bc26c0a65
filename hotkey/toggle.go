package hotkey

// Bind calls toggle once per press of hk until stop is closed.
func Bind(hk Hotkey, stop <-chan struct{}, toggle func()) {
	for {
		select {
		case <-stop:
			return
		case <-hk.Presses():
			toggle()
		}
	}
}
