//go:build !vosk

package engine

// VoskAvailable reports whether the vosk backend is compiled in.
func VoskAvailable() bool { return false }

// NewVosk returns nil when built without the vosk tag; New never calls it then.
func NewVosk() Engine { return nil }
