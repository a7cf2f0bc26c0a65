package engine

import (
	"fmt"
	"strings"
)

const (
	NameVosk = "vosk"
	NameFake = "fake"
)

// New returns the backend registered under name. The fake backend echoes a
// fixed phrase and exists for headless runs and tests.
func New(name string) (Engine, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case NameVosk, "":
		if !VoskAvailable() {
			return nil, fmt.Errorf("%s: %w (rebuild with -tags vosk)", NameVosk, ErrUnavailable)
		}
		return NewVosk(), nil
	case NameFake:
		return NewFake(FakeConfig{Words: []string{"hello", "world"}}), nil
	default:
		return nil, fmt.Errorf("engine: unknown backend %q", name)
	}
}

// Names lists the backends New understands.
func Names() []string {
	return []string{NameVosk, NameFake}
}
