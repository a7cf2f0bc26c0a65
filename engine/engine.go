// Package engine is the boundary to the offline speech-to-text library.
// Backends load a model from disk, optionally attach a scorer, and hand out
// incremental decoding streams.
package engine

import "errors"

// ErrUnavailable is returned when a backend is not compiled into this build.
var ErrUnavailable = errors.New("engine: backend unavailable in this build")

// Engine loads models for one backend.
type Engine interface {
	Name() string
	LoadModel(path string) (Model, error)
}

// Model is a loaded model. It is safe to share between goroutines once
// loaded; each recording gets its own Stream.
type Model interface {
	// EnableScorer attaches an external scorer. Fails if the scorer is
	// incompatible with the model.
	EnableScorer(path string) error
	// SampleRate is the rate the model expects its input at.
	SampleRate() int
	CreateStream() (Stream, error)
	Release()
}

// Stream is one in-progress transcription. A Stream must not be used after
// FinishStream returns.
type Stream interface {
	FeedAudio(samples []int16) error
	IntermediateDecode() (string, error)
	FinishStream() (string, error)
}
