package recorder

import (
	"errors"
	"fmt"

	"hark/audio"
	"hark/transcriber"
)

var (
	// ErrArtifactMissing is matched by every *ArtifactMissingError.
	ErrArtifactMissing = errors.New("model artifact missing")
	ErrClosed          = errors.New("recorder closed")
)

// ArtifactMissingError names the model or scorer path that could not be
// found.
type ArtifactMissingError struct {
	Path string
	Err  error
}

func (e *ArtifactMissingError) Error() string {
	return fmt.Sprintf("%v: %s", ErrArtifactMissing, e.Path)
}

func (e *ArtifactMissingError) Is(target error) bool { return target == ErrArtifactMissing }

func (e *ArtifactMissingError) Unwrap() error { return e.Err }

// StatusText renders err as a line for the status log.
func StatusText(err error) string {
	var missing *ArtifactMissingError
	switch {
	case errors.As(err, &missing):
		return "Model file not found: " + missing.Path
	case errors.Is(err, audio.ErrDeviceUnavailable):
		return "Microphone unavailable: " + err.Error()
	case errors.Is(err, audio.ErrOverrun):
		return "Audio capture fell behind, recording stopped: " + err.Error()
	case errors.Is(err, audio.ErrShortRead):
		return "Microphone stopped delivering audio: " + err.Error()
	case errors.Is(err, transcriber.ErrEngine):
		return "Transcription failed: " + err.Error()
	}
	return "Error: " + err.Error()
}
