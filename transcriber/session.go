// Package transcriber drives one engine stream for the lifetime of a
// recording.
package transcriber

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"hark/engine"
)

var (
	// ErrEngine wraps every failure reported by the engine, panics included.
	ErrEngine = errors.New("transcription engine error")
	// ErrSessionEnded is returned by calls made after End.
	ErrSessionEnded = errors.New("transcription session ended")
)

type Stats struct {
	Frames     int
	Samples    int
	Partials   int // distinct partial hypotheses observed
	FeedTime   time.Duration
	DecodeTime time.Duration
	FinishTime time.Duration
	SessionDur time.Duration
}

// AudioSeconds is the amount of audio fed at the given sample rate.
func (s Stats) AudioSeconds(sampleRate int) float64 {
	if sampleRate <= 0 {
		return 0
	}
	return float64(s.Samples) / float64(sampleRate)
}

// Session owns one engine stream. It is not safe for concurrent use; the
// recording worker is its only caller.
type Session struct {
	stream     engine.Stream
	sampleRate int
	startedAt  time.Time
	ended      bool
	partial    string
	stats      Stats
}

// guard runs an engine call, converting errors and panics into ErrEngine.
func guard(op string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s: panic: %v", ErrEngine, op, r)
		}
	}()
	if err := fn(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrEngine, op, err)
	}
	return nil
}

// Begin creates a stream on model.
func Begin(model engine.Model) (*Session, error) {
	var stream engine.Stream
	err := guard("create stream", func() error {
		var err error
		stream, err = model.CreateStream()
		return err
	})
	if err != nil {
		return nil, err
	}
	return &Session{
		stream:     stream,
		sampleRate: model.SampleRate(),
		startedAt:  time.Now(),
	}, nil
}

// Feed pushes one frame into the stream.
func (s *Session) Feed(frame []int16) error {
	if s.ended {
		return ErrSessionEnded
	}
	start := time.Now()
	err := guard("feed audio", func() error { return s.stream.FeedAudio(frame) })
	s.stats.FeedTime += time.Since(start)
	if err != nil {
		return err
	}
	s.stats.Frames++
	s.stats.Samples += len(frame)
	return nil
}

// Peek returns the engine's current best hypothesis.
func (s *Session) Peek() (string, error) {
	if s.ended {
		return "", ErrSessionEnded
	}
	var text string
	start := time.Now()
	err := guard("intermediate decode", func() error {
		var err error
		text, err = s.stream.IntermediateDecode()
		return err
	})
	s.stats.DecodeTime += time.Since(start)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text != s.partial {
		s.partial = text
		s.stats.Partials++
	}
	return text, nil
}

// End finishes the stream and returns the final transcript. The session
// cannot be used afterwards, even when End fails.
func (s *Session) End() (string, error) {
	if s.ended {
		return "", ErrSessionEnded
	}
	s.ended = true
	var text string
	start := time.Now()
	err := guard("finish stream", func() error {
		var err error
		text, err = s.stream.FinishStream()
		return err
	})
	s.stats.FinishTime = time.Since(start)
	s.stats.SessionDur = time.Since(s.startedAt)
	s.stream = nil
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (s *Session) Stats() Stats { return s.stats }

func (s *Session) SampleRate() int { return s.sampleRate }

// Metrics formats the session stats for display.
func (s *Session) Metrics() []string {
	st := s.stats
	return []string{
		fmt.Sprintf("audio:      %.1fs | %d frames | PCM16 %dHz mono", st.AudioSeconds(s.sampleRate), st.Frames, s.sampleRate),
		fmt.Sprintf("partials:   %d", st.Partials),
		fmt.Sprintf("feed:       %dms", st.FeedTime.Milliseconds()),
		fmt.Sprintf("decode:     %dms", st.DecodeTime.Milliseconds()),
		fmt.Sprintf("finish:     %dms", st.FinishTime.Milliseconds()),
		fmt.Sprintf("total:      %dms", st.SessionDur.Milliseconds()),
	}
}
