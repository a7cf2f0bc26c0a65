package engine

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrFakeFeed is the error the fake stream returns from FeedAudio when
// FailFeedAt is reached.
var ErrFakeFeed = errors.New("fake engine: feed failed")

type FakeConfig struct {
	SampleRate int
	Words      []string
	WordEvery  int // frames per revealed word; defaults to 1

	LoadErr    error
	ScorerErr  error
	CreateErr  error
	FinishErr  error
	FailFeedAt int // 1-based frame index; 0 never fails
	PanicAt    int // 1-based frame index at which FeedAudio panics; 0 never
}

// Fake is a scriptable Engine. It reveals one word of Words every WordEvery
// fed frames and records how it was driven.
type Fake struct {
	cfg FakeConfig

	mu       sync.Mutex
	loads    int
	streams  int
	finished int
	released int
	samples  int
}

func NewFake(cfg FakeConfig) *Fake {
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 16000
	}
	if cfg.WordEvery <= 0 {
		cfg.WordEvery = 1
	}
	return &Fake{cfg: cfg}
}

func (f *Fake) Name() string { return NameFake }

func (f *Fake) LoadModel(path string) (Model, error) {
	if f.cfg.LoadErr != nil {
		return nil, fmt.Errorf("load %s: %w", path, f.cfg.LoadErr)
	}
	f.mu.Lock()
	f.loads++
	f.mu.Unlock()
	return &fakeModel{eng: f}, nil
}

// Loads reports how many models were loaded.
func (f *Fake) Loads() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loads
}

// Streams reports how many streams were created.
func (f *Fake) Streams() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.streams
}

// Finished reports how many streams were finished.
func (f *Fake) Finished() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.finished
}

// Released reports how many models were released.
func (f *Fake) Released() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.released
}

// Samples reports the total number of samples fed across all streams.
func (f *Fake) Samples() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.samples
}

type fakeModel struct {
	eng    *Fake
	scorer string
}

func (m *fakeModel) EnableScorer(path string) error {
	if m.eng.cfg.ScorerErr != nil {
		return fmt.Errorf("scorer %s: %w", path, m.eng.cfg.ScorerErr)
	}
	m.scorer = path
	return nil
}

func (m *fakeModel) SampleRate() int { return m.eng.cfg.SampleRate }

func (m *fakeModel) CreateStream() (Stream, error) {
	if m.eng.cfg.CreateErr != nil {
		return nil, m.eng.cfg.CreateErr
	}
	m.eng.mu.Lock()
	m.eng.streams++
	m.eng.mu.Unlock()
	return &fakeStream{eng: m.eng}, nil
}

func (m *fakeModel) Release() {
	m.eng.mu.Lock()
	m.eng.released++
	m.eng.mu.Unlock()
}

type fakeStream struct {
	eng      *Fake
	frames   int
	finished bool
}

func (s *fakeStream) FeedAudio(samples []int16) error {
	if s.finished {
		return errors.New("fake engine: feed after finish")
	}
	s.frames++
	cfg := s.eng.cfg
	if cfg.PanicAt > 0 && s.frames == cfg.PanicAt {
		panic("fake engine: feed panic")
	}
	if cfg.FailFeedAt > 0 && s.frames == cfg.FailFeedAt {
		return fmt.Errorf("frame %d: %w", s.frames, ErrFakeFeed)
	}
	s.eng.mu.Lock()
	s.eng.samples += len(samples)
	s.eng.mu.Unlock()
	return nil
}

func (s *fakeStream) text() string {
	words := s.eng.cfg.Words
	n := min(s.frames/s.eng.cfg.WordEvery, len(words))
	return strings.Join(words[:n], " ")
}

func (s *fakeStream) IntermediateDecode() (string, error) {
	if s.finished {
		return "", errors.New("fake engine: decode after finish")
	}
	return s.text(), nil
}

func (s *fakeStream) FinishStream() (string, error) {
	if s.finished {
		return "", errors.New("fake engine: stream already finished")
	}
	s.finished = true
	s.eng.mu.Lock()
	s.eng.finished++
	s.eng.mu.Unlock()
	if s.eng.cfg.FinishErr != nil {
		return "", s.eng.cfg.FinishErr
	}
	return s.text(), nil
}
