// Package recorder owns the Idle/Recording state machine and the single
// worker goroutine that streams microphone frames into a transcription
// session.
package recorder

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"hark/audio"
	"hark/engine"
	"hark/log"
	"hark/transcriber"
	"hark/ui"
)

type State int32

const (
	Idle State = iota
	Recording
)

func (s State) String() string {
	if s == Recording {
		return "recording"
	}
	return "idle"
}

type Config struct {
	Engine     engine.Engine
	Audio      audio.Context
	Device     *audio.DeviceInfo // nil selects the system default
	Presenter  ui.Presenter
	ModelPath  string
	ScorerPath string

	FrameLength int           // samples per frame; DefaultFrameLength when zero
	ReadTimeout time.Duration // zero means four frame durations

	// OnFinal, if set, receives each non-empty final transcript on the
	// worker goroutine.
	OnFinal func(text string)
}

// Controller is constructed once and driven by Toggle from any goroutine.
// Toggle never waits for the worker.
type Controller struct {
	cfg Config

	state  atomic.Int32
	cancel atomic.Bool

	mu     sync.Mutex // serializes spawning and guards done
	done   chan struct{}
	closed bool

	modelMu sync.Mutex
	model   engine.Model

	finals atomic.Int64
	live   atomic.Int32
	peak   atomic.Int32
}

func New(cfg Config) *Controller {
	if cfg.FrameLength <= 0 {
		cfg.FrameLength = audio.DefaultFrameLength
	}
	return &Controller{cfg: cfg}
}

func (c *Controller) State() State { return State(c.state.Load()) }

// Finals counts recordings that ended with a final transcript.
func (c *Controller) Finals() int { return int(c.finals.Load()) }

// Toggle starts a recording when Idle and requests a stop when Recording.
func (c *Controller) Toggle() error {
	if c.State() == Recording {
		c.Stop()
		return nil
	}
	return c.Start()
}

// Start loads the model if needed and spawns the worker. It is a no-op while
// a recording is already in progress. Errors are also reported through the
// presenter.
func (c *Controller) Start() error {
	model, err := c.ensureModel()
	if err != nil {
		log.Errorf("start: %v", err)
		c.cfg.Presenter.SetStatus(StatusText(err))
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if !c.state.CompareAndSwap(int32(Idle), int32(Recording)) {
		return nil
	}
	c.cancel.Store(false)
	done := make(chan struct{})
	c.done = done
	go c.run(uuid.NewString(), model, done)
	return nil
}

// Stop asks the current worker to finish. It returns immediately; the state
// goes back to Idle once the final transcript has been delivered.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.State() == Recording {
		c.cancel.Store(true)
	}
}

// Wait blocks until the most recently started worker has exited.
func (c *Controller) Wait() {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Close stops any recording, waits for it and releases the model.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	if c.State() == Recording {
		c.cancel.Store(true)
	}
	c.mu.Unlock()
	c.Wait()

	c.modelMu.Lock()
	defer c.modelMu.Unlock()
	if c.model != nil {
		c.model.Release()
		c.model = nil
		log.Info("model released")
	}
}

// ensureModel loads the model on first use. Both artifacts must exist before
// the engine is touched.
func (c *Controller) ensureModel() (engine.Model, error) {
	c.modelMu.Lock()
	defer c.modelMu.Unlock()
	if c.model != nil {
		return c.model, nil
	}
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return nil, ErrClosed
	}

	for _, p := range []string{c.cfg.ModelPath, c.cfg.ScorerPath} {
		if _, err := os.Stat(p); err != nil {
			return nil, &ArtifactMissingError{Path: p, Err: err}
		}
	}

	t0 := time.Now()
	m, err := c.cfg.Engine.LoadModel(c.cfg.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("%w: load model: %w", transcriber.ErrEngine, err)
	}
	if err := m.EnableScorer(c.cfg.ScorerPath); err != nil {
		m.Release()
		return nil, fmt.Errorf("%w: enable scorer: %w", transcriber.ErrEngine, err)
	}
	c.model = m
	log.ModelLoaded(c.cfg.Engine.Name(), m.SampleRate(), true, time.Since(t0))
	c.cfg.Presenter.SetStatus("Created model.")
	return m, nil
}
