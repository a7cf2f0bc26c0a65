package recorder

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"hark/audio"
	"hark/engine"
	"hark/transcriber"
	"hark/ui"
)

const waitTimeout = 5 * time.Second

type harness struct {
	ctl *Controller
	eng *engine.Fake
	ac  *audio.FakeContext
	rec *ui.Recorder
	dir string
}

func writeArtifacts(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, n := range names {
		if err := os.WriteFile(filepath.Join(dir, n), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func newHarness(t *testing.T, ecfg engine.FakeConfig, ac *audio.FakeContext, mutate func(*Config)) *harness {
	t.Helper()
	if ecfg.Words == nil {
		ecfg.Words = []string{"hello", "world"}
	}
	if ac == nil {
		ac = audio.NewFakeContextPCM(make([]int16, 16000), 16000, false)
	}
	h := &harness{
		eng: engine.NewFake(ecfg),
		ac:  ac,
		rec: ui.NewRecorder(),
		dir: writeArtifacts(t, "hark.model", "hark.scorer"),
	}
	cfg := Config{
		Engine:      h.eng,
		Audio:       ac,
		Presenter:   h.rec,
		ModelPath:   filepath.Join(h.dir, "hark.model"),
		ScorerPath:  filepath.Join(h.dir, "hark.scorer"),
		ReadTimeout: 200 * time.Millisecond,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	h.ctl = New(cfg)
	t.Cleanup(h.ctl.Close)
	return h
}

func (h *harness) waitTranscript(t *testing.T, text string) {
	t.Helper()
	ok := h.rec.WaitFor(func(u ui.Update) bool {
		return u.Kind == ui.KindTranscript && !u.Final && u.Text == text
	}, waitTimeout)
	if !ok {
		t.Fatalf("no partial transcript %q; updates: %+v", text, h.rec.Updates())
	}
}

func (h *harness) waitStatus(t *testing.T, substr string) string {
	t.Helper()
	var got string
	ok := h.rec.WaitFor(func(u ui.Update) bool {
		if u.Kind == ui.KindStatus && strings.Contains(u.Text, substr) {
			got = u.Text
			return true
		}
		return false
	}, waitTimeout)
	if !ok {
		t.Fatalf("no status containing %q; updates: %+v", substr, h.rec.Updates())
	}
	return got
}

func (h *harness) lastButton(t *testing.T) string {
	t.Helper()
	buttons := h.rec.Of(ui.KindButton)
	if len(buttons) == 0 {
		t.Fatal("no button updates")
	}
	return buttons[len(buttons)-1].Text
}

func TestRecordingDeliversPartialsThenOneFinal(t *testing.T) {
	var mu sync.Mutex
	var finals []string
	h := newHarness(t, engine.FakeConfig{}, nil, func(c *Config) {
		c.OnFinal = func(text string) {
			mu.Lock()
			finals = append(finals, text)
			mu.Unlock()
		}
	})

	if err := h.ctl.Toggle(); err != nil {
		t.Fatal(err)
	}
	if h.ctl.State() != Recording {
		t.Fatalf("state = %v, want recording", h.ctl.State())
	}
	h.waitTranscript(t, "hello world")
	if err := h.ctl.Toggle(); err != nil {
		t.Fatal(err)
	}
	h.ctl.Wait()

	if h.ctl.State() != Idle {
		t.Fatalf("state = %v after Wait, want idle", h.ctl.State())
	}

	updates := h.rec.Updates()
	var finalIdx = -1
	for i, u := range updates {
		if u.Kind != ui.KindTranscript {
			continue
		}
		if u.Final {
			if finalIdx != -1 {
				t.Fatalf("second final transcript at %d: %+v", i, updates)
			}
			finalIdx = i
			continue
		}
		if finalIdx != -1 {
			t.Fatalf("partial after final at %d: %+v", i, updates)
		}
	}
	if finalIdx == -1 {
		t.Fatal("no final transcript")
	}
	if got := updates[finalIdx].Text; got != "hello world" {
		t.Errorf("final = %q, want %q", got, "hello world")
	}

	buttons := h.rec.Of(ui.KindButton)
	if len(buttons) != 2 || buttons[0].Text != ui.LabelStop || buttons[1].Text != ui.LabelStart {
		t.Errorf("button updates = %+v, want stop then start", buttons)
	}
	if h.eng.Finished() != 1 {
		t.Errorf("streams finished = %d, want 1", h.eng.Finished())
	}
	if h.ac.Active() != 0 {
		t.Errorf("active captures = %d, want 0", h.ac.Active())
	}
	mu.Lock()
	defer mu.Unlock()
	if len(finals) != 1 || finals[0] != "hello world" {
		t.Errorf("OnFinal got %q", finals)
	}
}

func TestMissingArtifactNamesPath(t *testing.T) {
	tests := []struct {
		name    string
		present []string
		missing string
	}{
		{"no model", []string{"hark.scorer"}, "hark.model"},
		{"no scorer", []string{"hark.model"}, "hark.scorer"},
		{"neither", nil, "hark.model"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeArtifacts(t, tt.present...)
			h := newHarness(t, engine.FakeConfig{}, nil, func(c *Config) {
				c.ModelPath = filepath.Join(dir, "hark.model")
				c.ScorerPath = filepath.Join(dir, "hark.scorer")
			})

			err := h.ctl.Toggle()
			if !errors.Is(err, ErrArtifactMissing) {
				t.Fatalf("Toggle = %v, want ErrArtifactMissing", err)
			}
			var missing *ArtifactMissingError
			if !errors.As(err, &missing) {
				t.Fatalf("error %T is not *ArtifactMissingError", err)
			}
			want := filepath.Join(dir, tt.missing)
			if missing.Path != want {
				t.Errorf("Path = %q, want %q", missing.Path, want)
			}
			if h.ctl.State() != Idle {
				t.Errorf("state = %v, want idle", h.ctl.State())
			}
			if h.eng.Loads() != 0 || h.ac.Active() != 0 {
				t.Errorf("loads = %d, active = %d; want nothing started", h.eng.Loads(), h.ac.Active())
			}
			h.waitStatus(t, want)
			if len(h.rec.Of(ui.KindButton)) != 0 {
				t.Errorf("button changed without a worker: %+v", h.rec.Of(ui.KindButton))
			}
		})
	}
}

func TestModelLoadedOnce(t *testing.T) {
	h := newHarness(t, engine.FakeConfig{}, nil, nil)

	for i := 0; i < 3; i++ {
		if err := h.ctl.Start(); err != nil {
			t.Fatal(err)
		}
		h.ctl.Stop()
		h.ctl.Wait()
	}
	if h.eng.Loads() != 1 {
		t.Errorf("loads = %d, want 1", h.eng.Loads())
	}
	h.waitStatus(t, "Created model.")
	if n := len(h.rec.Of(ui.KindStatus)); n != 1 {
		t.Errorf("status updates = %d, want only the model notice", n)
	}

	h.ctl.Close()
	if h.eng.Released() != 1 {
		t.Errorf("released = %d, want 1", h.eng.Released())
	}
	if err := h.ctl.Start(); !errors.Is(err, ErrClosed) {
		t.Errorf("Start after Close = %v, want ErrClosed", err)
	}
}

func TestCloseWhileStarting(t *testing.T) {
	for run := 0; run < 20; run++ {
		h := newHarness(t, engine.FakeConfig{}, nil, nil)
		if err := h.ctl.Start(); err != nil {
			t.Fatal(err)
		}

		var wg sync.WaitGroup
		for g := 0; g < 4; g++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for {
					err := h.ctl.Start()
					if errors.Is(err, ErrClosed) {
						return
					}
					if err != nil {
						t.Error(err)
						return
					}
					h.ctl.Stop()
				}
			}()
		}

		closed := make(chan struct{})
		go func() {
			h.ctl.Close()
			close(closed)
		}()
		select {
		case <-closed:
		case <-time.After(waitTimeout):
			t.Fatalf("run %d: Close blocked on a worker started during shutdown", run)
		}
		wg.Wait()

		if h.ctl.State() != Idle {
			t.Errorf("run %d: state = %v, want idle", run, h.ctl.State())
		}
		if h.ac.Active() != 0 {
			t.Errorf("run %d: active captures = %d, want 0", run, h.ac.Active())
		}
	}
}

func TestRapidDoubleStartSpawnsOneWorker(t *testing.T) {
	h := newHarness(t, engine.FakeConfig{}, nil, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := h.ctl.Start(); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()
	h.ctl.Stop()
	h.ctl.Wait()

	if h.eng.Streams() != 1 {
		t.Errorf("streams = %d, want 1", h.eng.Streams())
	}
	if h.ctl.peak.Load() != 1 {
		t.Errorf("peak workers = %d, want 1", h.ctl.peak.Load())
	}
}

func TestToggleStormAtMostOneWorker(t *testing.T) {
	h := newHarness(t, engine.FakeConfig{}, nil, nil)

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				if err := h.ctl.Toggle(); err != nil {
					t.Error(err)
				}
			}
		}()
	}
	wg.Wait()
	h.ctl.Stop()
	h.ctl.Wait()
	// A worker that was spawned between Stop and Wait is stopped here.
	h.ctl.Stop()
	h.ctl.Wait()

	if p := h.ctl.peak.Load(); p > 1 {
		t.Errorf("peak workers = %d, want at most 1", p)
	}
	if h.ctl.State() != Idle {
		t.Errorf("state = %v, want idle", h.ctl.State())
	}
	if h.ac.Active() != 0 {
		t.Errorf("active captures = %d, want 0", h.ac.Active())
	}
}

// blockingPresenter holds SetFinal until release is closed.
type blockingPresenter struct {
	*ui.Recorder
	entered chan struct{}
	release chan struct{}
}

func (b *blockingPresenter) SetFinal(text string) {
	close(b.entered)
	<-b.release
	b.Recorder.SetFinal(text)
}

func TestStopReturnsBeforeIdle(t *testing.T) {
	bp := &blockingPresenter{
		Recorder: ui.NewRecorder(),
		entered:  make(chan struct{}),
		release:  make(chan struct{}),
	}
	h := newHarness(t, engine.FakeConfig{}, nil, func(c *Config) { c.Presenter = bp })
	h.rec = bp.Recorder

	if err := h.ctl.Start(); err != nil {
		t.Fatal(err)
	}
	h.waitTranscript(t, "hello")

	stopped := make(chan struct{})
	go func() {
		h.ctl.Toggle()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(waitTimeout):
		t.Fatal("Toggle blocked on the worker")
	}

	<-bp.entered
	if h.ctl.State() != Recording {
		t.Errorf("state = %v while finishing, want recording", h.ctl.State())
	}
	close(bp.release)
	h.ctl.Wait()
	if h.ctl.State() != Idle {
		t.Errorf("state = %v after finishing, want idle", h.ctl.State())
	}
}

func TestShortReadAbandonsSession(t *testing.T) {
	// Enough audio for one 2048-sample frame, then nothing.
	ac := audio.NewFakeContextPCM(make([]int16, 3000), 16000, false)
	ac.Hold = true
	h := newHarness(t, engine.FakeConfig{}, ac, func(c *Config) { c.ReadTimeout = 50 * time.Millisecond })

	if err := h.ctl.Start(); err != nil {
		t.Fatal(err)
	}
	h.ctl.Wait()

	h.waitStatus(t, "Microphone stopped delivering audio")
	if h.eng.Finished() != 0 {
		t.Errorf("streams finished = %d, want 0", h.eng.Finished())
	}
	for _, u := range h.rec.Of(ui.KindTranscript) {
		if u.Final {
			t.Errorf("unexpected final transcript %q", u.Text)
		}
	}
	if h.ctl.State() != Idle {
		t.Errorf("state = %v, want idle", h.ctl.State())
	}
	if got := h.lastButton(t); got != ui.LabelStart {
		t.Errorf("button = %q, want %q", got, ui.LabelStart)
	}
	if h.ac.Active() != 0 {
		t.Errorf("active captures = %d, want 0", h.ac.Active())
	}
}

func TestEngineFailures(t *testing.T) {
	tests := []struct {
		name string
		cfg  engine.FakeConfig
	}{
		{"feed fails on frame 3", engine.FakeConfig{FailFeedAt: 3}},
		{"feed panics", engine.FakeConfig{PanicAt: 2}},
		{"create stream fails", engine.FakeConfig{CreateErr: errors.New("no stream")}},
		{"finish fails", engine.FakeConfig{FinishErr: errors.New("boom")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, tt.cfg, nil, nil)

			if err := h.ctl.Start(); err != nil {
				t.Fatal(err)
			}
			if tt.cfg.FinishErr != nil {
				h.waitTranscript(t, "hello")
				h.ctl.Stop()
			}
			h.ctl.Wait()

			h.waitStatus(t, "Transcription failed")
			if h.ctl.State() != Idle {
				t.Errorf("state = %v, want idle", h.ctl.State())
			}
			if h.ac.Active() != 0 {
				t.Errorf("active captures = %d, want 0", h.ac.Active())
			}
			if got := h.lastButton(t); got != ui.LabelStart {
				t.Errorf("button = %q, want %q", got, ui.LabelStart)
			}
		})
	}
}

func TestModelLoadFailure(t *testing.T) {
	h := newHarness(t, engine.FakeConfig{ScorerErr: errors.New("bad grammar")}, nil, nil)

	err := h.ctl.Start()
	if !errors.Is(err, transcriber.ErrEngine) {
		t.Fatalf("Start = %v, want ErrEngine", err)
	}
	if h.ctl.State() != Idle {
		t.Errorf("state = %v, want idle", h.ctl.State())
	}
	if h.eng.Released() != 1 {
		t.Errorf("released = %d, want the half-loaded model released", h.eng.Released())
	}
}

func TestDeviceUnavailable(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*audio.FakeContext)
	}{
		{"capture", func(ac *audio.FakeContext) { ac.CaptureErr = errors.New("permission denied") }},
		{"start", func(ac *audio.FakeContext) { ac.StartErr = errors.New("device busy") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ac := audio.NewFakeContextPCM(nil, 16000, false)
			tt.setup(ac)
			h := newHarness(t, engine.FakeConfig{}, ac, nil)

			if err := h.ctl.Start(); err != nil {
				t.Fatal(err)
			}
			h.ctl.Wait()

			h.waitStatus(t, "Microphone unavailable")
			if h.eng.Streams() != 0 {
				t.Errorf("streams = %d, want 0", h.eng.Streams())
			}
			if h.ctl.State() != Idle {
				t.Errorf("state = %v, want idle", h.ctl.State())
			}
		})
	}
}

func TestStatusText(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&ArtifactMissingError{Path: "/m/hark.model"}, "Model file not found: /m/hark.model"},
		{audio.ErrDeviceUnavailable, "Microphone unavailable: "},
		{audio.ErrShortRead, "Microphone stopped delivering audio: "},
		{audio.ErrOverrun, "Audio capture fell behind, recording stopped: "},
		{transcriber.ErrEngine, "Transcription failed: "},
		{errors.New("other"), "Error: other"},
	}
	for _, tt := range tests {
		if got := StatusText(tt.err); !strings.HasPrefix(got, tt.want) {
			t.Errorf("StatusText(%v) = %q, want prefix %q", tt.err, got, tt.want)
		}
	}
}
