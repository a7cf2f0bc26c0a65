package audio

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-audio/wav"
)

const fakeChunkFrames = 1024

// FakeContext replays PCM through the capture interface. It backs headless
// runs and tests.
type FakeContext struct {
	pcm        []int16
	sampleRate int
	realtime   bool

	// Hold stops delivery once the PCM is exhausted; otherwise silence follows.
	Hold bool
	// CaptureErr fails NewCapture, StartErr fails Start.
	CaptureErr error
	StartErr   error

	active    atomic.Int32
	audioDone chan struct{}
	doneOnce  sync.Once
}

// NewFakeContext loads a mono 16-bit WAV file. In realtime mode chunks are
// paced at the WAV's sample rate.
func NewFakeContext(wavPath string, realtime bool) (*FakeContext, error) {
	f, err := os.Open(wavPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%s: not a valid WAV file", wavPath)
	}
	if dec.NumChans != 1 || dec.BitDepth != 16 {
		return nil, fmt.Errorf("%s: want mono 16-bit PCM, got %d channels at %d bits", wavPath, dec.NumChans, dec.BitDepth)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%s: decode: %w", wavPath, err)
	}
	samples := make([]int16, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = int16(v)
	}
	return NewFakeContextPCM(samples, int(dec.SampleRate), realtime), nil
}

func NewFakeContextPCM(samples []int16, sampleRate int, realtime bool) *FakeContext {
	if sampleRate <= 0 {
		sampleRate = 16000
	}
	return &FakeContext{pcm: samples, sampleRate: sampleRate, realtime: realtime, audioDone: make(chan struct{})}
}

func (f *FakeContext) SampleRate() int { return f.sampleRate }

func (f *FakeContext) Devices() ([]DeviceInfo, error) {
	return []DeviceInfo{{ID: "fake", Name: "fake"}}, nil
}

func (f *FakeContext) Close() {}

// AudioDone is closed once a capture has delivered the whole PCM.
func (f *FakeContext) AudioDone() <-chan struct{} { return f.audioDone }

// Active reports captures that were started and not yet stopped.
func (f *FakeContext) Active() int { return int(f.active.Load()) }

func (f *FakeContext) NewCapture(_ *DeviceInfo, config CaptureConfig) (CaptureDevice, error) {
	if f.CaptureErr != nil {
		return nil, f.CaptureErr
	}
	if config.SampleRate != f.sampleRate {
		return nil, fmt.Errorf("fake: audio is %d Hz, capture wants %d Hz", f.sampleRate, config.SampleRate)
	}
	return &FakeCapture{ctx: f}, nil
}

type FakeCapture struct {
	ctx *FakeContext

	mu       sync.Mutex
	cb       DataCallback
	stopCh   chan struct{}
	feedDone chan struct{}
}

func (f *FakeCapture) SetCallback(cb DataCallback) {
	f.mu.Lock()
	f.cb = cb
	f.mu.Unlock()
}

func (f *FakeCapture) ClearCallback() {
	f.mu.Lock()
	f.cb = nil
	f.mu.Unlock()
}

func (f *FakeCapture) DeviceName() string { return "fake" }

func (f *FakeCapture) callback() DataCallback {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cb
}

func (f *FakeCapture) Start() error {
	if f.ctx.StartErr != nil {
		return f.ctx.StartErr
	}
	f.mu.Lock()
	if f.stopCh != nil {
		f.mu.Unlock()
		return fmt.Errorf("fake: capture already started")
	}
	stop := make(chan struct{})
	done := make(chan struct{})
	f.stopCh, f.feedDone = stop, done
	f.mu.Unlock()
	f.ctx.active.Add(1)

	interval := time.Millisecond
	if f.ctx.realtime {
		interval = time.Duration(fakeChunkFrames) * time.Second / time.Duration(f.ctx.sampleRate)
	}
	pcm := f.ctx.pcm

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		pos := 0
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
			}
			cb := f.callback()
			if cb == nil {
				continue
			}
			if pos < len(pcm) {
				end := min(pos+fakeChunkFrames, len(pcm))
				cb(append([]int16(nil), pcm[pos:end]...))
				pos = end
				continue
			}
			f.ctx.doneOnce.Do(func() { close(f.ctx.audioDone) })
			if !f.ctx.Hold {
				cb(make([]int16, fakeChunkFrames))
			}
		}
	}()
	return nil
}

func (f *FakeCapture) Stop() {
	f.mu.Lock()
	stop, done := f.stopCh, f.feedDone
	f.stopCh, f.feedDone = nil, nil
	f.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	<-done
	f.ctx.active.Add(-1)
}

func (f *FakeCapture) Close() { f.Stop() }
