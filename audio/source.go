package audio

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

var (
	// ErrDeviceUnavailable means the microphone could not be opened:
	// permission denied, device busy or gone.
	ErrDeviceUnavailable = errors.New("audio device unavailable")
	// ErrShortRead means a frame could not be filled before the read
	// timeout elapsed or the source was closed.
	ErrShortRead = errors.New("short read from audio device")
	// ErrOverrun means the reader fell behind and captured audio was
	// discarded. It wraps ErrShortRead.
	ErrOverrun = fmt.Errorf("%w: reader fell behind the device", ErrShortRead)
)

const (
	DefaultFrameLength = 2048
	chunkQueueSize     = 64
)

// FrameDuration is the wall-clock length of frameLength samples.
func FrameDuration(sampleRate, frameLength int) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	return time.Duration(frameLength) * time.Second / time.Duration(sampleRate)
}

// Source turns a callback-driven capture device into a blocking reader of
// fixed-size mono S16 frames.
type Source struct {
	capture     CaptureDevice
	sampleRate  int
	frameLength int
	timeout     time.Duration

	chunks  chan []int16
	pending []int16
	dropped atomic.Uint64
	overrun atomic.Bool

	closed    chan struct{}
	closeOnce sync.Once
}

// Open starts capture on device (nil for the system default). ReadFrame
// waits at most timeout for a frame; zero means four frame durations.
func Open(ctx Context, device *DeviceInfo, sampleRate, frameLength int, timeout time.Duration) (*Source, error) {
	if sampleRate <= 0 || frameLength <= 0 {
		return nil, fmt.Errorf("audio: invalid sample rate %d or frame length %d", sampleRate, frameLength)
	}
	if timeout <= 0 {
		timeout = 4 * FrameDuration(sampleRate, frameLength)
	}

	capture, err := ctx.NewCapture(device, CaptureConfig{SampleRate: sampleRate})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDeviceUnavailable, err)
	}

	s := &Source{
		capture:     capture,
		sampleRate:  sampleRate,
		frameLength: frameLength,
		timeout:     timeout,
		chunks:      make(chan []int16, chunkQueueSize),
		closed:      make(chan struct{}),
	}
	capture.SetCallback(s.onData)
	if err := capture.Start(); err != nil {
		capture.ClearCallback()
		capture.Close()
		return nil, fmt.Errorf("%w: %w", ErrDeviceUnavailable, err)
	}
	return s, nil
}

func (s *Source) onData(samples []int16) {
	if len(samples) == 0 {
		return
	}
	select {
	case s.chunks <- samples:
	default:
		s.dropped.Add(uint64(len(samples)))
		s.overrun.Store(true)
	}
}

// ReadFrame fills buf with the next contiguous samples. Device chunks are
// accumulated until buf is full; a partial frame is never returned. Once
// any chunk has been discarded every call fails with ErrOverrun.
func (s *Source) ReadFrame(buf []int16) error {
	if err := s.checkOverrun(); err != nil {
		return err
	}
	n := copy(buf, s.pending)
	s.pending = s.pending[n:]
	if n == len(buf) {
		return nil
	}

	timer := time.NewTimer(s.timeout)
	defer timer.Stop()
	for n < len(buf) {
		select {
		case chunk := <-s.chunks:
			if err := s.checkOverrun(); err != nil {
				return err
			}
			c := copy(buf[n:], chunk)
			n += c
			s.pending = chunk[c:]
		case <-s.closed:
			return fmt.Errorf("%w: %d of %d samples, source closed", ErrShortRead, n, len(buf))
		case <-timer.C:
			return fmt.Errorf("%w: %d of %d samples after %v", ErrShortRead, n, len(buf), s.timeout)
		}
	}
	return nil
}

func (s *Source) checkOverrun() error {
	if !s.overrun.Load() {
		return nil
	}
	return fmt.Errorf("%w: %d samples lost", ErrOverrun, s.dropped.Load())
}

func (s *Source) SampleRate() int  { return s.sampleRate }
func (s *Source) FrameLength() int { return s.frameLength }

// FrameDuration is the duration of one frame at the source's rate.
func (s *Source) FrameDuration() time.Duration {
	return FrameDuration(s.sampleRate, s.frameLength)
}

// Dropped reports samples discarded because the reader fell behind.
func (s *Source) Dropped() uint64 { return s.dropped.Load() }

func (s *Source) DeviceName() string { return s.capture.DeviceName() }

// Close stops capture and releases the device. It is safe to call from any
// goroutine and more than once; a blocked ReadFrame returns ErrShortRead.
func (s *Source) Close() {
	s.closeOnce.Do(func() {
		close(s.closed)
		s.capture.ClearCallback()
		s.capture.Stop()
		s.capture.Close()
	})
}
