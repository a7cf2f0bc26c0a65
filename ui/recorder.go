package ui

import (
	"sync"
	"time"
)

// Recorder is a Presenter that keeps every update in call order. Tests use it
// to assert on what the worker displayed.
type Recorder struct {
	mu      sync.Mutex
	updates []Update
	changed chan struct{}
}

func NewRecorder() *Recorder {
	return &Recorder{changed: make(chan struct{}, 1)}
}

func (r *Recorder) Apply(u Update) {
	r.mu.Lock()
	r.updates = append(r.updates, u)
	r.mu.Unlock()
	select {
	case r.changed <- struct{}{}:
	default:
	}
}

func (r *Recorder) SetStatus(text string)      { r.Apply(Update{Kind: KindStatus, Text: text}) }
func (r *Recorder) SetTranscript(text string)  { r.Apply(Update{Kind: KindTranscript, Text: text}) }
func (r *Recorder) SetFinal(text string)       { r.Apply(Update{Kind: KindTranscript, Text: text, Final: true}) }
func (r *Recorder) SetButtonLabel(text string) { r.Apply(Update{Kind: KindButton, Text: text}) }

// Updates returns a copy of everything recorded so far.
func (r *Recorder) Updates() []Update {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Update(nil), r.updates...)
}

// Of returns the recorded updates of one kind.
func (r *Recorder) Of(kind Kind) []Update {
	var out []Update
	for _, u := range r.Updates() {
		if u.Kind == kind {
			out = append(out, u)
		}
	}
	return out
}

// WaitFor blocks until an update satisfying match is recorded or timeout
// elapses.
func (r *Recorder) WaitFor(match func(Update) bool, timeout time.Duration) bool {
	deadline := time.After(timeout)
	for {
		for _, u := range r.Updates() {
			if match(u) {
				return true
			}
		}
		select {
		case <-r.changed:
		case <-deadline:
			return false
		}
	}
}
