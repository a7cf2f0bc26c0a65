// Package ui carries display updates from the recording worker to whichever
// goroutine owns the screen.
package ui

import (
	"context"
	"fmt"
	"io"
	"sync"
)

const (
	LabelStart = "Start Recording"
	LabelStop  = "Stop Recording"
)

// Presenter is safe to call from any goroutine. Calls are displayed in the
// order they were made.
type Presenter interface {
	SetStatus(text string)
	// SetTranscript replaces the current partial transcript.
	SetTranscript(text string)
	// SetFinal shows the terminal transcript of a recording.
	SetFinal(text string)
	SetButtonLabel(text string)
}

type Kind int

const (
	KindStatus Kind = iota
	KindTranscript
	KindButton
)

func (k Kind) String() string {
	switch k {
	case KindStatus:
		return "status"
	case KindTranscript:
		return "transcript"
	case KindButton:
		return "button"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

type Update struct {
	Kind  Kind
	Text  string
	Final bool // only meaningful for KindTranscript
}

// Sink applies updates on the UI goroutine.
type Sink interface {
	Apply(u Update)
}

type SinkFunc func(u Update)

func (f SinkFunc) Apply(u Update) { f(u) }

// Queue is a Presenter backed by a FIFO channel. The worker enqueues; Run
// drains on the UI goroutine. Enqueueing blocks when the buffer is full
// rather than dropping, so no update is lost or reordered.
type Queue struct {
	ch        chan Update
	done      chan struct{}
	closeOnce sync.Once
}

func NewQueue(size int) *Queue {
	if size <= 0 {
		size = 64
	}
	return &Queue{ch: make(chan Update, size), done: make(chan struct{})}
}

func (q *Queue) push(u Update) {
	select {
	case <-q.done:
		return
	default:
	}
	select {
	case q.ch <- u:
	case <-q.done:
	}
}

func (q *Queue) SetStatus(text string)      { q.push(Update{Kind: KindStatus, Text: text}) }
func (q *Queue) SetTranscript(text string)  { q.push(Update{Kind: KindTranscript, Text: text}) }
func (q *Queue) SetFinal(text string)       { q.push(Update{Kind: KindTranscript, Text: text, Final: true}) }
func (q *Queue) SetButtonLabel(text string) { q.push(Update{Kind: KindButton, Text: text}) }

// Run applies queued updates to sink until ctx is cancelled or the queue is
// closed. After Close, updates already queued are still applied.
func (q *Queue) Run(ctx context.Context, sink Sink) error {
	for {
		select {
		case u := <-q.ch:
			sink.Apply(u)
		case <-q.done:
			for {
				select {
				case u := <-q.ch:
					sink.Apply(u)
				default:
					return nil
				}
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close stops accepting updates. Idempotent.
func (q *Queue) Close() {
	q.closeOnce.Do(func() { close(q.done) })
}

// LineSink prints each update as one line; used when there is no screen.
type LineSink struct {
	W io.Writer
}

func (s LineSink) Apply(u Update) {
	switch {
	case u.Kind == KindTranscript && u.Final:
		fmt.Fprintf(s.W, "final: %s\n", u.Text)
	case u.Kind == KindTranscript:
		fmt.Fprintf(s.W, "partial: %s\n", u.Text)
	default:
		fmt.Fprintf(s.W, "%s: %s\n", u.Kind, u.Text)
	}
}
