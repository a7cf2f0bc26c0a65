package main

import (
	"sync"

	"hark/beep"
	"hark/ui"
)

type cuePlayer interface {
	Start()
	End()
	Error()
}

type beepPlayer struct{}

func (beepPlayer) Start() { beep.PlayStart() }
func (beepPlayer) End()   { beep.PlayEnd() }
func (beepPlayer) Error() { beep.PlayError() }

// cuePresenter forwards every update and plays a cue when a recording
// starts, delivers its final transcript, or ends without one.
type cuePresenter struct {
	ui.Presenter
	play cuePlayer

	mu        sync.Mutex
	recording bool
	final     bool
}

func (c *cuePresenter) SetFinal(text string) {
	c.mu.Lock()
	c.final = true
	c.mu.Unlock()
	c.Presenter.SetFinal(text)
	c.play.End()
}

func (c *cuePresenter) SetButtonLabel(label string) {
	var cue func()
	c.mu.Lock()
	switch label {
	case ui.LabelStop:
		c.recording, c.final = true, false
		cue = c.play.Start
	case ui.LabelStart:
		if c.recording && !c.final {
			cue = c.play.Error
		}
		c.recording = false
	}
	c.mu.Unlock()

	c.Presenter.SetButtonLabel(label)
	if cue != nil {
		cue()
	}
}
