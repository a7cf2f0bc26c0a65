package recorder

import (
	"fmt"
	"time"

	"hark/audio"
	"hark/engine"
	"hark/log"
	"hark/transcriber"
	"hark/ui"
)

func (c *Controller) run(id string, model engine.Model, done chan struct{}) {
	defer close(done)
	defer c.state.Store(int32(Idle))

	n := c.live.Add(1)
	for {
		p := c.peak.Load()
		if n <= p || c.peak.CompareAndSwap(p, n) {
			break
		}
	}
	defer c.live.Add(-1)

	reason, err := c.record(id, model)
	if err != nil {
		c.cfg.Presenter.SetStatus(StatusText(err))
		c.cfg.Presenter.SetButtonLabel(ui.LabelStart)
	}
	log.RecordingStop(id, reason, err)
}

// record runs Starting, Looping and Finishing. The returned reason names the
// step that ended the recording.
func (c *Controller) record(id string, model engine.Model) (reason string, err error) {
	defer func() {
		if r := recover(); r != nil {
			reason = "panic"
			err = fmt.Errorf("%w: worker panic: %v", transcriber.ErrEngine, r)
		}
	}()
	p := c.cfg.Presenter
	t0 := time.Now()

	p.SetButtonLabel(ui.LabelStop)
	src, err := audio.Open(c.cfg.Audio, c.cfg.Device, model.SampleRate(), c.cfg.FrameLength, c.cfg.ReadTimeout)
	if err != nil {
		return "open", err
	}
	defer src.Close()

	sess, err := transcriber.Begin(model)
	if err != nil {
		return "begin", err
	}
	log.RecordingStart(id, src.DeviceName(), src.SampleRate(), src.FrameLength())

	frame := make([]int16, src.FrameLength())
	for !c.cancel.Load() {
		if err := src.ReadFrame(frame); err != nil {
			// The session is abandoned, not finished.
			return "read", err
		}
		if err := sess.Feed(frame); err != nil {
			return "feed", err
		}
		partial, err := sess.Peek()
		if err != nil {
			return "decode", err
		}
		p.SetTranscript(partial)
	}

	final, err := sess.End()
	if err != nil {
		return "finish", err
	}
	p.SetFinal(final)
	p.SetButtonLabel(ui.LabelStart)
	src.Close()
	c.finals.Add(1)

	st := sess.Stats()
	log.StreamStats(id, log.StreamStatsData{
		Frames:     st.Frames,
		Partials:   st.Partials,
		Dropped:    int(src.Dropped()),
		AudioS:     st.AudioSeconds(sess.SampleRate()),
		FeedTime:   st.FeedTime,
		DecodeTime: st.DecodeTime,
		FinishTime: st.FinishTime,
		Total:      time.Since(t0),
	})
	if final != "" {
		log.TranscriptionText(final)
		if c.cfg.OnFinal != nil {
			c.cfg.OnFinal(final)
		}
	}
	return "stopped", nil
}
