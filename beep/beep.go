// Package beep plays short audible cues when a recording starts, ends or
// fails.
package beep

import (
	"math"
	"sync"
)

const sampleRate = 44100

type Cue int

const (
	CueStart Cue = iota
	CueEnd
	CueError
)

type tone struct {
	freq, dur, volume, decay float64
	double                   bool // two beeps separated by doubleGap
}

const doubleGap = 0.05

var tones = map[Cue]tone{
	CueStart: {freq: 1200, dur: 0.2, volume: 0.5, decay: 60},
	CueEnd:   {freq: 900, dur: 0.2, volume: 0.5, decay: 40},
	CueError: {freq: 350, dur: 0.08, volume: 0.6, decay: 30, double: true},
}

var (
	cacheMu sync.Mutex
	cache   = map[Cue][]int16{}
)

func PlayStart() { play(CueStart) }
func PlayEnd()   { play(CueEnd) }
func PlayError() { play(CueError) }

func play(c Cue) { go playSamples(cached(c)) }

func cached(c Cue) []int16 {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	s, ok := cache[c]
	if !ok {
		s = Samples(c)
		cache[c] = s
	}
	return s
}

// Samples renders c as mono S16 PCM at 44.1 kHz: a decaying sine.
func Samples(c Cue) []int16 {
	t, ok := tones[c]
	if !ok {
		return nil
	}
	one := decayingSine(t)
	if !t.double {
		return one
	}
	gap := make([]int16, int(sampleRate*doubleGap))
	out := make([]int16, 0, 2*len(one)+len(gap))
	out = append(out, one...)
	out = append(out, gap...)
	return append(out, one...)
}

func decayingSine(t tone) []int16 {
	n := int(sampleRate * t.dur)
	s := make([]int16, n)
	for i := range s {
		x := float64(i) / sampleRate
		s[i] = int16(math.Sin(2*math.Pi*t.freq*x) * 32767 * t.volume * math.Exp(-x*t.decay))
	}
	return s
}
