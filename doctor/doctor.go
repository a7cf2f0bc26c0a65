package doctor

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"hark/audio"
	"hark/clipboard"
	"hark/config"
	"hark/engine"
)

type Options struct {
	Config config.Config
	Engine engine.Engine
	// Audio opens the capture context; audio.NewContext outside tests.
	Audio func() (audio.Context, error)
	// Hotkey reports whether the global hotkey can be registered.
	Hotkey func() (string, error)
	Out    io.Writer
}

type check struct {
	name string
	run  func() (string, error)
}

// Run executes the diagnostic checks and returns an exit code (0=all pass, 1=any fail).
func Run(opts Options) int {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	d := &doctor{opts: opts, sampleRate: 16000}
	defer d.release()

	checks := []check{
		{"Model artifacts", d.checkArtifacts},
		{"Engine", d.checkEngine},
		{"Microphone", d.checkMicrophone},
		{"Hotkey", d.checkHotkey},
	}
	if opts.Config.Copy {
		checks = append(checks, check{"Clipboard", d.checkClipboard})
	}

	fmt.Fprintln(out, "hark doctor - system diagnostics")
	fmt.Fprintln(out, "================================")

	failed := 0
	for i, c := range checks {
		fmt.Fprintf(out, "\n[%d/%d] %s\n", i+1, len(checks), c.name)
		msg, err := c.run()
		if err != nil {
			failed++
			fmt.Fprintf(out, "  FAIL: %v\n", err)
			continue
		}
		fmt.Fprintf(out, "  PASS: %s\n", msg)
	}

	fmt.Fprintln(out)
	if failed > 0 {
		fmt.Fprintf(out, "%d check(s) failed. See details above.\n", failed)
		return 1
	}
	fmt.Fprintln(out, "All checks passed!")
	return 0
}

type doctor struct {
	opts       Options
	model      engine.Model
	sampleRate int
}

func (d *doctor) release() {
	if d.model != nil {
		d.model.Release()
	}
}

func (d *doctor) checkArtifacts() (string, error) {
	cfg := d.opts.Config
	var missing []error
	for _, p := range []string{cfg.ModelPath(), cfg.ScorerPath()} {
		if _, err := os.Stat(p); err != nil {
			missing = append(missing, fmt.Errorf("missing %s", p))
		}
	}
	if len(missing) > 0 {
		return "", fmt.Errorf("%w (copy model files to %s)", errors.Join(missing...), cfg.ModelDir)
	}
	return "model and scorer found in " + cfg.ModelDir, nil
}

func (d *doctor) checkEngine() (string, error) {
	if d.opts.Engine == nil {
		return "", fmt.Errorf("no engine configured")
	}
	cfg := d.opts.Config
	t0 := time.Now()
	m, err := d.opts.Engine.LoadModel(cfg.ModelPath())
	if err != nil {
		return "", err
	}
	if err := m.EnableScorer(cfg.ScorerPath()); err != nil {
		m.Release()
		return "", err
	}
	d.model = m
	d.sampleRate = m.SampleRate()
	return fmt.Sprintf("%s model loaded in %dms, %d Hz", d.opts.Engine.Name(), time.Since(t0).Milliseconds(), d.sampleRate), nil
}

func (d *doctor) checkMicrophone() (string, error) {
	if d.opts.Audio == nil {
		return "", fmt.Errorf("no audio backend")
	}
	ctx, err := d.opts.Audio()
	if err != nil {
		return "", fmt.Errorf("cannot connect to audio: %w", err)
	}
	defer ctx.Close()

	devices, err := ctx.Devices()
	if err != nil {
		return "", fmt.Errorf("cannot list devices: %w", err)
	}
	if len(devices) == 0 {
		return "", fmt.Errorf("no capture devices found")
	}
	dev, err := audio.FindDevice(ctx, d.opts.Config.Device)
	if err != nil {
		return "", err
	}

	src, err := audio.Open(ctx, dev, d.sampleRate, d.opts.Config.FrameLength, d.opts.Config.ReadTimeout)
	if err != nil {
		return "", err
	}
	defer src.Close()

	frame := make([]int16, src.FrameLength())
	if err := src.ReadFrame(frame); err != nil {
		return "", err
	}
	var peak int
	for _, s := range frame {
		peak = max(peak, abs(int(s)))
	}
	name := src.DeviceName()
	if audio.IsBluetooth(name) {
		name += " (bluetooth, expect reduced quality)"
	}
	return fmt.Sprintf("read %v of audio from %s, peak %d", src.FrameDuration(), name, peak), nil
}

func (d *doctor) checkHotkey() (string, error) {
	if d.opts.Hotkey == nil {
		return "skipped", nil
	}
	return d.opts.Hotkey()
}

func (d *doctor) checkClipboard() (string, error) {
	probe := fmt.Sprintf("hark-doctor-%d", time.Now().UnixNano())
	if err := clipboard.Verify(probe, 3*time.Second); err != nil {
		return "", err
	}
	return "copy and read back OK", nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
