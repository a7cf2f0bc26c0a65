package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"path/filepath"
	"runtime/debug"
	"sync"
	"time"

	"hark/audio"
	"hark/clipboard"
	"hark/config"
	"hark/doctor"
	"hark/engine"
	"hark/hotkey"
	"hark/log"
	"hark/recorder"
	"hark/shutdown"
	"hark/ui"
)

var version = "dev"

// app is everything a UI front end needs to drive recordings.
type app struct {
	cfg      config.Config
	eng      engine.Engine
	audio    audio.Context
	device   *audio.DeviceInfo
	queue    *ui.Queue
	ctl      *recorder.Controller
	testWAV  string
	realtime bool

	closeOnce sync.Once
}

func readyHint(modelDir string) string {
	return fmt.Sprintf("Ready. Copy model files to %s if running for the first time.", modelDir)
}

func deviceLabel(dev *audio.DeviceInfo) string {
	name := "system default"
	if dev != nil {
		name = dev.Name
		if audio.IsBluetooth(dev.Name) {
			name += " (BT!)"
		}
	}
	return name
}

// setup parses flags, handles the one-shot commands (-version, -doctor) and
// returns a wired app. It exits the process on fatal configuration errors.
func setup() *app {
	fl := config.BindFlags(flag.CommandLine)
	setupFlag := flag.Bool("setup", false, "Select microphone device (otherwise uses system default)")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	doctorFlag := flag.Bool("doctor", false, "Run system diagnostics and exit")
	testFlag := flag.String("test", "", "Test mode: replay a mono 16-bit WAV instead of the microphone, driven by stdin")
	realtimeFlag := flag.Bool("realtime", false, "In test mode, pace the WAV at its sample rate")
	profileFlag := flag.String("profile", "", "Enable pprof profiling server (e.g., :6060 or localhost:6060)")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("hark %s\n", version)
		os.Exit(0)
	}

	cfg, err := config.Load(fl.ConfigPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fl.Apply(&cfg)
	if *testFlag != "" {
		cfg.UI = config.UIHeadless
		cfg.Beep = false
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Resolve log directory early
	logPath, err := log.ResolveDir(cfg.LogPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve log directory: %v\n", err)
		os.Exit(1)
	}
	log.SetDir(logPath)
	if err := log.EnsureDir(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create log directory: %v\n", err)
	}

	crashPath := filepath.Join(log.Dir(), "crash_log.txt")
	if crashFile, err := os.OpenFile(crashPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644); err == nil {
		fmt.Fprintf(crashFile, "\n=== Session %s [pid=%d] ===\n", time.Now().Format("2006-01-02 15:04:05"), os.Getpid())
		debug.SetCrashOutput(crashFile, debug.CrashOptions{})
	}

	if *profileFlag != "" {
		go func() {
			fmt.Fprintf(os.Stderr, "pprof server listening on http://%s/debug/pprof/\n", *profileFlag)
			if err := http.ListenAndServe(*profileFlag, nil); err != nil {
				fmt.Fprintf(os.Stderr, "pprof server error: %v\n", err)
			}
		}()
	}

	eng, err := engine.New(cfg.Engine)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *doctorFlag {
		os.Exit(doctor.Run(doctor.Options{
			Config: cfg,
			Engine: eng,
			Audio:  audio.NewContext,
			Hotkey: hotkey.Diagnose,
		}))
	}

	// Resolve -setup into -device before the UI takes the terminal
	if *setupFlag && cfg.Device == "" && *testFlag == "" {
		ctx, err := audio.NewContext()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error initializing audio: %v\n", err)
			os.Exit(1)
		}
		dev, err := audio.SelectDevice(ctx)
		switch {
		case err != nil:
			fmt.Printf("Warning: device selection failed: %v\n", err)
			fmt.Println("Falling back to default device")
		case dev != nil:
			cfg.Device = dev.Name
		}
		ctx.Close()
	}

	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
	}

	a := &app{cfg: cfg, eng: eng, testWAV: *testFlag, realtime: *realtimeFlag}
	if err := a.openAudio(); err != nil {
		log.Errorf("audio context init error: %v", err)
		fmt.Fprintf(os.Stderr, "Error initializing audio: %v\n", err)
		os.Exit(1)
	}
	log.SessionStart(eng.Name(), deviceLabel(a.device), cfg.UI)

	a.queue = ui.NewQueue(256)
	var presenter ui.Presenter = a.queue
	if cfg.Beep {
		presenter = &cuePresenter{Presenter: a.queue, play: beepPlayer{}}
	}
	a.ctl = recorder.New(recorder.Config{
		Engine:      eng,
		Audio:       a.audio,
		Device:      a.device,
		Presenter:   presenter,
		ModelPath:   cfg.ModelPath(),
		ScorerPath:  cfg.ScorerPath(),
		FrameLength: cfg.FrameLength,
		ReadTimeout: cfg.ReadTimeout,
		OnFinal:     a.onFinal,
	})
	a.queue.SetStatus(readyHint(cfg.ModelDir))
	return a
}

func (a *app) openAudio() error {
	if a.testWAV != "" {
		fake, err := audio.NewFakeContext(a.testWAV, a.realtime)
		if err != nil {
			return err
		}
		a.audio = fake
		return nil
	}
	ctx, err := audio.NewContext()
	if err != nil {
		return err
	}
	a.audio = ctx
	dev, err := audio.FindDevice(ctx, a.cfg.Device)
	if err != nil {
		log.Warnf("device selection failed: %v", err)
		fmt.Fprintf(os.Stderr, "Warning: %v, using system default\n", err)
	}
	a.device = dev
	return nil
}

func (a *app) onFinal(text string) {
	if !a.cfg.Copy {
		return
	}
	if err := clipboard.Copy(text); err != nil {
		log.Warnf("clipboard copy failed: %v", err)
		a.queue.SetStatus("Clipboard copy failed: " + err.Error())
		return
	}
	a.queue.SetStatus("Copied to clipboard.")
}

func (a *app) toggle() {
	if err := a.ctl.Toggle(); err != nil {
		log.Warnf("toggle: %v", err)
	}
}

// startHotkey binds Ctrl+Shift+Space to toggle until stop is closed. A
// missing hotkey is reported but not fatal.
func (a *app) startHotkey(stop <-chan struct{}) {
	hk := hotkey.New()
	if err := hk.Register(); err != nil {
		log.Warnf("hotkey register error: %v", err)
		a.queue.SetStatus("Global hotkey unavailable: " + err.Error())
		return
	}
	go func() {
		hotkey.Bind(hk, stop, a.toggle)
		hk.Unregister()
	}()
}

func signalContext() (context.Context, context.CancelFunc) {
	return shutdown.Context(context.Background(), func(s os.Signal) {
		log.Infof("%v received, shutting down", s)
	})
}

// close stops any recording, releases the model and flushes the logs.
func (a *app) close() {
	a.closeOnce.Do(func() {
		a.ctl.Close()
		a.queue.Close()
		a.audio.Close()
		log.SessionEnd(a.ctl.Finals())
		log.Close()
	})
}

// serve runs the terminal or headless front end and returns the exit code.
func (a *app) serve() int {
	ctx, cancel := signalContext()
	defer cancel()
	defer a.close()

	switch a.cfg.UI {
	case config.UITerminal:
		return a.runTUI(ctx)
	default:
		return a.runHeadless(ctx, os.Stdin, os.Stdout)
	}
}
