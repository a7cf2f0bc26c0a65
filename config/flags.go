package config

import "flag"

// Flags holds command-line overrides. Only flags that were set on the command
// line are applied.
type Flags struct {
	fs   *flag.FlagSet
	path string
	v    Config
}

func BindFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{fs: fs}
	fs.StringVar(&f.path, "config", "", "YAML config file (default: $HARK_CONFIG)")
	fs.StringVar(&f.v.ModelDir, "modeldir", "", "directory holding the model and scorer files")
	fs.StringVar(&f.v.ModelFile, "model", DefaultModelFile, "model file name inside the model directory")
	fs.StringVar(&f.v.ScorerFile, "scorer", DefaultScorerFile, "scorer file name inside the model directory")
	fs.StringVar(&f.v.Engine, "engine", "vosk", "transcription engine: vosk or fake")
	fs.IntVar(&f.v.FrameLength, "frame", 2048, "samples per audio frame")
	fs.DurationVar(&f.v.ReadTimeout, "readtimeout", 0, "max wait for one frame (default: four frame durations)")
	fs.StringVar(&f.v.Device, "device", "", "use named microphone device")
	fs.StringVar(&f.v.LogPath, "logpath", "", "log directory path (default: OS-specific location, use ./ for current dir)")
	fs.StringVar(&f.v.UI, "ui", UITerminal, "user interface: tui, gui or headless")
	fs.BoolVar(&f.v.Copy, "copy", false, "copy each final transcript to the clipboard")
	fs.BoolVar(&f.v.Beep, "beep", true, "play a sound when recording starts, ends or fails")
	return f
}

// ConfigPath is the -config value.
func (f *Flags) ConfigPath() string { return f.path }

// Apply copies every flag that was set onto c.
func (f *Flags) Apply(c *Config) {
	f.fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "modeldir":
			c.ModelDir = f.v.ModelDir
		case "model":
			c.ModelFile = f.v.ModelFile
		case "scorer":
			c.ScorerFile = f.v.ScorerFile
		case "engine":
			c.Engine = f.v.Engine
		case "frame":
			c.FrameLength = f.v.FrameLength
		case "readtimeout":
			c.ReadTimeout = f.v.ReadTimeout
		case "device":
			c.Device = f.v.Device
		case "logpath":
			c.LogPath = f.v.LogPath
		case "ui":
			c.UI = f.v.UI
		case "copy":
			c.Copy = f.v.Copy
		case "beep":
			c.Beep = f.v.Beep
		}
	})
}
