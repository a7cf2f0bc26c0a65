// Package config resolves hark's settings from defaults, an optional YAML
// file, HARK_* environment variables and command-line flags, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"hark/audio"
	"hark/engine"
)

const (
	UITerminal = "tui"
	UIDesktop  = "gui"
	UIHeadless = "headless"

	DefaultModelFile  = "hark.model"
	DefaultScorerFile = "hark.scorer"
)

var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	ModelDir    string        `yaml:"model_dir"`
	ModelFile   string        `yaml:"model_file"`
	ScorerFile  string        `yaml:"scorer_file"`
	Engine      string        `yaml:"engine"`
	FrameLength int           `yaml:"frame_length"`
	ReadTimeout time.Duration `yaml:"read_timeout"` // zero means four frame durations
	Device      string        `yaml:"device"`
	LogPath     string        `yaml:"log_path"`
	UI          string        `yaml:"ui"`
	Copy        bool          `yaml:"copy"`
	Beep        bool          `yaml:"beep"`
}

func Default() Config {
	dir, err := DefaultModelDir()
	if err != nil {
		dir = "."
	}
	return Config{
		ModelDir:    dir,
		ModelFile:   DefaultModelFile,
		ScorerFile:  DefaultScorerFile,
		Engine:      engine.NameVosk,
		FrameLength: audio.DefaultFrameLength,
		UI:          UITerminal,
		Beep:        true,
	}
}

// DefaultModelDir is the per-user data directory models are copied into.
func DefaultModelDir() (string, error) {
	switch runtime.GOOS {
	case "linux":
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			return filepath.Join(xdg, "hark"), nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".local", "share", "hark"), nil
	default:
		dir, err := os.UserConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, "hark"), nil
	}
}

// Load returns the defaults overlaid with the YAML file at path (or
// HARK_CONFIG when path is empty) and then the environment. A missing file is
// only an error when it was named explicitly.
func Load(path string) (Config, error) {
	c := Default()

	explicit := path != ""
	if !explicit {
		path = os.Getenv("HARK_CONFIG")
		explicit = path != ""
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &c); err != nil {
				return c, fmt.Errorf("parse %s: %w", path, err)
			}
		case explicit:
			return c, fmt.Errorf("read config: %w", err)
		}
	}

	if v := os.Getenv("HARK_MODEL_DIR"); v != "" {
		c.ModelDir = v
	}
	if v := os.Getenv("HARK_ENGINE"); v != "" {
		c.Engine = v
	}
	if v := os.Getenv("HARK_DEVICE"); v != "" {
		c.Device = v
	}
	return c, nil
}

func (c Config) Validate() error {
	if c.FrameLength <= 0 {
		return fmt.Errorf("%w: frame length %d", ErrInvalid, c.FrameLength)
	}
	if c.ReadTimeout < 0 {
		return fmt.Errorf("%w: read timeout %v", ErrInvalid, c.ReadTimeout)
	}
	if !slices.Contains(engine.Names(), c.Engine) {
		return fmt.Errorf("%w: unknown engine %q (want one of %v)", ErrInvalid, c.Engine, engine.Names())
	}
	switch c.UI {
	case UITerminal, UIDesktop, UIHeadless:
	default:
		return fmt.Errorf("%w: unknown ui %q (want tui, gui or headless)", ErrInvalid, c.UI)
	}
	if c.ModelFile == "" || c.ScorerFile == "" {
		return fmt.Errorf("%w: model and scorer file names are required", ErrInvalid)
	}
	return nil
}

func (c Config) ModelPath() string  { return filepath.Join(c.ModelDir, c.ModelFile) }
func (c Config) ScorerPath() string { return filepath.Join(c.ModelDir, c.ScorerFile) }
