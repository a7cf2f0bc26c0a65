package log

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	diagLog        zerolog.Logger
	diagFile       *os.File
	transcribeFile *os.File
	logMu          sync.Mutex
	logReady       bool
	pid            int
	dir            string
)

func ResolveDir(flagPath string) (string, error) {
	// Priority 1: -logpath flag
	if flagPath != "" {
		return absPath(flagPath)
	}

	// Priority 2: HARK_LOG_PATH environment variable
	if envPath := os.Getenv("HARK_LOG_PATH"); envPath != "" {
		return absPath(envPath)
	}

	// Priority 3: Default OS-specific location
	return defaultDir()
}

func absPath(p string) (string, error) {
	if filepath.IsAbs(p) {
		return p, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, p), nil
}

func SetDir(d string) {
	dir = d
}

func Dir() string {
	return dir
}

func EnsureDir() error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	return nil
}

func Init() error {
	logMu.Lock()
	defer logMu.Unlock()

	if err := EnsureDir(); err != nil {
		return err
	}

	pid = os.Getpid()

	var err error

	diagPath := filepath.Join(dir, "diagnostics_log.txt")
	diagFile, err = os.OpenFile(diagPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	transcribePath := filepath.Join(dir, "transcribe_log.txt")
	transcribeFile, err = os.OpenFile(transcribePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		diagFile.Close()
		return err
	}

	consoleWriter := zerolog.ConsoleWriter{
		Out:        diagFile,
		TimeFormat: "2006-01-02 15:04:05",
		NoColor:    true,
	}
	diagLog = zerolog.New(consoleWriter).With().Timestamp().Int("pid", pid).Logger()

	logReady = true
	return nil
}

func Close() {
	logMu.Lock()
	defer logMu.Unlock()
	if diagFile != nil {
		diagFile.Close()
		diagFile = nil
	}
	if transcribeFile != nil {
		transcribeFile.Close()
		transcribeFile = nil
	}
	logReady = false
}

func Info(msg string) {
	if logReady {
		diagLog.Info().Msg(msg)
	}
}

func Infof(format string, args ...any) {
	if logReady {
		diagLog.Info().Msg(fmt.Sprintf(format, args...))
	}
}

func Error(msg string) {
	if logReady {
		diagLog.Error().Msg(msg)
	}
}

func Errorf(format string, args ...any) {
	if logReady {
		diagLog.Error().Msg(fmt.Sprintf(format, args...))
	}
}

func Warn(msg string) {
	if logReady {
		diagLog.Warn().Msg(msg)
	}
}

func Warnf(format string, args ...any) {
	if logReady {
		diagLog.Warn().Msg(fmt.Sprintf(format, args...))
	}
}

func TranscriptionText(text string) {
	if !logReady {
		return
	}
	logMu.Lock()
	defer logMu.Unlock()
	line := fmt.Sprintf("%s\t[%d]\t%s\n", time.Now().Format("2006-01-02 15:04:05"), pid, text)
	transcribeFile.WriteString(line)
}

func SessionStart(engine, device, uiMode string) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("engine", engine).
		Str("device", device).
		Str("ui", uiMode).
		Msg("session_start")
}

func ModelLoaded(engine string, sampleRate int, scorer bool, took time.Duration) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("engine", engine).
		Int("sample_rate", sampleRate).
		Bool("scorer", scorer).
		Float64("load_ms", ms(took)).
		Msg("model_loaded")
}

func RecordingStart(id, device string, sampleRate, frameLength int) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("id", id).
		Str("device", device).
		Int("sample_rate", sampleRate).
		Int("frame_len", frameLength).
		Msg("recording_start")
}

// RecordingStop logs the end of a worker. err is nil on a clean stop.
func RecordingStop(id, reason string, err error) {
	if !logReady {
		return
	}
	ev := diagLog.Info()
	if err != nil {
		ev = diagLog.Error().Err(err)
	}
	ev.Str("id", id).Str("reason", reason).Msg("recording_stop")
}

type StreamStatsData struct {
	Frames     int
	Partials   int
	Dropped    int
	AudioS     float64
	FeedTime   time.Duration
	DecodeTime time.Duration
	FinishTime time.Duration
	Total      time.Duration
}

func StreamStats(id string, s StreamStatsData) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("id", id).
		Int("frames", s.Frames).
		Int("partials", s.Partials).
		Int("dropped_samples", s.Dropped).
		Float64("audio_s", s.AudioS).
		Float64("feed_ms", ms(s.FeedTime)).
		Float64("decode_ms", ms(s.DecodeTime)).
		Float64("finish_ms", ms(s.FinishTime)).
		Float64("total_ms", ms(s.Total)).
		Msg("stream_stats")
}

func SessionEnd(count int) {
	if !logReady {
		return
	}
	diagLog.Info().
		Int("count", count).
		Msg("session_end")
}

func ms(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
