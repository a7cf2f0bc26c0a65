//go:build vosk

package engine

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	vosk "github.com/alphacep/vosk-api/go"
)

const voskSampleRate = 16000

func VoskAvailable() bool { return true }

// Vosk runs the Kaldi-based vosk recognizer in-process. The scorer artifact
// is a JSON array of phrases used as the recognition grammar; an empty array
// leaves decoding unconstrained.
type Vosk struct{}

func NewVosk() Engine {
	vosk.SetLogLevel(-1)
	return &Vosk{}
}

func (v *Vosk) Name() string { return NameVosk }

func (v *Vosk) LoadModel(path string) (Model, error) {
	m, err := vosk.NewModel(path)
	if err != nil {
		return nil, fmt.Errorf("vosk: load model %s: %w", path, err)
	}
	return &voskModel{model: m}, nil
}

type voskModel struct {
	model   *vosk.VoskModel
	grammar string
}

func (m *voskModel) EnableScorer(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("vosk: read scorer: %w", err)
	}
	var phrases []string
	if err := json.Unmarshal(data, &phrases); err != nil {
		return fmt.Errorf("vosk: scorer %s is not a JSON phrase list: %w", path, err)
	}
	if len(phrases) == 0 {
		m.grammar = ""
		return nil
	}
	m.grammar = string(data)
	return nil
}

func (m *voskModel) SampleRate() int { return voskSampleRate }

func (m *voskModel) CreateStream() (Stream, error) {
	var (
		rec *vosk.VoskRecognizer
		err error
	)
	if m.grammar != "" {
		rec, err = vosk.NewRecognizerGrm(m.model, voskSampleRate, m.grammar)
	} else {
		rec, err = vosk.NewRecognizer(m.model, voskSampleRate)
	}
	if err != nil {
		return nil, fmt.Errorf("vosk: create recognizer: %w", err)
	}
	return &voskStream{rec: rec}, nil
}

func (m *voskModel) Release() {
	if m.model != nil {
		m.model.Free()
		m.model = nil
	}
}

type voskStream struct {
	rec       *vosk.VoskRecognizer
	committed []string
	pcm       []byte
}

type voskResult struct {
	Text    string `json:"text"`
	Partial string `json:"partial"`
}

func parseVosk(raw string) voskResult {
	var r voskResult
	_ = json.Unmarshal([]byte(raw), &r)
	return r
}

func (s *voskStream) commit(text string) {
	if text = strings.TrimSpace(text); text != "" {
		s.committed = append(s.committed, text)
	}
}

func (s *voskStream) FeedAudio(samples []int16) error {
	if s.rec == nil {
		return errors.New("vosk: stream finished")
	}
	s.pcm = s.pcm[:0]
	for _, v := range samples {
		s.pcm = binary.LittleEndian.AppendUint16(s.pcm, uint16(v))
	}
	switch s.rec.AcceptWaveform(s.pcm) {
	case -1:
		return errors.New("vosk: accept waveform failed")
	case 1:
		s.commit(parseVosk(s.rec.Result()).Text)
	}
	return nil
}

func (s *voskStream) IntermediateDecode() (string, error) {
	if s.rec == nil {
		return "", errors.New("vosk: stream finished")
	}
	parts := append([]string(nil), s.committed...)
	if p := strings.TrimSpace(parseVosk(s.rec.PartialResult()).Partial); p != "" {
		parts = append(parts, p)
	}
	return strings.Join(parts, " "), nil
}

func (s *voskStream) FinishStream() (string, error) {
	if s.rec == nil {
		return "", errors.New("vosk: stream finished")
	}
	s.commit(parseVosk(s.rec.FinalResult()).Text)
	s.rec.Free()
	s.rec = nil
	return strings.Join(s.committed, " "), nil
}
