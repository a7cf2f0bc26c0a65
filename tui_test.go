package main

import (
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"hark/ui"
)

func apply(t *testing.T, m tuiModel, msgs ...tea.Msg) tuiModel {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(tuiModel)
	}
	return m
}

func TestTUIModelTracksUpdates(t *testing.T) {
	m := newTUIModel(func() {}, "fake", "system default")
	m = apply(t, m,
		tea.WindowSizeMsg{Width: 100, Height: 30},
		updateMsg{Kind: ui.KindButton, Text: ui.LabelStop},
		updateMsg{Kind: ui.KindTranscript, Text: "hello"},
	)
	if !m.recording() {
		t.Error("expected recording after Stop Recording label")
	}
	if m.final || m.transcript != "hello" {
		t.Errorf("transcript = %q final=%v", m.transcript, m.final)
	}
	if v := m.View(); !strings.Contains(v, "Live transcript") || !strings.Contains(v, "REC") {
		t.Errorf("view while recording:\n%s", v)
	}

	m = apply(t, m,
		updateMsg{Kind: ui.KindTranscript, Text: "hello world", Final: true},
		updateMsg{Kind: ui.KindButton, Text: ui.LabelStart},
	)
	if m.recording() || m.count != 1 || m.lastFinal != "hello world" {
		t.Errorf("after final: recording=%v count=%d last=%q", m.recording(), m.count, m.lastFinal)
	}
	if v := m.View(); !strings.Contains(v, "Transcript (#1)") || !strings.Contains(v, "STANDBY") {
		t.Errorf("view after final:\n%s", v)
	}
}

func TestTUIStatusLogBounded(t *testing.T) {
	m := newTUIModel(func() {}, "fake", "mic")
	for i := 0; i < statusLogSize+5; i++ {
		m = apply(t, m, updateMsg{Kind: ui.KindStatus, Text: fmt.Sprintf("line %d", i)})
	}
	if len(m.statusLog) != statusLogSize {
		t.Fatalf("status log len = %d, want %d", len(m.statusLog), statusLogSize)
	}
	if m.statusLog[0] != "line 5" {
		t.Errorf("oldest kept = %q, want line 5", m.statusLog[0])
	}
}

func TestTUISpaceToggles(t *testing.T) {
	toggled := 0
	m := newTUIModel(func() { toggled++ }, "fake", "mic")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	if cmd == nil {
		t.Fatal("space produced no command")
	}
	cmd()
	if toggled != 1 {
		t.Errorf("toggled = %d, want 1", toggled)
	}
}

func TestWrapText(t *testing.T) {
	got := wrapText("the quick brown fox", 10)
	want := []string{"the quick", "brown fox"}
	if len(got) != len(want) {
		t.Fatalf("wrapText = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}
