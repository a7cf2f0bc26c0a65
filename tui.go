package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"hark/clipboard"
	"hark/log"
	"hark/ui"
)

// TUI message types
type updateMsg ui.Update
type copiedMsg struct{ err error }
type tickMsg time.Time

const (
	statusLogSize = 8
	leftWidth     = 36
)

type tuiModel struct {
	toggle     func()
	button     string
	frame      int
	statusLog  []string
	transcript string
	final      bool
	count      int    // final transcripts so far
	lastFinal  string // what "c" copies
	engineLine string
	deviceLine string
	width      int
	height     int
}

var (
	recStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	standbyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	buttonStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("231")).Background(lipgloss.Color("238")).Padding(0, 1)
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("239"))
	boldHelp     = lipgloss.NewStyle().Foreground(lipgloss.Color("239")).Bold(true)
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("246"))
	partialStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Italic(true)
	finalStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
)

// programSink forwards queued updates into the bubbletea event loop.
// Program.Send delivers in call order.
type programSink struct{ p *tea.Program }

func (s programSink) Apply(u ui.Update) { s.p.Send(updateMsg(u)) }

func newTUIModel(toggle func(), engineName, device string) tuiModel {
	return tuiModel{
		toggle:     toggle,
		button:     ui.LabelStart,
		engineLine: "engine: " + engineName,
		deviceLine: "mic: " + device,
	}
}

func (a *app) runTUI(ctx context.Context) int {
	m := newTUIModel(a.toggle, a.eng.Name(), deviceLabel(a.device))
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	go a.queue.Run(ctx, programSink{p})
	a.startHotkey(ctx.Done())

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		log.Errorf("TUI error: %v", err)
		return 1
	}
	return 0
}

func tuiTick() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m tuiModel) Init() tea.Cmd {
	return tuiTick()
}

func (m tuiModel) recording() bool { return m.button == ui.LabelStop }

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case " ", "enter":
			// Toggle may load the model; keep it off the event loop.
			toggle := m.toggle
			return m, func() tea.Msg {
				toggle()
				return nil
			}
		case "c":
			if m.lastFinal == "" {
				return m, nil
			}
			text := m.lastFinal
			return m, func() tea.Msg {
				return copiedMsg{err: clipboard.Copy(text)}
			}
		}

	case tickMsg:
		m.frame++
		return m, tuiTick()

	case updateMsg:
		switch msg.Kind {
		case ui.KindStatus:
			m.pushStatus(msg.Text)
		case ui.KindTranscript:
			m.transcript = msg.Text
			m.final = msg.Final
			if msg.Final {
				m.count++
				m.lastFinal = msg.Text
			}
		case ui.KindButton:
			m.button = msg.Text
		}

	case copiedMsg:
		if msg.err != nil {
			m.pushStatus("Clipboard copy failed: " + msg.err.Error())
		} else {
			m.pushStatus("Copied to clipboard.")
		}
	}
	return m, nil
}

func (m *tuiModel) pushStatus(text string) {
	m.statusLog = append(m.statusLog, text)
	if n := len(m.statusLog); n > statusLogSize {
		m.statusLog = m.statusLog[n-statusLogSize:]
	}
}

func (m tuiModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var left []string
	left = append(left, titleStyle.Render("hark "+version), "")
	if m.recording() {
		dot := "●"
		if m.frame%2 == 1 {
			dot = " "
		}
		left = append(left, recStyle.Render(dot+" REC"))
	} else {
		left = append(left, standbyStyle.Render("○ STANDBY"))
	}
	left = append(left, "", buttonStyle.Render(m.button), "")
	left = append(left, infoStyle.Render(m.engineLine), infoStyle.Render(m.deviceLine), "")
	left = append(left,
		boldHelp.Render("space")+helpStyle.Render(" start/stop"),
		boldHelp.Render("Ctrl+Shift+Space")+helpStyle.Render(" anywhere"),
		boldHelp.Render("c")+helpStyle.Render(" copy last transcript"),
		boldHelp.Render("q")+helpStyle.Render(" quit"),
	)

	rightWidth := max(m.width-leftWidth-1, 20)
	wrapWidth := max(rightWidth-2, 10)

	var right strings.Builder
	if m.transcript != "" || m.count > 0 {
		label := "Live transcript"
		style := partialStyle
		if m.final {
			label = fmt.Sprintf("Transcript (#%d)", m.count)
			style = finalStyle
		}
		right.WriteString(titleStyle.Render(label) + "\n\n")
		for _, line := range wrapText(m.transcript, wrapWidth) {
			right.WriteString(style.Render(line) + "\n")
		}
	} else {
		right.WriteString(standbyStyle.Render("No transcriptions yet") + "\n")
	}

	if len(m.statusLog) > 0 {
		right.WriteString("\n" + titleStyle.Render("Status") + "\n")
		for _, s := range m.statusLog {
			for _, line := range wrapText(s, wrapWidth) {
				right.WriteString(statusStyle.Render(line) + "\n")
			}
		}
	}

	leftPanel := lipgloss.NewStyle().
		Width(leftWidth).
		Height(m.height).
		Render(strings.Join(left, "\n"))
	rightPanel := lipgloss.NewStyle().
		Width(rightWidth).
		Height(m.height).
		PaddingLeft(1).
		Render(right.String())

	return lipgloss.JoinHorizontal(lipgloss.Top, leftPanel, rightPanel)
}

func wrapText(text string, width int) []string {
	if len(text) == 0 {
		return []string{""}
	}
	if width <= 0 {
		width = 1
	}

	var lines []string
	for len(text) > width {
		// Find last space within width
		splitAt := width
		for i := width; i > 0; i-- {
			if text[i] == ' ' {
				splitAt = i
				break
			}
		}
		lines = append(lines, text[:splitAt])
		text = strings.TrimLeft(text[splitAt:], " ")
	}
	if len(text) > 0 {
		lines = append(lines, text)
	}
	return lines
}
