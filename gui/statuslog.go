package gui

// StatusLog keeps the most recent Max status lines.
type StatusLog struct {
	Max   int
	lines []string
}

func (l *StatusLog) Push(text string) {
	l.lines = append(l.lines, text)
	if l.Max > 0 && len(l.lines) > l.Max {
		l.lines = append(l.lines[:0], l.lines[len(l.lines)-l.Max:]...)
	}
}

func (l *StatusLog) Lines() []string { return l.lines }
