//go:build gui

package gui

import (
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"hark/ui"
)

// App is the desktop front end: one toggle button, the live transcript and
// a status log. It is a ui.Sink; every widget change goes through fyne.Do.
type App struct {
	fyneApp    fyne.App
	window     fyne.Window
	button     *widget.Button
	transcript *widget.Label
	status     *widget.Label
	log        StatusLog
	onToggle   func()
	onReady    func()
}

func NewApp(onToggle, onReady func()) *App {
	return &App{onToggle: onToggle, onReady: onReady, log: StatusLog{Max: 50}}
}

// Run builds the window and blocks in the fyne event loop. It must be called
// from the main goroutine.
func Run(a *App) error {
	a.fyneApp = app.NewWithID("io.hark.gui")
	a.fyneApp.Settings().SetTheme(harkTheme{})
	a.window = a.fyneApp.NewWindow("hark")

	a.button = widget.NewButtonWithIcon(ui.LabelStart, theme.MediaRecordIcon(), func() {
		// Toggle may load the model.
		go a.onToggle()
	})
	a.transcript = widget.NewLabel("")
	a.transcript.Wrapping = fyne.TextWrapWord
	a.status = widget.NewLabel("")
	a.status.Wrapping = fyne.TextWrapWord
	a.status.TextStyle = fyne.TextStyle{Italic: true}

	body := container.NewVSplit(
		container.NewVScroll(a.transcript),
		container.NewVScroll(a.status),
	)
	body.SetOffset(0.6)
	a.window.SetContent(container.NewBorder(a.button, nil, nil, nil, body))
	a.window.Resize(fyne.NewSize(560, 420))

	if desk, ok := a.fyneApp.(desktop.App); ok {
		menu := fyne.NewMenu("hark",
			fyne.NewMenuItem("Start/Stop Recording", func() { go a.onToggle() }),
			fyne.NewMenuItem("Show", func() { a.window.Show() }),
		)
		desk.SetSystemTrayMenu(menu)
		desk.SetSystemTrayIcon(theme.MediaRecordIcon())
	}

	if a.onReady != nil {
		go a.onReady()
	}
	a.window.ShowAndRun()
	return nil
}

func (a *App) Quit() {
	if a.fyneApp != nil {
		fyne.Do(a.fyneApp.Quit)
	}
}

// Apply implements ui.Sink.
func (a *App) Apply(u ui.Update) {
	fyne.Do(func() {
		switch u.Kind {
		case ui.KindStatus:
			a.log.Push(u.Text)
			a.status.SetText(strings.Join(a.log.Lines(), "\n"))
		case ui.KindTranscript:
			a.transcript.TextStyle = fyne.TextStyle{Italic: !u.Final}
			a.transcript.SetText(u.Text)
		case ui.KindButton:
			a.button.SetText(u.Text)
			if u.Text == ui.LabelStop {
				a.button.SetIcon(theme.MediaStopIcon())
				a.button.Importance = widget.DangerImportance
			} else {
				a.button.SetIcon(theme.MediaRecordIcon())
				a.button.Importance = widget.MediumImportance
			}
			a.button.Refresh()
		}
	})
}
