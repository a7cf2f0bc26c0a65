package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"hark/audio"
	"hark/log"
	"hark/ui"
)

type command struct {
	name  string
	sleep time.Duration
}

// parseCommand reads one stdin driver line: TOGGLE, START, STOP, WAIT,
// WAIT_AUDIO_DONE, SLEEP <ms> or QUIT.
func parseCommand(line string) (command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return command{}, nil
	}
	name := strings.ToUpper(fields[0])
	switch name {
	case "TOGGLE", "START", "STOP", "WAIT", "WAIT_AUDIO_DONE", "QUIT":
		if len(fields) != 1 {
			return command{}, fmt.Errorf("%s takes no arguments", name)
		}
		return command{name: name}, nil
	case "SLEEP":
		if len(fields) != 2 {
			return command{}, fmt.Errorf("usage: SLEEP <ms>")
		}
		ms, err := strconv.Atoi(fields[1])
		if err != nil || ms < 0 {
			return command{}, fmt.Errorf("SLEEP: bad duration %q", fields[1])
		}
		return command{name: name, sleep: time.Duration(ms) * time.Millisecond}, nil
	}
	return command{}, fmt.Errorf("unknown command %q", fields[0])
}

// runHeadless prints display updates as lines on out and drives the
// controller from commands on in. With a live microphone the global hotkey
// also toggles.
func (a *app) runHeadless(ctx context.Context, in io.Reader, out io.Writer) int {
	drained := make(chan struct{})
	go func() {
		a.queue.Run(context.Background(), ui.LineSink{W: out})
		close(drained)
	}()

	fake, replay := a.audio.(*audio.FakeContext)
	if !replay {
		a.startHotkey(ctx.Done())
	}

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	code := 0
loop:
	for {
		var line string
		select {
		case <-ctx.Done():
			break loop
		case l, ok := <-lines:
			if !ok {
				break loop
			}
			line = l
		}
		cmd, err := parseCommand(line)
		if err != nil {
			log.Warnf("test driver: %v", err)
			a.queue.SetStatus("Error: " + err.Error())
			code = 1
			continue
		}
		switch cmd.name {
		case "TOGGLE":
			a.toggle()
		case "START":
			a.ctl.Start()
		case "STOP":
			a.ctl.Stop()
		case "WAIT":
			a.ctl.Wait()
		case "WAIT_AUDIO_DONE":
			if replay {
				select {
				case <-fake.AudioDone():
				case <-ctx.Done():
				}
			}
		case "SLEEP":
			select {
			case <-time.After(cmd.sleep):
			case <-ctx.Done():
			}
		case "QUIT":
			break loop
		}
	}

	a.close()
	<-drained
	return code
}
