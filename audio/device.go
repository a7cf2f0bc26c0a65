package audio

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// ErrSelectionAborted is returned when the user cancels the device picker.
var ErrSelectionAborted = errors.New("device selection aborted")

type pickerAction int

const (
	pickerNone pickerAction = iota
	pickerUp
	pickerDown
	pickerConfirm
	pickerAbort
)

// decodeKey maps one read from a raw-mode terminal to a picker action.
func decodeKey(b []byte) pickerAction {
	switch {
	case len(b) == 1:
		switch b[0] {
		case '\r', '\n':
			return pickerConfirm
		case 3, 'q': // ctrl+c
			return pickerAbort
		case 'j':
			return pickerDown
		case 'k':
			return pickerUp
		}
	case len(b) == 3 && b[0] == 0x1b && b[1] == '[':
		switch b[2] {
		case 'A':
			return pickerUp
		case 'B':
			return pickerDown
		}
	}
	return pickerNone
}

func renderDevices(w io.Writer, devices []DeviceInfo, cursor int) {
	fmt.Fprint(w, "\r\x1b[J")
	fmt.Fprint(w, "Select input device (↑/↓, Enter to confirm):\r\n\r\n")
	for i, d := range devices {
		btTag := ""
		if IsBluetooth(d.Name) {
			btTag = " \x1b[33m[lower recognition quality]\x1b[0m"
		}
		if i == cursor {
			fmt.Fprintf(w, "  \x1b[1;36m▶ %s%s\x1b[0m\r\n", d.Name, btTag)
		} else {
			fmt.Fprintf(w, "    %s%s\r\n", d.Name, btTag)
		}
	}
}

// SelectDevice presents an interactive picker on the terminal. With a single
// device it returns that device without prompting.
func SelectDevice(ctx Context) (*DeviceInfo, error) {
	devices, err := ctx.Devices()
	if err != nil {
		return nil, fmt.Errorf("enumerating devices: %w", err)
	}
	if len(devices) == 0 {
		return nil, fmt.Errorf("no capture devices found")
	}
	if len(devices) == 1 {
		return &devices[0], nil
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("setting raw mode: %w", err)
	}
	defer term.Restore(fd, oldState)

	out := os.Stdout
	cursor := 0
	renderDevices(out, devices, cursor)

	buf := make([]byte, 3)
	for {
		n, err := os.Stdin.Read(buf)
		if err != nil {
			return nil, fmt.Errorf("reading input: %w", err)
		}
		switch decodeKey(buf[:n]) {
		case pickerConfirm:
			fmt.Fprint(out, "\r\n")
			return &devices[cursor], nil
		case pickerAbort:
			fmt.Fprint(out, "\r\n")
			return nil, ErrSelectionAborted
		case pickerUp:
			cursor = max(cursor-1, 0)
		case pickerDown:
			cursor = min(cursor+1, len(devices)-1)
		}
		fmt.Fprintf(out, "\x1b[%dA", len(devices)+2)
		renderDevices(out, devices, cursor)
	}
}
