package hotkey

import "encoding/binary"

// Linux input_event layout and key codes.
const (
	inputEventSize = 24

	evKey      = 1
	keyRelease = 0
	keyPress   = 1

	keyLCtrl  = 29
	keyRCtrl  = 97
	keyLShift = 42
	keyRShift = 54
	keySpace  = 57
)

// chordState follows the modifiers across key events. Auto-repeat events
// leave it unchanged.
type chordState struct {
	ctrl, shift, space bool
}

// feed applies one key event and reports whether it completes the chord.
func (s *chordState) feed(code uint16, value int32) bool {
	set := func(held *bool) {
		switch value {
		case keyPress:
			*held = true
		case keyRelease:
			*held = false
		}
	}
	switch code {
	case keyLCtrl, keyRCtrl:
		set(&s.ctrl)
	case keyLShift, keyRShift:
		set(&s.shift)
	case keySpace:
		if value == keyPress && !s.space && s.ctrl && s.shift {
			s.space = true
			return true
		}
		if value == keyRelease {
			s.space = false
		}
	}
	return false
}

// scanEvents feeds every key record in buf to s and returns how many chord
// presses it contained. A trailing partial record is ignored.
func scanEvents(buf []byte, s *chordState) int {
	presses := 0
	for i := 0; i+inputEventSize <= len(buf); i += inputEventSize {
		if binary.LittleEndian.Uint16(buf[i+16:]) != evKey {
			continue
		}
		code := binary.LittleEndian.Uint16(buf[i+18:])
		value := int32(binary.LittleEndian.Uint32(buf[i+20:]))
		if s.feed(code, value) {
			presses++
		}
	}
	return presses
}
