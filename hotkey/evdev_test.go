package hotkey

import (
	"encoding/binary"
	"testing"
)

type keyEvent struct {
	typ   uint16
	code  uint16
	value int32
}

func encode(events ...keyEvent) []byte {
	buf := make([]byte, 0, len(events)*inputEventSize)
	for _, e := range events {
		rec := make([]byte, inputEventSize)
		binary.LittleEndian.PutUint16(rec[16:], e.typ)
		binary.LittleEndian.PutUint16(rec[18:], e.code)
		binary.LittleEndian.PutUint32(rec[20:], uint32(e.value))
		buf = append(buf, rec...)
	}
	return buf
}

func key(code uint16, value int32) keyEvent { return keyEvent{evKey, code, value} }

func TestScanEvents(t *testing.T) {
	const repeat = 2
	tests := []struct {
		name   string
		events []keyEvent
		want   int
	}{
		{"chord", []keyEvent{key(keyLCtrl, keyPress), key(keyLShift, keyPress), key(keySpace, keyPress)}, 1},
		{"right modifiers", []keyEvent{key(keyRCtrl, keyPress), key(keyRShift, keyPress), key(keySpace, keyPress)}, 1},
		{"space alone", []keyEvent{key(keySpace, keyPress)}, 0},
		{"missing shift", []keyEvent{key(keyLCtrl, keyPress), key(keySpace, keyPress)}, 0},
		{"ctrl released first", []keyEvent{
			key(keyLCtrl, keyPress), key(keyLShift, keyPress), key(keyLCtrl, keyRelease), key(keySpace, keyPress),
		}, 0},
		{"auto-repeat counts once", []keyEvent{
			key(keyLCtrl, keyPress), key(keyLShift, keyPress), key(keyLCtrl, repeat),
			key(keySpace, keyPress), key(keySpace, repeat), key(keySpace, repeat),
		}, 1},
		{"two presses", []keyEvent{
			key(keyLCtrl, keyPress), key(keyLShift, keyPress),
			key(keySpace, keyPress), key(keySpace, keyRelease),
			key(keySpace, keyPress), key(keySpace, keyRelease),
		}, 2},
		{"non-key events ignored", []keyEvent{
			{0, 0, 0}, key(keyLCtrl, keyPress), {4, 4, 57}, key(keyLShift, keyPress), key(keySpace, keyPress),
		}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var st chordState
			if got := scanEvents(encode(tt.events...), &st); got != tt.want {
				t.Errorf("presses = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestScanEventsAcrossReads(t *testing.T) {
	var st chordState
	scanEvents(encode(key(keyLCtrl, keyPress), key(keyLShift, keyPress)), &st)
	buf := encode(key(keySpace, keyPress))
	if got := scanEvents(append(buf, 0, 0, 0), &st); got != 1 {
		t.Errorf("presses = %d, want 1 with modifiers held from an earlier read", got)
	}
}
