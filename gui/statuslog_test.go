package gui

import (
	"fmt"
	"testing"
)

func TestStatusLog(t *testing.T) {
	l := StatusLog{Max: 3}
	for i := 0; i < 5; i++ {
		l.Push(fmt.Sprintf("s%d", i))
	}
	got := l.Lines()
	want := []string{"s2", "s3", "s4"}
	if len(got) != len(want) {
		t.Fatalf("Lines = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}

	unbounded := StatusLog{}
	for i := 0; i < 100; i++ {
		unbounded.Push("x")
	}
	if len(unbounded.Lines()) != 100 {
		t.Errorf("unbounded log dropped lines: %d", len(unbounded.Lines()))
	}
}
