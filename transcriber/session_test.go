package transcriber

import (
	"errors"
	"testing"

	"hark/engine"
)

func begin(t *testing.T, cfg engine.FakeConfig) (*Session, *engine.Fake) {
	t.Helper()
	eng := engine.NewFake(cfg)
	model, err := eng.LoadModel("model")
	if err != nil {
		t.Fatalf("LoadModel: %v", err)
	}
	sess, err := Begin(model)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	return sess, eng
}

func TestSessionFeedPeekEnd(t *testing.T) {
	sess, eng := begin(t, engine.FakeConfig{Words: []string{"hello", "world"}})
	frame := make([]int16, 2048)

	want := []string{"hello", "hello world", "hello world"}
	for i, w := range want {
		if err := sess.Feed(frame); err != nil {
			t.Fatalf("Feed %d: %v", i, err)
		}
		got, err := sess.Peek()
		if err != nil {
			t.Fatalf("Peek %d: %v", i, err)
		}
		if got != w {
			t.Errorf("Peek %d = %q, want %q", i, got, w)
		}
	}

	final, err := sess.End()
	if err != nil {
		t.Fatalf("End: %v", err)
	}
	if final != "hello world" {
		t.Errorf("End() = %q, want %q", final, "hello world")
	}

	st := sess.Stats()
	if st.Frames != 3 || st.Samples != 3*2048 {
		t.Errorf("stats frames=%d samples=%d", st.Frames, st.Samples)
	}
	if st.Partials != 2 {
		t.Errorf("Partials = %d, want 2", st.Partials)
	}
	if got := st.AudioSeconds(sess.SampleRate()); got != 0.384 {
		t.Errorf("AudioSeconds = %v, want 0.384", got)
	}
	if eng.Finished() != 1 {
		t.Errorf("engine finished %d streams, want 1", eng.Finished())
	}
	if len(sess.Metrics()) == 0 {
		t.Error("Metrics() empty")
	}
}

func TestSessionUnusableAfterEnd(t *testing.T) {
	sess, _ := begin(t, engine.FakeConfig{})
	if _, err := sess.End(); err != nil {
		t.Fatal(err)
	}
	if err := sess.Feed(make([]int16, 4)); !errors.Is(err, ErrSessionEnded) {
		t.Errorf("Feed after End: %v", err)
	}
	if _, err := sess.Peek(); !errors.Is(err, ErrSessionEnded) {
		t.Errorf("Peek after End: %v", err)
	}
	if _, err := sess.End(); !errors.Is(err, ErrSessionEnded) {
		t.Errorf("End after End: %v", err)
	}
}

func TestSessionWrapsEngineErrors(t *testing.T) {
	sess, _ := begin(t, engine.FakeConfig{FailFeedAt: 2})
	frame := make([]int16, 16)
	if err := sess.Feed(frame); err != nil {
		t.Fatal(err)
	}
	err := sess.Feed(frame)
	if !errors.Is(err, ErrEngine) {
		t.Fatalf("err = %v, want ErrEngine", err)
	}
	if !errors.Is(err, engine.ErrFakeFeed) {
		t.Errorf("err = %v, want wrapped ErrFakeFeed", err)
	}
	if sess.Stats().Frames != 1 {
		t.Errorf("Frames = %d, want 1", sess.Stats().Frames)
	}
}

func TestSessionRecoversEnginePanic(t *testing.T) {
	sess, _ := begin(t, engine.FakeConfig{PanicAt: 1})
	if err := sess.Feed(make([]int16, 16)); !errors.Is(err, ErrEngine) {
		t.Fatalf("err = %v, want ErrEngine", err)
	}
}

func TestBeginFailure(t *testing.T) {
	eng := engine.NewFake(engine.FakeConfig{CreateErr: errors.New("out of memory")})
	model, _ := eng.LoadModel("model")
	if _, err := Begin(model); !errors.Is(err, ErrEngine) {
		t.Fatalf("err = %v, want ErrEngine", err)
	}
}

func TestEndFailure(t *testing.T) {
	sess, _ := begin(t, engine.FakeConfig{FinishErr: errors.New("decoder crashed")})
	if _, err := sess.End(); !errors.Is(err, ErrEngine) {
		t.Fatalf("err = %v, want ErrEngine", err)
	}
}
