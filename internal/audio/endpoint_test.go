package audio

import (
	"testing"
	"time"
)

func loudFrame(n int) []int16 {
	frame := make([]int16, n)
	for i := range frame {
		if i%2 == 0 {
			frame[i] = 8000
		} else {
			frame[i] = -8000
		}
	}
	return frame
}

func quietFrame(n int) []int16 {
	return make([]int16, n)
}

func newTestEndpointer() *Endpointer {
	// 30ms frames, 90ms end pause, 300ms wait budget.
	return NewEndpointer(0.015, 30*time.Millisecond, 90*time.Millisecond, 300*time.Millisecond)
}

func TestSilenceOnlyTimesOut(t *testing.T) {
	ep := newTestEndpointer()
	for i := 0; i < 9; i++ {
		if d := ep.Feed(quietFrame(480)); d != Continue {
			t.Fatalf("frame %d: expected Continue, got %v", i, d)
		}
	}
	if d := ep.Feed(quietFrame(480)); d != NoSpeechTimeout {
		t.Fatalf("expected NoSpeechTimeout, got %v", d)
	}
	if ep.Speaking() {
		t.Fatal("endpointer must not report speech for silence")
	}
}

func TestSpeechThenPauseEnds(t *testing.T) {
	ep := newTestEndpointer()
	for i := 0; i < 5; i++ {
		if d := ep.Feed(loudFrame(480)); d != Continue {
			t.Fatalf("loud frame %d: expected Continue, got %v", i, d)
		}
	}
	if !ep.Speaking() {
		t.Fatal("expected speech onset after loud frames")
	}
	// 90ms pause = 3 frames of 30ms.
	if d := ep.Feed(quietFrame(480)); d != Continue {
		t.Fatalf("expected Continue during pause, got %v", d)
	}
	if d := ep.Feed(quietFrame(480)); d != Continue {
		t.Fatalf("expected Continue during pause, got %v", d)
	}
	if d := ep.Feed(quietFrame(480)); d != EndOfSpeech {
		t.Fatalf("expected EndOfSpeech, got %v", d)
	}
}

func TestShortPauseDoesNotEndSpeech(t *testing.T) {
	ep := newTestEndpointer()
	for i := 0; i < 3; i++ {
		ep.Feed(loudFrame(480))
	}
	ep.Feed(quietFrame(480))
	ep.Feed(quietFrame(480))
	// Speech resumes before the pause budget elapses.
	if d := ep.Feed(loudFrame(480)); d != Continue {
		t.Fatalf("expected Continue after resumed speech, got %v", d)
	}
	ep.Feed(quietFrame(480))
	ep.Feed(quietFrame(480))
	if d := ep.Feed(quietFrame(480)); d != EndOfSpeech {
		t.Fatalf("expected EndOfSpeech after full pause, got %v", d)
	}
}

func TestSpeechSuppressesTimeout(t *testing.T) {
	ep := newTestEndpointer()
	for i := 0; i < 3; i++ {
		ep.Feed(loudFrame(480))
	}
	// Once speech was heard the wait budget no longer applies.
	for i := 0; i < 2; i++ {
		if d := ep.Feed(quietFrame(480)); d == NoSpeechTimeout {
			t.Fatal("timeout must not fire after speech onset")
		}
	}
}

func TestSingleLoudFrameIsNotSpeech(t *testing.T) {
	ep := newTestEndpointer()
	ep.Feed(loudFrame(480))
	if ep.Speaking() {
		t.Fatal("one loud frame must not count as speech onset")
	}
}

func TestRMS(t *testing.T) {
	if got := rms(nil); got != 0 {
		t.Fatalf("rms(nil) = %f, want 0", got)
	}
	if got := rms(quietFrame(100)); got != 0 {
		t.Fatalf("rms(silence) = %f, want 0", got)
	}
	frame := make([]int16, 100)
	for i := range frame {
		frame[i] = 16384
	}
	got := rms(frame)
	if got < 0.49 || got > 0.51 {
		t.Fatalf("rms(half-scale) = %f, want ~0.5", got)
	}
}

func TestPCMRoundTrip(t *testing.T) {
	samples := []int16{0, 1, -1, 32767, -32768}
	data := int16ToBytes(samples)
	back := bytesToInt16(data, uint32(len(samples)))
	if len(back) != len(samples) {
		t.Fatalf("round trip length %d, want %d", len(back), len(samples))
	}
	for i := range samples {
		if back[i] != samples[i] {
			t.Fatalf("sample %d: got %d, want %d", i, back[i], samples[i])
		}
	}
}
