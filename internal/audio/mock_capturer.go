package audio

import (
	"context"
	"time"
)

type mockCapturer struct {
	pcm []byte
	err error
}

// NewMockCapturer returns a capturer that yields canned PCM. Used in tests and
// when audio.mode is mock (headless runs against the mock recognizer).
func NewMockCapturer(pcm []byte, err error) Capturer {
	return &mockCapturer{pcm: pcm, err: err}
}

func (m *mockCapturer) Capture(ctx context.Context, _ time.Duration) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.err != nil {
		return nil, m.err
	}
	out := make([]byte, len(m.pcm))
	copy(out, m.pcm)
	return out, nil
}
