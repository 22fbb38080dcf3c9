package tts

import "context"

type mockSpeaker struct{}

func NewMockSpeaker() Speaker {
	return &mockSpeaker{}
}

func (m *mockSpeaker) Speak(ctx context.Context, _ string) error {
	return ctx.Err()
}
