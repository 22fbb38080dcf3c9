package tts

import "context"

// Speaker voices a question prompt out loud before the candidate answers.
type Speaker interface {
	Speak(ctx context.Context, text string) error
}
