package stt

import (
	"context"
	"errors"
)

// ErrUnintelligible reports audio the backend could not turn into text. The
// session loop treats it as an empty answer, not a failure.
var ErrUnintelligible = errors.New("audio not intelligible")

// TranscriptResult captures recognizer output.
type TranscriptResult struct {
	Text       string
	Confidence float64
}

// Recognizer abstracts STT backends.
type Recognizer interface {
	Transcribe(ctx context.Context, pcm []byte, sampleRate int, channels int) (TranscriptResult, error)
}
