package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"sync"

	"github.com/mattn/go-shellwords"
)

// execSpeaker pipes a JSON request into a synthesis command (say, piper, or a
// wrapper script) and waits for it to finish playing.
type execSpeaker struct {
	cmd   []string
	voice string
	mu    sync.Mutex
}

type execRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice,omitempty"`
}

func NewExecSpeaker(command, voice string) (Speaker, error) {
	parser := shellwords.NewParser()
	args, err := parser.Parse(command)
	if err != nil {
		return nil, fmt.Errorf("parse tts command: %w", err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("tts command empty")
	}
	return &execSpeaker{cmd: args, voice: voice}, nil
}

func (e *execSpeaker) Speak(ctx context.Context, text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	payload, err := json.Marshal(execRequest{Text: text, Voice: e.voice})
	if err != nil {
		return err
	}

	base := e.cmd[0]
	args := append([]string{}, e.cmd[1:]...)
	cmd := exec.CommandContext(ctx, base, args...)
	cmd.Stdin = bytes.NewReader(payload)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("tts command failed: %w: %s", err, stderr.String())
	}
	return nil
}
