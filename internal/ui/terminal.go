package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/vivalabs/viva/internal/session"
)

// Terminal renders session events to a writer and reads the candidate's name
// from a reader. It holds no session state of its own.
type Terminal struct {
	out io.Writer
	in  *bufio.Reader
}

func NewTerminal(out io.Writer, in io.Reader) *Terminal {
	return &Terminal{out: out, in: bufio.NewReader(in)}
}

// PromptCandidateName asks until a non-empty name is entered or input ends.
func (t *Terminal) PromptCandidateName() (string, error) {
	for {
		fmt.Fprint(t.out, "Candidate name: ")
		line, err := t.in.ReadString('\n')
		name := strings.TrimSpace(line)
		if name != "" {
			return name, nil
		}
		if err != nil {
			return "", fmt.Errorf("read candidate name: %w", err)
		}
		fmt.Fprintln(t.out, "A name is required to start the session.")
	}
}

func (t *Terminal) SessionStarted(candidate string, questionCount int) {
	fmt.Fprintf(t.out, "\nInterview session for %s — %d questions\n", candidate, questionCount)
}

func (t *Terminal) QuestionAsked(index, total int, question string) {
	fmt.Fprintf(t.out, "\nQuestion %d/%d: %s\n", index+1, total, question)
}

func (t *Terminal) Listening() {
	fmt.Fprintln(t.out, "Listening... speak now.")
}

func (t *Terminal) Transcript(text string) {
	fmt.Fprintf(t.out, "Transcribed answer: %s\n", text)
}

func (t *Terminal) Warning(message string) {
	fmt.Fprintf(t.out, "! %s\n", message)
}

func (t *Terminal) Scored(_, score int) {
	fmt.Fprintf(t.out, "Score: %d/10\n", score)
}

func (t *Terminal) Completed(result session.Result) {
	fmt.Fprintf(t.out, "\nFinal score: %d/%d\n", result.TotalScore, result.MaxScore)
	fmt.Fprintln(t.out, "Transcript:")
	for _, r := range result.Responses {
		answer := r.Answer
		if answer == "" {
			answer = "(no answer)"
		}
		fmt.Fprintf(t.out, "  Q: %s\n  A: %s (%d/10)\n", r.Question, answer, r.Score)
	}
}
