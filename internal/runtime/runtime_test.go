package runtime

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/vivalabs/viva/internal/config"
)

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func writeQuestions(t *testing.T) string {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	cells := map[string]string{
		"A1": "Question", "B1": "Answer",
		"A2": "What is 2+2?", "B2": "4",
		"A3": "Capital of France?", "B3": "Paris",
	}
	for cell, v := range cells {
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			t.Fatalf("set cell: %v", err)
		}
	}
	path := filepath.Join(t.TempDir(), "questions.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save sheet: %v", err)
	}
	return path
}

func headlessConfig(t *testing.T) config.Config {
	cfg := config.Default()
	cfg.Questions.Path = writeQuestions(t)
	cfg.Audio.Mode = "mock"
	cfg.STT.Mode = "mock"
	cfg.Scoring.Mode = "exact"
	cfg.Store.Path = filepath.Join(t.TempDir(), "interviews.db")
	return cfg
}

func TestRunHeadlessSession(t *testing.T) {
	var out strings.Builder
	rt := New(headlessConfig(t), newLogger(), &out, strings.NewReader(""))

	if err := rt.Run(context.Background(), "Ada"); err != nil {
		t.Fatalf("run: %v", err)
	}

	got := out.String()
	// The mock recognizer never matches the reference answers.
	if !strings.Contains(got, "Final score: 0/20") {
		t.Fatalf("expected final score in output:\n%s", got)
	}
	if !strings.Contains(got, "Question 1/2") || !strings.Contains(got, "Question 2/2") {
		t.Fatalf("expected both questions in output:\n%s", got)
	}
}

func TestRunPromptsForCandidate(t *testing.T) {
	var out strings.Builder
	rt := New(headlessConfig(t), newLogger(), &out, strings.NewReader("Ada\n"))

	if err := rt.Run(context.Background(), ""); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), "Interview session for Ada") {
		t.Fatalf("expected prompted candidate name in output:\n%s", out.String())
	}
}

func TestRunFailsWithoutScoringCredential(t *testing.T) {
	cfg := headlessConfig(t)
	cfg.Scoring.Mode = "model"
	t.Setenv("OPENROUTER_API_KEY", "")

	var out strings.Builder
	rt := New(cfg, newLogger(), &out, strings.NewReader(""))
	err := rt.Run(context.Background(), "Ada")
	if err == nil {
		t.Fatal("expected startup failure without credential")
	}
	if !strings.Contains(err.Error(), "OPENROUTER_API_KEY") {
		t.Fatalf("error should name the missing variable: %v", err)
	}
}

func TestRunFailsOnMissingQuestions(t *testing.T) {
	cfg := headlessConfig(t)
	cfg.Questions.Path = filepath.Join(t.TempDir(), "absent.xlsx")

	var out strings.Builder
	rt := New(cfg, newLogger(), &out, strings.NewReader(""))
	if err := rt.Run(context.Background(), "Ada"); err == nil {
		t.Fatal("expected startup failure for missing question document")
	}
}
