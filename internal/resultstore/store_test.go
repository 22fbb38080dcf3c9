package resultstore

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/vivalabs/viva/internal/config"
)

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func openStore(t *testing.T) *Store {
	t.Helper()
	cfg := config.StoreConfig{Path: filepath.Join(t.TempDir(), "interviews.db")}
	s, err := Open(context.Background(), cfg, newLogger())
	if err != nil {
		t.Fatalf("open result store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestAppendAndList(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	sessionID := "session-123"
	if err := s.AppendSession(ctx, sessionID, "Ada"); err != nil {
		t.Fatalf("append session: %v", err)
	}
	if err := s.AppendResult(ctx, sessionID, "Ada", "What is 2+2?", "4", 10); err != nil {
		t.Fatalf("append result: %v", err)
	}
	if err := s.AppendResult(ctx, sessionID, "Ada", "Capital of France?", "London", 0); err != nil {
		t.Fatalf("append result: %v", err)
	}

	rows, err := s.ListSessionResults(ctx, sessionID)
	if err != nil {
		t.Fatalf("list results: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Question != "What is 2+2?" || rows[0].Response != "4" || rows[0].Score != 10 {
		t.Fatalf("unexpected first row: %+v", rows[0])
	}
	if rows[1].Question != "Capital of France?" || rows[1].Response != "London" || rows[1].Score != 0 {
		t.Fatalf("unexpected second row: %+v", rows[1])
	}
	if rows[0].Candidate != "Ada" {
		t.Fatalf("unexpected candidate: %q", rows[0].Candidate)
	}
}

func TestAppendSessionIsIdempotent(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	if err := s.AppendSession(ctx, "s1", "Ada"); err != nil {
		t.Fatalf("append session: %v", err)
	}
	if err := s.AppendSession(ctx, "s1", "Ada"); err != nil {
		t.Fatalf("second append session: %v", err)
	}
}

func TestSchemaInitIsIdempotent(t *testing.T) {
	tmp := t.TempDir()
	cfg := config.StoreConfig{Path: filepath.Join(tmp, "interviews.db")}
	ctx := context.Background()

	first, err := Open(ctx, cfg, newLogger())
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if err := first.AppendSession(ctx, "s1", "Ada"); err != nil {
		t.Fatalf("append session: %v", err)
	}
	if err := first.AppendResult(ctx, "s1", "Ada", "Q", "A", 5); err != nil {
		t.Fatalf("append result: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Reopening must keep existing rows.
	second, err := Open(ctx, cfg, newLogger())
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	t.Cleanup(func() { _ = second.Close() })

	rows, err := second.ListSessionResults(ctx, "s1")
	if err != nil {
		t.Fatalf("list results: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row after reopen, got %d", len(rows))
	}
}

func TestRowsCarryClockTimestamp(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.clock = func() time.Time { return fixed }

	if err := s.AppendSession(ctx, "s1", "Ada"); err != nil {
		t.Fatalf("append session: %v", err)
	}
	if err := s.AppendResult(ctx, "s1", "Ada", "Q", "A", 5); err != nil {
		t.Fatalf("append result: %v", err)
	}
	rows, err := s.ListSessionResults(ctx, "s1")
	if err != nil {
		t.Fatalf("list results: %v", err)
	}
	if !rows[0].CreatedAt.Equal(fixed) {
		t.Fatalf("created_at = %v, want %v", rows[0].CreatedAt, fixed)
	}
}

func TestListUnknownSessionIsEmpty(t *testing.T) {
	s := openStore(t)
	rows, err := s.ListSessionResults(context.Background(), "nope")
	if err != nil {
		t.Fatalf("list results: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected no rows, got %d", len(rows))
	}
}
