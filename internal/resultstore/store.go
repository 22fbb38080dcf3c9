package resultstore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/vivalabs/viva/internal/config"
)

// Row is one persisted answer.
type Row struct {
	ID        int64
	SessionID string
	Candidate string
	Question  string
	Response  string
	Score     int
	CreatedAt time.Time
}

// Store wraps the SQLite-backed result table. Rows are append-only; there is
// no update or delete path.
type Store struct {
	db    *sql.DB
	cfg   config.StoreConfig
	log   *slog.Logger
	clock func() time.Time
}

// Open initializes the result store, creating the database file and schema on
// first use.
func Open(ctx context.Context, cfg config.StoreConfig, log *slog.Logger) (*Store, error) {
	dir := filepath.Dir(cfg.Path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", cfg.Path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	s := &Store{db: db, cfg: cfg, log: log.With(slog.String("component", "resultstore")), clock: time.Now}

	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}

	if cfg.VacuumOnStart {
		if _, err := s.db.ExecContext(ctx, "VACUUM"); err != nil {
			s.log.Warn("result store vacuum failed", slog.String("error", err.Error()))
		}
	}

	return s, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	ddl := `
CREATE TABLE IF NOT EXISTS sessions (
    session_id TEXT PRIMARY KEY,
    candidate TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS results (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id TEXT NOT NULL,
    candidate TEXT NOT NULL,
    question TEXT NOT NULL,
    response TEXT,
    score INTEGER NOT NULL,
    created_at TIMESTAMP NOT NULL,
    FOREIGN KEY(session_id) REFERENCES sessions(session_id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_results_session ON results(session_id, id);
`
	_, err := s.db.ExecContext(ctx, ddl)
	return err
}

// Close releases underlying resources.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// AppendSession ensures a session row exists.
func (s *Store) AppendSession(ctx context.Context, sessionID, candidate string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions(session_id, candidate, created_at)
		 VALUES(?, ?, ?)
		 ON CONFLICT(session_id) DO UPDATE SET candidate=excluded.candidate`,
		sessionID, candidate, s.timestamp())
	return err
}

// AppendResult writes one scored answer.
func (s *Store) AppendResult(ctx context.Context, sessionID, candidate, question, response string, score int) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO results(session_id, candidate, question, response, score, created_at)
		 VALUES(?, ?, ?, ?, ?, ?)`,
		sessionID, candidate, question, response, score, s.timestamp())
	return err
}

// timestamp renders the clock as RFC3339Nano so the round trip through the
// TEXT column stays format-stable.
func (s *Store) timestamp() string {
	return s.clock().UTC().Format(time.RFC3339Nano)
}

// ListSessionResults retrieves a session's rows in insertion order. Exists for
// out-of-band inspection and tests; the session loop never reads back.
func (s *Store) ListSessionResults(ctx context.Context, sessionID string) ([]Row, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, candidate, question, response, score, created_at
		 FROM results WHERE session_id = ? ORDER BY id ASC`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		var created string
		if err := rows.Scan(&r.ID, &r.SessionID, &r.Candidate, &r.Question, &r.Response, &r.Score, &created); err != nil {
			return nil, err
		}
		if ts, err := time.Parse(time.RFC3339Nano, created); err == nil {
			r.CreatedAt = ts
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
