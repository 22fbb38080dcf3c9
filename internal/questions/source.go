package questions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"
)

// ErrNotFound reports a missing question document.
var ErrNotFound = errors.New("question document not found")

// ErrSchema reports a document without the required Question/Answer columns.
var ErrSchema = errors.New("question document schema invalid")

// Item is one interview question with its reference answer. Immutable once loaded.
type Item struct {
	Question string
	Answer   string
}

// Source loads questions from a spreadsheet. Loading happens at most once per
// process; repeated Load calls return the memoized result.
type Source struct {
	path  string
	sheet string
	log   *slog.Logger

	once  sync.Once
	items []Item
	err   error
}

func NewSource(path, sheet string, log *slog.Logger) *Source {
	return &Source{
		path:  path,
		sheet: sheet,
		log:   log.With(slog.String("component", "questions")),
	}
}

// Load returns the ordered question list. The first call reads the document;
// subsequent calls return the identical slice without touching the file again.
func (s *Source) Load(ctx context.Context) ([]Item, error) {
	s.once.Do(func() {
		s.items, s.err = s.read(ctx)
		if s.err == nil {
			s.log.Info("questions loaded",
				slog.String("path", s.path),
				slog.Int("count", len(s.items)))
		}
	})
	return s.items, s.err
}

func (s *Source) read(ctx context.Context) ([]Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(s.path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, s.path)
		}
		return nil, fmt.Errorf("stat question document: %w", err)
	}

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("open question document: %w", err)
	}
	defer f.Close()

	sheet := s.sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: sheet %q is empty", ErrSchema, sheet)
	}

	questionCol, answerCol := -1, -1
	for i, header := range rows[0] {
		switch strings.ToLower(strings.TrimSpace(header)) {
		case "question":
			questionCol = i
		case "answer":
			answerCol = i
		}
	}
	if questionCol < 0 || answerCol < 0 {
		return nil, fmt.Errorf("%w: expected columns Question and Answer, found %v", ErrSchema, rows[0])
	}

	var items []Item
	for _, row := range rows[1:] {
		item := Item{
			Question: cell(row, questionCol),
			Answer:   cell(row, answerCol),
		}
		if item.Question == "" {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// cell tolerates short rows: excelize trims trailing empty cells.
func cell(row []string, col int) string {
	if col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}
