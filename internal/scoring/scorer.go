package scoring

import (
	"context"
	"strings"
)

// MaxScore is the top of the scoring range. Every Scorer returns a value in
// [0, MaxScore] regardless of what a remote service produced.
const MaxScore = 10

// Scorer rates a candidate answer against the reference answer.
type Scorer interface {
	Score(ctx context.Context, candidate, reference string) (int, error)
}

type exactScorer struct{}

// NewExactScorer returns the deterministic scorer: full marks for a trimmed,
// case-folded string match, zero otherwise. No network involved.
func NewExactScorer() Scorer {
	return &exactScorer{}
}

func (e *exactScorer) Score(_ context.Context, candidate, reference string) (int, error) {
	if strings.EqualFold(strings.TrimSpace(candidate), strings.TrimSpace(reference)) {
		return MaxScore, nil
	}
	return 0, nil
}

func clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}
