package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/vivalabs/viva/internal/config"
)

// modelScorer asks a remote chat-completions endpoint (OpenRouter style) for a
// bare numeric score. It fails soft: parse and transport failures score 0 with
// a warning, never an error to the caller.
type modelScorer struct {
	endpoint    string
	model       string
	apiKey      string
	maxTokens   int
	temperature float64
	client      *http.Client
	log         *slog.Logger
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func NewModelScorer(cfg config.ScoringConfig, apiKey string, log *slog.Logger) Scorer {
	return &modelScorer{
		endpoint:    strings.TrimSuffix(cfg.Endpoint, "/"),
		model:       cfg.Model,
		apiKey:      apiKey,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		client:      &http.Client{Timeout: time.Duration(cfg.TimeoutSec) * time.Second},
		log:         log.With(slog.String("component", "scoring")),
	}
}

func (s *modelScorer) Score(ctx context.Context, candidate, reference string) (int, error) {
	payload := chatRequest{
		Model: s.model,
		Messages: []chatMessage{
			{Role: "system", Content: buildPrompt(candidate, reference)},
		},
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("marshal scoring request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("build scoring request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		s.log.Warn("scoring request failed", slog.String("error", err.Error()))
		return 0, nil
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		s.log.Warn("scoring response unreadable", slog.String("error", err.Error()))
		return 0, nil
	}
	if resp.StatusCode != http.StatusOK {
		s.log.Warn("scoring service returned non-success status",
			slog.Int("status", resp.StatusCode),
			slog.String("body", strings.TrimSpace(string(respBody))))
		return 0, nil
	}

	var decoded chatResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		s.log.Warn("scoring response undecodable", slog.String("error", err.Error()))
		return 0, nil
	}
	if decoded.Error != nil {
		s.log.Warn("scoring service returned error", slog.String("message", decoded.Error.Message))
		return 0, nil
	}
	if len(decoded.Choices) == 0 {
		s.log.Warn("scoring response contained no choices")
		return 0, nil
	}

	text := strings.TrimSpace(decoded.Choices[0].Message.Content)
	score, err := strconv.Atoi(text)
	if err != nil {
		s.log.Warn("scoring reply is not an integer", slog.String("reply", text))
		return 0, nil
	}
	return clamp(score), nil
}
