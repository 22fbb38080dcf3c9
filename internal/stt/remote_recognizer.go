package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vivalabs/viva/internal/config"
)

// remoteRecognizer posts a wav rendition of the capture to an OpenAI-compatible
// audio/transcriptions endpoint.
type remoteRecognizer struct {
	endpoint string
	model    string
	language string
	apiKey   string
	client   *http.Client
}

type remoteResponse struct {
	Text string `json:"text"`
}

func NewRemoteRecognizer(cfg config.STTConfig, apiKey string) Recognizer {
	return &remoteRecognizer{
		endpoint: strings.TrimSuffix(cfg.Endpoint, "/"),
		model:    cfg.Model,
		language: cfg.Language,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: 60 * time.Second},
	}
}

func (r *remoteRecognizer) Transcribe(ctx context.Context, pcm []byte, sampleRate int, channels int) (TranscriptResult, error) {
	wavPath, err := tempWav(pcm, sampleRate, channels)
	if err != nil {
		return TranscriptResult{}, err
	}
	defer os.Remove(wavPath)

	f, err := os.Open(wavPath)
	if err != nil {
		return TranscriptResult{}, err
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("model", r.model); err != nil {
		return TranscriptResult{}, err
	}
	if r.language != "" {
		if err := mw.WriteField("language", r.language); err != nil {
			return TranscriptResult{}, err
		}
	}
	fw, err := mw.CreateFormFile("file", filepath.Base(wavPath))
	if err != nil {
		return TranscriptResult{}, err
	}
	if _, err := io.Copy(fw, f); err != nil {
		return TranscriptResult{}, err
	}
	if err := mw.Close(); err != nil {
		return TranscriptResult{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint+"/audio/transcriptions", &body)
	if err != nil {
		return TranscriptResult{}, err
	}
	req.Header.Set("Authorization", "Bearer "+r.apiKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := r.client.Do(req)
	if err != nil {
		return TranscriptResult{}, fmt.Errorf("transcription request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		b, _ := io.ReadAll(resp.Body)
		return TranscriptResult{}, fmt.Errorf("%w: http %d: %s", ErrUnintelligible, resp.StatusCode, strings.TrimSpace(string(b)))
	}
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return TranscriptResult{}, fmt.Errorf("transcription service http %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var decoded remoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return TranscriptResult{}, fmt.Errorf("decode transcription response: %w", err)
	}
	text := strings.TrimSpace(decoded.Text)
	if text == "" {
		return TranscriptResult{}, ErrUnintelligible
	}
	return TranscriptResult{Text: text}, nil
}
