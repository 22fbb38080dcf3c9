package runtime

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/vivalabs/viva/internal/audio"
	"github.com/vivalabs/viva/internal/config"
	"github.com/vivalabs/viva/internal/questions"
	"github.com/vivalabs/viva/internal/resultstore"
	"github.com/vivalabs/viva/internal/scoring"
	"github.com/vivalabs/viva/internal/session"
	"github.com/vivalabs/viva/internal/stt"
	"github.com/vivalabs/viva/internal/tts"
	"github.com/vivalabs/viva/internal/ui"
)

// Runtime assembles the configured components and runs exactly one interview
// session. It holds no cross-session state.
type Runtime struct {
	cfg    config.Config
	logger *slog.Logger
	out    io.Writer
	in     io.Reader
}

func New(cfg config.Config, logger *slog.Logger, out io.Writer, in io.Reader) *Runtime {
	return &Runtime{cfg: cfg, logger: logger, out: out, in: in}
}

// Run wires everything together and drives the session. Startup errors
// (credentials, question document, store) abort before any question is asked.
func (r *Runtime) Run(ctx context.Context, candidate string) error {
	scoringKey, err := r.cfg.ScoringAPIKey()
	if err != nil {
		return err
	}
	sttKey, err := r.cfg.STTAPIKey()
	if err != nil {
		return err
	}

	shutdownTelemetry, err := setupTelemetry(r.cfg, r.logger)
	if err != nil {
		return fmt.Errorf("failed to setup telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			r.logger.Error("telemetry shutdown error", slog.String("error", err.Error()))
		}
	}()

	source := questions.NewSource(r.cfg.Questions.Path, r.cfg.Questions.Sheet, r.logger)
	if _, err := source.Load(ctx); err != nil {
		return err
	}

	store, err := resultstore.Open(ctx, r.cfg.Store, r.logger)
	if err != nil {
		return fmt.Errorf("open result store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			r.logger.Error("result store close error", slog.String("error", err.Error()))
		}
	}()

	capturer, closeCapturer, err := r.buildCapturer()
	if err != nil {
		return err
	}
	defer closeCapturer()

	recognizer, err := r.buildRecognizer(sttKey)
	if err != nil {
		return err
	}

	var scorer scoring.Scorer
	switch r.cfg.Scoring.Mode {
	case "model":
		scorer = scoring.NewModelScorer(r.cfg.Scoring, scoringKey, r.logger)
	default:
		scorer = scoring.NewExactScorer()
	}

	speaker, err := r.buildSpeaker()
	if err != nil {
		return err
	}

	terminal := ui.NewTerminal(r.out, r.in)
	if candidate == "" {
		candidate, err = terminal.PromptCandidateName()
		if err != nil {
			return err
		}
	}

	controller := session.NewController(session.Params{
		Source:        source,
		Capturer:      capturer,
		Recognizer:    recognizer,
		Scorer:        scorer,
		Store:         store,
		Speaker:       speaker,
		Presenter:     terminal,
		ListenTimeout: time.Duration(r.cfg.Audio.ListenTimeoutSec) * time.Second,
		SampleRate:    r.cfg.Audio.SampleRate,
		Channels:      r.cfg.Audio.Channels,
		Logger:        r.logger,
	})

	_, err = controller.Run(ctx, candidate)
	return err
}

func (r *Runtime) buildCapturer() (audio.Capturer, func(), error) {
	switch r.cfg.Audio.Mode {
	case "mock":
		// One second of silence; pairs with the mock recognizer.
		return audio.NewMockCapturer(make([]byte, r.cfg.Audio.SampleRate*2), nil), func() {}, nil
	default:
		recorder, err := audio.NewRecorder(r.cfg.Audio, r.logger)
		if err != nil {
			return nil, nil, err
		}
		return recorder, func() {
			if err := recorder.Close(); err != nil {
				r.logger.Error("audio close error", slog.String("error", err.Error()))
			}
		}, nil
	}
}

func (r *Runtime) buildRecognizer(apiKey string) (stt.Recognizer, error) {
	switch r.cfg.STT.Mode {
	case "remote":
		return stt.NewRemoteRecognizer(r.cfg.STT, apiKey), nil
	case "exec":
		return stt.NewExecRecognizer(r.cfg.STT)
	default:
		return stt.NewMockRecognizer(), nil
	}
}

func (r *Runtime) buildSpeaker() (tts.Speaker, error) {
	if !r.cfg.TTS.Enabled {
		return nil, nil
	}
	switch r.cfg.TTS.Mode {
	case "exec":
		return tts.NewExecSpeaker(r.cfg.TTS.Command, r.cfg.TTS.Voice)
	default:
		return tts.NewMockSpeaker(), nil
	}
}
