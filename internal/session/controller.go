package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vivalabs/viva/internal/audio"
	"github.com/vivalabs/viva/internal/questions"
	"github.com/vivalabs/viva/internal/scoring"
	"github.com/vivalabs/viva/internal/stt"
	"github.com/vivalabs/viva/internal/tts"
)

// QuestionSource supplies the ordered question list. Implemented by
// questions.Source.
type QuestionSource interface {
	Load(ctx context.Context) ([]questions.Item, error)
}

// ResultStore persists scored answers. Implemented by resultstore.Store.
type ResultStore interface {
	AppendSession(ctx context.Context, sessionID, candidate string) error
	AppendResult(ctx context.Context, sessionID, candidate, question, response string, score int) error
}

// Params collects the controller's collaborators.
type Params struct {
	Source        QuestionSource
	Capturer      audio.Capturer
	Recognizer    stt.Recognizer
	Scorer        scoring.Scorer
	Store         ResultStore
	Speaker       tts.Speaker // nil when spoken prompts are disabled
	Presenter     Presenter
	ListenTimeout time.Duration
	SampleRate    int
	Channels      int
	Logger        *slog.Logger
}

// Controller drives one interview session: for each question it captures an
// answer, transcribes it, scores it, records it, and emits presenter events.
// Per-question failures degrade to an empty answer or a zero score; only
// startup and finalization errors abort the session.
type Controller struct {
	p      Params
	log    *slog.Logger
	tracer trace.Tracer
	newID  func() string
}

func NewController(p Params) *Controller {
	return &Controller{
		p:      p,
		log:    p.Logger.With(slog.String("component", "session")),
		tracer: otel.Tracer("viva/session"),
		newID:  uuid.NewString,
	}
}

// Run executes a full session for the named candidate and returns the final
// result. The loop does not start until a non-empty name is supplied.
func (c *Controller) Run(ctx context.Context, candidate string) (Result, error) {
	if candidate == "" {
		return Result{}, errors.New("candidate name must not be empty")
	}

	items, err := c.p.Source.Load(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("load questions: %w", err)
	}
	if len(items) == 0 {
		return Result{}, errors.New("question document has no questions")
	}

	result := Result{
		SessionID: c.newID(),
		Candidate: candidate,
		MaxScore:  len(items) * scoring.MaxScore,
	}

	ctx, span := c.tracer.Start(ctx, "session.run",
		trace.WithAttributes(attribute.String("session.id", result.SessionID)))
	defer span.End()

	c.log.Info("session started",
		slog.String("session_id", result.SessionID),
		slog.Int("questions", len(items)))
	c.p.Presenter.SessionStarted(candidate, len(items))

	for i, item := range items {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		record := c.askQuestion(ctx, i, len(items), item)
		result.Responses = append(result.Responses, record)
		result.TotalScore += record.Score
	}

	if err := c.persist(ctx, result); err != nil {
		span.RecordError(err)
		return Result{}, fmt.Errorf("persist results: %w", err)
	}

	c.log.Info("session complete",
		slog.String("session_id", result.SessionID),
		slog.Int("total", result.TotalScore),
		slog.Int("max", result.MaxScore))
	c.p.Presenter.Completed(result)
	return result, nil
}

func (c *Controller) askQuestion(ctx context.Context, index, total int, item questions.Item) ResponseRecord {
	ctx, span := c.tracer.Start(ctx, "session.question",
		trace.WithAttributes(attribute.Int("question.index", index)))
	defer span.End()

	c.p.Presenter.QuestionAsked(index, total, item.Question)

	if c.p.Speaker != nil {
		if err := c.p.Speaker.Speak(ctx, item.Question); err != nil {
			c.warn(span, "could not speak the question", err)
		}
	}

	answer := c.captureAnswer(ctx, span)
	score := c.scoreAnswer(ctx, span, answer, item.Answer)

	c.p.Presenter.Scored(index, score)
	return ResponseRecord{
		Index:    index,
		Question: item.Question,
		Answer:   answer,
		Score:    score,
	}
}

// captureAnswer runs capture and transcription for one question. Every failure
// path degrades to an empty answer with a visible warning; nothing propagates.
func (c *Controller) captureAnswer(ctx context.Context, span trace.Span) string {
	c.p.Presenter.Listening()

	ctx, captureSpan := c.tracer.Start(ctx, "session.capture")
	pcm, err := c.p.Capturer.Capture(ctx, c.p.ListenTimeout)
	captureSpan.End()
	if err != nil {
		switch {
		case errors.Is(err, audio.ErrNoSpeech):
			c.warn(span, "no speech detected before the timeout", err)
		default:
			c.warn(span, "audio capture failed", err)
		}
		return ""
	}

	ctx, sttSpan := c.tracer.Start(ctx, "session.transcribe")
	transcript, err := c.p.Recognizer.Transcribe(ctx, pcm, c.p.SampleRate, c.p.Channels)
	sttSpan.End()
	if err != nil {
		switch {
		case errors.Is(err, stt.ErrUnintelligible):
			c.warn(span, "could not understand the audio", err)
		default:
			c.warn(span, "transcription failed", err)
		}
		return ""
	}

	c.p.Presenter.Transcript(transcript.Text)
	return transcript.Text
}

func (c *Controller) scoreAnswer(ctx context.Context, span trace.Span, answer, reference string) int {
	ctx, scoreSpan := c.tracer.Start(ctx, "session.score")
	defer scoreSpan.End()

	score, err := c.p.Scorer.Score(ctx, answer, reference)
	if err != nil {
		c.warn(span, "scoring failed", err)
		return 0
	}
	return score
}

func (c *Controller) persist(ctx context.Context, result Result) error {
	ctx, span := c.tracer.Start(ctx, "session.persist")
	defer span.End()

	if err := c.p.Store.AppendSession(ctx, result.SessionID, result.Candidate); err != nil {
		return err
	}
	for _, r := range result.Responses {
		if err := c.p.Store.AppendResult(ctx, result.SessionID, result.Candidate, r.Question, r.Answer, r.Score); err != nil {
			return err
		}
	}
	return nil
}

func (c *Controller) warn(span trace.Span, message string, err error) {
	span.RecordError(err)
	c.log.Warn(message, slog.String("error", err.Error()))
	c.p.Presenter.Warning(message)
}
