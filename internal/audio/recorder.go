package audio

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gen2brain/malgo"

	"github.com/vivalabs/viva/internal/config"
)

// ErrNoSpeech reports a capture that timed out before any speech was heard.
var ErrNoSpeech = errors.New("no speech detected")

// Capturer records one utterance from the microphone as 16-bit little-endian
// PCM. Implementations must release the capture device on every exit path.
type Capturer interface {
	Capture(ctx context.Context, maxWait time.Duration) ([]byte, error)
}

// maxUtterance caps a single answer once speech has started.
const maxUtterance = 2 * time.Minute

// Recorder captures audio from the default microphone. The malgo context is
// held for the recorder's lifetime; the capture device itself is initialized
// and torn down once per Capture call.
type Recorder struct {
	ctx *malgo.AllocatedContext
	cfg config.AudioConfig
	log *slog.Logger
}

func NewRecorder(cfg config.AudioConfig, log *slog.Logger) (*Recorder, error) {
	mctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("initializing audio context: %w", err)
	}
	return &Recorder{
		ctx: mctx,
		cfg: cfg,
		log: log.With(slog.String("component", "audio")),
	}, nil
}

// Capture listens until speech is heard and a trailing pause ends it, or until
// maxWait elapses with no speech, in which case it returns ErrNoSpeech.
func (r *Recorder) Capture(ctx context.Context, maxWait time.Duration) ([]byte, error) {
	channels := uint32(r.cfg.Channels)
	frames := make(chan []int16, 64)

	deviceCfg := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceCfg.Capture.Format = malgo.FormatS16
	deviceCfg.Capture.Channels = channels
	deviceCfg.SampleRate = uint32(r.cfg.SampleRate)

	callbacks := malgo.DeviceCallbacks{
		Data: func(_, pSample []byte, frameCount uint32) {
			samples := bytesToInt16(pSample, frameCount*channels)
			select {
			case frames <- samples:
			default:
				// Consumer fell behind; dropping is preferable to blocking
				// the audio thread.
			}
		},
	}

	device, err := malgo.InitDevice(r.ctx.Context, deviceCfg, callbacks)
	if err != nil {
		return nil, fmt.Errorf("initializing capture device: %w", err)
	}
	defer device.Uninit()

	if err := device.Start(); err != nil {
		return nil, fmt.Errorf("starting capture device: %w", err)
	}

	frameDur := time.Duration(r.cfg.FrameDurationMS) * time.Millisecond
	endPause := time.Duration(r.cfg.EndPauseMS) * time.Millisecond
	ep := NewEndpointer(r.cfg.SilenceThreshold, frameDur, endPause, maxWait)
	frameSize := r.cfg.SampleRate * r.cfg.FrameDurationMS / 1000 * r.cfg.Channels

	hardStop := time.NewTimer(maxWait + maxUtterance)
	defer hardStop.Stop()

	var buf []int16
	var pending []int16
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-hardStop.C:
			if ep.Speaking() {
				r.log.Warn("utterance hit hard cap, ending capture")
				return int16ToBytes(buf), nil
			}
			return nil, ErrNoSpeech
		case samples := <-frames:
			pending = append(pending, samples...)
			for len(pending) >= frameSize {
				frame := pending[:frameSize]
				pending = pending[frameSize:]
				buf = append(buf, frame...)
				switch ep.Feed(frame) {
				case EndOfSpeech:
					return int16ToBytes(buf), nil
				case NoSpeechTimeout:
					return nil, ErrNoSpeech
				}
			}
		}
	}
}

// Close releases the audio context.
func (r *Recorder) Close() error {
	if r.ctx != nil {
		if err := r.ctx.Uninit(); err != nil {
			return fmt.Errorf("uninitializing audio context: %w", err)
		}
		r.ctx.Free()
		r.ctx = nil
	}
	return nil
}

func bytesToInt16(data []byte, sampleCount uint32) []int16 {
	samples := make([]int16, 0, sampleCount)
	for i := uint32(0); i < sampleCount; i++ {
		offset := i * 2
		if offset+2 > uint32(len(data)) {
			break
		}
		samples = append(samples, int16(binary.LittleEndian.Uint16(data[offset:offset+2])))
	}
	return samples
}

func int16ToBytes(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}
