package audio

import (
	"math"
	"time"
)

// Decision is the endpointer verdict after one frame.
type Decision int

const (
	// Continue means keep listening.
	Continue Decision = iota
	// EndOfSpeech means speech was heard and the trailing pause has elapsed.
	EndOfSpeech
	// NoSpeechTimeout means the wait budget ran out before any speech.
	NoSpeechTimeout
)

// Endpointer segments a live capture by frame energy: speech starts after a
// couple of consecutive loud frames, and ends once a configured pause of quiet
// frames follows it. If no speech arrives within the wait budget the capture
// times out instead.
type Endpointer struct {
	threshold     float64
	minSpeechRun  int
	endPauseRun   int
	maxWaitFrames int

	fed      int
	loudRun  int
	quietRun int
	speaking bool
}

func NewEndpointer(threshold float64, frameDur, endPause, maxWait time.Duration) *Endpointer {
	frames := func(d time.Duration) int {
		n := int(d / frameDur)
		if n < 1 {
			n = 1
		}
		return n
	}
	return &Endpointer{
		threshold:     threshold,
		minSpeechRun:  2,
		endPauseRun:   frames(endPause),
		maxWaitFrames: frames(maxWait),
	}
}

// Feed consumes one frame of int16 samples and returns the verdict so far.
func (e *Endpointer) Feed(frame []int16) Decision {
	e.fed++
	loud := rms(frame) >= e.threshold

	if loud {
		e.loudRun++
		e.quietRun = 0
		if !e.speaking && e.loudRun >= e.minSpeechRun {
			e.speaking = true
		}
		return Continue
	}

	e.loudRun = 0
	if e.speaking {
		e.quietRun++
		if e.quietRun >= e.endPauseRun {
			return EndOfSpeech
		}
		return Continue
	}
	if e.fed >= e.maxWaitFrames {
		return NoSpeechTimeout
	}
	return Continue
}

// Speaking reports whether speech onset has been detected.
func (e *Endpointer) Speaking() bool {
	return e.speaking
}

// rms is the root mean square of the frame normalized into [0,1].
func rms(frame []int16) float64 {
	if len(frame) == 0 {
		return 0
	}
	var sum float64
	for _, s := range frame {
		v := float64(s)
		sum += v * v
	}
	return math.Sqrt(sum/float64(len(frame))) / 32768
}
