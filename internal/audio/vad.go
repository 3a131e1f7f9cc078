package audio

import (
	"math"
	"time"
)

const (
	// floor for a calibrated threshold, so a dead-silent room still needs real speech
	minThresholdRMS     = 0.01
	defaultThresholdRMS = 0.015
	ambientRatio        = 3.0
)

// Threshold derives a speech energy threshold from ambient-noise frames.
func Threshold(ambient [][]float32) float64 {
	if len(ambient) == 0 {
		return defaultThresholdRMS
	}
	var sum float64
	for _, f := range ambient {
		sum += frameRMS(f)
	}
	return math.Max(minThresholdRMS, sum/float64(len(ambient))*ambientRatio)
}

type Verdict int

const (
	Continue Verdict = iota
	Done
	TimedOut
)

// Endpointer decides, frame by frame, when a phrase starts and ends.
type Endpointer struct {
	threshold   float64
	frameDur    time.Duration
	timeout     time.Duration
	phraseLimit time.Duration
	pause       time.Duration

	waited   time.Duration
	spoken   time.Duration
	silence  time.Duration
	speaking bool
	out      []float32
}

func NewEndpointer(cfg RecorderConfig, threshold float64) *Endpointer {
	cfg = cfg.withDefaults()
	return &Endpointer{
		threshold:   threshold,
		frameDur:    time.Duration(cfg.FrameSize) * time.Second / time.Duration(cfg.SampleRate),
		timeout:     cfg.Timeout,
		phraseLimit: cfg.PhraseLimit,
		pause:       cfg.Pause,
	}
}

// Feed consumes one frame. The frame is copied.
func (e *Endpointer) Feed(frame []float32) Verdict {
	loud := frameRMS(frame) > e.threshold

	if !e.speaking {
		if !loud {
			e.waited += e.frameDur
			if e.timeout > 0 && e.waited >= e.timeout {
				return TimedOut
			}
			return Continue
		}
		e.speaking = true
	}

	e.out = append(e.out, frame...)
	e.spoken += e.frameDur

	if loud {
		e.silence = 0
	} else {
		e.silence += e.frameDur
		if e.silence >= e.pause {
			return Done
		}
	}

	if e.phraseLimit > 0 && e.spoken >= e.phraseLimit {
		return Done
	}
	return Continue
}

func (e *Endpointer) Samples() []float32 { return e.out }

func frameRMS(f []float32) float64 {
	if len(f) == 0 {
		return 0
	}
	var s float64
	for _, x := range f {
		s += float64(x) * float64(x)
	}
	return math.Sqrt(s / float64(len(f)))
}
