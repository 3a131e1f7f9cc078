package notify

import (
	"context"
	"fmt"
	"math"
	"os"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
)

const (
	sampleRate beep.SampleRate = 44100
	toneFreq                   = 880.0
	toneLength                 = 150 * time.Millisecond

	// upper bound on how long Play waits for the mixer to drain the cue
	maxCueWait = 5 * time.Second
)

var (
	initOnce sync.Once
	initErr  error

	// speaker seams, replaced in tests
	initSpeaker  = func() error { return speaker.Init(sampleRate, sampleRate.N(time.Second/10)) }
	playSpeaker  = func(s beep.Streamer) { speaker.Play(s) }
	clearSpeaker = speaker.Clear
)

// Cue plays a short sound before the assistant starts listening.
type Cue struct {
	path string
}

// NewCue plays the mp3 at path, or a generated tone when path is empty.
func NewCue(path string) *Cue {
	return &Cue{path: path}
}

// Play blocks until the cue has played, ctx is done or maxCueWait passes.
// A failed speaker init is remembered and returned on every call.
func (c *Cue) Play(ctx context.Context) error {
	initOnce.Do(func() {
		initErr = initSpeaker()
	})
	if initErr != nil {
		return fmt.Errorf("init speaker: %w", initErr)
	}

	stream, closeFn, err := c.stream()
	if err != nil {
		return err
	}
	defer closeFn()

	done := make(chan struct{})
	playSpeaker(beep.Seq(stream, beep.Callback(func() {
		close(done)
	})))

	timer := time.NewTimer(maxCueWait)
	defer timer.Stop()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		clearSpeaker()
		return ctx.Err()
	case <-timer.C:
		clearSpeaker()
		return fmt.Errorf("cue not played within %s", maxCueWait)
	}
}

func (c *Cue) stream() (beep.Streamer, func(), error) {
	if c.path == "" {
		return beep.Take(sampleRate.N(toneLength), tone(toneFreq)), func() {}, nil
	}

	f, err := os.Open(c.path)
	if err != nil {
		return nil, nil, fmt.Errorf("open cue: %w", err)
	}
	s, format, err := mp3.Decode(f)
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("decode cue: %w", err)
	}
	return beep.Resample(4, format.SampleRate, sampleRate, s), func() { s.Close() }, nil
}

// tone is a quiet sine wave on both channels.
func tone(freq float64) beep.Streamer {
	var pos int
	step := 2 * math.Pi * freq / float64(sampleRate)
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			v := 0.3 * math.Sin(step*float64(pos))
			samples[i][0], samples[i][1] = v, v
			pos++
		}
		return len(samples), true
	})
}
