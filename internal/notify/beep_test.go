package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/faiface/beep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSpeaker swaps the speaker seams for the duration of a test.
func stubSpeaker(t *testing.T, initFn func() error, play func(beep.Streamer)) *int {
	t.Helper()

	origInit, origPlay, origClear := initSpeaker, playSpeaker, clearSpeaker
	initOnce, initErr = sync.Once{}, nil

	cleared := 0
	initSpeaker = initFn
	playSpeaker = play
	clearSpeaker = func() { cleared++ }

	t.Cleanup(func() {
		initSpeaker, playSpeaker, clearSpeaker = origInit, origPlay, origClear
		initOnce, initErr = sync.Once{}, nil
	})
	return &cleared
}

// drain consumes s the way the mixer would.
func drain(s beep.Streamer) {
	buf := make([][2]float64, 512)
	for {
		if _, ok := s.Stream(buf); !ok {
			return
		}
	}
}

func TestCueInitFailureIsSticky(t *testing.T) {
	inits, plays := 0, 0
	stubSpeaker(t,
		func() error { inits++; return errors.New("no audio device") },
		func(beep.Streamer) { plays++ },
	)

	c := NewCue("")
	for i := 0; i < 3; i++ {
		err := c.Play(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no audio device")
	}
	assert.Equal(t, 1, inits)
	assert.Zero(t, plays)
}

func TestCuePlaysTone(t *testing.T) {
	stubSpeaker(t, func() error { return nil }, func(s beep.Streamer) { go drain(s) })

	require.NoError(t, NewCue("").Play(context.Background()))
}

func TestCueStopsWaitingOnCancel(t *testing.T) {
	cleared := stubSpeaker(t, func() error { return nil }, func(beep.Streamer) {})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := NewCue("").Play(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), maxCueWait)
	assert.Equal(t, 1, *cleared)
}

func TestCueMissingFile(t *testing.T) {
	stubSpeaker(t, func() error { return nil }, func(beep.Streamer) {})

	err := NewCue("/nonexistent/cue.mp3").Play(context.Background())
	assert.ErrorContains(t, err, "open cue")
}

func TestToneIsBounded(t *testing.T) {
	s := beep.Take(sampleRate.N(toneLength), tone(toneFreq))
	buf := make([][2]float64, 512)
	total := 0
	for {
		n, ok := s.Stream(buf)
		total += n
		if !ok {
			break
		}
		for _, smp := range buf[:n] {
			assert.LessOrEqual(t, smp[0], 0.3)
		}
	}
	assert.Equal(t, sampleRate.N(toneLength), total)
}
