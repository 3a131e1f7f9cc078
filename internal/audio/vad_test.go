package audio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frame(level float32) []float32 {
	f := make([]float32, 320)
	for i := range f {
		f[i] = level
	}
	return f
}

func testConfig() RecorderConfig {
	return RecorderConfig{
		SampleRate:  16000,
		FrameSize:   320,
		Timeout:     100 * time.Millisecond,
		PhraseLimit: time.Second,
		Pause:       60 * time.Millisecond,
	}
}

func TestThreshold(t *testing.T) {
	assert.Equal(t, defaultThresholdRMS, Threshold(nil))
	assert.Equal(t, minThresholdRMS, Threshold([][]float32{frame(0), frame(0.001)}))
	assert.InDelta(t, 0.3, Threshold([][]float32{frame(0.1)}), 1e-6)
}

func TestEndpointerTimesOutWithoutSpeech(t *testing.T) {
	ep := NewEndpointer(testConfig(), 0.1)

	for i := 0; i < 4; i++ {
		require.Equal(t, Continue, ep.Feed(frame(0)))
	}
	assert.Equal(t, TimedOut, ep.Feed(frame(0)))
	assert.Empty(t, ep.Samples())
}

func TestEndpointerEndsOnPause(t *testing.T) {
	ep := NewEndpointer(testConfig(), 0.1)

	require.Equal(t, Continue, ep.Feed(frame(0)))
	for i := 0; i < 3; i++ {
		require.Equal(t, Continue, ep.Feed(frame(0.5)))
	}
	require.Equal(t, Continue, ep.Feed(frame(0)))
	require.Equal(t, Continue, ep.Feed(frame(0)))
	assert.Equal(t, Done, ep.Feed(frame(0)))

	// leading silence is dropped, trailing silence kept
	assert.Len(t, ep.Samples(), 6*320)
}

func TestEndpointerPhraseLimit(t *testing.T) {
	ep := NewEndpointer(testConfig(), 0.1)

	for i := 0; i < 49; i++ {
		require.Equal(t, Continue, ep.Feed(frame(0.5)))
	}
	assert.Equal(t, Done, ep.Feed(frame(0.5)))
	assert.Len(t, ep.Samples(), 50*320)
}

func TestEndpointerSpeechResetsSilence(t *testing.T) {
	ep := NewEndpointer(testConfig(), 0.1)

	require.Equal(t, Continue, ep.Feed(frame(0.5)))
	require.Equal(t, Continue, ep.Feed(frame(0)))
	require.Equal(t, Continue, ep.Feed(frame(0)))
	require.Equal(t, Continue, ep.Feed(frame(0.5)))
	require.Equal(t, Continue, ep.Feed(frame(0)))
	require.Equal(t, Continue, ep.Feed(frame(0)))
	assert.Equal(t, Done, ep.Feed(frame(0)))
}
