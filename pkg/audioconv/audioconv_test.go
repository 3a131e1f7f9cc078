package audioconv

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sine(n, rate int, freq float64) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(0.5 * math.Sin(2*math.Pi*freq*float64(i)/float64(rate)))
	}
	return out
}

func TestEncodeWAVDecodesBack(t *testing.T) {
	in := sine(1600, 16000, 440)

	data, err := EncodeWAV(in, 16000)
	require.NoError(t, err)
	assert.Equal(t, "RIFF", string(data[:4]))
	assert.Equal(t, "WAVE", string(data[8:12]))

	out, err := Decode(bytes.NewReader(data), "", Options{})
	require.NoError(t, err)
	require.Len(t, out, len(in))
	for i := range in {
		assert.InDelta(t, in[i], out[i], 1e-3)
	}
}

func TestDecodeResamplesAndTruncates(t *testing.T) {
	data, err := EncodeWAV(sine(8000, 8000, 200), 8000)
	require.NoError(t, err)

	out, err := Decode(bytes.NewReader(data), ".wav", Options{})
	require.NoError(t, err)
	assert.Len(t, out, 16000)

	out, err = Decode(bytes.NewReader(data), ".wav", Options{MaxSamples: 100})
	require.NoError(t, err)
	assert.Len(t, out, 100)
}

func TestDecodeUnknownFormat(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte("hello world")), ".txt", Options{})
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestDownmix(t *testing.T) {
	out := downmix([]float32{1, 0, 0.5, 0.5, -1, -1}, 2)
	assert.Equal(t, []float32{0.5, 0.5, -1}, out)

	mono := []float32{0.1, 0.2}
	assert.Equal(t, mono, downmix(mono, 1))
}

func TestResample(t *testing.T) {
	in := []float32{0, 1, 0, -1}

	assert.Equal(t, in, resample(in, 16000, 16000))

	up := resample(in, 8000, 16000)
	require.Len(t, up, 8)
	assert.InDelta(t, 0.5, up[1], 1e-6)
	assert.Equal(t, float32(-1), up[7])

	down := resample(in, 16000, 8000)
	assert.Len(t, down, 2)
}

func TestFloatToIntsClamps(t *testing.T) {
	assert.Equal(t, []int{32767, -32767, 0}, floatToInts([]float32{2, -2, 0}))
}
