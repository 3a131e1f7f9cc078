package audio

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"empath/pkg/audioconv"
)

func TestFileSourceReplaysInOrder(t *testing.T) {
	dir := t.TempDir()

	var paths []string
	for i, n := range []int{1600, 3200} {
		data, err := audioconv.EncodeWAV(make([]float32, n), 16000)
		require.NoError(t, err)
		p := filepath.Join(dir, string(rune('a'+i))+".wav")
		require.NoError(t, os.WriteFile(p, data, 0o644))
		paths = append(paths, p)
	}

	src := NewFileSource(paths, 16000)
	ctx := context.Background()

	pcm, err := src.Listen(ctx)
	require.NoError(t, err)
	assert.Len(t, pcm, 1600)

	pcm, err = src.Listen(ctx)
	require.NoError(t, err)
	assert.Len(t, pcm, 3200)

	_, err = src.Listen(ctx)
	assert.ErrorIs(t, err, ErrExhausted)
}

func TestFileSourceMissingFile(t *testing.T) {
	src := NewFileSource([]string{filepath.Join(t.TempDir(), "nope.wav")}, 16000)

	_, err := src.Listen(context.Background())
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrExhausted)
}
