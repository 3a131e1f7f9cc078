package audio

import (
	"context"
	"errors"
	"fmt"
	log "log/slog"

	"empath/pkg/audioconv"
)

// ErrExhausted is returned by FileSource once every file has been played.
var ErrExhausted = errors.New("no more audio")

// FileSource replays audio files in order in place of the microphone.
type FileSource struct {
	paths []string
	next  int
	rate  int
}

func NewFileSource(paths []string, sampleRate int) *FileSource {
	return &FileSource{paths: paths, rate: sampleRate}
}

func (s *FileSource) Listen(ctx context.Context) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.next >= len(s.paths) {
		return nil, ErrExhausted
	}

	path := s.paths[s.next]
	s.next++

	log.Info("Replaying", "file", path)
	pcm, err := audioconv.DecodeFile(path, audioconv.Options{Rate: s.rate})
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if len(pcm) == 0 {
		return nil, ErrWaitTimeout
	}
	return pcm, nil
}
