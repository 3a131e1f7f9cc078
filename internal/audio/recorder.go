package audio

import (
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"time"

	"github.com/gordonklaus/portaudio"
)

var ErrWaitTimeout = errors.New("no speech detected within timeout")

// Source yields one utterance per call as mono float32 PCM.
type Source interface {
	Listen(ctx context.Context) ([]float32, error)
}

type RecorderConfig struct {
	SampleRate  int
	FrameSize   int
	Calibration time.Duration // ambient-noise sampling before each listen
	Timeout     time.Duration // max wait for speech to start
	PhraseLimit time.Duration // max phrase length
	Pause       time.Duration // trailing silence that ends a phrase
}

func (c RecorderConfig) withDefaults() RecorderConfig {
	if c.SampleRate <= 0 {
		c.SampleRate = 16000
	}
	if c.FrameSize <= 0 {
		c.FrameSize = c.SampleRate / 50 // 20ms
	}
	if c.Pause <= 0 {
		c.Pause = 600 * time.Millisecond
	}
	return c
}

func DefaultRecorderConfig() RecorderConfig {
	return RecorderConfig{
		SampleRate:  16000,
		FrameSize:   320,
		Calibration: time.Second,
		Timeout:     10 * time.Second,
		PhraseLimit: 10 * time.Second,
		Pause:       600 * time.Millisecond,
	}
}

// Recorder captures from the default input device.
type Recorder struct {
	cfg RecorderConfig
}

func NewRecorder(cfg RecorderConfig) *Recorder {
	return &Recorder{cfg: cfg.withDefaults()}
}

func (r *Recorder) Init() error {
	if err := portaudio.Initialize(); err != nil {
		return err
	}
	if _, err := portaudio.DefaultInputDevice(); err != nil {
		portaudio.Terminate()
		return fmt.Errorf("no input device: %w", err)
	}
	return nil
}

func (r *Recorder) Close() {
	portaudio.Terminate()
}

func (r *Recorder) Listen(ctx context.Context) ([]float32, error) {
	buf := make([]float32, r.cfg.FrameSize)

	stream, err := portaudio.OpenDefaultStream(1, 0, float64(r.cfg.SampleRate), len(buf), buf)
	if err != nil {
		return nil, fmt.Errorf("open stream: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return nil, fmt.Errorf("start stream: %w", err)
	}
	defer stream.Stop()

	log.Info("Adjusting for ambient noise... Please wait.")

	calFrames := int(r.cfg.Calibration * time.Duration(r.cfg.SampleRate) / time.Second / time.Duration(r.cfg.FrameSize))
	ambient := make([][]float32, 0, calFrames)
	for i := 0; i < calFrames; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := stream.Read(); err != nil {
			return nil, fmt.Errorf("read: %w", err)
		}
		ambient = append(ambient, append([]float32(nil), buf...))
	}

	threshold := Threshold(ambient)
	log.Debug("Calibrated", "threshold", threshold)
	log.Info("Listening...")

	ep := NewEndpointer(r.cfg, threshold)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := stream.Read(); err != nil {
			return nil, fmt.Errorf("read: %w", err)
		}

		switch ep.Feed(buf) {
		case TimedOut:
			return nil, ErrWaitTimeout
		case Done:
			return ep.Samples(), nil
		}
	}
}
