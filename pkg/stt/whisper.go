//go:build whisper

package stt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
)

type WhisperOptions struct {
	Language      string // "auto", "en", ...
	Threads       int    // <=0 => NumCPU()
	InitialPrompt string
	BeamSize      int     // 0 = greedy
	Temperature   float32 // 0 = default
}

// Whisper runs a local whisper.cpp model.
type Whisper struct {
	model whisper.Model
	opt   WhisperOptions
}

func NewWhisper(modelPath string, opt WhisperOptions) (*Whisper, error) {
	if modelPath == "" {
		return nil, errors.New("empty model path")
	}
	m, err := whisper.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	if opt.Language == "" {
		opt.Language = "en"
	}
	return &Whisper{model: m, opt: opt}, nil
}

func (w *Whisper) Close() error {
	if w.model == nil {
		return nil
	}
	return w.model.Close()
}

// Recognize transcribes pcm16k, mono @ 16 kHz in [-1, 1].
func (w *Whisper) Recognize(ctx context.Context, pcm16k []float32) (string, error) {
	if w.model == nil {
		return "", &RequestError{Err: errors.New("model not loaded")}
	}
	if len(pcm16k) == 0 {
		return "", ErrUnknownValue
	}

	wctx, err := w.model.NewContext()
	if err != nil {
		return "", &RequestError{Err: fmt.Errorf("new context: %w", err)}
	}

	if err := wctx.SetLanguage(w.opt.Language); err != nil {
		return "", &RequestError{Err: fmt.Errorf("set language: %w", err)}
	}

	threads := w.opt.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	wctx.SetThreads(uint(threads))

	if w.opt.BeamSize > 0 {
		wctx.SetBeamSize(w.opt.BeamSize)
	}
	if w.opt.InitialPrompt != "" {
		wctx.SetInitialPrompt(w.opt.InitialPrompt)
	}
	if w.opt.Temperature != 0 {
		wctx.SetTemperature(w.opt.Temperature)
	}

	if err := wctx.Process(pcm16k, nil, nil, nil); err != nil {
		return "", &RequestError{Err: fmt.Errorf("process: %w", err)}
	}

	var parts []string
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		s, err := wctx.NextSegment()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", &RequestError{Err: fmt.Errorf("next segment: %w", err)}
		}
		parts = append(parts, s.Text)
	}

	return normalize(strings.Join(parts, " "))
}
