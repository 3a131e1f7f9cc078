//go:build !whisper

package stt

import (
	"context"
	"errors"
)

var errNoWhisper = errors.New("whisper backend not compiled in (build with -tags whisper)")

type WhisperOptions struct {
	Language      string
	Threads       int
	InitialPrompt string
	BeamSize      int
	Temperature   float32
}

type Whisper struct{}

func NewWhisper(string, WhisperOptions) (*Whisper, error) {
	return nil, errNoWhisper
}

func (w *Whisper) Close() error { return nil }

func (w *Whisper) Recognize(context.Context, []float32) (string, error) {
	return "", &RequestError{Err: errNoWhisper}
}
