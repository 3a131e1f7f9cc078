package stt

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownValue is returned when audio was captured but no words came out of it.
var ErrUnknownValue = errors.New("speech was not understood")

// Recognizer turns mono 16 kHz float32 PCM into a lower-cased transcript.
type Recognizer interface {
	Recognize(ctx context.Context, pcm16k []float32) (string, error)
}

// RequestError is a failure talking to the recognition service itself.
type RequestError struct {
	StatusCode int
	Connection bool
	Err        error
}

func (e *RequestError) Error() string {
	switch {
	case e.Connection:
		return fmt.Sprintf("recognition connection failed: %v", e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("recognition request failed: status %d: %v", e.StatusCode, e.Err)
	default:
		return fmt.Sprintf("recognition request failed: %v", e.Err)
	}
}

func (e *RequestError) Unwrap() error { return e.Err }

// whisper emits these markers for silence or noise
var nonSpeech = []string{"[blank_audio]", "[silence]", "(silence)", "[inaudible]", "[music]", "[noise]"}

// normalize lower-cases a raw transcript and maps empty output to ErrUnknownValue.
func normalize(raw string) (string, error) {
	text := strings.ToLower(strings.TrimSpace(raw))
	for _, marker := range nonSpeech {
		text = strings.ReplaceAll(text, marker, "")
	}
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return "", ErrUnknownValue
	}
	return text, nil
}
