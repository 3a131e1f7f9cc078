// Package emotion classifies the affect of a transcript into a small closed
// set of labels.
package emotion

import (
	"context"
	"fmt"
	log "log/slog"
	"strings"
)

type Label string

const (
	Neutral  Label = "neutral"
	Joy      Label = "joy"
	Sadness  Label = "sadness"
	Anger    Label = "anger"
	Surprise Label = "surprise"
	Fear     Label = "fear"
	Disgust  Label = "disgust"
)

var Labels = []Label{Sadness, Joy, Anger, Surprise, Fear, Disgust, Neutral}

// aliases covers labels emitted by other emotion models
var aliases = map[string]Label{
	"love":      Joy,
	"happy":     Joy,
	"happiness": Joy,
	"sad":       Sadness,
	"angry":     Anger,
	"surprised": Surprise,
	"fearful":   Fear,
	"disgusted": Disgust,
	"others":    Neutral,
}

// Parse maps a raw model label onto the closed set.
func Parse(raw string) (Label, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	for _, l := range Labels {
		if s == string(l) {
			return l, nil
		}
	}
	if l, ok := aliases[s]; ok {
		return l, nil
	}
	return Neutral, fmt.Errorf("unknown emotion label %q", raw)
}

type Classifier interface {
	Classify(ctx context.Context, text string) (Label, error)
}

// Detect never fails: a missing classifier, empty text or any error yields Neutral.
func Detect(ctx context.Context, c Classifier, text string) Label {
	if c == nil || strings.TrimSpace(text) == "" {
		return Neutral
	}

	label, err := c.Classify(ctx, text)
	if err != nil {
		log.Warn("Emotion detection failed", "err", err)
		return Neutral
	}
	return label
}
