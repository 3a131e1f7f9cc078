package tts

import (
	"context"
	log "log/slog"
	"time"
)

// Engine speaks text synchronously.
type Engine interface {
	Speak(text string) error
}

type Ducker interface {
	DuckOthers(ctx context.Context, factor float64, duration time.Duration) error
	UnduckOthers(ctx context.Context, duration time.Duration) error
}

const (
	duckFactor = 0.3
	duckFade   = 150 * time.Millisecond
)

// Ducked lowers other applications' audio for the length of each utterance.
type Ducked struct {
	engine Engine
	ducker Ducker
}

func NewDucked(e Engine, d Ducker) *Ducked {
	return &Ducked{engine: e, ducker: d}
}

func (d *Ducked) Speak(text string) error {
	ctx := context.Background()

	if err := d.ducker.DuckOthers(ctx, duckFactor, duckFade); err != nil {
		log.Warn("Failed to duck audio", "err", err)
	}
	defer func() {
		if err := d.ducker.UnduckOthers(ctx, duckFade); err != nil {
			log.Warn("Failed to restore audio", "err", err)
		}
	}()

	return d.engine.Speak(text)
}
