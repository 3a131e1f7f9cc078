// Package assistant runs the listen, classify, respond, speak loop.
package assistant

import (
	"context"
	"errors"
	log "log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"empath/internal/audio"
	"empath/internal/emotion"
	"empath/pkg/stt"
)

var errNoTranscript = errors.New("empty transcript")

type Speaker interface {
	Speak(text string) error
}

type Responder interface {
	Respond(ctx context.Context, userText string, label emotion.Label) string
}

type Cue interface {
	Play(ctx context.Context) error
}

// Turn is one exchange. It is handed to OnTurn and then dropped.
type Turn struct {
	ID         string
	Transcript string
	Emotion    emotion.Label
	Reply      string
}

type Options struct {
	Provider   string
	ThinkPause time.Duration
	SpeakPause time.Duration
	Cue        Cue
	OnTurn     func(Turn)
}

type Assistant struct {
	source     audio.Source
	recognizer stt.Recognizer
	classifier emotion.Classifier
	responder  Responder
	speaker    Speaker
	opt        Options
}

// New wires the loop. classifier may be nil, in which case every turn is neutral.
func New(src audio.Source, rec stt.Recognizer, cls emotion.Classifier, resp Responder, spk Speaker, opt Options) *Assistant {
	if opt.Provider == "" {
		opt.Provider = "Mistral AI"
	}
	return &Assistant{
		source:     src,
		recognizer: rec,
		classifier: cls,
		responder:  resp,
		speaker:    spk,
		opt:        opt,
	}
}

// Say echoes text to the log and speaks it, blocking until playback ends.
func (a *Assistant) Say(text string) {
	log.Info("Bot", "text", text)
	if err := a.speaker.Speak(text); err != nil {
		log.Error("Failed to voice out", "err", err)
	}
}

// Run returns nil after an exit phrase or exhausted replay, ctx.Err() on interrupt.
func (a *Assistant) Run(ctx context.Context) error {
	a.Say(Greeting(a.opt.Provider))

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		text, err := a.listen(ctx)
		if errors.Is(err, audio.ErrExhausted) {
			log.Info("Replay finished")
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			a.Say(listenFallback(err))
			continue
		}

		if IsExit(text) {
			a.Say(FarewellMsg)
			return nil
		}

		label := emotion.Detect(ctx, a.classifier, text)
		log.Info("Detected emotion", "emotion", label)
		if err := sleep(ctx, a.opt.ThinkPause); err != nil {
			return err
		}

		reply := a.responder.Respond(ctx, text, label)
		if err := ctx.Err(); err != nil {
			return err
		}
		if reply == "" {
			reply = NoReplyMsg
		}
		a.Say(reply)

		if a.opt.OnTurn != nil {
			a.opt.OnTurn(Turn{ID: uuid.NewString(), Transcript: text, Emotion: label, Reply: reply})
		}

		if err := sleep(ctx, a.opt.SpeakPause); err != nil {
			return err
		}
	}
}

func (a *Assistant) listen(ctx context.Context) (string, error) {
	if a.opt.Cue != nil {
		if err := a.opt.Cue.Play(ctx); err != nil {
			log.Warn("Failed to play cue", "err", err)
		}
	}

	pcm, err := a.source.Listen(ctx)
	if err != nil {
		switch {
		case errors.Is(err, audio.ErrWaitTimeout):
			log.Info("No speech detected within timeout")
		case errors.Is(err, audio.ErrExhausted), ctx.Err() != nil:
		default:
			log.Error("Error during listening", "err", err)
		}
		return "", err
	}

	log.Info("Recognizing...", "samples", len(pcm))
	text, err := a.recognizer.Recognize(ctx, pcm)
	if err != nil {
		if !errors.Is(err, stt.ErrUnknownValue) {
			log.Error("Speech recognition failed", "err", err)
		}
		return "", err
	}

	if strings.TrimSpace(text) == "" {
		return "", errNoTranscript
	}

	log.Info("You", "text", text)
	return text, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
