package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/lmittmann/tint"
	log "log/slog"

	"empath/internal/assistant"
	"empath/internal/audio"
	"empath/internal/bus"
	"empath/internal/chat"
	"empath/internal/config"
	"empath/internal/emotion"
	"empath/internal/ipc"
	"empath/internal/notify"
	"empath/internal/proxy"
	"empath/internal/tts"
	"empath/pkg/audioconv"
	"empath/pkg/stt"
)

var logLevelMap = map[string]log.Level{
	"debug": log.LevelDebug,
	"info":  log.LevelInfo,
	"warn":  log.LevelWarn,
	"error": log.LevelError,
}

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Error("Failed to load config", "err", err)
		return 1
	}

	log.SetDefault(log.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level: logLevelMap[cfg.LogLevel],
	})))

	log.Info("Booting up")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	httpClient, err := proxy.NewClient(cfg.Proxy, cfg.HTTPTimeout)
	if err != nil {
		log.Error("Failed to dial socks proxy", "proxy", cfg.Proxy, "err", err)
		return 1
	}

	espeak, err := tts.NewEspeak(tts.Options{Voice: cfg.Voice, Rate: cfg.Rate})
	if err != nil {
		log.Error("Failed to init speech engine", "err", err)
		return 1
	}
	defer func() {
		if err := espeak.Close(); err != nil {
			log.Warn("Failed to close speech engine", "err", err)
		}
		log.Info("Shutdown complete")
	}()

	var speaker tts.Engine = espeak
	if cfg.Duck {
		speaker = tts.NewDucked(espeak, audio.NewDucker([]string{"empath", "espeak", "eSpeak"}, 10))
	}
	say := func(text string) {
		log.Info("Bot", "text", text)
		if err := speaker.Speak(text); err != nil {
			log.Error("Failed to voice out", "err", err)
		}
	}

	var source audio.Source
	if len(cfg.Replay) > 0 {
		source = audio.NewFileSource(cfg.Replay, audioconv.DefaultRate)
		log.Debug("Replaying audio files", "count", len(cfg.Replay))
	} else {
		rec := audio.NewRecorder(audio.RecorderConfig{
			SampleRate:  audioconv.DefaultRate,
			Calibration: cfg.Calibration,
			Timeout:     cfg.Timeout,
			PhraseLimit: cfg.PhraseLimit,
		})
		if err := rec.Init(); err != nil {
			log.Error("Failed to init audio", "err", err)
			return 1
		}
		defer rec.Close()
		source = rec
		log.Debug("Loaded recorder")
	}

	recognizer, err := newRecognizer(cfg, httpClient)
	if err != nil {
		log.Error("Failed to init speech recognizer", "stt", cfg.STT, "err", err)
		return 1
	}
	if c, ok := recognizer.(interface{ Close() error }); ok {
		defer c.Close()
	}

	classifier, err := newClassifier(cfg, httpClient)
	if err != nil {
		log.Error("Failed to load emotion classifier", "err", err)
		say(assistant.NoEmotionMsg)
		classifier = nil
	}

	completer, err := newCompleter(ctx, cfg, httpClient)
	if err != nil {
		log.Error("Failed to init language model", "llm", cfg.LLM, "err", err)
		say(assistant.NoModelMsg)
		return 1
	}
	responder := chat.NewResponder(completer, chat.NewPrompt(), chat.DefaultParams())

	opt := assistant.Options{
		Provider:   cfg.Provider,
		ThinkPause: cfg.ThinkPause,
		SpeakPause: cfg.SpeakPause,
	}
	if cfg.Cue {
		opt.Cue = notify.NewCue(cfg.CueFile)
	}
	if cfg.Bus != "" {
		b, err := bus.Dial(cfg.Bus)
		if err != nil {
			log.Warn("Failed to connect to bus", "url", cfg.Bus, "err", err)
		} else {
			defer b.Close()
			opt.OnTurn = func(t assistant.Turn) {
				err := b.Publish(bus.Message{
					ID:         t.ID,
					From:       "empath",
					Kind:       "turn",
					Transcript: t.Transcript,
					Emotion:    string(t.Emotion),
					Reply:      t.Reply,
				})
				if err != nil {
					log.Warn("Failed to publish turn", "err", err)
				}
			}
		}
	}

	srv, err := ipc.StartServer(cfg.Socket, func(msg ipc.ControlMessage) ipc.Reply {
		switch msg.Cmd {
		case "quit":
			cancel()
			return ipc.Reply{OK: true, Message: "bye"}
		case "ping":
			return ipc.Reply{OK: true, Message: "pong"}
		default:
			log.Warn("Unknown command", "cmd", msg.Cmd)
			return ipc.Reply{Message: "unknown command " + msg.Cmd}
		}
	})
	if err != nil {
		log.Warn("Control socket disabled", "path", cfg.Socket, "err", err)
	} else {
		defer srv.Close()
	}

	log.Info("Boot up - successful")

	a := assistant.New(source, recognizer, classifier, responder, speaker, opt)
	if err := a.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			log.Info("Exiting...")
			return 0
		}
		log.Error("Assistant stopped", "err", err)
		return 1
	}
	return 0
}

func newRecognizer(cfg *config.Config, hc *http.Client) (stt.Recognizer, error) {
	if cfg.STT == config.BackendWhisper {
		w, err := stt.NewWhisper(cfg.WhisperModel, stt.WhisperOptions{Language: cfg.Language})
		if err != nil {
			return nil, err
		}
		return w, nil
	}
	r, err := stt.NewHFRecognizer(stt.HFConfig{
		Token:      cfg.Token,
		Model:      cfg.STTModel,
		SampleRate: audioconv.DefaultRate,
		Timeout:    cfg.HTTPTimeout,
		HTTPClient: hc,
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// newClassifier returns a nil interface for --emotion off.
func newClassifier(cfg *config.Config, hc *http.Client) (emotion.Classifier, error) {
	switch cfg.Emotion {
	case config.BackendOff:
		return nil, nil
	case config.BackendLexicon:
		return emotion.NewLexicon(), nil
	}
	c, err := emotion.NewHFClassifier(emotion.HFConfig{
		Token:      cfg.Token,
		Model:      cfg.EmotionModel,
		Timeout:    cfg.HTTPTimeout,
		HTTPClient: hc,
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func newCompleter(ctx context.Context, cfg *config.Config, hc *http.Client) (chat.Completer, error) {
	if cfg.LLM == config.BackendGemini {
		g, err := chat.NewGeminiCompleter(ctx, chat.GeminiConfig{
			APIKey:     cfg.GeminiKey,
			Model:      cfg.LLMModel,
			BaseURL:    cfg.LLMURL,
			HTTPClient: hc,
		})
		if err != nil {
			return nil, err
		}
		return g, nil
	}
	c, err := chat.NewOpenAICompleter(chat.OpenAIConfig{
		Token:      cfg.Token,
		BaseURL:    cfg.LLMURL,
		Model:      cfg.LLMModel,
		Timeout:    cfg.HTTPTimeout,
		HTTPClient: hc,
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}
