// Package config builds the single configuration struct passed through the
// assistant loop.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	cli "github.com/spf13/pflag"
)

var (
	ErrCredentialFile = errors.New("credential file not found")
	ErrMissingToken   = errors.New("api token not set")
)

const (
	TokenEnv  = "HUGGINGFACEHUB_API_TOKEN"
	GeminiEnv = "GEMINI_API_KEY"
)

const (
	BackendHF      = "hf"
	BackendWhisper = "whisper"
	BackendLexicon = "lexicon"
	BackendOff     = "off"
	BackendGemini  = "gemini"
)

type Config struct {
	EnvFile  string
	LogLevel string

	Token     string
	GeminiKey string

	STT          string
	STTModel     string
	WhisperModel string
	Language     string

	Emotion      string
	EmotionModel string

	LLM      string
	LLMModel string
	LLMURL   string
	Provider string

	Voice string
	Rate  int

	Calibration time.Duration
	Timeout     time.Duration
	PhraseLimit time.Duration
	ThinkPause  time.Duration
	SpeakPause  time.Duration
	HTTPTimeout time.Duration

	Proxy   string
	Bus     string
	Socket  string
	Replay  []string
	Cue     bool
	CueFile string
	Duck    bool
}

// Load parses args, then reads credentials from the env file, which must exist.
func Load(args []string) (*Config, error) {
	c := &Config{}
	fs := cli.NewFlagSet("empath", cli.ContinueOnError)

	fs.StringVarP(&c.EnvFile, "env", "e", ".env", "Credential file path")
	fs.StringVarP(&c.LogLevel, "log", "l", "info", "Log level (debug|info|warn|error)")

	fs.StringVar(&c.STT, "stt", BackendHF, "Speech recognizer (hf|whisper)")
	fs.StringVar(&c.STTModel, "stt-model", "", "Hosted ASR model id")
	fs.StringVar(&c.WhisperModel, "whisper-model", "models/ggml-base.en.bin", "Local whisper.cpp model")
	fs.StringVar(&c.Language, "lang", "en", "Recognition language")

	fs.StringVar(&c.Emotion, "emotion", BackendHF, "Emotion classifier (hf|lexicon|off)")
	fs.StringVar(&c.EmotionModel, "emotion-model", "", "Hosted text-classification model id")

	fs.StringVar(&c.LLM, "llm", BackendHF, "Chat backend (hf|gemini)")
	fs.StringVar(&c.LLMModel, "model", "", "Chat model id")
	fs.StringVar(&c.LLMURL, "llm-url", "", "OpenAI-compatible base URL")
	fs.StringVar(&c.Provider, "provider", "Mistral AI", "Model provider named in the greeting")

	fs.StringVar(&c.Voice, "voice", "", "espeak voice name (default: first installed)")
	fs.IntVar(&c.Rate, "rate", 160, "Speech rate, words per minute")

	fs.DurationVar(&c.Calibration, "calibrate", time.Second, "Ambient noise sampling before each listen")
	fs.DurationVar(&c.Timeout, "timeout", 10*time.Second, "Max wait for speech to start")
	fs.DurationVar(&c.PhraseLimit, "phrase-limit", 10*time.Second, "Max phrase length")
	fs.DurationVar(&c.ThinkPause, "think-pause", 500*time.Millisecond, "Pause after emotion detection")
	fs.DurationVar(&c.SpeakPause, "speak-pause", 100*time.Millisecond, "Pause after each reply")
	fs.DurationVar(&c.HTTPTimeout, "http-timeout", 60*time.Second, "Timeout for hosted API calls")

	fs.StringVarP(&c.Proxy, "proxy", "p", "", "SOCKS5 proxy address for API calls")
	fs.StringVar(&c.Bus, "bus", "", "Websocket URL that receives finished turns")
	fs.StringVar(&c.Socket, "socket", "/tmp/empath.sock", "Control socket path")
	fs.StringSliceVar(&c.Replay, "replay", nil, "Audio files to use instead of the microphone")
	fs.BoolVar(&c.Cue, "cue", true, "Beep before listening")
	fs.StringVar(&c.CueFile, "cue-file", "", "mp3 to play as the listening cue")
	fs.BoolVar(&c.Duck, "duck", false, "Lower other audio streams while speaking")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if _, err := os.Stat(c.EnvFile); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrCredentialFile, c.EnvFile)
	}
	env, err := godotenv.Read(c.EnvFile)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", c.EnvFile, err)
	}
	lookup := func(key string) string {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
		return strings.TrimSpace(env[key])
	}

	c.Token = lookup(TokenEnv)
	c.GeminiKey = lookup(GeminiEnv)

	override := func(flag string, dst *string, key string) {
		if v := lookup(key); v != "" && !fs.Changed(flag) {
			*dst = v
		}
	}
	override("model", &c.LLMModel, "EMPATH_LLM_MODEL")
	override("llm-url", &c.LLMURL, "EMPATH_LLM_URL")
	override("stt-model", &c.STTModel, "EMPATH_STT_MODEL")
	override("emotion-model", &c.EmotionModel, "EMPATH_EMOTION_MODEL")
	override("voice", &c.Voice, "EMPATH_VOICE")

	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) validate() error {
	if err := oneOf("stt", c.STT, BackendHF, BackendWhisper); err != nil {
		return err
	}
	if err := oneOf("emotion", c.Emotion, BackendHF, BackendLexicon, BackendOff); err != nil {
		return err
	}
	if err := oneOf("llm", c.LLM, BackendHF, BackendGemini); err != nil {
		return err
	}
	if err := oneOf("log", c.LogLevel, "debug", "info", "warn", "error"); err != nil {
		return err
	}

	if c.NeedsHFToken() && c.Token == "" {
		return fmt.Errorf("%w: %s missing from %s", ErrMissingToken, TokenEnv, c.EnvFile)
	}
	if c.LLM == BackendGemini && c.GeminiKey == "" {
		return fmt.Errorf("%w: %s missing from %s", ErrMissingToken, GeminiEnv, c.EnvFile)
	}
	return nil
}

// NeedsHFToken reports whether any configured backend calls Hugging Face.
func (c *Config) NeedsHFToken() bool {
	return c.STT == BackendHF || c.Emotion == BackendHF || c.LLM == BackendHF
}

func oneOf(name, v string, allowed ...string) error {
	for _, a := range allowed {
		if v == a {
			return nil
		}
	}
	return fmt.Errorf("invalid --%s %q (want %s)", name, v, strings.Join(allowed, "|"))
}
