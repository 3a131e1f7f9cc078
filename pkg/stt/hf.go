package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	log "log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"empath/pkg/audioconv"
)

const (
	DefaultHFBaseURL = "https://router.huggingface.co/hf-inference/models"
	DefaultHFModel   = "openai/whisper-large-v3"
)

type HFConfig struct {
	Token      string
	Model      string
	BaseURL    string
	SampleRate int
	Timeout    time.Duration
	HTTPClient *http.Client
}

// HFRecognizer sends WAV-encoded audio to a Hugging Face hosted ASR model.
type HFRecognizer struct {
	cfg    HFConfig
	client *http.Client
}

func NewHFRecognizer(cfg HFConfig) (*HFRecognizer, error) {
	if cfg.Token == "" {
		return nil, errors.New("empty api token")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultHFModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultHFBaseURL
	}
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 16000
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	return &HFRecognizer{cfg: cfg, client: client}, nil
}

type hfASRResponse struct {
	Text  string `json:"text"`
	Error string `json:"error"`
}

func (r *HFRecognizer) Recognize(ctx context.Context, pcm16k []float32) (string, error) {
	if len(pcm16k) == 0 {
		return "", ErrUnknownValue
	}

	payload, err := audioconv.EncodeWAV(pcm16k, r.cfg.SampleRate)
	if err != nil {
		return "", fmt.Errorf("encode wav: %w", err)
	}

	endpoint := strings.TrimRight(r.cfg.BaseURL, "/") + "/" + r.cfg.Model
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+r.cfg.Token)
	req.Header.Set("Content-Type", "audio/wav")

	log.Debug("Sending audio to recognizer", "model", r.cfg.Model, "bytes", len(payload))

	resp, err := r.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", &RequestError{Connection: isConnErr(err), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &RequestError{StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	var out hfASRResponse
	if resp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(string(body))
		if json.Unmarshal(body, &out) == nil && out.Error != "" {
			msg = out.Error
		}
		return "", &RequestError{StatusCode: resp.StatusCode, Err: errors.New(msg)}
	}

	if err := json.Unmarshal(body, &out); err != nil {
		return "", &RequestError{StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}

	return normalize(out.Text)
}

// isConnErr separates network reachability failures from TLS, proxy and
// other request errors, all of which arrive wrapped in *url.Error.
func isConnErr(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "connection")
}
