package emotion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	log "log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultHFBaseURL = "https://router.huggingface.co/hf-inference/models"
	DefaultHFModel   = "j-hartmann/emotion-english-distilroberta-base"
)

type HFConfig struct {
	Token      string
	Model      string
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// HFClassifier queries a Hugging Face hosted text-classification model.
type HFClassifier struct {
	cfg    HFConfig
	client *http.Client
}

func NewHFClassifier(cfg HFConfig) (*HFClassifier, error) {
	if cfg.Token == "" {
		return nil, errors.New("empty api token")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultHFModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultHFBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &HFClassifier{cfg: cfg, client: client}, nil
}

type scoredLabel struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

func (c *HFClassifier) Classify(ctx context.Context, text string) (Label, error) {
	body, err := json.Marshal(map[string]any{"inputs": text})
	if err != nil {
		return Neutral, err
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/" + c.cfg.Model
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return Neutral, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Neutral, fmt.Errorf("classify request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Neutral, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Neutral, fmt.Errorf("classifier returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	scores, err := decodeScores(raw)
	if err != nil {
		return Neutral, err
	}

	best := scores[0]
	for _, s := range scores[1:] {
		if s.Score > best.Score {
			best = s
		}
	}

	log.Debug("Classified", "label", best.Label, "score", best.Score)
	return Parse(best.Label)
}

// decodeScores accepts both [[{label,score}...]] and [{label,score}...].
func decodeScores(raw []byte) ([]scoredLabel, error) {
	var nested [][]scoredLabel
	if err := json.Unmarshal(raw, &nested); err == nil {
		if len(nested) > 0 && len(nested[0]) > 0 {
			return nested[0], nil
		}
		return nil, errors.New("empty classification result")
	}

	var flat []scoredLabel
	if err := json.Unmarshal(raw, &flat); err != nil {
		return nil, fmt.Errorf("decode classification: %w", err)
	}
	if len(flat) == 0 {
		return nil, errors.New("empty classification result")
	}
	return flat, nil
}
