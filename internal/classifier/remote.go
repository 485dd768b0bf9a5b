package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/campusdesk/complaint-service/internal/domain"
)

const systemPrompt = `You are an AI assistant for a campus Complaint Management System.
Analyze the user's complaint and extract:
1. Sentiment: strictly one of "ANGRY", "FRUSTRATED", "NEUTRAL", "SATISFIED".
2. Category: strictly one of "Sexual Harassment", "Ragging", "Academic Issues", "Infrastructure", "Canteen/Hygiene", "Student Affairs", "Discrimination", "Other".

Return ONLY a valid JSON object with keys "sentiment" and "category". Do not add any markdown formatting.`

// RemoteConfig configures the hosted chat-completions classifier.
type RemoteConfig struct {
	URL         string
	APIKey      string
	Model       string
	Temperature float64
	Timeout     time.Duration
}

// Remote asks an OpenAI-compatible chat-completions endpoint for a strict JSON
// classification.
type Remote struct {
	cfg    RemoteConfig
	client *http.Client
	logger *zap.Logger
}

// NewRemote builds the remote classifier. A nil client gets a pooled default.
func NewRemote(cfg RemoteConfig, client *http.Client, logger *zap.Logger) *Remote {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if client == nil {
		client = &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
				ForceAttemptHTTP2:   true,
			},
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Remote{cfg: cfg, client: client, logger: logger}
}

// Enabled reports whether an API key is configured.
func (r *Remote) Enabled() bool {
	return r != nil && strings.TrimSpace(r.cfg.APIKey) != ""
}

// Model returns the configured model name.
func (r *Remote) Model() string {
	return r.cfg.Model
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    float64        `json:"temperature"`
	ResponseFormat responseFormat `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type remoteVerdict struct {
	Sentiment string `json:"sentiment"`
	Category  string `json:"category"`
}

// Classify calls the remote endpoint. Every failure is reported as ErrUnavailable.
// Fields the model returned outside the fixed enumerations are left empty.
func (r *Remote) Classify(ctx context.Context, text string) (Result, error) {
	if !r.Enabled() {
		return Result{}, ErrUnavailable
	}
	verdict, err := r.call(ctx, text)
	if err != nil {
		r.logger.Debug("remote classification failed", zap.String("model", r.cfg.Model), zap.Error(err))
		return Result{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var result Result
	if s := domain.Sentiment(strings.ToUpper(strings.TrimSpace(verdict.Sentiment))); s.Valid() {
		result.Sentiment = s
		result.SentimentOrigin = domain.OriginRemote
	}
	if c, ok := matchCategory(verdict.Category); ok {
		result.Category = c
		result.CategoryOrigin = domain.OriginRemote
	}
	if result.Sentiment == "" && result.Category == "" {
		return Result{}, fmt.Errorf("%w: no recognised fields", ErrUnavailable)
	}
	return result, nil
}

func (r *Remote) call(ctx context.Context, text string) (*remoteVerdict, error) {
	payload, err := json.Marshal(chatRequest{
		Model: r.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: text},
		},
		Temperature:    r.cfg.Temperature,
		ResponseFormat: responseFormat{Type: "json_object"},
	})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.URL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.cfg.APIKey)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return nil, fmt.Errorf("empty completion")
	}

	var verdict remoteVerdict
	if err := json.Unmarshal([]byte(parsed.Choices[0].Message.Content), &verdict); err != nil {
		return nil, fmt.Errorf("decode verdict: %w", err)
	}
	return &verdict, nil
}

func matchCategory(raw string) (domain.Category, bool) {
	raw = strings.TrimSpace(raw)
	for _, c := range domain.Categories {
		if strings.EqualFold(raw, string(c)) {
			return c, true
		}
	}
	return "", false
}
