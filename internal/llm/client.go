package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"loanflow/internal/config"
)

const (
	// NotConfiguredMessage is returned verbatim when no API key is set.
	NotConfiguredMessage = "AI service is not configured at the moment."

	// BusyMessage is returned when every configured model fails.
	BusyMessage = "I'm currently experiencing high traffic. Please try again in a few seconds."

	defaultBaseURL = "https://openrouter.ai/api/v1"
)

// ErrNotConfigured reports that the client has no API key.
var ErrNotConfigured = errors.New("llm: api key not configured")

// ErrUnavailable reports that all configured models failed for a request.
var ErrUnavailable = errors.New("llm: all models unavailable")

// junk tokens some free models leak into completions
var junkTokens = []string{"<s>", "</s>", "[OUTST]", "[/OUTST]"}

// Client talks to the OpenRouter chat completions API with a fixed
// model failover list. All methods are safe for concurrent use.
type Client struct {
	APIKey  string
	BaseURL string
	Models  []string
	Referer string
	Title   string
	HTTP    *http.Client
	Logger  *zap.Logger
}

func New(cfg config.LLMConfig, logger *zap.Logger) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		APIKey:  cfg.APIKey,
		BaseURL: base,
		Models:  cfg.Models,
		Referer: cfg.Referer,
		Title:   cfg.Title,
		HTTP:    &http.Client{Timeout: timeout},
		Logger:  logger,
	}
}

func (c *Client) Configured() bool {
	return c != nil && c.APIKey != "" && len(c.Models) > 0
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	Stop        []string      `json:"stop,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends the prompt to each configured model in order and
// returns the first non-empty sanitized completion. Rate limits,
// gateway errors, transport failures and empty completions all move
// on to the next model; ErrUnavailable means every model failed.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	for _, model := range c.Models {
		text, err := c.completeOne(ctx, model, systemPrompt, userPrompt)
		if err != nil {
			if c.Logger != nil {
				c.Logger.Warn("llm model attempt failed", zap.String("model", model), zap.Error(err))
			}
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			continue
		}
		if text == "" {
			continue
		}
		return text, nil
	}
	return "", ErrUnavailable
}

func (c *Client) completeOne(ctx context.Context, model, systemPrompt, userPrompt string) (string, error) {
	payload := chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: 0.2,
		MaxTokens:   512,
		Stop:        []string{"</s>", "[/OUTST]"},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")
	if c.Referer != "" {
		req.Header.Set("HTTP-Referer", c.Referer)
	}
	if c.Title != "" {
		req.Header.Set("X-Title", c.Title)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("llm: %s returned status %d", model, resp.StatusCode)
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", nil
	}
	return Sanitize(out.Choices[0].Message.Content), nil
}

// Sanitize strips markup tokens that free-tier models leak into output.
func Sanitize(text string) string {
	for _, tok := range junkTokens {
		text = strings.ReplaceAll(text, tok, "")
	}
	return strings.TrimSpace(text)
}
