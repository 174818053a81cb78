// Package oracle talks to an OpenAI-compatible chat-completions endpoint
// (Groq by default) for dictionary checks and meaning hints.
//
// Calls are best-effort: a bounded number of retries with linear backoff on
// transport errors, 429 and 5xx, each attempt capped by the client timeout.
package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	DefaultBaseURL = "https://api.groq.com/openai/v1"
	DefaultModel   = "llama-3.1-8b-instant"
)

// ErrNotConfigured is returned by every call when no API key is set.
var ErrNotConfigured = errors.New("oracle: not configured")

// Config configures a Client.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration // per attempt
	Retries int           // extra attempts after the first
	Backoff time.Duration // multiplied by the attempt number
}

// Client is a minimal chat-completions client.
type Client struct {
	cfg  Config
	http *http.Client
}

// New builds a Client. A Client with an empty APIKey is valid but every
// call returns ErrNotConfigured.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 8 * time.Second
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = 250 * time.Millisecond
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	return &Client{cfg: cfg, http: &http.Client{}}
}

// WorstCase is the longest a Complete call can take: every attempt timing
// out plus the backoff between them.
func (c Config) WorstCase() time.Duration {
	cfg := New(c).cfg
	n := time.Duration(cfg.Retries)
	return cfg.Timeout*(n+1) + cfg.Backoff*n*(n+1)/2
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool { return c != nil && c.cfg.APIKey != "" }

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// statusError marks a non-2xx reply; retryable ones are 429 and 5xx.
type statusError struct{ code int }

func (e *statusError) Error() string { return fmt.Sprintf("oracle: status %d", e.code) }

func retryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.code == http.StatusTooManyRequests || se.code >= 500
	}
	return true
}

// Complete sends one user prompt and returns the trimmed first choice.
func (c *Client) Complete(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}
	body, err := json.Marshal(chatRequest{
		Model:       c.cfg.Model,
		Messages:    []message{{Role: "user", Content: prompt}},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("oracle: marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.cfg.Retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Duration(attempt) * c.cfg.Backoff):
			}
		}
		out, err := c.do(ctx, body)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if ctx.Err() != nil || !retryable(err) {
			break
		}
		log.Debug().Err(err).Int("attempt", attempt+1).Msg("oracle call failed, retrying")
	}
	return "", lastErr
}

func (c *Client) do(ctx context.Context, body []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("oracle: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("oracle: send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", &statusError{code: resp.StatusCode}
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", fmt.Errorf("oracle: decode: %w", err)
	}
	if cr.Error != nil {
		return "", fmt.Errorf("oracle: api error: %s", cr.Error.Message)
	}
	if len(cr.Choices) == 0 {
		return "", errors.New("oracle: no choices returned")
	}
	return strings.TrimSpace(cr.Choices[0].Message.Content), nil
}
