// Package llm talks to OpenAI-compatible chat-completions endpoints. It backs
// the remote brief generator and the remote dispatch validator.
package llm

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

	"github.com/kilianp07/gridpulse/auth"
	"github.com/kilianp07/gridpulse/core/logger"
)

// Config locates a chat-completions endpoint.
type Config struct {
	Endpoint    string        `json:"endpoint"`
	APIKey      string        `json:"api_key"`
	Model       string        `json:"model"`
	Temperature float64       `json:"temperature"`
	Timeout     time.Duration `json:"timeout"`
	// OAuth replaces the static API key with client-credentials tokens.
	OAuth auth.Conf `json:"oauth"`
}

// Enabled reports whether credentials are configured.
func (c Config) Enabled() bool { return strings.TrimSpace(c.APIKey) != "" || c.OAuth.Enabled() }

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

type completionResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

// ErrEmptyCompletion is returned when the endpoint answers without content.
var ErrEmptyCompletion = errors.New("completion returned no content")

// Client performs chat-completion calls. Errors for non-2xx responses read
// "<label> API error (<status>)".
type Client struct {
	cfg   Config
	label string
	http  *http.Client
	cred  *auth.ClientCred
	log   logger.Logger
}

// NewClient creates a client. label prefixes HTTP status errors.
func NewClient(label string, cfg Config, log logger.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	c := &Client{
		cfg:   cfg,
		label: label,
		http:  &http.Client{Timeout: cfg.Timeout},
		log:   logger.OrNop(log),
	}
	if cfg.OAuth.Enabled() {
		c.cred = auth.NewClientCred(cfg.OAuth)
	}
	return c
}

// Complete sends messages and returns the first choice's content. With OAuth
// configured, a 401 triggers one token refresh and retry.
func (c *Client) Complete(ctx context.Context, messages []Message) (string, error) {
	body, err := json.Marshal(completionRequest{Model: c.cfg.Model, Messages: messages, Temperature: c.cfg.Temperature})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}
	resp, err := c.post(ctx, body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode == http.StatusUnauthorized && c.cred != nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		if _, err := c.cred.ForceRefresh(ctx); err != nil {
			return "", fmt.Errorf("%s token refresh: %w", c.label, err)
		}
		if resp, err = c.post(ctx, body); err != nil {
			return "", err
		}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("%s API error (%d)", c.label, resp.StatusCode)
	}
	var out completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode %s response: %w", c.label, err)
	}
	if len(out.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}

func (c *Client) post(ctx context.Context, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cred != nil {
		if err := c.cred.SetAuthHeader(ctx, req); err != nil {
			return nil, fmt.Errorf("%s auth: %w", c.label, err)
		}
	} else {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", c.label, err)
	}
	c.log.Debugw("chat completion", map[string]any{
		"endpoint": c.cfg.Endpoint, "model": c.cfg.Model, "status": resp.StatusCode, "elapsed_ms": time.Since(start).Milliseconds(),
	})
	return resp, nil
}
