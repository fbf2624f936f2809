// Package llm provides a client for an Anthropic-style messages API.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultBaseURL   = "https://api.anthropic.com"
	anthropicVersion = "2023-06-01"
)

// ErrRateLimited is returned when the provider rejects a request for rate
// or quota reasons. Callers decide how long to back off.
var ErrRateLimited = errors.New("llm: rate limited")

// Usage reports token consumption for a single completion.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Client calls the messages endpoint over HTTP.
type Client struct {
	baseURL   string
	apiKey    string
	model     string
	maxTokens int
	client    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL.
func WithBaseURL(u string) Option { return func(c *Client) { c.baseURL = u } }

// WithMaxTokens sets the completion token limit (default 4096).
func WithMaxTokens(n int) Option { return func(c *Client) { c.maxTokens = n } }

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.client = h } }

// New creates a messages-API client.
func New(apiKey, model string, opts ...Option) *Client {
	c := &Client{
		baseURL:   defaultBaseURL,
		apiKey:    apiKey,
		model:     model,
		maxTokens: 4096,
		client: &http.Client{
			Timeout: 120 * time.Second, // LLM calls can be slow
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []contentBlock `json:"content"`
	Usage   *usageBlock    `json:"usage,omitempty"`
	Error   *apiError      `json:"error,omitempty"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type usageBlock struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type apiError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Complete sends a system/user prompt pair and returns the text of the first
// content block. A 429 response or a rate_limit_error body maps to
// ErrRateLimited.
func (c *Client) Complete(ctx context.Context, system, user string) (string, Usage, error) {
	reqBody := messagesRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System:    system,
		Messages:  []message{{Role: "user", Content: user}},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", Usage{}, fmt.Errorf("llm: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v1/messages", bytes.NewReader(jsonBody))
	if err != nil {
		return "", Usage{}, fmt.Errorf("llm: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", Usage{}, fmt.Errorf("llm: call messages API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", Usage{}, fmt.Errorf("llm: read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", Usage{}, fmt.Errorf("%w: %s", ErrRateLimited, string(body))
	}
	if resp.StatusCode != http.StatusOK {
		return "", Usage{}, fmt.Errorf("llm: status %d: %s", resp.StatusCode, string(body))
	}

	var mr messagesResponse
	if err := json.Unmarshal(body, &mr); err != nil {
		return "", Usage{}, fmt.Errorf("llm: parse response: %w", err)
	}
	if mr.Error != nil {
		if mr.Error.Type == "rate_limit_error" {
			return "", Usage{}, fmt.Errorf("%w: %s", ErrRateLimited, mr.Error.Message)
		}
		return "", Usage{}, fmt.Errorf("llm: api error: %s - %s", mr.Error.Type, mr.Error.Message)
	}
	if len(mr.Content) == 0 {
		return "", Usage{}, errors.New("llm: empty response")
	}

	var usage Usage
	if mr.Usage != nil {
		usage = Usage{InputTokens: mr.Usage.InputTokens, OutputTokens: mr.Usage.OutputTokens}
	}
	return mr.Content[0].Text, usage, nil
}
