// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client sends extracted document text to a chat-completion endpoint with
// the fixed extraction prompt and returns the structured table the model
// produces.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	maxTokens  int
	httpClient *http.Client
	policy     RetryPolicy
}

// Option configures a Client.
type Option func(*Client)

// WithRetryPolicy overrides the default retry schedule.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(c *Client) { c.policy = p }
}

// WithHTTPClient overrides the HTTP client (and therefore the request
// timeout).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithOnRetry sets the advisory callback surfaced to the user on each
// transient failure.
func WithOnRetry(fn func(attempt int, err error)) Option {
	return func(c *Client) { c.policy.OnRetry = fn }
}

// NewClient creates a model client for a DeepSeek-compatible endpoint.
func NewClient(apiKey, baseURL, model string, maxTokens int, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		maxTokens:  maxTokens,
		httpClient: &http.Client{Timeout: timeout},
		policy:     DefaultRetryPolicy(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
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
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Analyze runs the extraction prompt over text. Transient failures are
// retried per the policy; exhaustion surfaces as *ModelCallError, a
// malformed body as *ModelResponseError.
func (c *Client) Analyze(ctx context.Context, text string) (string, error) {
	prompt := buildPrompt(text)

	var result string
	err := c.policy.Do(ctx, func() error {
		content, callErr := c.call(ctx, prompt)
		if callErr != nil {
			return callErr
		}
		result = content
		return nil
	})
	if err != nil {
		if IsTransient(err) {
			return "", &ModelCallError{Attempts: c.policy.MaxAttempts, Err: err}
		}
		return "", err
	}

	return result, nil
}

// call performs one request against the completion endpoint.
func (c *Client) call(ctx context.Context, prompt string) (string, error) {
	payload := chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: 0, // deterministic extraction
		MaxTokens:   c.maxTokens,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := c.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &transientError{err: fmt.Errorf("request failed: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &transientError{err: fmt.Errorf("completion API error (status %d): %s", resp.StatusCode, string(body))}
	}

	var response chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", &ModelResponseError{Reason: "failed to decode body", Err: err}
	}

	if len(response.Choices) == 0 {
		return "", &ModelResponseError{Reason: "no choices in response"}
	}

	content := strings.TrimSpace(response.Choices[0].Message.Content)
	if content == "" {
		return "", &ModelResponseError{Reason: "empty message content"}
	}

	return content, nil
}
