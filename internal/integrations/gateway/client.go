// Package gateway is the client-side caller of the routine gateway. It posts
// the session's message list and extracts the assistant reply, with typed
// failures for transport, status and response-shape problems.
package gateway

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

	"routine-builder/internal/domain"
)

// ErrUnexpectedResponseShape reports a success document that does not carry
// choices[0].message.
var ErrUnexpectedResponseShape = errors.New("gateway: response missing choices[0].message")

// HTTPStatusError captures non-2xx gateway responses with status-aware context.
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("gateway: unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// completionRequest is the gateway wire payload.
type completionRequest struct {
	Messages []domain.ChatMessage `json:"messages"`
}

// completionResponse is the minimal provider document shape the client
// consumes. Pointer fields distinguish absent from empty.
type completionResponse struct {
	Choices []struct {
		Message *domain.ChatMessage `json:"message"`
	} `json:"choices"`
}

// Client talks to one gateway endpoint.
type Client struct {
	url        string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func NewClient(url string, opts ...Option) (*Client, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, errors.New("gateway: url must not be empty")
	}
	c := &Client{
		url:        url,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Complete posts the message list and returns the assistant reply text.
func (c *Client) Complete(ctx context.Context, messages []domain.ChatMessage) (string, error) {
	body, err := json.Marshal(completionRequest{Messages: messages})
	if err != nil {
		return "", fmt.Errorf("gateway: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("gateway: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("gateway: request failed: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return "", &HTTPStatusError{
			StatusCode: res.StatusCode,
			URL:        c.url,
			Body:       string(buf),
		}
	}

	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("gateway: read response body: %w", err)
	}

	var payload completionResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", fmt.Errorf("gateway: decode response: %w", err)
	}
	if len(payload.Choices) == 0 || payload.Choices[0].Message == nil {
		return "", ErrUnexpectedResponseShape
	}
	return payload.Choices[0].Message.Content, nil
}
