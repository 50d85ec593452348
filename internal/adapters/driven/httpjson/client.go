// Package httpjson is the JSON-over-HTTP transport shared by the provider
// adapters that talk to a REST API directly.
//
// Transport failures and non-2xx replies are wrapped with the sentinel the
// client was built with (domain.ErrLLMUnavailable or
// domain.ErrEmbeddingUnavailable), so callers can classify them with
// errors.Is without knowing which provider produced them.
package httpjson

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
)

// maxBody caps how much of a reply is read.
const maxBody = 32 << 20

// maxMessage caps the error text kept from a failed reply.
const maxMessage = 300

// Client sends JSON requests to one provider.
type Client struct {
	http     *http.Client
	baseURL  string
	provider string
	header   http.Header
	failure  error
}

// New creates a client for provider rooted at baseURL. failure is wrapped
// into every transport and status error; it may be nil.
func New(provider, baseURL string, timeout time.Duration, failure error) *Client {
	return &Client{
		http:     &http.Client{Timeout: timeout},
		baseURL:  strings.TrimRight(baseURL, "/"),
		provider: provider,
		header:   make(http.Header),
		failure:  failure,
	}
}

// SetHeader adds a header sent with every request.
func (c *Client) SetHeader(key, value string) {
	c.header.Set(key, value)
}

// Provider returns the provider name used in error messages.
func (c *Client) Provider() string {
	return c.provider
}

// Post encodes in as the request body and decodes a successful reply into
// out. A nil out discards the body.
func (c *Client) Post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("%s: marshal request: %w", c.provider, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: create request: %w", c.provider, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

// Get fetches path and decodes a successful reply into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", c.provider, err)
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	for key, values := range c.header {
		req.Header[key] = values
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return fmt.Errorf("%s: %w", c.provider, ctxErr)
		}
		return c.wrap(fmt.Errorf("%s: send request: %w", c.provider, err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return c.wrap(fmt.Errorf("%s: read response: %w", c.provider, err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{
			Provider: c.provider,
			Code:     resp.StatusCode,
			Message:  errorMessage(body),
			failure:  c.failure,
		}
	}

	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", c.provider, err)
	}
	return nil
}

func (c *Client) wrap(err error) error {
	if c.failure == nil {
		return err
	}
	return fmt.Errorf("%w: %w", c.failure, err)
}

// StatusError is a non-2xx reply from a provider.
type StatusError struct {
	Provider string
	Code     int
	Message  string

	failure error
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s error (status %d)", e.Provider, e.Code)
	}
	return fmt.Sprintf("%s error (status %d): %s", e.Provider, e.Code, e.Message)
}

// Unwrap exposes the client's failure sentinel.
func (e *StatusError) Unwrap() error {
	return e.failure
}

// Retryable reports whether the provider may succeed on a later attempt.
func (e *StatusError) Retryable() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= http.StatusInternalServerError
}

// IsStatus reports whether err carries a provider reply with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}

// errorMessage pulls a readable message out of an error body. Providers use
// either {"error":{"message":...}} or {"error":"..."}.
func errorMessage(body []byte) string {
	var nested struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &nested) == nil && nested.Error.Message != "" {
		return nested.Error.Message
	}
	var flat struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &flat) == nil && flat.Error != "" {
		return flat.Error
	}

	msg := strings.TrimSpace(string(body))
	if r := []rune(msg); len(r) > maxMessage {
		msg = string(r[:maxMessage]) + "..."
	}
	return msg
}
