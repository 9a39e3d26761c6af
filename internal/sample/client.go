package sample

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrSubmit is returned when the API refuses an export.
var ErrSubmit = errors.New("submit export")

// Submitted mirrors the API answer to an upload.
type Submitted struct {
	ID         string `json:"id"`
	NEvaluated int    `json:"n_evaluated"`
	Teams      int    `json:"teams"`
	Scale      string `json:"scale"`
}

// Client posts exports to a running epp server.
type Client struct {
	client  *http.Client
	baseURL string
}

// NewClient creates a client with the given request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Submit uploads body to /v1/reports with the given scale query.
func (c *Client) Submit(ctx context.Context, body io.Reader, query url.Values) (Submitted, error) {
	target := c.baseURL + "/v1/reports"
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, body)
	if err != nil {
		return Submitted{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "text/csv; charset=utf-8")

	resp, err := c.client.Do(req)
	if err != nil {
		return Submitted{}, fmt.Errorf("%w: %w", ErrSubmit, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Submitted{}, fmt.Errorf("%w: read response: %w", ErrSubmit, err)
	}
	if resp.StatusCode != http.StatusCreated {
		return Submitted{}, fmt.Errorf("%w: status %d: %s", ErrSubmit, resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var out Submitted
	if err := json.Unmarshal(data, &out); err != nil {
		return Submitted{}, fmt.Errorf("%w: decode response: %w", ErrSubmit, err)
	}
	return out, nil
}
