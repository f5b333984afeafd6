package submit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/okian/pcbvalues/internal/domain/model"
)

// DefaultTimeout is the ceiling for a single submission round trip.
const DefaultTimeout = 10 * time.Second

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 1 << 20

// Sender delivers a payload to the score store.
type Sender interface {
	Send(ctx context.Context, p model.Submission, override bool) error
}

// Client posts submissions to the store's HTTP endpoint.
type Client struct {
	endpoint string
	http     *http.Client
	timeout  time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithTimeout sets the per-call ceiling.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// NewClient creates a Client posting to endpoint.
func NewClient(endpoint string, opts ...ClientOption) *Client {
	c := &Client{
		endpoint: endpoint,
		http:     http.DefaultClient,
		timeout:  DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Send posts p. Success requires a status of at most 299 and success=true in
// the body. A 409 confirm reply yields a *ConflictError.
func (c *Client) Send(ctx context.Context, p model.Submission, override bool) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("%w: encode payload: %v", ErrNetworkFailure, err)
	}

	target, err := url.Parse(c.endpoint)
	if err != nil {
		return fmt.Errorf("%w: endpoint: %v", ErrNetworkFailure, err)
	}
	if override {
		q := target.Query()
		q.Set("override", "true")
		target.RawQuery = q.Encode()
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.String(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetworkFailure, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			return fmt.Errorf("%w after %s", ErrNetworkTimeout, c.timeout)
		}
		return fmt.Errorf("%w: %v", ErrNetworkFailure, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		if isTimeout(err) {
			return fmt.Errorf("%w after %s", ErrNetworkTimeout, c.timeout)
		}
		return fmt.Errorf("%w: read response: %v", ErrNetworkFailure, err)
	}

	var out model.SubmitResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("%w: status %d", ErrNetworkFailure, resp.StatusCode)
	}

	if resp.StatusCode == http.StatusConflict && out.Action == model.ActionConfirm {
		return &ConflictError{Message: out.Error, Existing: out.Existing}
	}
	if resp.StatusCode > 299 || !out.Success {
		if out.Error != "" {
			return fmt.Errorf("%w: %s", ErrNetworkFailure, out.Error)
		}
		return fmt.Errorf("%w: status %d", ErrNetworkFailure, resp.StatusCode)
	}
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
