package loadgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/okian/pcbvalues/internal/domain/codec"
	"github.com/okian/pcbvalues/internal/domain/model"
)

// outcome classifies one submission reply.
type outcome int

const (
	outcomeAccepted outcome = iota
	outcomeDuplicate
	outcomeConflict
	outcomeFailed
)

type client struct {
	http *http.Client
	base string
}

func newClient(base string, timeout time.Duration) *client {
	return &client{
		http: &http.Client{Timeout: timeout},
		base: strings.TrimSuffix(base, "/"),
	}
}

func (c *client) health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/healthz", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned %d", resp.StatusCode)
	}
	return nil
}

// submit posts p without override and classifies the reply.
func (c *client) submit(ctx context.Context, p model.Submission) (outcome, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return outcomeFailed, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/api/scores", bytes.NewReader(body))
	if err != nil {
		return outcomeFailed, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return outcomeFailed, err
	}
	defer func() { _ = resp.Body.Close() }()

	var reply model.SubmitResponse
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return outcomeFailed, fmt.Errorf("status %d: %w", resp.StatusCode, err)
	}
	switch {
	case resp.StatusCode == http.StatusConflict:
		return outcomeConflict, nil
	case resp.StatusCode != http.StatusOK || !reply.Success:
		return outcomeFailed, fmt.Errorf("status %d: %s", resp.StatusCode, reply.Error)
	case reply.Duplicate:
		return outcomeDuplicate, nil
	}
	return outcomeAccepted, nil
}

// closest returns the best match for vals.
func (c *client) closest(ctx context.Context, vals []float64) (model.Match, error) {
	q := url.Values{}
	q.Set("score", codec.Format(vals))
	q.Set("limit", "1")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/api/match?"+q.Encode(), nil)
	if err != nil {
		return model.Match{}, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return model.Match{}, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return model.Match{}, fmt.Errorf("match returned %d", resp.StatusCode)
	}

	var ranked []model.Match
	if err := json.NewDecoder(resp.Body).Decode(&ranked); err != nil {
		return model.Match{}, fmt.Errorf("decode match: %w", err)
	}
	if len(ranked) == 0 {
		return model.Match{}, fmt.Errorf("empty gallery")
	}
	return ranked[0], nil
}
