// Package upstream performs the outbound calls to the API under test.
package upstream

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sophialabs/apiprobe/internal/infrastructure/ports"
)

var _ ports.Upstream = (*Client)(nil)

// MaxResponseSize is the largest upstream body Do accepts.
const MaxResponseSize = 10 << 20

// Client is a ports.Upstream backed by net/http.
type Client struct {
	http *http.Client
}

// New creates a Client whose calls give up after timeout. Zero means 30s.
func New(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		http: &http.Client{Timeout: timeout},
	}
}

// Do sends req and reads the whole response body. Non-2xx statuses are not errors.
func (c *Client) Do(ctx context.Context, req ports.UpstreamRequest) (*ports.UpstreamResponse, error) {
	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if len(data) > MaxResponseSize {
		return nil, fmt.Errorf("%w (%d bytes)", ports.ErrResponseTooLarge, MaxResponseSize)
	}

	return &ports.UpstreamResponse{
		Status:   resp.StatusCode,
		Body:     data,
		Duration: time.Since(start),
	}, nil
}
