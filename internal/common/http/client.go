// internal/common/http/client.go
package http

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"solution-creator/internal/common/errors"
)

// maxResponseBytes caps how much of a webhook reply is read into memory.
const maxResponseBytes = 1 << 20

// Response is the part of a webhook reply the widget cares about.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

type Client struct {
	httpClient *http.Client
	timeout    time.Duration
}

// NewClient builds a client whose calls are bounded by timeout. A zero timeout
// leaves calls bounded only by the caller's context.
func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{},
		timeout:    timeout,
	}
}

// PostJSON sends body to url with Content-Type application/json and reads the
// full reply. Transport failures come back as WEBHOOK_TIMEOUT or
// WEBHOOK_NETWORK_ERROR standard errors; any HTTP status is returned as a
// Response with a nil error.
func (c *Client) PostJSON(ctx context.Context, url string, body []byte, headers map[string]string) (*Response, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.NewWebhookNetworkError(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.classify(ctx, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, c.classify(ctx, fmt.Errorf("read response: %w", err))
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}, nil
}

func (c *Client) classify(ctx context.Context, err error) error {
	if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
		return errors.NewWebhookTimeoutError(c.timeout, err)
	}
	var netErr net.Error
	if stderrors.As(err, &netErr) && netErr.Timeout() {
		return errors.NewWebhookTimeoutError(c.timeout, err)
	}
	return errors.NewWebhookNetworkError(err)
}
