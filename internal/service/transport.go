package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// maxResponseBytes bounds how much of a response is read; image payloads are large
const maxResponseBytes = 32 << 20

// Request is a JSON POST to a Gemini endpoint
type Request struct {
	URL     string
	Headers map[string]string
	Body    []byte
}

// Response holds the status and body of a completed call. Non-2xx statuses
// are returned as responses, not errors.
type Response struct {
	StatusCode int
	Body       []byte
}

// Transport performs a single outbound call
type Transport interface {
	Post(ctx context.Context, req Request) (*Response, error)
}

// PooledTransport is the primary transport: one shared client with keep-alive
// connections, honouring the caller's context.
type PooledTransport struct {
	client *http.Client
}

// NewPooledTransport creates a pooled transport with a per-call timeout
func NewPooledTransport(timeout time.Duration) *PooledTransport {
	return &PooledTransport{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   10 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:          100,
				MaxIdleConnsPerHost:   20,
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ExpectContinueTimeout: time.Second,
			},
		},
	}
}

func (t *PooledTransport) Post(ctx context.Context, req Request) (*Response, error) {
	return post(ctx, t.client, req)
}

// DirectTransport is the fallback transport: a fresh client per call with no
// connection reuse, bounded only by its own timeout.
type DirectTransport struct {
	timeout time.Duration
}

// NewDirectTransport creates the fallback transport
func NewDirectTransport(timeout time.Duration) *DirectTransport {
	return &DirectTransport{timeout: timeout}
}

func (t *DirectTransport) Post(_ context.Context, req Request) (*Response, error) {
	client := &http.Client{
		Timeout:   t.timeout,
		Transport: &http.Transport{Proxy: http.ProxyFromEnvironment, DisableKeepAlives: true},
	}
	return post(context.Background(), client, req)
}

func post(ctx context.Context, client *http.Client, req Request) (*Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.URL, bytes.NewReader(req.Body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return &Response{StatusCode: resp.StatusCode, Body: body}, nil
}
