package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/diagnosis/luxstay/pkg/logger"
	"github.com/diagnosis/luxstay/pkg/metrics"
	"github.com/sony/gobreaker"
)

// TokenSource supplies the bearer credential for authenticated calls.
type TokenSource interface {
	AccessToken() (string, error)
}

// Client is the typed boundary to the marketplace REST API. It does not
// retry: each failure is returned once to the caller.
type Client struct {
	baseURL string
	client  *http.Client
	tokens  TokenSource
	breaker *gobreaker.CircuitBreaker
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithBreaker opens the circuit after failures consecutive transport or 5xx
// errors and keeps it open for timeout. While open, calls fail fast with a
// network error instead of reaching the service.
func WithBreaker(failures uint32, timeout time.Duration) Option {
	return func(c *Client) { c.breaker = newBreaker(failures, timeout) }
}

func New(baseURL string, tokens TokenSource, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		tokens:  tokens,
		breaker: newBreaker(5, 10*time.Second),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func newBreaker(failures uint32, timeout time.Duration) *gobreaker.CircuitBreaker {
	if failures == 0 {
		failures = 1
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "marketplace-api",
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
}

// call describes one request to the service.
type call struct {
	op       string
	method   string
	path     string
	query    url.Values
	body     any
	public   bool   // sent without Authorization
	optional bool   // Authorization attached only when a credential exists
	token    string // explicit bearer, overrides the TokenSource
}

type response struct {
	status int
	body   []byte
}

func (c *Client) send(ctx context.Context, cl call) ([]byte, error) {
	var bodyReader io.Reader
	if cl.body != nil {
		payload, err := json.Marshal(cl.body)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to encode request: %w", cl.op, err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	target := c.baseURL + cl.path
	if len(cl.query) > 0 {
		target += "?" + cl.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, target, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create request: %w", cl.op, err)
	}
	req.Header.Set("Accept", "application/json")
	if cl.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if requestID, ok := ctx.Value(logger.RequestIDKey).(string); ok && requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}

	if !cl.public {
		token, err := c.bearer(cl)
		switch {
		case err == nil:
			req.Header.Set("Authorization", "Bearer "+token)
		case !cl.optional:
			return nil, err
		}
	}

	start := time.Now()
	result, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := c.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, &RemoteError{Op: cl.op, StatusCode: resp.StatusCode, Message: errorMessage(data)}
		}
		return &response{status: resp.StatusCode, body: data}, nil
	})

	logger.DebugContext(ctx, "Remote call finished",
		"op", cl.op,
		"method", cl.method,
		"path", cl.path,
		"elapsed_ms", time.Since(start).Milliseconds(),
		"error", err,
	)

	if err != nil {
		var remoteErr *RemoteError
		switch {
		case errors.As(err, &remoteErr):
			metrics.ObserveRemote(cl.op, remoteErr.StatusCode)
			return nil, remoteErr
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			metrics.ObserveRemote(cl.op, 0)
			return nil, &RemoteError{Op: cl.op, Message: "circuit open", Err: err}
		default:
			metrics.ObserveRemote(cl.op, 0)
			return nil, &RemoteError{Op: cl.op, Message: "request failed", Err: err}
		}
	}

	resp := result.(*response)
	metrics.ObserveRemote(cl.op, resp.status)
	if resp.status >= http.StatusBadRequest {
		return nil, &RemoteError{Op: cl.op, StatusCode: resp.status, Message: errorMessage(resp.body)}
	}
	return resp.body, nil
}

func (c *Client) bearer(cl call) (string, error) {
	if cl.token != "" {
		return cl.token, nil
	}
	if c.tokens == nil {
		return "", &RemoteError{Op: cl.op, StatusCode: http.StatusUnauthorized, Message: "no credential"}
	}
	token, err := c.tokens.AccessToken()
	if err != nil {
		return "", fmt.Errorf("%s: %w", cl.op, err)
	}
	return token, nil
}

// sendJSON performs cl and decodes the response body into out when out is
// non-nil and the body is not empty.
func (c *Client) sendJSON(ctx context.Context, cl call, out any) error {
	data, err := c.send(ctx, cl)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s: failed to decode response: %w", cl.op, err)
	}
	return nil
}

// sendList performs cl and normalizes a bare array or a {results: [...]}
// page envelope to a slice.
func sendList[T any](ctx context.Context, c *Client, cl call) ([]T, error) {
	data, err := c.send(ctx, cl)
	if err != nil {
		return nil, err
	}
	items, err := decodeList[T](data)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to decode list: %w", cl.op, err)
	}
	return items, nil
}

func decodeList[T any](data []byte) ([]T, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []T{}, nil
	}

	if trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, err
		}
		if items == nil {
			items = []T{}
		}
		return items, nil
	}

	var page struct {
		Results []T `json:"results"`
	}
	if err := json.Unmarshal(trimmed, &page); err != nil {
		return nil, err
	}
	if page.Results == nil {
		return []T{}, nil
	}
	return page.Results, nil
}
