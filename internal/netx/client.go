package netx

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"
)

// Options configures the shared HTTP client.
type Options struct {
	// Timeout bounds each request end to end. Zero or negative means 30s.
	Timeout time.Duration
	// InsecureSkipVerify disables TLS certificate verification.
	InsecureSkipVerify bool
	// Retry is disabled unless Retry.Retries is positive.
	Retry RetryOptions
}

// Client wraps an http.Client with a request timeout, a TLS policy and
// optional retry behavior for transient failures.
type Client struct {
	httpClient *http.Client
	retry      RetryOptions
}

// NewClient builds a Client with a tuned transport.
func NewClient(opt Options) *Client {
	tr := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   20,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	if opt.InsecureSkipVerify {
		tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in via verify_ssl: false
	}
	timeout := opt.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout, Transport: tr},
		retry:      opt.Retry,
	}
}

// NewClientWithHTTPClient builds a Client from an existing http.Client.
//
// A nil client is replaced with a default client, and a non-positive timeout is
// normalized to 30 seconds.
func NewClientWithHTTPClient(httpClient *http.Client, retry RetryOptions) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 30 * time.Second
	}
	return &Client{
		httpClient: httpClient,
		retry:      retry,
	}
}

// Do executes req, retrying per the client's RetryOptions.
//
// Retryable transport errors and HTTP 5xx/429 responses are retried when
// retries are enabled; otherwise the response is returned as is. Errors
// deemed non-retryable are wrapped as permanentError so RetryOperation stops
// retrying; callers can unwrap with unwrapPermanent.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	return RetryOperation(ctx, c.retry, func() (*http.Response, error) {
		resp, err := c.httpClient.Do(req)
		if err != nil {
			if isRetryableError(err) {
				return nil, err
			}
			return nil, &permanentError{err: err}
		}
		if c.retry.Retries > 0 && (resp.StatusCode >= 500 || resp.StatusCode == 429) {
			_ = resp.Body.Close()
			return nil, newStatusError(resp)
		}
		return resp, nil
	})
}

// Request describes a GET with explicit headers and cookies.
type Request struct {
	URL     string
	Headers http.Header
	Cookies []*http.Cookie
}

// Get sends a GET request and returns status code plus raw response body.
//
// Any permanentError from Do is unwrapped before returning.
func (c *Client) Get(ctx context.Context, r Request) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.URL, nil)
	if err != nil {
		return 0, nil, err
	}
	for k, vs := range r.Headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	for _, ck := range r.Cookies {
		req.AddCookie(ck)
	}
	resp, err := c.Do(req)
	if err != nil {
		return 0, nil, unwrapPermanent(err)
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, b, nil
}

type permanentError struct{ err error }

// permanentError marks failures that should bypass retry logic.
func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

func unwrapPermanent(err error) error {
	if p, ok := err.(*permanentError); ok {
		return p.err
	}
	return err
}

// isRetryableError reports transport failures worth another attempt:
// timeouts, resets and connections closed before a response.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return true
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, syscall.ECONNRESET) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "connection reset") || strings.HasSuffix(s, ": eof")
}
