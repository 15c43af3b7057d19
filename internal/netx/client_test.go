package netx

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"syscall"
	"testing"
	"time"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

type tempErr struct{}

func (tempErr) Error() string   { return "temporary" }
func (tempErr) Timeout() bool   { return false }
func (tempErr) Temporary() bool { return true }

type readCloserErr struct{}

func (readCloserErr) Read(p []byte) (int, error) { return 0, errors.New("read fail") }
func (readCloserErr) Close() error               { return nil }

func TestClientDoRetriesOn5xx(t *testing.T) {
	var calls int32
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}))
	defer s.Close()

	c := NewClient(Options{Timeout: 2 * time.Second, Retry: RetryOptions{Retries: 3, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}})
	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, s.URL, nil)
	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Fatalf("want 3 calls, got %d", got)
	}
}

func TestClientDoNoRetryByDefault(t *testing.T) {
	var calls int32
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer s.Close()

	c := NewClient(Options{Timeout: 2 * time.Second})
	status, _, err := c.Get(context.Background(), Request{URL: s.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != http.StatusBadGateway {
		t.Fatalf("want 502, got %d", status)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("want 1 call, got %d", got)
	}
}

func TestUnwrapPermanent(t *testing.T) {
	src := errors.New("boom")
	err := unwrapPermanent(&permanentError{err: src})
	if !errors.Is(err, src) {
		t.Fatalf("want wrapped source error")
	}
}

func TestIsRetryableError(t *testing.T) {
	if !isRetryableError(timeoutErr{}) {
		t.Fatal("timeout should be retryable")
	}
	if !isRetryableError(errors.New("connection reset by peer")) {
		t.Fatal("expected retryable")
	}
	if isRetryableError(errors.New("permission denied")) {
		t.Fatal("expected non-retryable")
	}
}

func TestNewClientTimeoutDefaults(t *testing.T) {
	c := NewClient(Options{})
	if c.httpClient.Timeout != 30*time.Second {
		t.Fatalf("want 30s timeout, got %s", c.httpClient.Timeout)
	}

	c2 := NewClientWithHTTPClient(nil, RetryOptions{})
	if c2.httpClient.Timeout != 30*time.Second {
		t.Fatalf("want 30s timeout, got %s", c2.httpClient.Timeout)
	}
}

func TestClientDoPermanentError(t *testing.T) {
	hc := &http.Client{
		Timeout:   time.Second,
		Transport: roundTripFunc(func(*http.Request) (*http.Response, error) { return nil, errors.New("permission denied") }),
	}
	c := NewClientWithHTTPClient(hc, RetryOptions{Retries: 1, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond})
	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, "https://example.com", nil)
	_, err := c.Do(req)
	if err == nil {
		t.Fatal("expected error")
	}
	if strings.Contains(err.Error(), "retryable") {
		t.Fatalf("unexpected retryable error: %v", err)
	}
}

func TestClientDoRetryableNetError(t *testing.T) {
	calls := 0
	hc := &http.Client{
		Timeout: time.Second,
		Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
			calls++
			return nil, timeoutErr{}
		}),
	}
	c := NewClientWithHTTPClient(hc, RetryOptions{Retries: 2, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond})
	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, "https://example.com", nil)
	_, err := c.Do(req)
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 3 {
		t.Fatalf("want 3 attempts, got %d", calls)
	}
}

func TestClientGetReadError(t *testing.T) {
	hc := &http.Client{
		Timeout: time.Second,
		Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: 200,
				Body:       readCloserErr{},
				Header:     make(http.Header),
			}, nil
		}),
	}
	c := NewClientWithHTTPClient(hc, RetryOptions{Retries: 0, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond})

	if _, _, err := c.Get(context.Background(), Request{URL: "https://example.com"}); err == nil {
		t.Fatal("expected read error from Get")
	}
}

func TestClientGetSendsHeadersAndCookies(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-A") != "B" {
			t.Errorf("header not passed")
		}
		ck, err := r.Cookie("ipid")
		if err != nil || ck.Value != "42" {
			t.Errorf("cookie not passed: %v", err)
		}
		w.WriteHeader(200)
		_, _ = io.WriteString(w, "ok")
	}))
	defer s.Close()

	c := NewClient(Options{Timeout: 2 * time.Second})
	status, b, err := c.Get(context.Background(), Request{
		URL:     s.URL,
		Headers: http.Header{"X-A": []string{"B"}},
		Cookies: []*http.Cookie{{Name: "ipid", Value: "42"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != 200 || string(b) != "ok" {
		t.Fatalf("unexpected response: %d %q", status, string(b))
	}
}

func TestClientInsecureSkipVerify(t *testing.T) {
	s := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "ok")
	}))
	defer s.Close()

	strict := NewClient(Options{Timeout: 2 * time.Second})
	if _, _, err := strict.Get(context.Background(), Request{URL: s.URL}); err == nil {
		t.Fatal("expected certificate error")
	}

	lax := NewClient(Options{Timeout: 2 * time.Second, InsecureSkipVerify: true})
	_, b, err := lax.Get(context.Background(), Request{URL: s.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(b) != "ok" {
		t.Fatalf("unexpected body %q", string(b))
	}
}

func TestIsRetryableErrorUnwrapsURLError(t *testing.T) {
	for _, inner := range []error{io.EOF, io.ErrUnexpectedEOF, syscall.ECONNRESET, timeoutErr{}} {
		err := &url.Error{Op: "Get", URL: "https://example.com", Err: inner}
		if !isRetryableError(err) {
			t.Fatalf("want retryable for %v", inner)
		}
	}
	if isRetryableError(&url.Error{Op: "Get", URL: "https://example.com", Err: tempErr{}}) {
		t.Fatal("a non-timeout net.Error must not be retried")
	}
}

func TestClientDoRetriesDroppedConnection(t *testing.T) {
	var hits int32
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) == 1 {
			conn, _, err := w.(http.Hijacker).Hijack()
			if err != nil {
				t.Errorf("hijack: %v", err)
				return
			}
			_ = conn.Close()
			return
		}
		_, _ = io.WriteString(w, "ok")
	}))
	defer s.Close()

	c := NewClient(Options{Timeout: 2 * time.Second, Retry: RetryOptions{Retries: 2, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond}})
	status, b, err := c.Get(context.Background(), Request{URL: s.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != http.StatusOK || string(b) != "ok" {
		t.Fatalf("unexpected response: %d %q", status, string(b))
	}
	if got := atomic.LoadInt32(&hits); got != 2 {
		t.Fatalf("want 2 hits, got %d", got)
	}
}
