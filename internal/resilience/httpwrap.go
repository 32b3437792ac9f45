package resilience

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// StatusError reports an upstream response that was still failing after the last attempt.
type StatusError struct {
	Target     string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("resilience: %s responded %d %s", e.Target, e.StatusCode, http.StatusText(e.StatusCode))
}

// RetryPolicy controls how many attempts are made and how long to wait between them.
type RetryPolicy struct {
	BaseBackoff time.Duration
	MaxAttempts int
	Jitter      float64
}

// HTTPClient wraps an http.Client with retry, timeout and circuit-breaker logic.
type HTTPClient struct {
	Client  *http.Client
	Breaker *Breaker
	Retry   RetryPolicy
	// Timeout bounds each attempt; the caller's context bounds the whole call.
	Timeout time.Duration
}

// NewHTTPClient builds a client for target whose transport emits client spans.
func NewHTTPClient(target string, timeout time.Duration, retry RetryPolicy, settings BreakerSettings) HTTPClient {
	return HTTPClient{
		Client: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport,
				otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
					return "HTTP " + r.Method + " " + target
				}),
			),
		},
		Breaker: NewBreaker(target, settings),
		Retry:   retry,
		Timeout: timeout,
	}
}

// Do executes the request applying retry semantics. Transport errors, 5xx and 429 responses
// are retried; the body is buffered so every attempt resends it. When the breaker refuses the
// call ErrOpenCircuit is returned. A response is only returned for a non-retryable status or
// a success, and the caller owns its body.
func (cl HTTPClient) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if cl.Client == nil {
		return nil, errors.New("resilience: http client not configured")
	}
	breaker := cl.Breaker
	maxAttempts := cl.Retry.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	target := breaker.Target()

	body, err := replayableBody(req)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := breaker.Allow(ctx); err != nil {
			outboundAttempts.WithLabelValues(target, "rejected").Inc()
			return nil, err
		}
		resp, err := cl.doOnce(ctx, cloneRequest(ctx, req, body))
		switch {
		case err != nil:
			breaker.Report(ctx, false)
			if ctx.Err() != nil {
				outboundAttempts.WithLabelValues(target, "error").Inc()
				return nil, ctx.Err()
			}
			lastErr = err
		case !retryableStatus(resp.StatusCode):
			breaker.Report(ctx, true)
			outboundAttempts.WithLabelValues(target, "ok").Inc()
			return resp, nil
		default:
			breaker.Report(ctx, resp.StatusCode == http.StatusTooManyRequests)
			lastErr = &StatusError{Target: target, StatusCode: resp.StatusCode}
			drain(resp)
		}
		if attempt == maxAttempts {
			break
		}
		outboundAttempts.WithLabelValues(target, "retry").Inc()

		wait := Backoff(cl.Retry.BaseBackoff, attempt, cl.Retry.Jitter)
		if ra := retryAfter(resp); ra > wait {
			wait = ra
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	var statusErr *StatusError
	if errors.As(lastErr, &statusErr) {
		outboundAttempts.WithLabelValues(target, "status").Inc()
	} else {
		outboundAttempts.WithLabelValues(target, "error").Inc()
	}
	return nil, lastErr
}

func (cl HTTPClient) doOnce(ctx context.Context, req *http.Request) (*http.Response, error) {
	timeout := cl.Timeout
	if timeout <= 0 {
		return cl.Client.Do(req)
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	resp, err := cl.Client.Do(req.WithContext(callCtx))
	if err != nil {
		cancel()
		return nil, err
	}
	resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

// cancelOnClose releases the per-attempt timeout once the caller is done with the body.
type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}

func retryableStatus(code int) bool {
	return code >= http.StatusInternalServerError || code == http.StatusTooManyRequests
}

func retryAfter(resp *http.Response) time.Duration {
	if resp == nil {
		return 0
	}
	secs, err := strconv.Atoi(resp.Header.Get("Retry-After"))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func drain(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}

func replayableBody(req *http.Request) ([]byte, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return nil, nil
	}
	src := req.Body
	if req.GetBody != nil {
		fresh, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		src = fresh
	}
	defer func() { _ = src.Close() }()
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}
	return data, nil
}

func cloneRequest(ctx context.Context, req *http.Request, body []byte) *http.Request {
	clone := req.Clone(ctx)
	if body != nil {
		clone.Body = io.NopCloser(bytes.NewReader(body))
		clone.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(body)), nil
		}
		clone.ContentLength = int64(len(body))
	}
	return clone
}
