// Package adapter implements platform-specific forum scrapers behind a
// uniform interface, plus the shared fetch/score/clean/parse utilities
// they are built from.
package adapter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"

	"github.com/gearlore/gearlore/pkg/fn"
)

const userAgent = "gearlore-crawler/1.0 (vehicle ownership research)"

// StatusError is a non-2xx HTTP response. 429 and 5xx are retryable, the
// rest are not.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http %d from %s", e.Code, e.URL)
}

func (e *StatusError) retryable() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// Fetcher performs polite, retried GETs against one forum. Every request
// waits on the politeness limiter first, then runs through the retry policy.
type Fetcher struct {
	client  *http.Client
	limiter *rate.Limiter
	retry   fn.RetryOpts
	log     *slog.Logger
}

// NewFetcher builds a fetcher for a forum with the given politeness delay.
// rateLimitMs <= 0 falls back to one request per second.
func NewFetcher(rateLimitMs int, log *slog.Logger) *Fetcher {
	if rateLimitMs <= 0 {
		rateLimitMs = 1000
	}
	if log == nil {
		log = slog.Default()
	}
	return &Fetcher{
		client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		limiter: rate.NewLimiter(rate.Every(time.Duration(rateLimitMs)*time.Millisecond), 1),
		retry: fn.RetryOpts{
			MaxAttempts: 3,
			InitialWait: 2 * time.Second,
			MaxWait:     30 * time.Second,
			Jitter:      true,
			Retryable:   retryableFetchErr,
		},
		log: log,
	}
}

// WithRetry overrides the retry policy, mainly for tests.
func (f *Fetcher) WithRetry(opts fn.RetryOpts) *Fetcher {
	if opts.Retryable == nil {
		opts.Retryable = retryableFetchErr
	}
	f.retry = opts
	return f
}

func retryableFetchErr(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.retryable()
	}
	// network-level failures (timeout, refused, DNS) are always worth a retry
	return true
}

// Get fetches url and returns the response body. Politeness delay applies
// before every attempt; 429 responses honor Retry-After when present.
func (f *Fetcher) Get(ctx context.Context, url string) (string, error) {
	result := fn.Retry(ctx, f.retry, func(ctx context.Context) fn.Result[string] {
		if err := f.limiter.Wait(ctx); err != nil {
			return fn.Err[string](err)
		}
		return f.doGet(ctx, url)
	})
	body, err := result.Unwrap()
	if err != nil {
		return "", fmt.Errorf("adapter: fetch %s: %w", url, err)
	}
	return body, nil
}

func (f *Fetcher) doGet(ctx context.Context, url string) fn.Result[string] {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fn.Err[string](err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return fn.Err[string](err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		se := &StatusError{Code: resp.StatusCode, URL: url}
		if wait := parseRetryAfter(resp.Header.Get("Retry-After")); wait > 0 {
			f.log.Warn("rate limited", "url", url, "retry_after", wait)
			return fn.Err[string](&fn.RetryAfterError{Wait: wait, Err: se})
		}
		return fn.Err[string](se)
	}
	if resp.StatusCode != http.StatusOK {
		return fn.Err[string](&StatusError{Code: resp.StatusCode, URL: url})
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fn.Err[string](fmt.Errorf("read body: %w", err))
	}
	return fn.Ok(string(body))
}

// parseRetryAfter understands the delay-seconds form of Retry-After.
// HTTP-date values are rare on forums and fall back to exponential backoff.
func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
