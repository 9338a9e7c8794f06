// Package fetcher retrieves URL bodies with bounded retries on rate limiting.
package fetcher

import (
	"context"
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/JakeFAU/essay-wordfreq/internal/metrics"
)

// FetchError classifies a failed fetch as retryable (rate limited) or fatal.
type FetchError struct {
	URL        string
	StatusCode int
	Retryable  bool
	Err        error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
}

// Unwrap exposes the underlying transport error, if any.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// Config controls Retrying behavior.
type Config struct {
	MaxRetries  int
	BackoffBase time.Duration
	Timeout     time.Duration
	UserAgent   string
}

// Retrying fetches one URL with jittered exponential backoff on 429 responses.
// Any other non-2xx status or transport error fails immediately.
type Retrying struct {
	client      *resty.Client
	maxRetries  int
	backoffBase time.Duration
	logger      *zap.Logger
}

// New constructs a Retrying fetcher.
func New(cfg Config, logger *zap.Logger) *Retrying {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 5
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = 2 * time.Second
	}
	client := resty.New().SetTimeout(cfg.Timeout)
	if cfg.UserAgent != "" {
		client.SetHeader("User-Agent", cfg.UserAgent)
	}
	return &Retrying{
		client:      client,
		maxRetries:  cfg.MaxRetries,
		backoffBase: cfg.BackoffBase,
		logger:      logger,
	}
}

// Fetch returns the body of url. Rate-limited attempts are retried up to
// MaxRetries times; everything else fails on the first attempt.
func (f *Retrying) Fetch(ctx context.Context, url string) ([]byte, error) {
	var lastErr *FetchError
	for attempt := 1; attempt <= f.maxRetries; attempt++ {
		resp, err := f.client.R().SetContext(ctx).Get(url)
		switch {
		case err != nil:
			return nil, &FetchError{URL: url, Err: err}
		case resp.StatusCode() == http.StatusTooManyRequests:
			lastErr = &FetchError{URL: url, StatusCode: resp.StatusCode(), Retryable: true}
		case resp.IsSuccess():
			return resp.Body(), nil
		default:
			return nil, &FetchError{URL: url, StatusCode: resp.StatusCode()}
		}

		if attempt == f.maxRetries {
			break
		}
		wait := f.backoff(attempt)
		f.logger.Warn("rate limited, backing off",
			zap.String("url", url),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
		)
		metrics.ObserveRetryDelay(wait)
		select {
		case <-ctx.Done():
			return nil, &FetchError{URL: url, Err: ctx.Err()}
		case <-time.After(wait):
		}
	}
	f.logger.Error("retries exhausted", zap.String("url", url), zap.Int("attempts", f.maxRetries))
	return nil, lastErr
}

// backoff draws a delay uniformly from [base, base*2^(attempt-1)].
func (f *Retrying) backoff(attempt int) time.Duration {
	ceiling := time.Duration(float64(f.backoffBase) * math.Pow(2, float64(attempt-1)))
	if ceiling <= f.backoffBase {
		return f.backoffBase
	}
	span := big.NewInt(int64(ceiling - f.backoffBase))
	n, err := rand.Int(rand.Reader, span)
	if err != nil {
		return f.backoffBase
	}
	return f.backoffBase + time.Duration(n.Int64())
}
