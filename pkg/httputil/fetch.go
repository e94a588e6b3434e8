package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	perrors "github.com/matzehuels/passrank/pkg/errors"
)

// Defaults for [Fetcher].
const (
	DefaultAttempts = 3
	DefaultDelay    = time.Second
	DefaultTTL      = 24 * time.Hour

	// maxBody caps a downloaded dataset. The full passport index is a few MB.
	maxBody = 64 << 20
)

// IsURL reports whether s names an http or https resource.
func IsURL(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// Fetcher downloads URLs, consulting a [Cache] first when one is set.
type Fetcher struct {
	Client   *http.Client
	Cache    *Cache // nil disables caching
	Attempts int
	Delay    time.Duration
	Logger   *log.Logger
}

// NewFetcher returns a Fetcher with default retry settings.
func NewFetcher(cache *Cache, logger *log.Logger) *Fetcher {
	if logger == nil {
		logger = log.Default()
	}
	return &Fetcher{
		Client:   &http.Client{Timeout: 60 * time.Second},
		Cache:    cache,
		Attempts: DefaultAttempts,
		Delay:    DefaultDelay,
		Logger:   logger,
	}
}

// Fetch returns the body of url. A fresh cache entry is returned without a
// request; otherwise the body is downloaded and cached. Cache write failures
// are logged and do not fail the fetch.
//
// A 404 is NOT_FOUND and any other non-retryable status is INVALID_INPUT.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if f.Cache != nil {
		data, ok, err := f.Cache.Get(url)
		switch {
		case ok:
			f.Logger.Debug("dataset cache hit", "url", url)
			return data, nil
		case errors.Is(err, ErrExpired):
			f.Logger.Debug("dataset cache expired", "url", url)
		case err != nil:
			f.Logger.Warn("dataset cache unreadable", "err", err)
		}
	}

	var body []byte
	err := Retry(ctx, f.Attempts, f.Delay, func() error {
		var err error
		body, err = f.get(ctx, url)
		if err != nil && isRetryable(err) {
			f.Logger.Debug("retrying download", "url", url, "err", err)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	if f.Cache != nil {
		if err := f.Cache.Set(url, body); err != nil {
			f.Logger.Warn("dataset not cached", "err", err)
		}
	}
	f.Logger.Debug("downloaded dataset", "url", url, "bytes", len(body))
	return body, nil
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeInvalidInput, err, "request %s", url)
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &RetryableError{Err: fmt.Errorf("get %s: %w", url, err)}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, perrors.New(perrors.ErrCodeNotFound, "get %s: %s", url, resp.Status)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, &RetryableError{Err: fmt.Errorf("get %s: %s", url, resp.Status)}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, perrors.New(perrors.ErrCodeInvalidInput, "get %s: %s", url, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody+1))
	if err != nil {
		return nil, &RetryableError{Err: fmt.Errorf("read %s: %w", url, err)}
	}
	if len(body) > maxBody {
		return nil, perrors.New(perrors.ErrCodeInvalidInput, "get %s: body exceeds %d bytes", url, maxBody)
	}
	return body, nil
}
