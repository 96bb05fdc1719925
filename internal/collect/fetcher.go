// Package collect downloads source pages into the raw data tree.
//
// Fetching is strictly sequential and rate limited: the source blocks
// clients that request faster than one page per politeness delay.
package collect

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

// StatusError is a non-200 response.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	switch {
	case e.Code == http.StatusBadRequest:
		return fmt.Sprintf("HTML data can't be retrieved due to `%d` Bad Request for `%s`.", e.Code, e.URL)
	case e.Code == http.StatusUnauthorized || e.Code == http.StatusForbidden:
		return fmt.Sprintf("HTML data can't be retrieved due to `%d` Authentication Error for `%s`.", e.Code, e.URL)
	case e.Code == http.StatusNotFound:
		return fmt.Sprintf("HTML data isn't available due to `%d` Not Found for `%s`.", e.Code, e.URL)
	}
	return fmt.Sprintf("An unexpected error occurred while fetching HTML data due to `%d %s` for `%s`.",
		e.Code, http.StatusText(e.Code), e.URL)
}

// StatusCode returns the response status of a fetch error, or 0 when the
// request never produced a response.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code
	}
	return 0
}

// Fetcher performs rate-limited GET requests.
type Fetcher struct {
	client  *resty.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewFetcher creates a Fetcher that waits delay between requests. A zero
// delay disables the limiter.
func NewFetcher(timeout, delay time.Duration, userAgent string, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}
	client := resty.New().SetTimeout(timeout)
	if userAgent != "" {
		client.SetHeader("User-Agent", userAgent)
	}
	return &Fetcher{
		client:  client,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
	}
}

// Fetch returns the body of url decoded as UTF-8.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	start := time.Now()
	res, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return "", fmt.Errorf("http request %s: %w", url, err)
	}
	if res.StatusCode() != http.StatusOK {
		return "", &StatusError{URL: url, Code: res.StatusCode()}
	}
	f.logger.Debug("fetched", "url", url, "bytes", len(res.Body()), "duration", time.Since(start))
	return string(res.Body()), nil
}
