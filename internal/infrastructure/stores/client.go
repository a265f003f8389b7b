package stores

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/buscaprecios/backend/pkg/logging"
	"golang.org/x/time/rate"
)

// Request headers the Peruvian storefronts expect from a browser
const (
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) " +
		"Chrome/120.0 Safari/537.36"
	acceptLanguage = "es-PE,es;q=0.9"
)

const (
	maxAttempts  = 3
	retryBackoff = 500 * time.Millisecond
)

// httpClient is the HTTP plumbing shared by all fetchers: rate limiting,
// browser headers, and up to three attempts with linear backoff on network
// errors and 5xx responses. Context cancellation cuts retries short.
type httpClient struct {
	client  *http.Client
	limiter *rate.Limiter
	logger  *logging.Logger
}

func newHTTPClient(logger *logging.Logger) *httpClient {
	return &httpClient{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(2), 5),
		logger:  logger,
	}
}

// do executes a request built by build, retrying transient failures.
// build runs once per attempt so POST bodies can be recreated.
func (c *httpClient) do(ctx context.Context, build func() (*http.Request, error)) ([]byte, error) {
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		req, err := build()
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("Accept-Language", acceptLanguage)

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = err
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			c.logger.Debug("request failed", "attempt", attempt, "error", err)
			if err := backoff(ctx, attempt); err != nil {
				return nil, err
			}
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode >= http.StatusInternalServerError {
			lastErr = fmt.Errorf("upstream status %d", resp.StatusCode)
			c.logger.Debug("upstream error", "attempt", attempt, "status", resp.StatusCode)
			if err := backoff(ctx, attempt); err != nil {
				return nil, err
			}
			continue
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
		}
		if readErr != nil {
			lastErr = fmt.Errorf("failed to read response: %w", readErr)
			continue
		}

		return body, nil
	}

	return nil, lastErr
}

// backoff sleeps attempt x retryBackoff, honoring cancellation
func backoff(ctx context.Context, attempt int) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(time.Duration(attempt) * retryBackoff):
		return nil
	}
}
