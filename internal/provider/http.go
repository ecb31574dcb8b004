package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"market-oracle/internal/domain"
)

const maxErrorBody = 512

// doGet performs a rate-limited GET and classifies failures: HTTP 429 wraps
// domain.ErrRateLimited and pauses the limiter for the upstream's Retry-After,
// anything else wraps domain.ErrUpstreamUnavailable.
func doGet(ctx context.Context, client *http.Client, limiter *RateLimiter, name, url string, headers map[string]string) ([]byte, error) {
	if err := limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%s rate limit wait: %w", name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request: %w: %v", name, domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		limiter.Pause(retryAfter(resp.Header.Get("Retry-After")))
		return nil, fmt.Errorf("%s: %w", name, domain.ErrRateLimited)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("%s API error %d: %s: %w", name, resp.StatusCode, string(body), domain.ErrUpstreamUnavailable)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s read body: %w: %v", name, domain.ErrUpstreamUnavailable, err)
	}
	return body, nil
}

// retryAfter reads a delay-seconds Retry-After value. HTTP-date values are
// ignored.
func retryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
