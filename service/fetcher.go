package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxFetchBytes caps how much of a source page is read.
const maxFetchBytes = 1 << 20

// HTTPContentFetcher fetches source pages over plain HTTP.
type HTTPContentFetcher struct {
	client *http.Client
}

// NewHTTPContentFetcher creates a fetcher with the given request timeout.
func NewHTTPContentFetcher(timeout time.Duration) *HTTPContentFetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPContentFetcher{
		client: &http.Client{Timeout: timeout},
	}
}

// Fetch retrieves the body of a URL, truncated to a sane size.
func (f *HTTPContentFetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "legaldata-backend/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s returned status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", url, err)
	}

	return string(body), nil
}
