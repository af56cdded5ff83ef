package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pfrederiksen/ticket-tracker/internal/logger"
)

const (
	UserAgent = "ticket-tracker/1.0 (github.com/pfrederiksen/ticket-tracker)"
	Timeout   = 30 * time.Second

	// maxBodySize caps how much of a page is read.
	maxBodySize = 10 << 20
)

// Fetcher returns the HTML of a page. A page that could not be loaded
// (timeout, non-200 status, network error) yields "" and a nil error so
// the caller can move on to the next source. Only a cancelled context is
// returned as an error.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// HTTPFetcher fetches pages with a plain GET. It does not run JavaScript.
type HTTPFetcher struct {
	client *http.Client
	log    *logger.Logger
}

// NewHTTPFetcher creates an HTTPFetcher with the given per-request timeout.
// A zero timeout uses Timeout.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = Timeout
	}
	return &HTTPFetcher{
		client: &http.Client{
			Timeout: timeout,
		},
		log: logger.Default(),
	}
}

// Fetch implements Fetcher.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	body, err := f.get(ctx, url)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		f.log.Warn("Page fetch failed", logger.Fields{"url": url, "error": err.Error()})
		return "", nil
	}
	return body, nil
}

func (f *HTTPFetcher) get(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", fmt.Errorf("reading page: %w", err)
	}
	return string(data), nil
}
