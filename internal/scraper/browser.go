package scraper

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/pfrederiksen/ticket-tracker/internal/logger"
)

// ErrClosed is returned by BrowserFetcher.Fetch after Close.
var ErrClosed = errors.New("browser closed")

// BrowserOptions configures a BrowserFetcher.
type BrowserOptions struct {
	Headless bool
	// Timeout bounds one page load including the settle delay.
	Timeout time.Duration
	// Settle is how long to wait after navigation for scripts to render.
	Settle time.Duration
}

// DefaultBrowserOptions returns a headless browser with a 60s page timeout
// and a 2s settle delay.
func DefaultBrowserOptions() BrowserOptions {
	return BrowserOptions{
		Headless: true,
		Timeout:  60 * time.Second,
		Settle:   2 * time.Second,
	}
}

// BrowserFetcher renders pages in a headless Chrome through chromedp. One
// browser is started lazily and shared; every Fetch opens its own tab.
type BrowserFetcher struct {
	opts BrowserOptions
	log  *logger.Logger

	mu           sync.Mutex
	closed       bool
	cancelAlloc  context.CancelFunc
	browserCtx   context.Context
	cancelBrowse context.CancelFunc
}

// NewBrowserFetcher creates a BrowserFetcher. The browser starts on the
// first Fetch.
func NewBrowserFetcher(opts BrowserOptions) *BrowserFetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultBrowserOptions().Timeout
	}
	return &BrowserFetcher{opts: opts, log: logger.Default()}
}

func (b *BrowserFetcher) browser() (context.Context, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrClosed
	}
	if b.browserCtx != nil {
		return b.browserCtx, nil
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", b.opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.UserAgent(UserAgent),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, cancelBrowse := chromedp.NewContext(allocCtx)

	// start the browser now so a missing Chrome surfaces once
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowse()
		cancelAlloc()
		return nil, err
	}

	b.cancelAlloc = cancelAlloc
	b.browserCtx = browserCtx
	b.cancelBrowse = cancelBrowse
	return browserCtx, nil
}

// Fetch implements Fetcher. A render that fails or exceeds the timeout
// yields "".
func (b *BrowserFetcher) Fetch(ctx context.Context, url string) (string, error) {
	browserCtx, err := b.browser()
	if err != nil {
		return "", err
	}

	tab, cancelTab := chromedp.NewContext(browserCtx)
	defer cancelTab()
	tabCtx, cancel := context.WithTimeout(tab, b.opts.Timeout)
	defer cancel()

	// propagate caller cancellation into the tab
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var html string
	err = chromedp.Run(tabCtx,
		chromedp.Navigate(url),
		chromedp.Sleep(b.opts.Settle),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		b.log.Warn("Page render failed", logger.Fields{"url": url, "timeout": b.opts.Timeout.String(), "error": err.Error()})
		return "", nil
	}
	return html, nil
}

// Close shuts the browser down. It is safe to call more than once.
func (b *BrowserFetcher) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	if b.cancelBrowse != nil {
		b.cancelBrowse()
		b.cancelAlloc()
		b.browserCtx = nil
		b.cancelBrowse = nil
		b.cancelAlloc = nil
	}
	return nil
}
