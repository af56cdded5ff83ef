// Package scraper loads club ticket pages.
//
// BrowserFetcher renders pages in headless Chrome via chromedp so that
// client-side rendered ticket information is present in the HTML.
// HTTPFetcher is a plain GET for pages that render on the server.
// Both treat a failed or timed-out load as an empty page.
package scraper
