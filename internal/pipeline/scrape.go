// Package pipeline runs the ticket scrape: every source page is loaded,
// analyzed and reconciled into the output table, one after the other.
package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/pfrederiksen/ticket-tracker/internal/analyzer"
	"github.com/pfrederiksen/ticket-tracker/internal/logger"
	"github.com/pfrederiksen/ticket-tracker/internal/reconcile"
	"github.com/pfrederiksen/ticket-tracker/internal/record"
	"github.com/pfrederiksen/ticket-tracker/internal/scraper"
	"github.com/pfrederiksen/ticket-tracker/internal/storage"
	"github.com/pfrederiksen/ticket-tracker/internal/telegram"
)

// Source statuses reported in SourceResult.
const (
	StatusInserted = "inserted"
	StatusUpdated  = "updated"
	StatusEmpty    = "empty"
	StatusFailed   = "failed"
)

// Notifier announces new or changed ticket release dates.
type Notifier interface {
	NotifyReleases(ctx context.Context, releases []telegram.Release) error
}

// SourceResult is the outcome for one source URL.
type SourceResult struct {
	URL        string `json:"url"`
	Status     string `json:"status"`
	TicketDate string `json:"ticket_date,omitempty"`
	HasSignal  bool   `json:"has_signal"`
	Title      string `json:"title,omitempty"`
	Error      string `json:"error,omitempty"`
}

// ScrapeSummary counts what one scrape run did.
type ScrapeSummary struct {
	Sources  int                `json:"sources"`
	Inserted int                `json:"inserted"`
	Updated  int                `json:"updated"`
	Empty    int                `json:"empty"`
	Failed   int                `json:"failed"`
	Releases []telegram.Release `json:"-"`
	Results  []SourceResult     `json:"results"`
}

// Scraper processes source pages in order.
type Scraper struct {
	Fetcher    scraper.Fetcher
	Analyzer   *analyzer.Analyzer
	Engine     *reconcile.Engine
	Notifier   Notifier
	Provenance string
	Log        *logger.Logger
	Metrics    *logger.Metrics
	// Delay is the pause between the end of one page load and the start
	// of the next.
	Delay time.Duration
}

// NewScraper creates a Scraper that pauses delay between two page loads.
func NewScraper(f scraper.Fetcher, a *analyzer.Analyzer, e *reconcile.Engine, delay time.Duration) *Scraper {
	return &Scraper{
		Fetcher:    f,
		Analyzer:   a,
		Engine:     e,
		Provenance: record.SourceClubPage,
		Log:        logger.Default(),
		Metrics:    logger.NewMetrics(),
		Delay:      delay,
	}
}

// Run scrapes urls into t. Per-source failures are logged and counted;
// only cancellation of ctx ends the run early.
func (s *Scraper) Run(ctx context.Context, t storage.Table, urls []string) (*ScrapeSummary, error) {
	sum := &ScrapeSummary{}

	for _, url := range urls {
		url = strings.TrimSpace(url)
		if url == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		if sum.Sources > 0 {
			if err := s.pause(ctx); err != nil {
				return sum, err
			}
		}
		sum.Sources++

		res, release, err := s.process(ctx, t, url)
		if err != nil {
			return sum, err
		}
		sum.Results = append(sum.Results, res)
		s.Metrics.IncrCounter("sources." + res.Status)

		switch res.Status {
		case StatusInserted:
			sum.Inserted++
		case StatusUpdated:
			sum.Updated++
		case StatusEmpty:
			sum.Empty++
		case StatusFailed:
			sum.Failed++
		}
		if release != nil {
			sum.Releases = append(sum.Releases, *release)
		}
	}

	if len(sum.Releases) > 0 && s.Notifier != nil {
		if err := s.Notifier.NotifyReleases(ctx, sum.Releases); err != nil {
			s.Log.Error("Sending release notifications failed", logger.Fields{"releases": len(sum.Releases)}, err)
			s.Metrics.IncrCounter("notify.errors")
		} else {
			s.Metrics.IncrCounter("notify.sent")
		}
	}

	return sum, nil
}

// pause waits Delay or until ctx is done.
func (s *Scraper) pause(ctx context.Context) error {
	if s.Delay <= 0 {
		return nil
	}
	timer := time.NewTimer(s.Delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// process handles one source. The returned error is non-nil only when ctx
// is done.
func (s *Scraper) process(ctx context.Context, t storage.Table, url string) (SourceResult, *telegram.Release, error) {
	res := SourceResult{URL: url}

	s.Log.Info("Checking source", logger.Fields{"url": url})
	start := time.Now()
	html, err := s.Fetcher.Fetch(ctx, url)
	s.Metrics.RecordTiming("render", time.Since(start))
	if err != nil {
		if ctx.Err() != nil {
			return res, nil, ctx.Err()
		}
		s.Log.Error("Loading source failed", logger.Fields{"url": url}, err)
		res.Status = StatusFailed
		res.Error = err.Error()
		return res, nil, nil
	}

	if strings.TrimSpace(html) == "" {
		s.Log.Warn("No content, skipping source", logger.Fields{"url": url})
		res.Status = StatusEmpty
		return res, nil, nil
	}

	finding, err := s.Analyzer.AnalyzeHTML(strings.NewReader(html))
	if err != nil {
		s.Log.Error("Parsing source failed", logger.Fields{"url": url}, err)
		res.Status = StatusFailed
		res.Error = err.Error()
		return res, nil, nil
	}
	res.TicketDate = finding.TicketDate
	res.HasSignal = finding.HasSignal
	res.Title = finding.Title

	s.Log.Info("Analyzed source", logger.Fields{
		"url":         url,
		"title":       finding.Title,
		"heading":     finding.Heading,
		"ticket_date": finding.TicketDate,
		"has_signal":  finding.HasSignal,
	})

	result, err := s.Engine.Reconcile(ctx, t, url, finding, s.Provenance)
	if err != nil {
		s.Log.Error("Writing source failed", logger.Fields{"url": url}, err)
		res.Status = StatusFailed
		res.Error = err.Error()
		return res, nil, nil
	}
	res.Status = result.Outcome.String()

	date, changed := record.ReleaseDateChanged(result.Changes)
	if !changed {
		return res, nil, nil
	}

	release := &telegram.Release{Record: result.Record}
	for _, c := range result.Changes {
		if c.Field == record.FieldTicketReleaseDate {
			release.Previous = c.OldValue
		}
	}
	s.Log.Info("Ticket release date changed", logger.Fields{"url": url, "ticket_date": date, "previous": release.Previous})
	return res, release, nil
}
