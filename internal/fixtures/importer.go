package fixtures

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/pfrederiksen/ticket-tracker/internal/logger"
	"github.com/pfrederiksen/ticket-tracker/internal/record"
	"github.com/pfrederiksen/ticket-tracker/internal/storage"
)

// Feed returns the scheduled matches of a team.
type Feed interface {
	ScheduledMatches(ctx context.Context, teamID int) ([]Match, error)
}

// Summary counts what one import did.
type Summary struct {
	Teams    int `json:"teams"`
	Matches  int `json:"matches"`
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
	// FeedErrors counts teams whose request failed and were treated as
	// having no fixtures.
	FeedErrors  int `json:"feed_errors"`
	WriteErrors int `json:"write_errors"`
}

// Importer seeds the output table with fixtures from a Feed. It only ever
// appends rows; a fixture already present is left as it is.
type Importer struct {
	Feed         Feed
	Competitions map[string]string
	Log          *logger.Logger
	Metrics      *logger.Metrics
	Now          func() time.Time

	limiter *rate.Limiter
}

// NewImporter creates an importer with the default competition table.
func NewImporter(feed Feed) *Importer {
	return &Importer{
		Feed:         feed,
		Competitions: DefaultCompetitions(),
		Log:          logger.Default(),
		Metrics:      logger.NewMetrics(),
		Now:          time.Now,
		limiter:      rate.NewLimiter(rate.Inf, 1),
	}
}

// SetRequestInterval spaces feed requests at least interval apart. The
// football-data.org free tier allows ten requests a minute.
func (im *Importer) SetRequestInterval(interval time.Duration) {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	im.limiter = rate.NewLimiter(limit, 1)
}

// Import fetches the fixtures of every team, in order, and inserts those
// whose match label and date are not in t yet.
func (im *Importer) Import(ctx context.Context, t storage.Table, teams []Team) (Summary, error) {
	var sum Summary

	seen, err := existingKeys(ctx, t)
	if err != nil {
		return sum, err
	}

	for _, team := range teams {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		if err := im.limiter.Wait(ctx); err != nil {
			return sum, err
		}
		sum.Teams++

		im.Log.Info("Fetching fixtures", logger.Fields{"team": team.Name, "team_id": team.ID})
		start := time.Now()
		matches, err := im.Feed.ScheduledMatches(ctx, team.ID)
		im.Metrics.RecordTiming("fixtures.fetch", time.Since(start))
		if err != nil {
			im.Log.Error("Fixtures request failed", logger.Fields{"team": team.Name, "team_id": team.ID}, err)
			im.Metrics.IncrCounter("fixtures.feed_errors")
			sum.FeedErrors++
			continue
		}

		for _, m := range matches {
			sum.Matches++
			rec := im.toRecord(m)
			key := rec.Key()

			if seen[key] {
				im.Log.Debug("Skipping known fixture", logger.Fields{"key": key})
				im.Metrics.IncrCounter("fixtures.skipped")
				sum.Skipped++
				continue
			}

			if err := t.InsertRow(ctx, rec.ToRow()); err != nil {
				im.Log.Error("Inserting fixture failed", logger.Fields{"key": key}, err)
				im.Metrics.IncrCounter("fixtures.write_errors")
				sum.WriteErrors++
				continue
			}
			seen[key] = true
			im.Metrics.IncrCounter("fixtures.inserted")
			sum.Inserted++
		}
	}

	return sum, nil
}

func (im *Importer) toRecord(m Match) record.FixtureRecord {
	return record.FixtureRecord{
		MatchLabel:   m.Label(),
		MatchDate:    m.Date(),
		Competition:  CompetitionName(im.Competitions, m.Competition.Code),
		Venue:        m.Venue,
		TicketSource: record.SourceFixtureAPI,
		Notes:        record.NoteFixtureLoaded,
		LastChecked:  record.Stamp(im.Now()),
	}
}

// existingKeys returns the fixture keys of every row in t.
func existingKeys(ctx context.Context, t storage.Table) (map[string]bool, error) {
	labels, err := t.ColumnValues(ctx, record.ColMatchLabel)
	if err != nil {
		return nil, fmt.Errorf("reading match labels: %w", err)
	}
	dates, err := t.ColumnValues(ctx, record.ColMatchDate)
	if err != nil {
		return nil, fmt.Errorf("reading match dates: %w", err)
	}

	seen := make(map[string]bool, len(labels))
	for i, label := range labels {
		date := ""
		if i < len(dates) {
			date = dates[i]
		}
		if label == "" && date == "" {
			continue
		}
		seen[record.FixtureKey(label, date)] = true
	}
	return seen, nil
}
