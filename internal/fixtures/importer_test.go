package fixtures

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/pfrederiksen/ticket-tracker/internal/logger"
	"github.com/pfrederiksen/ticket-tracker/internal/record"
	"github.com/pfrederiksen/ticket-tracker/internal/storage"
)

// fakeFeed serves canned matches per team id.
type fakeFeed struct {
	matches map[int][]Match
	errs    map[int]error
	calls   []int
}

func (f *fakeFeed) ScheduledMatches(ctx context.Context, teamID int) ([]Match, error) {
	f.calls = append(f.calls, teamID)
	if err := f.errs[teamID]; err != nil {
		return nil, err
	}
	return f.matches[teamID], nil
}

func match(home, away, utc, code, venue string) Match {
	return Match{
		UTCDate:     utc,
		Venue:       venue,
		HomeTeam:    TeamRef{Name: home},
		AwayTeam:    TeamRef{Name: away},
		Competition: CompetitionRef{Code: code},
	}
}

func newTestImporter(feed Feed) *Importer {
	im := NewImporter(feed)
	im.Log = logger.New(logger.LevelError, io.Discard)
	im.Now = func() time.Time { return time.Date(2026, 1, 5, 7, 0, 0, 0, time.UTC) }
	return im
}

func TestImporter_InsertsFixtures(t *testing.T) {
	derby := match("SV Werder Bremen", "Hamburger SV", "2026-03-14T14:30:00Z", "BL1", "Weserstadion")
	feed := &fakeFeed{matches: map[int][]Match{
		12: {derby},
		7:  {derby}, // same fixture from the other club
	}}
	table := storage.NewMemoryTable(record.Header)

	sum, err := newTestImporter(feed).Import(context.Background(), table, []Team{{"SV Werder Bremen", 12}, {"Hamburger SV", 7}})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	if sum.Inserted != 1 || sum.Skipped != 1 || sum.Matches != 2 || sum.Teams != 2 {
		t.Errorf("summary = %+v", sum)
	}

	want := record.FixtureRecord{
		MatchLabel:   "SV Werder Bremen vs Hamburger SV",
		MatchDate:    "2026-03-14",
		Competition:  "Bundesliga",
		Venue:        "Weserstadion",
		TicketSource: record.SourceFixtureAPI,
		Notes:        record.NoteFixtureLoaded,
		LastChecked:  "2026-01-05 07:00",
	}
	if got := record.FromRow(table.Rows()[0]); got != want {
		t.Errorf("row = %+v, want %+v", got, want)
	}
}

func TestImporter_IdempotentAcrossRuns(t *testing.T) {
	feed := &fakeFeed{matches: map[int][]Match{
		12: {
			match("SV Werder Bremen", "Hamburger SV", "2026-03-14T14:30:00Z", "BL1", ""),
			match("FC Bayern München", "SV Werder Bremen", "2026-04-02T19:00:00Z", "XYZ", ""),
		},
	}}
	table := storage.NewMemoryTable(record.Header)
	teams := []Team{{"SV Werder Bremen", 12}}

	if _, err := newTestImporter(feed).Import(context.Background(), table, teams); err != nil {
		t.Fatal(err)
	}
	first := table.Rows()

	sum, err := newTestImporter(feed).Import(context.Background(), table, teams)
	if err != nil {
		t.Fatal(err)
	}
	if sum.Inserted != 0 || sum.Skipped != 2 {
		t.Errorf("second import summary = %+v, want 0 inserted, 2 skipped", sum)
	}
	if table.Len() != len(first) {
		t.Errorf("row count changed from %d to %d", len(first), table.Len())
	}

	keys := map[string]int{}
	for _, row := range table.Rows() {
		keys[record.FromRow(row).Key()]++
	}
	for k, n := range keys {
		if n != 1 {
			t.Errorf("key %q appears %d times", k, n)
		}
	}

	if got := record.FromRow(table.Rows()[1]).Competition; got != "XYZ" {
		t.Errorf("unknown competition code should pass through, got %q", got)
	}
}

func TestImporter_NeverUpdatesExistingRows(t *testing.T) {
	ctx := context.Background()
	table := storage.NewMemoryTable(record.Header)
	existing := record.FixtureRecord{
		MatchLabel:        "SV Werder Bremen vs Hamburger SV",
		MatchDate:         "2026-03-14",
		TicketReleaseDate: "2026-02-01",
		TicketPrice:       "45 EUR",
	}
	_ = table.InsertRow(ctx, existing.ToRow())

	feed := &fakeFeed{matches: map[int][]Match{
		12: {match("SV Werder Bremen", "Hamburger SV", "2026-03-14T14:30:00Z", "BL1", "Weserstadion")},
	}}
	if _, err := newTestImporter(feed).Import(ctx, table, []Team{{"SV Werder Bremen", 12}}); err != nil {
		t.Fatal(err)
	}

	if table.Len() != 1 {
		t.Fatalf("got %d rows, want 1", table.Len())
	}
	if got := record.FromRow(table.Rows()[0]); got != existing {
		t.Errorf("existing row was modified: %+v", got)
	}
}

func TestImporter_FeedErrorSkipsTeam(t *testing.T) {
	feed := &fakeFeed{
		matches: map[int][]Match{
			7: {match("Hamburger SV", "FC Schalke 04", "2026-03-21T12:30:00Z", "BL2", "")},
		},
		errs: map[int]error{12: &StatusError{StatusCode: 403, Body: "forbidden"}},
	}
	table := storage.NewMemoryTable(record.Header)

	sum, err := newTestImporter(feed).Import(context.Background(), table, []Team{{"SV Werder Bremen", 12}, {"Hamburger SV", 7}})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if sum.FeedErrors != 1 || sum.Inserted != 1 {
		t.Errorf("summary = %+v, want 1 feed error and 1 insert", sum)
	}
	if len(feed.calls) != 2 || feed.calls[0] != 12 || feed.calls[1] != 7 {
		t.Errorf("teams requested in order %v, want [12 7]", feed.calls)
	}
}

func TestImporter_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestImporter(&fakeFeed{}).Import(ctx, storage.NewMemoryTable(record.Header), DefaultTeams())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Import() error = %v, want context.Canceled", err)
	}
}

// timedFeed records when each team was requested.
type timedFeed struct {
	at []time.Time
}

func (f *timedFeed) ScheduledMatches(ctx context.Context, teamID int) ([]Match, error) {
	f.at = append(f.at, time.Now())
	return nil, nil
}

func TestImporter_RequestInterval(t *testing.T) {
	feed := &timedFeed{}
	im := newTestImporter(feed)
	im.SetRequestInterval(40 * time.Millisecond)

	teams := []Team{{"SV Werder Bremen", 12}, {"Hamburger SV", 7}, {"FC St. Pauli", 20}}
	if _, err := im.Import(context.Background(), storage.NewMemoryTable(record.Header), teams); err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if len(feed.at) != 3 {
		t.Fatalf("made %d requests, want 3", len(feed.at))
	}
	// allow for timer granularity
	min := 35 * time.Millisecond
	for i := 1; i < len(feed.at); i++ {
		if gap := feed.at[i].Sub(feed.at[i-1]); gap < min {
			t.Errorf("gap before request %d = %v, want about 40ms", i+1, gap)
		}
	}
}
