package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/pfrederiksen/ticket-tracker/internal/fixtures"
	"github.com/pfrederiksen/ticket-tracker/internal/pipeline"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// OutputResult contains data to be output
type OutputResult struct {
	RunID     string                  `json:"run_id"`
	Job       string                  `json:"job"`
	StartedAt time.Time               `json:"started_at"`
	Duration  string                  `json:"duration"`
	DryRun    bool                    `json:"dry_run,omitempty"`
	Fixtures  *fixtures.Summary       `json:"fixtures,omitempty"`
	Scrape    *pipeline.ScrapeSummary `json:"scrape,omitempty"`
	Sources   []string                `json:"sources,omitempty"`
	Metrics   map[string]interface{}  `json:"metrics,omitempty"`
}

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result *OutputResult, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, result *OutputResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// writeText outputs results as human-readable text
func writeText(w io.Writer, result *OutputResult, verbose bool) error {
	if result.DryRun {
		fmt.Fprintln(w, "Dry run: no changes were written.")
	}

	switch {
	case result.Fixtures != nil:
		writeFixturesText(w, result.Fixtures)
	case result.Scrape != nil:
		writeScrapeText(w, result.Scrape, verbose)
	default:
		writeSourcesText(w, result.Sources)
	}

	if verbose {
		fmt.Fprintf(w, "\nRun %s finished in %s\n", result.RunID, result.Duration)
		writeCounters(w, result.Metrics)
	}
	return nil
}

func writeFixturesText(w io.Writer, sum *fixtures.Summary) {
	fmt.Fprintf(w, "Checked %d team%s, %d fixture%s.\n", sum.Teams, plural(sum.Teams), sum.Matches, plural(sum.Matches))
	fmt.Fprintf(w, "  Inserted: %d\n", sum.Inserted)
	fmt.Fprintf(w, "  Already known: %d\n", sum.Skipped)
	if sum.FeedErrors > 0 {
		fmt.Fprintf(w, "  Teams without data (feed error): %d\n", sum.FeedErrors)
	}
	if sum.WriteErrors > 0 {
		fmt.Fprintf(w, "  Failed writes: %d\n", sum.WriteErrors)
	}
}

func writeScrapeText(w io.Writer, sum *pipeline.ScrapeSummary, verbose bool) {
	if sum.Sources == 0 {
		fmt.Fprintln(w, "No sources to check.")
		return
	}

	for _, res := range sum.Results {
		date := res.TicketDate
		if date == "" {
			date = "-"
		}
		signal := ""
		if res.HasSignal {
			signal = " [ticket info]"
		}
		fmt.Fprintf(w, "%-8s %-10s %s%s\n", res.Status, date, res.URL, signal)
		if verbose {
			if res.Title != "" {
				fmt.Fprintf(w, "         Title: %s\n", res.Title)
			}
			if res.Error != "" {
				fmt.Fprintf(w, "         Error: %s\n", res.Error)
			}
		}
	}

	fmt.Fprintf(w, "\nTotal: %d source%s (%d inserted, %d updated, %d empty, %d failed)\n",
		sum.Sources, plural(sum.Sources), sum.Inserted, sum.Updated, sum.Empty, sum.Failed)
	if n := len(sum.Releases); n > 0 {
		fmt.Fprintf(w, "%d ticket release date%s found or changed\n", n, plural(n))
	}
}

func writeSourcesText(w io.Writer, urls []string) {
	if len(urls) == 0 {
		fmt.Fprintln(w, "No sources configured.")
		return
	}
	for _, u := range urls {
		fmt.Fprintln(w, u)
	}
	fmt.Fprintf(w, "\nTotal: %d source%s\n", len(urls), plural(len(urls)))
}

func writeCounters(w io.Writer, metrics map[string]interface{}) {
	counters, ok := metrics["counters"].(map[string]int64)
	if !ok || len(counters) == 0 {
		return
	}
	names := make([]string, 0, len(counters))
	for name := range counters {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %s: %d\n", name, counters[name])
	}
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
