package cli

import (
	"sort"
	"strings"

	"github.com/pfrederiksen/ticket-tracker/internal/pipeline"
)

// SortOrder represents the available sorting options
type SortOrder string

const (
	SortNone     SortOrder = ""
	SortByURL    SortOrder = "url"
	SortByDate   SortOrder = "date"
	SortByStatus SortOrder = "status"
)

func (o SortOrder) valid() bool {
	switch o {
	case SortNone, SortByURL, SortByDate, SortByStatus:
		return true
	}
	return false
}

// sortResults sorts scrape results based on the specified sort order. The
// zero order keeps processing order.
func sortResults(results []pipeline.SourceResult, order SortOrder) {
	switch order {
	case SortByURL:
		sort.SliceStable(results, func(i, j int) bool {
			return strings.ToLower(results[i].URL) < strings.ToLower(results[j].URL)
		})
	case SortByDate:
		sort.SliceStable(results, func(i, j int) bool {
			return compareByDate(results[i], results[j])
		})
	case SortByStatus:
		sort.SliceStable(results, func(i, j int) bool {
			if results[i].Status != results[j].Status {
				return results[i].Status < results[j].Status
			}
			// If statuses are equal, sort by date
			return compareByDate(results[i], results[j])
		})
	}
}

// compareByDate reports whether i should come before j. Results with a
// ticket date come first, earliest date first.
func compareByDate(i, j pipeline.SourceResult) bool {
	if i.TicketDate != "" && j.TicketDate != "" {
		if i.TicketDate != j.TicketDate {
			// ISO dates order lexically
			return i.TicketDate < j.TicketDate
		}
		return i.URL < j.URL
	}

	// If only one date is set, put it first
	if i.TicketDate != "" {
		return true
	}
	if j.TicketDate != "" {
		return false
	}
	return i.URL < j.URL
}
