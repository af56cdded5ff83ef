package extract

import (
	"regexp"
	"time"
)

// ISOLayout is the calendar date layout of extracted dates.
const ISOLayout = "2006-01-02"

// DefaultTicketKeywords matches ticket-sale vocabulary in English and German.
const DefaultTicketKeywords = `(?i)presale|pre[-\s]?sale|general sale|on sale|tickets on sale|tickets? available|vorverkauf|tickets jetzt|ticketverkauf`

// DatePattern describes one regional date notation. Day, Month and Year are
// capture group numbers in Expr; a zero Day means the notation has no day
// and the first day of the month is used.
type DatePattern struct {
	Name  string
	Expr  *regexp.Regexp
	Day   int
	Month int
	Year  int
}

// Config carries the pattern tables used by DateExtractor and
// SignalClassifier.
type Config struct {
	DatePatterns   []DatePattern
	TicketKeywords *regexp.Regexp
	// MinDate rejects dates before it. The zero value disables the bound.
	MinDate time.Time
}

// DefaultMinDate is the earliest ticket release date accepted by default.
var DefaultMinDate = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// DefaultDatePatterns returns the date notations, in the order they are
// applied.
func DefaultDatePatterns() []DatePattern {
	return []DatePattern{
		{
			// 12.03.2026, 1. 3. 26
			Name:  "dotted",
			Expr:  regexp.MustCompile(`\b(\d{1,2})\.\s?(\d{1,2})\.\s?(\d{2,4})\b`),
			Day:   1,
			Month: 2,
			Year:  3,
		},
		{
			// 12 March 2026
			Name:  "day-month-year",
			Expr:  regexp.MustCompile(`(?i)\b(\d{1,2})\s(January|February|March|April|May|June|July|August|September|October|November|December)\s?(\d{2,4})\b`),
			Day:   1,
			Month: 2,
			Year:  3,
		},
		{
			// March 12, 2026
			Name:  "month-day-year",
			Expr:  regexp.MustCompile(`\b([A-Za-z]{3,9})\s(\d{1,2}),\s?(\d{4})\b`),
			Day:   2,
			Month: 1,
			Year:  3,
		},
		{
			// 2026-03-12
			Name:  "iso",
			Expr:  regexp.MustCompile(`\b(\d{4})-(\d{1,2})-(\d{1,2})\b`),
			Day:   3,
			Month: 2,
			Year:  1,
		},
	}
}

// DefaultConfig returns the built-in pattern tables.
func DefaultConfig() Config {
	return Config{
		DatePatterns:   DefaultDatePatterns(),
		TicketKeywords: regexp.MustCompile(DefaultTicketKeywords),
		MinDate:        DefaultMinDate,
	}
}
