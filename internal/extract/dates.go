package extract

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

var monthNames = map[string]time.Month{
	"january": time.January, "jan": time.January, "januar": time.January,
	"february": time.February, "feb": time.February, "februar": time.February,
	"march": time.March, "mar": time.March, "maerz": time.March,
	"april": time.April, "apr": time.April,
	"may": time.May, "mai": time.May,
	"june": time.June, "jun": time.June, "juni": time.June,
	"july": time.July, "jul": time.July, "juli": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sep": time.September, "sept": time.September,
	"october": time.October, "oct": time.October, "okt": time.October, "oktober": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December, "dez": time.December, "dezember": time.December,
}

// DateExtractor finds calendar dates in free text.
type DateExtractor struct {
	patterns []DatePattern
	minDate  time.Time
}

// NewDateExtractor creates a DateExtractor from cfg.
func NewDateExtractor(cfg Config) *DateExtractor {
	return &DateExtractor{
		patterns: cfg.DatePatterns,
		minDate:  cfg.MinDate,
	}
}

// ExtractDates returns every distinct valid date in text as an ISO date,
// sorted ascending. Matches that do not form a valid date are dropped.
func (e *DateExtractor) ExtractDates(text string) []string {
	seen := make(map[string]bool)
	dates := make([]string, 0)

	for _, p := range e.patterns {
		for _, m := range p.Expr.FindAllStringSubmatch(text, -1) {
			d, ok := e.parse(p, m)
			if !ok {
				continue
			}
			iso := d.Format(ISOLayout)
			if !seen[iso] {
				seen[iso] = true
				dates = append(dates, iso)
			}
		}
	}

	// ISO dates sort chronologically as strings
	sort.Strings(dates)
	return dates
}

// Earliest returns the earliest date in text, or "" when there is none.
func (e *DateExtractor) Earliest(text string) string {
	dates := e.ExtractDates(text)
	if len(dates) == 0 {
		return ""
	}
	return dates[0]
}

func (e *DateExtractor) parse(p DatePattern, groups []string) (time.Time, bool) {
	group := func(i int) string {
		if i <= 0 || i >= len(groups) {
			return ""
		}
		return strings.TrimSpace(groups[i])
	}

	day := 1
	if raw := group(p.Day); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return time.Time{}, false
		}
		day = n
	}

	month, ok := parseMonth(group(p.Month))
	if !ok {
		return time.Time{}, false
	}

	year, ok := parseYear(group(p.Year))
	if !ok {
		return time.Time{}, false
	}

	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow (31.02 -> 03.03), so reject anything
	// that did not survive unchanged
	if d.Year() != year || d.Month() != month || d.Day() != day {
		return time.Time{}, false
	}
	if !e.minDate.IsZero() && d.Before(e.minDate) {
		return time.Time{}, false
	}
	return d, true
}

func parseMonth(raw string) (time.Month, bool) {
	if raw == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(raw); err == nil {
		if n < 1 || n > 12 {
			return 0, false
		}
		return time.Month(n), true
	}
	m, ok := monthNames[strings.ToLower(strings.TrimSuffix(raw, "."))]
	return m, ok
}

func parseYear(raw string) (int, bool) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	switch len(raw) {
	case 2:
		return 2000 + n, true
	case 4:
		return n, true
	default:
		return 0, false
	}
}
