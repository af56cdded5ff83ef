package telegram

import (
	"fmt"
	"html"
	"sort"
	"strings"
)

// FormatDigest formats a batch of release changes as one message, ordered
// by release date.
func FormatDigest(releases []Release) string {
	if len(releases) == 0 {
		return "No ticket release dates changed."
	}

	sorted := make([]Release, len(releases))
	copy(sorted, releases)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Record.TicketReleaseDate < sorted[j].Record.TicketReleaseDate
	})

	var msg strings.Builder
	msg.WriteString("🎟️ <b>Ticket release update</b>\n")
	msg.WriteString(fmt.Sprintf("%d release date%s found or changed\n\n", len(sorted), pluralize(len(sorted))))

	for _, r := range sorted {
		rec := r.Record
		name := rec.MatchLabel
		if name == "" {
			name = shortURL(rec.SourceURL)
		}
		msg.WriteString(fmt.Sprintf("• <b>%s</b>: %s", FormatDateNice(rec.TicketReleaseDate), html.EscapeString(name)))
		if r.Previous != "" {
			msg.WriteString(fmt.Sprintf(" <i>(was %s)</i>", html.EscapeString(FormatDateNice(r.Previous))))
		}
		msg.WriteString("\n")
	}

	return msg.String()
}

func pluralize(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
