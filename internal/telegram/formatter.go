package telegram

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/pfrederiksen/ticket-tracker/internal/record"
)

// Release is a ticket release date that was found or changed for a row.
type Release struct {
	Record record.FixtureRecord
	// Previous is the release date stored before, or "" when there was none.
	Previous string
}

// FormatDateNice renders an ISO date as "Thu, 15 Jan 2026". Other input is
// returned unchanged.
func FormatDateNice(iso string) string {
	t, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return iso
	}
	return t.Format("Mon, 2 Jan 2006")
}

// FormatRelease formats a single release change as a Telegram message
func FormatRelease(r Release) string {
	var msg strings.Builder
	rec := r.Record

	if r.Previous == "" {
		msg.WriteString("🎟️ <b>Ticket release date found!</b>\n\n")
	} else {
		msg.WriteString("🎟️ <b>Ticket release date changed!</b>\n\n")
	}

	if rec.MatchLabel != "" {
		msg.WriteString(fmt.Sprintf("⚽ <b>%s</b>\n", html.EscapeString(rec.MatchLabel)))
		if rec.MatchDate != "" {
			msg.WriteString(fmt.Sprintf("📅 %s\n", FormatDateNice(rec.MatchDate)))
		}
		if rec.Competition != "" {
			msg.WriteString(fmt.Sprintf("🏆 %s\n", html.EscapeString(rec.Competition)))
		}
		msg.WriteString("\n")
	}

	msg.WriteString(fmt.Sprintf("🗓 Sale starts: <b>%s</b>\n", FormatDateNice(rec.TicketReleaseDate)))
	if r.Previous != "" {
		msg.WriteString(fmt.Sprintf("   <i>was %s</i>\n", html.EscapeString(FormatDateNice(r.Previous))))
	}

	if rec.SourceURL != "" {
		msg.WriteString(fmt.Sprintf("\n🔗 <a href=\"%s\">%s</a>\n", html.EscapeString(rec.SourceURL), html.EscapeString(shortURL(rec.SourceURL))))
	}

	return msg.String()
}

// shortURL drops the scheme for display.
func shortURL(u string) string {
	u = strings.TrimPrefix(u, "https://")
	return strings.TrimPrefix(u, "http://")
}
