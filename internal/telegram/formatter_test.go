package telegram

import (
	"strings"
	"testing"

	"github.com/pfrederiksen/ticket-tracker/internal/record"
)

func TestFormatRelease(t *testing.T) {
	tests := []struct {
		name            string
		release         Release
		wantContains    []string
		wantNotContains []string
	}{
		{
			name: "new date on fixture row",
			release: Release{Record: record.FixtureRecord{
				MatchLabel:        "SV Werder Bremen vs Hamburger SV",
				MatchDate:         "2026-03-14",
				Competition:       "Bundesliga",
				TicketReleaseDate: "2026-01-15",
				SourceURL:         "https://www.werder.de/tickets",
			}},
			wantContains: []string{
				"Ticket release date found!",
				"<b>SV Werder Bremen vs Hamburger SV</b>",
				"Sat, 14 Mar 2026",
				"Bundesliga",
				"Sale starts: <b>Thu, 15 Jan 2026</b>",
				`<a href="https://www.werder.de/tickets">www.werder.de/tickets</a>`,
			},
			wantNotContains: []string{"was "},
		},
		{
			name: "changed date on scraped row",
			release: Release{
				Record: record.FixtureRecord{
					TicketReleaseDate: "2026-01-20",
					SourceURL:         "https://club.example/tickets",
				},
				Previous: "2026-01-15",
			},
			wantContains: []string{
				"Ticket release date changed!",
				"Tue, 20 Jan 2026",
				"<i>was Thu, 15 Jan 2026</i>",
			},
			wantNotContains: []string{"⚽"},
		},
		{
			name: "label is escaped",
			release: Release{Record: record.FixtureRecord{
				MatchLabel:        "Brighton & Hove Albion vs Fulham",
				TicketReleaseDate: "2026-01-15",
			}},
			wantContains: []string{"Brighton &amp; Hove Albion"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatRelease(tt.release)
			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("FormatRelease() missing %q in:\n%s", want, got)
				}
			}
			for _, notWant := range tt.wantNotContains {
				if strings.Contains(got, notWant) {
					t.Errorf("FormatRelease() should not contain %q in:\n%s", notWant, got)
				}
			}
		})
	}
}

func TestFormatDateNice(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2026-01-15", "Thu, 15 Jan 2026"},
		{"2026-03-01", "Sun, 1 Mar 2026"},
		{"", ""},
		{"next week", "next week"},
	}
	for _, tt := range tests {
		if got := FormatDateNice(tt.in); got != tt.want {
			t.Errorf("FormatDateNice(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
