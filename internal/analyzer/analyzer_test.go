package analyzer

import (
	"os"
	"strings"
	"testing"

	"github.com/pfrederiksen/ticket-tracker/internal/extract"
	"github.com/pfrederiksen/ticket-tracker/internal/record"
)

func TestAnalyze(t *testing.T) {
	a := New(extract.DefaultConfig())

	tests := []struct {
		name    string
		text    string
		title   string
		heading string
		want    Finding
	}{
		{
			name:    "signal and dates",
			text:    "General Sale begins Monday 02.03.2026, members presale 16.02.2026",
			title:   "Tickets",
			heading: "Arsenal vs Chelsea",
			want: Finding{
				TicketDate: "2026-02-16",
				HasSignal:  true,
				Title:      "Tickets",
				Heading:    "Arsenal vs Chelsea",
			},
		},
		{
			name:  "date without signal",
			text:  "Kick-off on March 12, 2026",
			title: "Fixtures",
			want: Finding{
				TicketDate: "2026-03-12",
				Title:      "Fixtures",
			},
		},
		{
			name: "signal without date",
			text: "Tickets on sale soon",
			want: Finding{HasSignal: true},
		},
		{
			name:    "empty text",
			text:    "",
			title:   "ignored",
			heading: "ignored",
			want:    Finding{},
		},
		{
			name: "whitespace only",
			text: "  \n\t ",
			want: Finding{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Analyze(tt.text, tt.title, tt.heading); got != tt.want {
				t.Errorf("Analyze() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestAnalyze_EmptyInput(t *testing.T) {
	a := New(extract.DefaultConfig())

	got := a.Analyze("", "", "")
	if got.TicketDate != "" || got.HasSignal {
		t.Errorf("Analyze(\"\", \"\", \"\") = %+v, want empty finding", got)
	}
	if !got.IsEmpty() {
		t.Error("IsEmpty() = false, want true")
	}
}

func TestFindingNotes(t *testing.T) {
	if got := (Finding{HasSignal: true}).Notes(); got != record.NoteTicketInfo {
		t.Errorf("Notes() = %q, want %q", got, record.NoteTicketInfo)
	}
	if got := (Finding{}).Notes(); got != record.NoteNoSignal {
		t.Errorf("Notes() = %q, want %q", got, record.NoteNoSignal)
	}
}

func TestParsePage(t *testing.T) {
	data, err := os.ReadFile("../../testdata/fixtures/ticket_page.html")
	if err != nil {
		t.Fatalf("failed to load test fixture: %v", err)
	}

	page, err := ParsePage(strings.NewReader(string(data)))
	if err != nil {
		t.Fatalf("ParsePage failed: %v", err)
	}

	if page.Title != "Tickets | SV Werder Bremen" {
		t.Errorf("Title = %q", page.Title)
	}
	if page.Heading != "Heimspiel gegen Hamburger SV" {
		t.Errorf("Heading = %q", page.Heading)
	}
	if !strings.Contains(page.Text, "startet am 15.01.2026") {
		t.Errorf("Text should separate adjacent elements, got %q", page.Text)
	}
	for _, hidden := range []string{"01.01.2001", "02.02.2002", "03.03.2003", "04.04.2004"} {
		if strings.Contains(page.Text, hidden) {
			t.Errorf("Text should not contain %q from script/style/comment/noscript", hidden)
		}
	}
}

func TestAnalyzeHTML(t *testing.T) {
	data, err := os.ReadFile("../../testdata/fixtures/ticket_page.html")
	if err != nil {
		t.Fatalf("failed to load test fixture: %v", err)
	}

	a := New(extract.DefaultConfig())
	got, err := a.AnalyzeHTML(strings.NewReader(string(data)))
	if err != nil {
		t.Fatalf("AnalyzeHTML failed: %v", err)
	}

	want := Finding{
		TicketDate: "2026-01-15",
		HasSignal:  true,
		Title:      "Tickets | SV Werder Bremen",
		Heading:    "Heimspiel gegen Hamburger SV",
	}
	if got != want {
		t.Errorf("AnalyzeHTML() = %+v, want %+v", got, want)
	}
}

func TestAnalyzeHTML_EmptyDocument(t *testing.T) {
	a := New(extract.DefaultConfig())
	got, err := a.AnalyzeHTML(strings.NewReader(""))
	if err != nil {
		t.Fatalf("AnalyzeHTML failed: %v", err)
	}
	if !got.IsEmpty() {
		t.Errorf("AnalyzeHTML(\"\") = %+v, want empty finding", got)
	}
}
