package record

import (
	"time"
)

// Column positions in the output tab. The order is fixed once the header
// has been written and must never change.
const (
	ColMatchLabel = iota
	ColMatchDate
	ColCompetition
	ColVenue
	ColTicketReleaseDate
	ColTicketSource
	ColTicketPrice
	ColFlightOptions
	ColHotelOptions
	ColNotes
	ColSourceURL
	ColLastChecked

	ColumnCount
)

// Header is the header row of the output tab.
var Header = []string{
	"Spiel", "Datum", "Wettbewerb", "Stadion",
	"Ticket Release Datum", "Ticket Quelle", "Ticket Preis (ab)",
	"Flug Optionen (ab Wien)", "Hotel Optionen (pro Nacht)",
	"Notizen", "QuelleURL", "Letzte Prüfung",
}

// Provenance tags written to the ticket source column.
const (
	SourceFixtureAPI = "Fixture API"
	SourceClubPage   = "Clubseite"
)

// Status strings written to the notes column.
const (
	NoteFixtureLoaded = "Fixture geladen"
	NoteTicketInfo    = "Ticket-Info gefunden"
	NoteNoSignal      = "Keine klaren Hinweise"
)

// LastCheckedLayout is the time layout of the last-checked column.
const LastCheckedLayout = "2006-01-02 15:04"

// FixtureRecord is one row of the output tab: either a fixture seeded from
// the fixtures feed or a club page that was scraped for ticket information.
type FixtureRecord struct {
	MatchLabel        string `json:"match_label"`
	MatchDate         string `json:"match_date"`
	Competition       string `json:"competition,omitempty"`
	Venue             string `json:"venue,omitempty"`
	TicketReleaseDate string `json:"ticket_release_date,omitempty"`
	TicketSource      string `json:"ticket_source,omitempty"`
	TicketPrice       string `json:"ticket_price,omitempty"`
	FlightOptions     string `json:"flight_options,omitempty"`
	HotelOptions      string `json:"hotel_options,omitempty"`
	Notes             string `json:"notes,omitempty"`
	SourceURL         string `json:"source_url,omitempty"`
	LastChecked       string `json:"last_checked,omitempty"`
}

// FromRow decodes an untyped backend row. Missing trailing cells decode as
// empty strings and cells beyond the schema are ignored.
func FromRow(row []string) FixtureRecord {
	cell := func(i int) string {
		if i < len(row) {
			return row[i]
		}
		return ""
	}
	return FixtureRecord{
		MatchLabel:        cell(ColMatchLabel),
		MatchDate:         cell(ColMatchDate),
		Competition:       cell(ColCompetition),
		Venue:             cell(ColVenue),
		TicketReleaseDate: cell(ColTicketReleaseDate),
		TicketSource:      cell(ColTicketSource),
		TicketPrice:       cell(ColTicketPrice),
		FlightOptions:     cell(ColFlightOptions),
		HotelOptions:      cell(ColHotelOptions),
		Notes:             cell(ColNotes),
		SourceURL:         cell(ColSourceURL),
		LastChecked:       cell(ColLastChecked),
	}
}

// ToRow encodes the record in header order.
func (r FixtureRecord) ToRow() []string {
	row := make([]string, ColumnCount)
	row[ColMatchLabel] = r.MatchLabel
	row[ColMatchDate] = r.MatchDate
	row[ColCompetition] = r.Competition
	row[ColVenue] = r.Venue
	row[ColTicketReleaseDate] = r.TicketReleaseDate
	row[ColTicketSource] = r.TicketSource
	row[ColTicketPrice] = r.TicketPrice
	row[ColFlightOptions] = r.FlightOptions
	row[ColHotelOptions] = r.HotelOptions
	row[ColNotes] = r.Notes
	row[ColSourceURL] = r.SourceURL
	row[ColLastChecked] = r.LastChecked
	return row
}

// FixtureKey builds the natural key of a fixture row.
func FixtureKey(matchLabel, matchDate string) string {
	return matchLabel + "_" + matchDate
}

// Key returns the fixture key of the record.
func (r FixtureRecord) Key() string {
	return FixtureKey(r.MatchLabel, r.MatchDate)
}

// Stamp formats t for the last-checked column.
func Stamp(t time.Time) string {
	return t.Format(LastCheckedLayout)
}
