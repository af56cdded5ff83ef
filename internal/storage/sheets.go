package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"
)

// TabStatus is the outcome of Spreadsheet.Tab.
type TabStatus int

const (
	TabFound TabStatus = iota
	TabCreated
)

func (s TabStatus) String() string {
	if s == TabCreated {
		return "created"
	}
	return "found"
}

// Spreadsheet is a Google Sheets document.
type Spreadsheet struct {
	svc *sheets.Service
	id  string
}

// NewSpreadsheet connects to the spreadsheet with the given ID. Credentials
// are supplied through opts (for example option.WithCredentialsFile).
func NewSpreadsheet(ctx context.Context, spreadsheetID string, opts ...option.ClientOption) (*Spreadsheet, error) {
	if spreadsheetID == "" {
		return nil, errors.New("spreadsheet ID is required")
	}
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}
	return &Spreadsheet{svc: svc, id: spreadsheetID}, nil
}

// Tab returns the tab with the given title, adding it to the spreadsheet
// when it does not exist yet.
func (s *Spreadsheet) Tab(ctx context.Context, title string) (*SheetsTable, TabStatus, error) {
	table, ok, err := s.LookupTab(ctx, title)
	if err != nil {
		return nil, TabFound, err
	}
	if ok {
		return table, TabFound, nil
	}

	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: title},
			},
		}},
	}
	if _, err := s.svc.Spreadsheets.BatchUpdate(s.id, req).Context(ctx).Do(); err != nil {
		return nil, TabCreated, fmt.Errorf("adding tab %q: %w", title, err)
	}
	return s.table(title), TabCreated, nil
}

// LookupTab returns the tab with the given title. ok is false when the
// spreadsheet has no such tab.
func (s *Spreadsheet) LookupTab(ctx context.Context, title string) (table *SheetsTable, ok bool, err error) {
	doc, err := s.svc.Spreadsheets.Get(s.id).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return nil, false, fmt.Errorf("reading spreadsheet: %w", err)
	}
	for _, sh := range doc.Sheets {
		if sh.Properties != nil && sh.Properties.Title == title {
			return s.table(title), true, nil
		}
	}
	return nil, false, nil
}

func (s *Spreadsheet) table(title string) *SheetsTable {
	return &SheetsTable{values: s.svc.Spreadsheets.Values, id: s.id, title: title}
}

// SheetsTable is one tab of a spreadsheet. Row 1 is the header; data row i
// lives on sheet row i+2.
type SheetsTable struct {
	values *sheets.SpreadsheetsValuesService
	id     string
	title  string
}

func (t *SheetsTable) a1(ref string) string {
	return "'" + strings.ReplaceAll(t.title, "'", "''") + "'!" + ref
}

func (t *SheetsTable) Header(ctx context.Context) ([]string, error) {
	resp, err := t.values.Get(t.id, t.a1("1:1")).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("reading header of %q: %w", t.title, err)
	}
	if len(resp.Values) == 0 {
		return nil, nil
	}
	return cellStrings(resp.Values[0]), nil
}

func (t *SheetsTable) WriteHeader(ctx context.Context, header []string) error {
	vr := &sheets.ValueRange{Values: [][]interface{}{cellValues(header)}}
	if _, err := t.values.Update(t.id, t.a1("A1"), vr).ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return fmt.Errorf("writing header of %q: %w", t.title, err)
	}
	return nil
}

func (t *SheetsTable) FindRow(ctx context.Context, column int, value string) (int, error) {
	values, err := t.ColumnValues(ctx, column)
	if err != nil {
		return NotFound, err
	}
	for i, v := range values {
		if v == value {
			return i, nil
		}
	}
	return NotFound, nil
}

func (t *SheetsTable) Row(ctx context.Context, index int) ([]string, error) {
	if index < 0 {
		return nil, ErrRowOutOfRange
	}
	n := index + 2
	resp, err := t.values.Get(t.id, t.a1(fmt.Sprintf("%d:%d", n, n))).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("reading row %d of %q: %w", n, t.title, err)
	}
	if len(resp.Values) == 0 {
		return []string{}, nil
	}
	return cellStrings(resp.Values[0]), nil
}

// InsertRow writes row below the last used row. Blank rows inside the data
// keep their index, matching FindRow and ColumnValues.
func (t *SheetsTable) InsertRow(ctx context.Context, row []string) error {
	n, err := t.rowCount(ctx, len(row))
	if err != nil {
		return err
	}
	vr := &sheets.ValueRange{Values: [][]interface{}{cellValues(row)}}
	ref := t.a1(fmt.Sprintf("A%d", n+2))
	if _, err := t.values.Update(t.id, ref, vr).ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return fmt.Errorf("appending row to %q: %w", t.title, err)
	}
	return nil
}

// rowCount returns the number of data rows up to the last used one within
// the first width columns.
func (t *SheetsTable) rowCount(ctx context.Context, width int) (int, error) {
	if width < 1 {
		width = 1
	}
	resp, err := t.values.Get(t.id, t.a1("A2:"+ColumnName(width-1))).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("reading rows of %q: %w", t.title, err)
	}
	return len(resp.Values), nil
}

func (t *SheetsTable) ReplaceRow(ctx context.Context, index int, row []string) error {
	if index < 0 {
		return ErrRowOutOfRange
	}
	vr := &sheets.ValueRange{Values: [][]interface{}{cellValues(row)}}
	ref := t.a1(fmt.Sprintf("A%d", index+2))
	if _, err := t.values.Update(t.id, ref, vr).ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return fmt.Errorf("updating row %d of %q: %w", index+2, t.title, err)
	}
	return nil
}

func (t *SheetsTable) ColumnValues(ctx context.Context, column int) ([]string, error) {
	col := ColumnName(column)
	resp, err := t.values.Get(t.id, t.a1(fmt.Sprintf("%s2:%s", col, col))).
		MajorDimension("COLUMNS").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("reading column %s of %q: %w", col, t.title, err)
	}
	if len(resp.Values) == 0 {
		return []string{}, nil
	}
	return cellStrings(resp.Values[0]), nil
}

// ColumnName converts a 0-based column index to its A1 letters.
func ColumnName(index int) string {
	name := ""
	for n := index + 1; n > 0; n = (n - 1) / 26 {
		name = string(rune('A'+(n-1)%26)) + name
	}
	return name
}

func cellStrings(cells []interface{}) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		switch v := c.(type) {
		case string:
			out[i] = v
		case nil:
			out[i] = ""
		default:
			out[i] = fmt.Sprint(v)
		}
	}
	return out
}

func cellValues(row []string) []interface{} {
	out := make([]interface{}, len(row))
	for i, c := range row {
		out[i] = c
	}
	return out
}
