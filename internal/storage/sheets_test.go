package storage

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync"
	"testing"

	"google.golang.org/api/option"
)

func TestColumnName(t *testing.T) {
	tests := []struct {
		index int
		want  string
	}{
		{0, "A"},
		{10, "K"},
		{25, "Z"},
		{26, "AA"},
		{51, "AZ"},
		{52, "BA"},
	}

	for _, tt := range tests {
		if got := ColumnName(tt.index); got != tt.want {
			t.Errorf("ColumnName(%d) = %q, want %q", tt.index, got, tt.want)
		}
	}
}

// fakeSheets serves the handful of Sheets API calls SheetsTable makes.
type fakeSheets struct {
	mu      sync.Mutex
	tabs    []string
	column  []string
	rows    [][]string
	added   []string
	updates []string
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	path := r.URL.Path

	switch {
	case r.Method == http.MethodPost && strings.HasSuffix(path, ":batchUpdate"):
		var req struct {
			Requests []struct {
				AddSheet struct {
					Properties struct {
						Title string `json:"title"`
					} `json:"properties"`
				} `json:"addSheet"`
			} `json:"requests"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		for _, rq := range req.Requests {
			f.added = append(f.added, rq.AddSheet.Properties.Title)
		}
		_, _ = w.Write([]byte(`{"spreadsheetId":"sheet-1","replies":[{}]}`))

	case r.Method == http.MethodGet && strings.Contains(path, "/values/") && r.URL.Query().Get("majorDimension") != "COLUMNS":
		rows := make([]interface{}, len(f.rows))
		for i, row := range f.rows {
			cells := make([]interface{}, len(row))
			for j, c := range row {
				cells[j] = c
			}
			rows[i] = cells
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"range":  "x",
			"values": rows,
		})

	case r.Method == http.MethodGet && strings.Contains(path, "/values/"):
		values := make([]interface{}, len(f.column))
		for i, v := range f.column {
			values[i] = v
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"range":          "x",
			"majorDimension": r.URL.Query().Get("majorDimension"),
			"values":         []interface{}{values},
		})

	case r.Method == http.MethodPut && strings.Contains(path, "/values/"):
		f.updates = append(f.updates, path)
		_, _ = w.Write([]byte(`{"spreadsheetId":"sheet-1","updatedRows":1}`))

	case r.Method == http.MethodGet && strings.HasSuffix(path, "/spreadsheets/sheet-1"):
		sheets := make([]interface{}, 0, len(f.tabs))
		for _, title := range f.tabs {
			sheets = append(sheets, map[string]interface{}{
				"properties": map[string]interface{}{"title": title},
			})
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"spreadsheetId": "sheet-1",
			"sheets":        sheets,
		})

	default:
		http.Error(w, `{"error":{"code":404,"message":"not found"}}`, http.StatusNotFound)
	}
}

func newTestSpreadsheet(t *testing.T, fake *fakeSheets) *Spreadsheet {
	t.Helper()
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	ss, err := NewSpreadsheet(context.Background(), "sheet-1",
		option.WithEndpoint(server.URL+"/"),
		option.WithHTTPClient(server.Client()),
	)
	if err != nil {
		t.Fatalf("NewSpreadsheet() error = %v", err)
	}
	return ss
}

func TestSpreadsheet_Tab(t *testing.T) {
	fake := &fakeSheets{tabs: []string{"Games"}}
	ss := newTestSpreadsheet(t, fake)
	ctx := context.Background()

	if _, status, err := ss.Tab(ctx, "Games"); err != nil || status != TabFound {
		t.Errorf("Tab(Games) = (%v, %v), want (found, nil)", status, err)
	}
	if len(fake.added) != 0 {
		t.Errorf("existing tab should not be added again, added = %q", fake.added)
	}

	if _, status, err := ss.Tab(ctx, "Sources"); err != nil || status != TabCreated {
		t.Errorf("Tab(Sources) = (%v, %v), want (created, nil)", status, err)
	}
	if !reflect.DeepEqual(fake.added, []string{"Sources"}) {
		t.Errorf("added tabs = %q, want [Sources]", fake.added)
	}
}

func TestSpreadsheet_LookupTab(t *testing.T) {
	fake := &fakeSheets{tabs: []string{"Games"}}
	ss := newTestSpreadsheet(t, fake)
	ctx := context.Background()

	if _, ok, err := ss.LookupTab(ctx, "Games"); err != nil || !ok {
		t.Errorf("LookupTab(Games) = (%v, %v), want (true, nil)", ok, err)
	}
	if _, ok, err := ss.LookupTab(ctx, "Sources"); err != nil || ok {
		t.Errorf("LookupTab(Sources) = (%v, %v), want (false, nil)", ok, err)
	}
	if len(fake.added) != 0 {
		t.Errorf("LookupTab() added tabs %q", fake.added)
	}
}

func TestSheetsTable_FindRowAndReplace(t *testing.T) {
	fake := &fakeSheets{
		tabs:   []string{"Games"},
		column: []string{"", "https://a.example", "", "https://b.example"},
	}
	ss := newTestSpreadsheet(t, fake)
	ctx := context.Background()

	table, _, err := ss.Tab(ctx, "Games")
	if err != nil {
		t.Fatalf("Tab() error = %v", err)
	}

	idx, err := table.FindRow(ctx, 10, "https://b.example")
	if err != nil {
		t.Fatalf("FindRow() error = %v", err)
	}
	if idx != 3 {
		t.Errorf("FindRow() = %d, want 3", idx)
	}

	idx, err = table.FindRow(ctx, 10, "https://missing.example")
	if err != nil || idx != NotFound {
		t.Errorf("FindRow(missing) = (%d, %v), want (NotFound, nil)", idx, err)
	}

	if err := table.ReplaceRow(ctx, 3, []string{"x"}); err != nil {
		t.Fatalf("ReplaceRow() error = %v", err)
	}
	if len(fake.updates) != 1 || !strings.HasSuffix(fake.updates[0], "!A5") {
		t.Errorf("ReplaceRow(3) should write sheet row 5, got %q", fake.updates)
	}
}

func TestSheetsTable_InsertRowAfterBlankRow(t *testing.T) {
	fake := &fakeSheets{
		tabs: []string{"Games"},
		// data rows 0 and 2 with a blank row between them
		rows: [][]string{{"a", "2026-01-01", "https://a.example"}, {}, {"b", "2026-02-01", "https://b.example"}},
	}
	ss := newTestSpreadsheet(t, fake)
	ctx := context.Background()

	table, _, err := ss.Tab(ctx, "Games")
	if err != nil {
		t.Fatalf("Tab() error = %v", err)
	}
	if err := table.InsertRow(ctx, []string{"c", "2026-03-01", "https://c.example"}); err != nil {
		t.Fatalf("InsertRow() error = %v", err)
	}

	// three data rows occupy sheet rows 2-4, so the new row is row 5
	if len(fake.updates) != 1 || !strings.HasSuffix(fake.updates[0], "!A5") {
		t.Errorf("InsertRow() wrote %q, want sheet row 5", fake.updates)
	}
}
