package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// NotFound is returned by FindRow when no row holds the value.
const NotFound = -1

// ErrRowOutOfRange is returned when a row index does not address a data row.
var ErrRowOutOfRange = errors.New("row index out of range")

// Table is a tabular dataset addressed by 0-based data-row index. The header
// row is not part of the index space.
type Table interface {
	// FindRow returns the index of the first row whose cell in column equals
	// value, or NotFound.
	FindRow(ctx context.Context, column int, value string) (int, error)
	// Row returns the cells of the row at index.
	Row(ctx context.Context, index int) ([]string, error)
	// InsertRow appends a row after the last data row.
	InsertRow(ctx context.Context, row []string) error
	// ReplaceRow overwrites every cell of the row at index.
	ReplaceRow(ctx context.Context, index int, row []string) error
	// ColumnValues returns the cells of column for every data row.
	ColumnValues(ctx context.Context, column int) ([]string, error)
}

// HeaderTable gives access to the header row.
type HeaderTable interface {
	// Header returns the header row, or nil when there is none.
	Header(ctx context.Context) ([]string, error)
	WriteHeader(ctx context.Context, header []string) error
}

// Store is a table with a header.
type Store interface {
	Table
	HeaderTable
}

// HeaderStatus is the outcome of EnsureHeader.
type HeaderStatus int

const (
	HeaderMatched HeaderStatus = iota
	HeaderCreated
	// HeaderMismatch means a different header already exists. It is left
	// untouched for an operator to resolve.
	HeaderMismatch
	// HeaderMissing is reported by CheckHeader for a table without header.
	HeaderMissing
)

func (s HeaderStatus) String() string {
	switch s {
	case HeaderMatched:
		return "matched"
	case HeaderCreated:
		return "created"
	case HeaderMismatch:
		return "mismatch"
	case HeaderMissing:
		return "missing"
	default:
		return fmt.Sprintf("HeaderStatus(%d)", int(s))
	}
}

// CheckHeader compares the header of t with header without writing.
func CheckHeader(ctx context.Context, t HeaderTable, header []string) (HeaderStatus, error) {
	existing, err := t.Header(ctx)
	if err != nil {
		return HeaderMatched, fmt.Errorf("reading header: %w", err)
	}

	existing = trimTrailingEmpty(existing)
	switch {
	case len(existing) == 0:
		return HeaderMissing, nil
	case !equalCells(existing, header):
		return HeaderMismatch, nil
	default:
		return HeaderMatched, nil
	}
}

// EnsureHeader writes header when the table has none. An existing header is
// never rewritten.
func EnsureHeader(ctx context.Context, t HeaderTable, header []string) (HeaderStatus, error) {
	status, err := CheckHeader(ctx, t, header)
	if err != nil || status != HeaderMissing {
		return status, err
	}
	if err := t.WriteHeader(ctx, header); err != nil {
		return HeaderCreated, fmt.Errorf("writing header: %w", err)
	}
	return HeaderCreated, nil
}

// SourceURLs returns the non-empty cells of column, in table order.
func SourceURLs(ctx context.Context, t Table, column int) ([]string, error) {
	values, err := t.ColumnValues(ctx, column)
	if err != nil {
		return nil, fmt.Errorf("reading sources: %w", err)
	}

	urls := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			urls = append(urls, v)
		}
	}
	return urls, nil
}

// Clone copies every row of t into a MemoryTable with the given header.
func Clone(ctx context.Context, t Table, header []string) (*MemoryTable, error) {
	columns := make([][]string, len(header))
	rows := 0
	for i := range header {
		values, err := t.ColumnValues(ctx, i)
		if err != nil {
			return nil, fmt.Errorf("reading column %d: %w", i, err)
		}
		columns[i] = values
		if len(values) > rows {
			rows = len(values)
		}
	}

	mem := NewMemoryTable(header)
	for r := 0; r < rows; r++ {
		row := make([]string, len(header))
		for c := range header {
			if r < len(columns[c]) {
				row[c] = columns[c][r]
			}
		}
		mem.rows = append(mem.rows, row)
	}
	return mem, nil
}

func trimTrailingEmpty(cells []string) []string {
	end := len(cells)
	for end > 0 && strings.TrimSpace(cells[end-1]) == "" {
		end--
	}
	return cells[:end]
}

func equalCells(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if strings.TrimSpace(a[i]) != b[i] {
			return false
		}
	}
	return true
}

// padRow returns a copy of row with at least n cells.
func padRow(row []string, n int) []string {
	if len(row) > n {
		n = len(row)
	}
	out := make([]string, n)
	copy(out, row)
	return out
}
