package storage

import (
	"context"
	"sync"
)

// MemoryTable is an in-process Table. It is safe for concurrent use.
type MemoryTable struct {
	mu     sync.Mutex
	header []string
	rows   [][]string
}

// NewMemoryTable creates a table with the given header. A nil header leaves
// the table without one.
func NewMemoryTable(header []string) *MemoryTable {
	return &MemoryTable{header: append([]string(nil), header...)}
}

func (m *MemoryTable) Header(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.header) == 0 {
		return nil, nil
	}
	return append([]string(nil), m.header...), nil
}

func (m *MemoryTable) WriteHeader(ctx context.Context, header []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.header = append([]string(nil), header...)
	return nil
}

func (m *MemoryTable) FindRow(ctx context.Context, column int, value string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, row := range m.rows {
		if column < len(row) && row[column] == value {
			return i, nil
		}
	}
	return NotFound, nil
}

func (m *MemoryTable) Row(ctx context.Context, index int) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if index < 0 || index >= len(m.rows) {
		return nil, ErrRowOutOfRange
	}
	return padRow(m.rows[index], len(m.header)), nil
}

func (m *MemoryTable) InsertRow(ctx context.Context, row []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, padRow(row, len(m.header)))
	return nil
}

func (m *MemoryTable) ReplaceRow(ctx context.Context, index int, row []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if index < 0 || index >= len(m.rows) {
		return ErrRowOutOfRange
	}
	m.rows[index] = padRow(row, len(m.header))
	return nil
}

func (m *MemoryTable) ColumnValues(ctx context.Context, column int) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	values := make([]string, len(m.rows))
	for i, row := range m.rows {
		if column < len(row) {
			values[i] = row[column]
		}
	}
	return values, nil
}

// Rows returns a copy of all data rows.
func (m *MemoryTable) Rows() [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]string, len(m.rows))
	for i, row := range m.rows {
		out[i] = append([]string(nil), row...)
	}
	return out
}

// Len returns the number of data rows.
func (m *MemoryTable) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}
