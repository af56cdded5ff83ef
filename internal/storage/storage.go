package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// snapshot is the on-disk form of a FileTable.
type snapshot struct {
	Header    []string   `json:"header"`
	Rows      [][]string `json:"rows"`
	UpdatedAt string     `json:"updated_at"`
}

// FileTable persists a table as a JSON snapshot in a data directory. Every
// mutation rewrites the snapshot.
type FileTable struct {
	mem  *MemoryTable
	path string
}

// OpenFile opens the table stored as <name>.json in dataDir, creating the
// directory when needed. A missing file yields an empty table.
func OpenFile(dataDir, name string) (*FileTable, error) {
	dataDir, err := expandHome(dataDir)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return openSnapshot(filepath.Join(dataDir, snapshotName(name)))
}

// LookupFile opens the table stored as <name>.json in dataDir without
// creating anything. ok is false when there is no such file.
func LookupFile(dataDir, name string) (t *FileTable, ok bool, err error) {
	dataDir, err = expandHome(dataDir)
	if err != nil {
		return nil, false, err
	}

	path := filepath.Join(dataDir, snapshotName(name))
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("checking snapshot: %w", err)
	}
	t, err = openSnapshot(path)
	if err != nil {
		return nil, false, err
	}
	return t, true, nil
}

func openSnapshot(path string) (*FileTable, error) {
	t := &FileTable{
		mem:  NewMemoryTable(nil),
		path: path,
	}
	if err := t.load(); err != nil {
		return nil, err
	}
	return t, nil
}

// expandHome expands a leading ~/ to the home directory.
func expandHome(dir string) (string, error) {
	if !strings.HasPrefix(dir, "~/") {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, dir[2:]), nil
}

// snapshotName maps a tab name to a file name
func snapshotName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == ' ' {
			return '_'
		}
		return r
	}, name)
	if name == "" {
		name = "table"
	}
	return name + ".json"
}

// Path returns the snapshot file path.
func (t *FileTable) Path() string {
	return t.path
}

func (t *FileTable) load() error {
	data, err := os.ReadFile(t.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading snapshot: %w", err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("parsing snapshot: %w", err)
	}

	t.mem.header = snap.Header
	t.mem.rows = snap.Rows
	return nil
}

func (t *FileTable) save() error {
	t.mem.mu.Lock()
	snap := snapshot{
		Header:    t.mem.header,
		Rows:      t.mem.rows,
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	t.mem.mu.Unlock()
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	// write then rename so a crash never leaves a truncated snapshot
	tmp := t.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := os.Rename(tmp, t.path); err != nil {
		return fmt.Errorf("replacing snapshot: %w", err)
	}
	return nil
}

func (t *FileTable) Header(ctx context.Context) ([]string, error) {
	return t.mem.Header(ctx)
}

func (t *FileTable) WriteHeader(ctx context.Context, header []string) error {
	if err := t.mem.WriteHeader(ctx, header); err != nil {
		return err
	}
	return t.save()
}

func (t *FileTable) FindRow(ctx context.Context, column int, value string) (int, error) {
	return t.mem.FindRow(ctx, column, value)
}

func (t *FileTable) Row(ctx context.Context, index int) ([]string, error) {
	return t.mem.Row(ctx, index)
}

func (t *FileTable) InsertRow(ctx context.Context, row []string) error {
	if err := t.mem.InsertRow(ctx, row); err != nil {
		return err
	}
	return t.save()
}

func (t *FileTable) ReplaceRow(ctx context.Context, index int, row []string) error {
	if err := t.mem.ReplaceRow(ctx, index, row); err != nil {
		return err
	}
	return t.save()
}

func (t *FileTable) ColumnValues(ctx context.Context, column int) ([]string, error) {
	return t.mem.ColumnValues(ctx, column)
}
