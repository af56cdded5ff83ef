// Package reconcile merges page findings into the record store.
//
// A source URL owns at most one row. Revisiting a URL updates that row in
// place: the ticket columns are overwritten and every other column keeps
// its stored value, so fixture metadata and hand-maintained columns are
// never blanked.
package reconcile

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pfrederiksen/ticket-tracker/internal/analyzer"
	"github.com/pfrederiksen/ticket-tracker/internal/record"
	"github.com/pfrederiksen/ticket-tracker/internal/storage"
)

// Outcome tells whether Reconcile inserted or updated a row.
type Outcome int

const (
	Inserted Outcome = iota
	Updated
)

func (o Outcome) String() string {
	if o == Updated {
		return "updated"
	}
	return "inserted"
}

// Result describes one reconciliation. Row is the index of the updated row,
// or storage.NotFound after an insert.
type Result struct {
	Outcome Outcome              `json:"outcome"`
	Row     int                  `json:"row"`
	Record  record.FixtureRecord `json:"record"`
	Changes []record.Change      `json:"changes,omitempty"`
}

// Engine reconciles findings against a table. Calls for the same source
// URL are serialized.
type Engine struct {
	// Now returns the time written to the last-checked column.
	Now func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates an Engine using the wall clock.
func New() *Engine {
	return &Engine{Now: time.Now}
}

// Reconcile writes finding for sourceURL into t and reports what it did.
func (e *Engine) Reconcile(ctx context.Context, t storage.Table, sourceURL string, finding analyzer.Finding, provenance string) (Result, error) {
	unlock := e.lock(sourceURL)
	defer unlock()

	now := record.Stamp(e.Now())

	idx, err := t.FindRow(ctx, record.ColSourceURL, sourceURL)
	if err != nil {
		return Result{}, fmt.Errorf("looking up %s: %w", sourceURL, err)
	}

	if idx == storage.NotFound {
		rec := record.FixtureRecord{
			TicketReleaseDate: finding.TicketDate,
			TicketSource:      provenance,
			Notes:             finding.Notes(),
			SourceURL:         sourceURL,
			LastChecked:       now,
		}
		if err := t.InsertRow(ctx, rec.ToRow()); err != nil {
			return Result{}, fmt.Errorf("inserting %s: %w", sourceURL, err)
		}
		return Result{
			Outcome: Inserted,
			Row:     idx,
			Record:  rec,
			Changes: record.DetectChanges(nil, rec),
		}, nil
	}

	row, err := t.Row(ctx, idx)
	if err != nil {
		return Result{}, fmt.Errorf("reading row %d for %s: %w", idx, sourceURL, err)
	}
	previous := record.FromRow(row)

	rec := previous
	rec.TicketReleaseDate = finding.TicketDate
	rec.TicketSource = provenance
	rec.Notes = finding.Notes()
	rec.SourceURL = sourceURL
	rec.LastChecked = now

	if err := t.ReplaceRow(ctx, idx, rec.ToRow()); err != nil {
		return Result{}, fmt.Errorf("updating row %d for %s: %w", idx, sourceURL, err)
	}
	return Result{
		Outcome: Updated,
		Row:     idx,
		Record:  rec,
		Changes: record.DetectChanges(&previous, rec),
	}, nil
}

// lock acquires the mutex for key and returns its release func.
func (e *Engine) lock(key string) func() {
	e.mu.Lock()
	if e.locks == nil {
		e.locks = make(map[string]*sync.Mutex)
	}
	l, ok := e.locks[key]
	if !ok {
		l = &sync.Mutex{}
		e.locks[key] = l
	}
	e.mu.Unlock()

	l.Lock()
	return l.Unlock
}
