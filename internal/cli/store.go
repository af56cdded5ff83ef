package cli

import (
	"context"
	"fmt"

	"google.golang.org/api/option"

	"github.com/pfrederiksen/ticket-tracker/internal/config"
	"github.com/pfrederiksen/ticket-tracker/internal/logger"
	"github.com/pfrederiksen/ticket-tracker/internal/storage"
)

// sourcesHeader is written to a sources tab that does not exist yet.
var sourcesHeader = []string{"URL"}

// backend opens tabs of the configured store. Connections are made on
// first use and shared between tabs. A dry-run backend never writes: tabs
// are read into memory and missing ones start out empty.
type backend struct {
	cfg    *config.Config
	log    *logger.Logger
	dryRun bool

	sheet *storage.Spreadsheet
	db    *storage.PostgresDB
}

func newBackend(cfg *config.Config, log *logger.Logger, dryRun bool) *backend {
	return &backend{cfg: cfg, log: log, dryRun: dryRun}
}

// open returns the named tab and makes sure it has a header. An existing
// header that differs from header is reported and left as it is.
func (b *backend) open(ctx context.Context, name string, header []string) (storage.Store, error) {
	if b.dryRun {
		return b.openCopy(ctx, name, header)
	}

	t, err := b.table(ctx, name)
	if err != nil {
		return nil, err
	}

	status, err := storage.EnsureHeader(ctx, t, header)
	if err != nil {
		return nil, fmt.Errorf("preparing %q: %w", name, err)
	}
	b.logHeader(name, status, header)
	return t, nil
}

// openCopy reads the named tab into memory without creating the tab or
// its header.
func (b *backend) openCopy(ctx context.Context, name string, header []string) (storage.Store, error) {
	t, ok, err := b.lookup(ctx, name)
	if err != nil {
		return nil, err
	}
	if !ok {
		b.log.Info("Tab does not exist; using an empty copy", logger.Fields{"tab": name})
		return storage.NewMemoryTable(header), nil
	}

	status, err := storage.CheckHeader(ctx, t, header)
	if err != nil {
		return nil, fmt.Errorf("checking %q: %w", name, err)
	}
	b.logHeader(name, status, header)

	mem, err := storage.Clone(ctx, t, header)
	if err != nil {
		return nil, fmt.Errorf("copying %q: %w", name, err)
	}
	return mem, nil
}

func (b *backend) logHeader(name string, status storage.HeaderStatus, header []string) {
	switch status {
	case storage.HeaderCreated:
		b.log.Info("Header written", logger.Fields{"tab": name})
	case storage.HeaderMissing:
		b.log.Info("Header missing; not written in dry run", logger.Fields{"tab": name})
	case storage.HeaderMismatch:
		b.log.Warn("Header differs from the expected columns; leaving it unchanged", logger.Fields{"tab": name, "expected": header})
	}
}

func (b *backend) spreadsheet(ctx context.Context) (*storage.Spreadsheet, error) {
	if b.sheet == nil {
		ss, err := storage.NewSpreadsheet(ctx, b.cfg.SheetID, option.WithCredentialsFile(b.cfg.ServiceAccountFile))
		if err != nil {
			return nil, fmt.Errorf("opening spreadsheet: %w", err)
		}
		b.sheet = ss
	}
	return b.sheet, nil
}

func (b *backend) database() (*storage.PostgresDB, error) {
	if b.db == nil {
		db, err := storage.OpenPostgres(b.cfg.DatabaseURL, !b.dryRun)
		if err != nil {
			return nil, err
		}
		b.db = db
	}
	return b.db, nil
}

// table returns the named tab, creating it where the backend needs that.
func (b *backend) table(ctx context.Context, name string) (storage.Store, error) {
	switch b.cfg.StoreBackend {
	case config.BackendSheets:
		ss, err := b.spreadsheet(ctx)
		if err != nil {
			return nil, err
		}
		t, status, err := ss.Tab(ctx, name)
		if err != nil {
			return nil, err
		}
		if status == storage.TabCreated {
			b.log.Info("Tab created", logger.Fields{"tab": name})
		}
		return t, nil

	case config.BackendPostgres:
		db, err := b.database()
		if err != nil {
			return nil, err
		}
		return db.Table(name), nil

	case config.BackendFile:
		t, err := storage.OpenFile(b.cfg.DataDir, name)
		if err != nil {
			return nil, err
		}
		return t, nil

	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownBackend, b.cfg.StoreBackend)
	}
}

// lookup returns the named tab if it exists.
func (b *backend) lookup(ctx context.Context, name string) (storage.Store, bool, error) {
	switch b.cfg.StoreBackend {
	case config.BackendSheets:
		ss, err := b.spreadsheet(ctx)
		if err != nil {
			return nil, false, err
		}
		t, ok, err := ss.LookupTab(ctx, name)
		if err != nil || !ok {
			return nil, false, err
		}
		return t, true, nil

	case config.BackendPostgres:
		db, err := b.database()
		if err != nil {
			return nil, false, err
		}
		t, ok, err := db.LookupTable(ctx, name)
		if err != nil || !ok {
			return nil, false, err
		}
		return t, true, nil

	case config.BackendFile:
		t, ok, err := storage.LookupFile(b.cfg.DataDir, name)
		if err != nil || !ok {
			return nil, false, err
		}
		return t, true, nil

	default:
		return nil, false, fmt.Errorf("%w: %q", config.ErrUnknownBackend, b.cfg.StoreBackend)
	}
}

// sourceURLs reads the source list from the named tab.
func (b *backend) sourceURLs(ctx context.Context, name string) ([]string, error) {
	t, err := b.open(ctx, name, sourcesHeader)
	if err != nil {
		return nil, err
	}
	urls, err := storage.SourceURLs(ctx, t, 0)
	if err != nil {
		return nil, err
	}
	if len(urls) == 0 {
		b.log.Warn("Source list is empty", logger.Fields{"tab": name})
	}
	return urls, nil
}

// Close releases database connections.
func (b *backend) Close() {
	if b.db != nil {
		if err := b.db.Close(); err != nil {
			b.log.Warn("Closing database failed", logger.Fields{"error": err.Error()})
		}
	}
}
