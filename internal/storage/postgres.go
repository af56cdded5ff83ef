package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// rowModel stores one data row. Position carries the row order of a tab.
type rowModel struct {
	ID        uint           `gorm:"primaryKey"`
	Tab       string         `gorm:"size:100;not null;uniqueIndex:idx_tab_position"`
	Position  int            `gorm:"not null;uniqueIndex:idx_tab_position"`
	Cells     datatypes.JSON `gorm:"not null"`
	UpdatedAt time.Time
}

func (rowModel) TableName() string { return "fixture_rows" }

type headerModel struct {
	Tab   string         `gorm:"primaryKey;size:100"`
	Cells datatypes.JSON `gorm:"not null"`
}

func (headerModel) TableName() string { return "table_headers" }

// PostgresDB holds tabs in PostgreSQL.
type PostgresDB struct {
	db *gorm.DB
}

// OpenPostgres connects to dsn. With migrate set it also creates or updates
// the row and header tables.
func OpenPostgres(dsn string, migrate bool) (*PostgresDB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if migrate {
		if err := db.AutoMigrate(&rowModel{}, &headerModel{}); err != nil {
			return nil, fmt.Errorf("migrating tables: %w", err)
		}
	}
	return &PostgresDB{db: db}, nil
}

// Table returns the tab with the given name.
func (p *PostgresDB) Table(tab string) *PostgresTable {
	return &PostgresTable{db: p.db, tab: tab}
}

// LookupTable returns the tab with the given name without creating
// anything. ok is false when the tab has neither a header nor rows.
func (p *PostgresDB) LookupTable(ctx context.Context, tab string) (t *PostgresTable, ok bool, err error) {
	db := p.db.WithContext(ctx)
	if !db.Migrator().HasTable(&headerModel{}) || !db.Migrator().HasTable(&rowModel{}) {
		return nil, false, nil
	}

	var headers, rows int64
	if err := db.Model(&headerModel{}).Where("tab = ?", tab).Count(&headers).Error; err != nil {
		return nil, false, fmt.Errorf("looking up %q: %w", tab, err)
	}
	if err := db.Model(&rowModel{}).Where("tab = ?", tab).Count(&rows).Error; err != nil {
		return nil, false, fmt.Errorf("looking up %q: %w", tab, err)
	}
	if headers == 0 && rows == 0 {
		return nil, false, nil
	}
	return p.Table(tab), true, nil
}

// Close closes the connection pool.
func (p *PostgresDB) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// PostgresTable is one tab stored in PostgreSQL.
type PostgresTable struct {
	db  *gorm.DB
	tab string
}

func (t *PostgresTable) Header(ctx context.Context) ([]string, error) {
	var h headerModel
	err := t.db.WithContext(ctx).Where("tab = ?", t.tab).First(&h).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header of %q: %w", t.tab, err)
	}
	return decodeCells(h.Cells)
}

func (t *PostgresTable) WriteHeader(ctx context.Context, header []string) error {
	cells, err := encodeCells(header)
	if err != nil {
		return err
	}
	if err := t.db.WithContext(ctx).Save(&headerModel{Tab: t.tab, Cells: cells}).Error; err != nil {
		return fmt.Errorf("writing header of %q: %w", t.tab, err)
	}
	return nil
}

func (t *PostgresTable) FindRow(ctx context.Context, column int, value string) (int, error) {
	var rows []rowModel
	err := t.db.WithContext(ctx).
		Where("tab = ?", t.tab).
		Where(fmt.Sprintf("cells->>%d = ?", column), value).
		Order("position").
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return NotFound, fmt.Errorf("searching %q: %w", t.tab, err)
	}
	if len(rows) == 0 {
		return NotFound, nil
	}
	return rows[0].Position, nil
}

func (t *PostgresTable) Row(ctx context.Context, index int) ([]string, error) {
	var m rowModel
	err := t.db.WithContext(ctx).Where("tab = ? AND position = ?", t.tab, index).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRowOutOfRange
	}
	if err != nil {
		return nil, fmt.Errorf("reading row %d of %q: %w", index, t.tab, err)
	}
	return decodeCells(m.Cells)
}

func (t *PostgresTable) InsertRow(ctx context.Context, row []string) error {
	cells, err := encodeCells(row)
	if err != nil {
		return err
	}
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&rowModel{}).Where("tab = ?", t.tab).Count(&count).Error; err != nil {
			return fmt.Errorf("counting rows of %q: %w", t.tab, err)
		}
		m := &rowModel{Tab: t.tab, Position: int(count), Cells: cells}
		if err := tx.Create(m).Error; err != nil {
			return fmt.Errorf("inserting row into %q: %w", t.tab, err)
		}
		return nil
	})
}

func (t *PostgresTable) ReplaceRow(ctx context.Context, index int, row []string) error {
	cells, err := encodeCells(row)
	if err != nil {
		return err
	}
	res := t.db.WithContext(ctx).
		Model(&rowModel{}).
		Where("tab = ? AND position = ?", t.tab, index).
		Update("cells", cells)
	if res.Error != nil {
		return fmt.Errorf("updating row %d of %q: %w", index, t.tab, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrRowOutOfRange
	}
	return nil
}

func (t *PostgresTable) ColumnValues(ctx context.Context, column int) ([]string, error) {
	var rows []rowModel
	if err := t.db.WithContext(ctx).Where("tab = ?", t.tab).Order("position").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("reading %q: %w", t.tab, err)
	}

	values := make([]string, len(rows))
	for i, m := range rows {
		cells, err := decodeCells(m.Cells)
		if err != nil {
			return nil, err
		}
		if column < len(cells) {
			values[i] = cells[column]
		}
	}
	return values, nil
}

func encodeCells(row []string) (datatypes.JSON, error) {
	if row == nil {
		row = []string{}
	}
	data, err := json.Marshal(row)
	if err != nil {
		return nil, fmt.Errorf("encoding row: %w", err)
	}
	return datatypes.JSON(data), nil
}

func decodeCells(data datatypes.JSON) ([]string, error) {
	var cells []string
	if len(data) == 0 {
		return cells, nil
	}
	if err := json.Unmarshal(data, &cells); err != nil {
		return nil, fmt.Errorf("decoding row: %w", err)
	}
	return cells, nil
}
