// Package storage provides the tabular record store shared by the fixture
// import and the ticket scrape.
//
// A Table addresses data rows by 0-based index and supports lookup by
// column value, append and in-place replacement. Rows are never deleted.
// Backends are Google Sheets (production), PostgreSQL via gorm, a JSON
// snapshot on disk and an in-memory table used by tests and dry runs.
//
// EnsureHeader and Spreadsheet.Tab are explicit find-or-create operations:
// a missing header or tab is created, while an existing header that differs
// from the expected one is reported and left as is. CheckHeader,
// Spreadsheet.LookupTab, LookupFile and PostgresDB.LookupTable only look.
package storage
