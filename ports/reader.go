package ports

import (
	"phenosplit/domain/table"
)

// WorkbookOpener opens a fresh, independent pass over a workbook.
// Every call starts again from the first table.
type WorkbookOpener interface {
	Open() (Workbook, error)
}

// Workbook provides forward-only, per-table access to an opened workbook.
// Only one RowCursor should be open at a time.
type Workbook interface {
	// TableNames lists tables in workbook order
	TableNames() []string
	// Rows opens a cursor positioned before the first row (the header) of a table
	Rows(name string) (RowCursor, error)
	Close() error
}

// RowCursor streams the rows of one table. The row returned by Row is only
// valid until the next call to Next.
type RowCursor interface {
	Next() bool
	Row() (table.Row, error)
	// Err reports any error encountered while advancing
	Err() error
	Close() error
}
