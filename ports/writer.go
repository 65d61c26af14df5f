package ports

import (
	"phenosplit/domain/table"
)

// WorkbookWriter creates append-only output tables and persists them once
type WorkbookWriter interface {
	// CreateTable creates a new table and writes its header row
	CreateTable(name string, header table.Header) (TableWriter, error)
	// Save persists every table. Called once, at the end of a successful run.
	Save() error
	// Close releases resources; tables not saved are discarded
	Close() error
}

// TableWriter appends data rows to one output table in call order
type TableWriter interface {
	Append(row table.Row) error
}
