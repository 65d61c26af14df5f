// Package testkit provides in-memory workbook sources and writers for tests.
package testkit

import (
	"fmt"
	"strings"

	"phenosplit/domain/core"
	"phenosplit/domain/table"
	"phenosplit/ports"
)

// Sheet is an in-memory table; Rows[0] is the header
type Sheet struct {
	Name string
	Rows []table.Row
}

// MemoryWorkbook is an ordered set of sheets usable as a WorkbookOpener
type MemoryWorkbook struct {
	Sheets []Sheet

	// Opens counts calls to Open
	Opens int

	// FailTable makes Rows on that table return an error mid-stream
	FailTable string
}

// NewMemoryWorkbook creates a workbook from sheets in order
func NewMemoryWorkbook(sheets ...Sheet) *MemoryWorkbook {
	return &MemoryWorkbook{Sheets: sheets}
}

// R builds a row from plain values: nil, string, float64, int or bool
func R(values ...interface{}) table.Row {
	row := make(table.Row, len(values))
	for i, v := range values {
		switch x := v.(type) {
		case nil:
			row[i] = table.Null()
		case string:
			if x == "" {
				row[i] = table.Null()
			} else {
				row[i] = table.Text(x)
			}
		case float64:
			row[i] = table.Number(x)
		case int:
			row[i] = table.Number(float64(x))
		case bool:
			row[i] = table.Bool(x)
		case table.Cell:
			row[i] = x
		default:
			panic(fmt.Sprintf("testkit: unsupported cell value %T", v))
		}
	}
	return row
}

// Open implements ports.WorkbookOpener
func (m *MemoryWorkbook) Open() (ports.Workbook, error) {
	m.Opens++
	return &memoryHandle{wb: m}, nil
}

type memoryHandle struct {
	wb     *MemoryWorkbook
	closed bool
}

func (h *memoryHandle) TableNames() []string {
	names := make([]string, len(h.wb.Sheets))
	for i, s := range h.wb.Sheets {
		names[i] = s.Name
	}
	return names
}

func (h *memoryHandle) Rows(name string) (ports.RowCursor, error) {
	for _, s := range h.wb.Sheets {
		if s.Name == name {
			return &memoryCursor{rows: s.Rows, pos: -1, fail: name == h.wb.FailTable}, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", core.ErrTableNotFound, name)
}

func (h *memoryHandle) Close() error {
	h.closed = true
	return nil
}

type memoryCursor struct {
	rows []table.Row
	pos  int
	fail bool
	err  error
}

func (c *memoryCursor) Next() bool {
	if c.err != nil {
		return false
	}
	c.pos++
	if c.fail && c.pos == 1 {
		c.err = fmt.Errorf("simulated read failure")
		return false
	}
	return c.pos < len(c.rows)
}

func (c *memoryCursor) Row() (table.Row, error) {
	if c.pos < 0 || c.pos >= len(c.rows) {
		return nil, fmt.Errorf("cursor out of range")
	}
	// copy so callers cannot alias the fixture
	out := make(table.Row, len(c.rows[c.pos]))
	copy(out, c.rows[c.pos])
	return out, nil
}

func (c *memoryCursor) Err() error   { return c.err }
func (c *memoryCursor) Close() error { return nil }

// MemoryWriter records created tables in creation order
type MemoryWriter struct {
	Tables []*MemoryTable
	Saved  bool
	Closed bool
}

// MemoryTable is one written table
type MemoryTable struct {
	Name   string
	Header table.Header
	Rows   []table.Row
}

// NewMemoryWriter creates an empty writer
func NewMemoryWriter() *MemoryWriter {
	return &MemoryWriter{}
}

// CreateTable implements ports.WorkbookWriter. Names collide case-insensitively
// as they do in a real workbook.
func (w *MemoryWriter) CreateTable(name string, header table.Header) (ports.TableWriter, error) {
	if w.Closed {
		return nil, core.ErrWriterClosed
	}
	for _, t := range w.Tables {
		if strings.EqualFold(t.Name, name) {
			return nil, fmt.Errorf("%w: %s", core.ErrDuplicateTable, name)
		}
	}
	t := &MemoryTable{Name: name, Header: append(table.Header(nil), header...)}
	w.Tables = append(w.Tables, t)
	return t, nil
}

// Append implements ports.TableWriter
func (t *MemoryTable) Append(row table.Row) error {
	t.Rows = append(t.Rows, append(table.Row(nil), row...))
	return nil
}

func (w *MemoryWriter) Save() error {
	w.Saved = true
	return nil
}

func (w *MemoryWriter) Close() error {
	w.Closed = true
	return nil
}

// Table returns the table with the exact name, or nil
func (w *MemoryWriter) Table(name string) *MemoryTable {
	for _, t := range w.Tables {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// Names lists created tables in creation order
func (w *MemoryWriter) Names() []string {
	out := make([]string, len(w.Tables))
	for i, t := range w.Tables {
		out[i] = t.Name
	}
	return out
}
