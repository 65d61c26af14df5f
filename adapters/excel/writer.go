package excel

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"phenosplit/domain/core"
	"phenosplit/domain/table"
	"phenosplit/internal"
	"phenosplit/ports"
)

const defaultSheet = "Sheet1"

// Writer builds an output workbook with one StreamWriter per table and saves
// it once.
type Writer struct {
	path   string
	f      *excelize.File
	tables []*streamTable
	names  map[string]struct{} // lower-cased; sheet names are case-insensitive
	saved  bool
	closed bool
	log    *internal.Logger
}

// NewWriter creates a writer that will save to path
func NewWriter(path string, log *internal.Logger) *Writer {
	if log == nil {
		log = internal.DefaultLogger
	}
	return &Writer{
		path:  path,
		f:     excelize.NewFile(),
		names: make(map[string]struct{}),
		log:   log,
	}
}

type streamTable struct {
	name string
	sw   *excelize.StreamWriter
	next int // next 1-based row number
}

// CreateTable adds a sheet, the first one replacing the default sheet
func (w *Writer) CreateTable(name string, header table.Header) (ports.TableWriter, error) {
	if w.closed || w.saved {
		return nil, core.ErrWriterClosed
	}
	key := strings.ToLower(name)
	if _, ok := w.names[key]; ok {
		return nil, fmt.Errorf("%w: %s", core.ErrDuplicateTable, name)
	}

	if len(w.tables) == 0 {
		if err := w.f.SetSheetName(defaultSheet, name); err != nil {
			return nil, err
		}
	} else if _, err := w.f.NewSheet(name); err != nil {
		return nil, err
	}

	sw, err := w.f.NewStreamWriter(name)
	if err != nil {
		return nil, fmt.Errorf("failed to create stream writer for %s: %w", name, err)
	}
	t := &streamTable{name: name, sw: sw, next: 1}
	if err := t.Append(header.Row()); err != nil {
		return nil, err
	}
	w.names[key] = struct{}{}
	w.tables = append(w.tables, t)
	w.log.Debug("[ExcelWriter] Created sheet %s", name)
	return t, nil
}

func (t *streamTable) Append(row table.Row) error {
	cell, err := excelize.CoordinatesToCellName(1, t.next)
	if err != nil {
		return err
	}
	if err := t.sw.SetRow(cell, row.Values()); err != nil {
		return err
	}
	t.next++
	return nil
}

// Save flushes every stream and writes the workbook to disk
func (w *Writer) Save() error {
	if w.closed {
		return core.ErrWriterClosed
	}
	for _, t := range w.tables {
		if err := t.sw.Flush(); err != nil {
			return fmt.Errorf("failed to flush sheet %s: %w", t.name, err)
		}
	}
	if len(w.tables) > 0 {
		w.f.SetActiveSheet(0)
	}
	if err := w.f.SaveAs(w.path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", w.path, err)
	}
	w.saved = true
	w.log.Info("[ExcelWriter] Saved %d sheets to %s", len(w.tables), w.path)
	return nil
}

// Close releases temp files held by the stream writers
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return w.f.Close()
}
