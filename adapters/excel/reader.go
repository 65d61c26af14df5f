package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"phenosplit/domain/core"
	"phenosplit/domain/table"
	"phenosplit/internal"
	"phenosplit/internal/errors"
	"phenosplit/ports"
)

// DataReader opens xlsx and csv inputs as forward-only workbooks
type DataReader struct {
	config   ExcelConfig
	fileType string // "xlsx" or "csv"
	log      *internal.Logger
}

// NewDataReader creates a new data reader that handles both Excel and CSV files
func NewDataReader(config ExcelConfig, log *internal.Logger) *DataReader {
	if log == nil {
		log = internal.DefaultLogger
	}
	ext := strings.ToLower(filepath.Ext(config.FilePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	return &DataReader{config: config, fileType: fileType, log: log}
}

// Open starts a fresh pass over the input
func (r *DataReader) Open() (ports.Workbook, error) {
	if _, err := os.Stat(r.config.FilePath); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.InputNotFound(r.config.FilePath, core.ErrInputNotFound)
		}
		return nil, errors.Wrapf(err, "failed to stat %s", r.config.FilePath)
	}

	r.log.Debug("[DataReader] Opening %s file: %s", r.fileType, r.config.FilePath)
	switch r.fileType {
	case "csv":
		return &csvWorkbook{path: r.config.FilePath}, nil
	default:
		return r.openExcel()
	}
}

func (r *DataReader) openExcel() (ports.Workbook, error) {
	var opts excelize.Options
	if r.config.UnzipXMLSizeLimit > 0 {
		opts.UnzipXMLSizeLimit = r.config.UnzipXMLSizeLimit
	}
	f, err := excelize.OpenFile(r.config.FilePath, opts)
	if err != nil {
		return nil, errors.Codef(errors.CodeInvalidInput, err, "failed to open Excel file %s", r.config.FilePath)
	}
	parts, err := openWorkbookParts(r.config.FilePath)
	if err != nil {
		f.Close()
		return nil, errors.Codef(errors.CodeInvalidInput, err, "failed to index worksheets of %s", r.config.FilePath)
	}
	return &excelWorkbook{f: f, parts: parts}, nil
}

type excelWorkbook struct {
	f     *excelize.File
	parts *workbookParts
}

func (w *excelWorkbook) TableNames() []string {
	return w.f.GetSheetList()
}

func (w *excelWorkbook) Rows(name string) (ports.RowCursor, error) {
	rows, err := w.f.Rows(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open rows iterator for sheet %s: %w", name, err)
	}
	types, err := w.parts.scanner(name)
	if err != nil {
		rows.Close()
		return nil, err
	}
	return &excelCursor{rows: rows, types: types}, nil
}

func (w *excelWorkbook) Close() error {
	partsErr := w.parts.Close()
	if err := w.f.Close(); err != nil {
		return err
	}
	return partsErr
}

// excelCursor wraps the excelize row iterator, which streams the sheet XML as
// text, and pairs each row with the stored cell types
type excelCursor struct {
	rows     *excelize.Rows
	types    *cellTypeScanner
	num      int
	rowTypes []string
	typeErr  error
}

func (c *excelCursor) Next() bool {
	if !c.rows.Next() {
		return false
	}
	c.num++
	c.rowTypes, c.typeErr = c.types.typesFor(c.num)
	return true
}

func (c *excelCursor) Row() (table.Row, error) {
	if c.typeErr != nil {
		return nil, c.typeErr
	}
	cols, err := c.rows.Columns(excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}
	row := make(table.Row, len(cols))
	for i, v := range cols {
		var t string
		if i < len(c.rowTypes) {
			t = c.rowTypes[i]
		}
		row[i] = typedCell(v, t)
	}
	return row, nil
}

func (c *excelCursor) Err() error {
	return c.rows.Error()
}

func (c *excelCursor) Close() error {
	typesErr := c.types.Close()
	if err := c.rows.Close(); err != nil {
		return err
	}
	return typesErr
}

// csvWorkbook exposes a csv file as a single table named after the file
type csvWorkbook struct {
	path string
}

func (w *csvWorkbook) TableNames() []string {
	return []string{w.tableName()}
}

func (w *csvWorkbook) tableName() string {
	base := filepath.Base(w.path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (w *csvWorkbook) Rows(name string) (ports.RowCursor, error) {
	if name != w.tableName() {
		return nil, fmt.Errorf("%w: %s", core.ErrTableNotFound, name)
	}
	file, err := os.Open(w.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true
	return &csvCursor{file: file, reader: reader}, nil
}

func (w *csvWorkbook) Close() error {
	return nil
}

type csvCursor struct {
	file   *os.File
	reader *csv.Reader
	record []string
	err    error
}

func (c *csvCursor) Next() bool {
	if c.err != nil {
		return false
	}
	rec, err := c.reader.Read()
	if err != nil {
		if err != io.EOF {
			c.err = err
		}
		c.record = nil
		return false
	}
	c.record = rec
	return true
}

func (c *csvCursor) Row() (table.Row, error) {
	if c.record == nil {
		return nil, fmt.Errorf("no current CSV record")
	}
	return toRow(c.record), nil
}

func (c *csvCursor) Err() error {
	return c.err
}

func (c *csvCursor) Close() error {
	return c.file.Close()
}

// toRow types csv fields, which carry no stored type
func toRow(cols []string) table.Row {
	row := make(table.Row, len(cols))
	for i, v := range cols {
		row[i] = table.InferCell(v)
	}
	return row
}
