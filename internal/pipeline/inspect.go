package pipeline

import (
	"phenosplit/domain/table"
	"phenosplit/internal/columns"
	"phenosplit/internal/errors"
	"phenosplit/ports"
)

// HeaderInspection is what column resolution finds in one table header
type HeaderInspection struct {
	Table      string
	Empty      bool
	Header     table.Header
	Resolution columns.Resolution
}

// Inspect reads only the header row of every table
func Inspect(source ports.WorkbookOpener) ([]HeaderInspection, error) {
	wb, err := source.Open()
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	var out []HeaderInspection
	for _, name := range wb.TableNames() {
		hi, err := inspectTable(wb, name)
		if err != nil {
			return nil, err
		}
		out = append(out, hi)
	}
	return out, nil
}

func inspectTable(wb ports.Workbook, name string) (HeaderInspection, error) {
	hi := HeaderInspection{Table: name}
	cur, err := wb.Rows(name)
	if err != nil {
		return hi, errors.SourceRead(name, err)
	}
	defer cur.Close()

	if !cur.Next() {
		if err := cur.Err(); err != nil {
			return hi, errors.SourceRead(name, err)
		}
		hi.Empty = true
		return hi, nil
	}
	row, err := cur.Row()
	if err != nil {
		return hi, errors.SourceRead(name, err)
	}
	hi.Header = table.NewHeader(row)
	hi.Resolution = columns.Resolve(hi.Header)
	return hi, nil
}
