package table

import (
	"math"
	"strconv"
	"strings"
)

// CellKind classifies what a cell holds
type CellKind uint8

const (
	CellNull CellKind = iota
	CellText
	CellNumber
	CellBool
)

// Cell is a single typed cell value
type Cell struct {
	Kind   CellKind
	Text   string  // set for CellText; original literal for CellNumber when read from text
	Number float64 // set for CellNumber
	Bool   bool    // set for CellBool
}

// Null returns an absent cell
func Null() Cell { return Cell{} }

// Text returns a text cell
func Text(s string) Cell { return Cell{Kind: CellText, Text: s} }

// Number returns a numeric cell
func Number(f float64) Cell { return Cell{Kind: CellNumber, Number: f} }

// Bool returns a boolean cell
func Bool(b bool) Cell { return Cell{Kind: CellBool, Bool: b} }

// IsNull reports whether the cell is absent
func (c Cell) IsNull() bool { return c.Kind == CellNull }

// String renders the cell as text. Null renders as "".
func (c Cell) String() string {
	switch c.Kind {
	case CellText:
		return c.Text
	case CellNumber:
		if c.Text != "" {
			return c.Text
		}
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	case CellBool:
		if c.Bool {
			return "TRUE"
		}
		return "FALSE"
	default:
		return ""
	}
}

// Value returns the cell as a plain Go value for writers (nil, string, float64 or bool)
func (c Cell) Value() interface{} {
	switch c.Kind {
	case CellText:
		return c.Text
	case CellNumber:
		return c.Number
	case CellBool:
		return c.Bool
	default:
		return nil
	}
}

// ParseNumber reads a stored numeric literal, keeping the literal as Text
func ParseNumber(raw string) (Cell, bool) {
	if !looksNumeric(raw) {
		return Cell{}, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(f, 0) {
		return Cell{}, false
	}
	return Cell{Kind: CellNumber, Number: f, Text: raw}, true
}

// InferCell types a cell from an untyped source such as csv. "" is null. Only a
// canonical decimal, one that formats back to the same literal, becomes a
// number, so "007", "1e3" and over-long digit runs stay text.
func InferCell(raw string) Cell {
	if raw == "" {
		return Null()
	}
	if c, ok := ParseNumber(raw); ok && strconv.FormatFloat(c.Number, 'f', -1, 64) == raw {
		return c
	}
	return Text(raw)
}

// looksNumeric rejects literals ParseFloat accepts but a worksheet never stores
// as a number, such as "Inf", "NaN", hex floats or padded values.
func looksNumeric(raw string) bool {
	if raw == "" || raw != strings.TrimSpace(raw) {
		return false
	}
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
		case r == '.', r == '-', r == '+', r == 'e', r == 'E':
		default:
			return false
		}
	}
	return true
}

// Row is an ordered, fixed-width sequence of cells
type Row []Cell

// At returns the cell at position i, or a null cell when the row is shorter
func (r Row) At(i int) Cell {
	if i < 0 || i >= len(r) {
		return Null()
	}
	return r[i]
}

// IsEmpty reports whether every cell is absent
func (r Row) IsEmpty() bool {
	for _, c := range r {
		if !c.IsNull() {
			return false
		}
	}
	return true
}

// Values converts the row for writers
func (r Row) Values() []interface{} {
	out := make([]interface{}, len(r))
	for i, c := range r {
		out[i] = c.Value()
	}
	return out
}

// Strings renders every cell as text
func (r Row) Strings() []string {
	out := make([]string, len(r))
	for i, c := range r {
		out[i] = c.String()
	}
	return out
}

// Header is the ordered list of trimmed column names of a table
type Header []string

// NewHeader builds a header from the first row of a table. Null cells become "".
func NewHeader(row Row) Header {
	h := make(Header, len(row))
	for i, c := range row {
		h[i] = strings.TrimSpace(c.String())
	}
	return h
}

// Index builds the lower-cased name to position map. Later duplicates win.
func (h Header) Index() ColumnIndex {
	idx := make(ColumnIndex, len(h))
	for i, name := range h {
		idx[strings.ToLower(name)] = i
	}
	return idx
}

// Row returns the header as a text row for writers
func (h Header) Row() Row {
	r := make(Row, len(h))
	for i, name := range h {
		r[i] = Text(name)
	}
	return r
}

// ColumnIndex maps lower-cased trimmed header names to positions
type ColumnIndex map[string]int

// Lookup finds a column by name, case-insensitively
func (ci ColumnIndex) Lookup(name string) (int, bool) {
	i, ok := ci[strings.ToLower(strings.TrimSpace(name))]
	return i, ok
}
