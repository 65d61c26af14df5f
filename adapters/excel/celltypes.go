package excel

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"phenosplit/domain/table"
)

const (
	defaultWorkbookPart  = "xl/workbook.xml"
	officeDocumentSuffix = "/officeDocument"
)

type xmlRelationships struct {
	Relationships []struct {
		ID     string `xml:"Id,attr"`
		Type   string `xml:"Type,attr"`
		Target string `xml:"Target,attr"`
	} `xml:"Relationship"`
}

type xmlWorkbookSheets struct {
	Sheets []struct {
		Attrs []xml.Attr `xml:",any,attr"`
	} `xml:"sheets>sheet"`
}

// workbookParts locates worksheet parts inside an xlsx package so their cell
// types can be streamed next to the excelize row iterator, which only exposes
// cell text.
type workbookParts struct {
	zr     *zip.ReadCloser
	files  map[string]*zip.File
	sheets map[string]string // lower-cased sheet name -> part name
}

func openWorkbookParts(filePath string) (*workbookParts, error) {
	zr, err := zip.OpenReader(filePath)
	if err != nil {
		return nil, err
	}
	p := &workbookParts{
		zr:     zr,
		files:  make(map[string]*zip.File, len(zr.File)),
		sheets: make(map[string]string),
	}
	for _, f := range zr.File {
		p.files[strings.ToLower(f.Name)] = f
	}
	if err := p.indexSheets(); err != nil {
		zr.Close()
		return nil, err
	}
	return p, nil
}

func (p *workbookParts) indexSheets() error {
	wbPart := defaultWorkbookPart
	var root xmlRelationships
	if err := p.decode("_rels/.rels", &root); err == nil {
		for _, rel := range root.Relationships {
			if strings.HasSuffix(rel.Type, officeDocumentSuffix) {
				wbPart = resolveTarget("", rel.Target)
				break
			}
		}
	}

	var rels xmlRelationships
	relsPart := path.Join(path.Dir(wbPart), "_rels", path.Base(wbPart)+".rels")
	if err := p.decode(relsPart, &rels); err != nil {
		return fmt.Errorf("failed to read %s: %w", relsPart, err)
	}
	targets := make(map[string]string, len(rels.Relationships))
	for _, rel := range rels.Relationships {
		targets[rel.ID] = resolveTarget(path.Dir(wbPart), rel.Target)
	}

	var wb xmlWorkbookSheets
	if err := p.decode(wbPart, &wb); err != nil {
		return fmt.Errorf("failed to read %s: %w", wbPart, err)
	}
	for _, sheet := range wb.Sheets {
		var name, rid string
		for _, a := range sheet.Attrs {
			switch a.Name.Local {
			case "name":
				name = a.Value
			case "id":
				rid = a.Value
			}
		}
		if target, ok := targets[rid]; ok {
			p.sheets[strings.ToLower(name)] = target
		}
	}
	return nil
}

func resolveTarget(dir, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return path.Join(dir, target)
}

func (p *workbookParts) open(part string) (io.ReadCloser, error) {
	f, ok := p.files[strings.ToLower(part)]
	if !ok {
		return nil, fmt.Errorf("package part %s not found", part)
	}
	return f.Open()
}

func (p *workbookParts) decode(part string, v interface{}) error {
	rc, err := p.open(part)
	if err != nil {
		return err
	}
	defer rc.Close()
	return xml.NewDecoder(rc).Decode(v)
}

// scanner starts a cell type stream over one worksheet
func (p *workbookParts) scanner(sheet string) (*cellTypeScanner, error) {
	part, ok := p.sheets[strings.ToLower(sheet)]
	if !ok {
		return nil, fmt.Errorf("worksheet part for sheet %s not found", sheet)
	}
	rc, err := p.open(part)
	if err != nil {
		return nil, err
	}
	return &cellTypeScanner{rc: rc, dec: xml.NewDecoder(rc)}, nil
}

func (p *workbookParts) Close() error {
	return p.zr.Close()
}

// cellTypeScanner reads the t attribute of each cell, one row element at a
// time. Rows must be requested in ascending order.
type cellTypeScanner struct {
	rc   io.ReadCloser
	dec  *xml.Decoder
	last int // number of the last row element seen
	next int // number of a row element read ahead, 0 if none
	done bool
}

// typesFor returns the cell types of row num indexed by zero-based column, or
// nil when the worksheet has no element for that row.
func (s *cellTypeScanner) typesFor(num int) ([]string, error) {
	for !s.done {
		if s.next == 0 {
			if err := s.advance(); err != nil {
				return nil, err
			}
			continue
		}
		switch {
		case s.next > num:
			return nil, nil
		case s.next < num:
			s.next = 0
			if err := s.dec.Skip(); err != nil {
				return nil, err
			}
		default:
			s.next = 0
			return s.readCells()
		}
	}
	return nil, nil
}

func (s *cellTypeScanner) advance() error {
	for {
		tok, err := s.dec.Token()
		if err == io.EOF {
			s.done = true
			return nil
		}
		if err != nil {
			return err
		}
		switch el := tok.(type) {
		case xml.StartElement:
			if el.Name.Local == "row" {
				s.last++
				if n, ok := intAttr(el, "r"); ok {
					s.last = n
				}
				s.next = s.last
				return nil
			}
		case xml.EndElement:
			if el.Name.Local == "sheetData" {
				s.done = true
				return nil
			}
		}
	}
}

func (s *cellTypeScanner) readCells() ([]string, error) {
	var types []string
	col := 0
	for {
		tok, err := s.dec.Token()
		if err != nil {
			return nil, err
		}
		switch el := tok.(type) {
		case xml.StartElement:
			if el.Name.Local == "c" {
				col++
				var t string
				for _, a := range el.Attr {
					switch a.Name.Local {
					case "r":
						if c, _, err := excelize.CellNameToCoordinates(a.Value); err == nil {
							col = c
						}
					case "t":
						t = a.Value
					}
				}
				for len(types) < col {
					types = append(types, "")
				}
				types[col-1] = t
			}
			if err := s.dec.Skip(); err != nil {
				return nil, err
			}
		case xml.EndElement:
			if el.Name.Local == "row" {
				return types, nil
			}
		}
	}
}

func (s *cellTypeScanner) Close() error {
	return s.rc.Close()
}

func intAttr(el xml.StartElement, name string) (int, bool) {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			n, err := strconv.Atoi(a.Value)
			return n, err == nil && n > 0
		}
	}
	return 0, false
}

// typedCell builds a cell from raw cell text and its stored type
func typedCell(raw, cellType string) table.Cell {
	if raw == "" {
		return table.Null()
	}
	switch cellType {
	case "b":
		return table.Bool(raw == "1" || strings.EqualFold(raw, "true"))
	case "s", "str", "inlineStr", "e", "d":
		return table.Text(raw)
	default:
		if c, ok := table.ParseNumber(raw); ok {
			return c
		}
		return table.Text(raw)
	}
}
