package partition

import (
	"phenosplit/domain/core"
	"phenosplit/domain/table"
	"phenosplit/internal/errors"
	"phenosplit/internal/naming"
	"phenosplit/ports"
)

// Output is one created output table
type Output struct {
	Name   string
	tw     ports.TableWriter
	rows   int
	digest *core.Digest
}

// Append copies row to the table
func (o *Output) Append(row table.Row) error {
	if err := o.tw.Append(row); err != nil {
		return errors.OutputWrite(o.Name, err)
	}
	o.rows++
	o.digest.WriteRecord(row.Strings()...)
	return nil
}

// Rows returns the number of data rows appended
func (o *Output) Rows() int { return o.rows }

// Fingerprint hashes the rows appended so far, in order
func (o *Output) Fingerprint() core.Hash { return o.digest.Sum() }

type subtypeKey struct {
	input   string
	subtype string
}

// Sink creates output tables on demand through a shared name registry
type Sink struct {
	w        ports.WorkbookWriter
	names    *naming.Registry
	subtypes map[subtypeKey]*Output
	outputs  []*Output
}

// NewSink wraps a workbook writer
func NewSink(w ports.WorkbookWriter, names *naming.Registry) *Sink {
	if names == nil {
		names = naming.NewRegistry()
	}
	return &Sink{
		w:        w,
		names:    names,
		subtypes: make(map[subtypeKey]*Output),
	}
}

// Create allocates a unique name from base, creates the table and writes header
func (s *Sink) Create(base string, header table.Header) (*Output, error) {
	name, err := s.names.Allocate(base)
	if err != nil {
		return nil, err
	}
	tw, err := s.w.CreateTable(name, header)
	if err != nil {
		return nil, errors.OutputWrite(name, err)
	}
	out := &Output{Name: name, tw: tw, digest: core.NewDigest()}
	s.outputs = append(s.outputs, out)
	return out, nil
}

// Subtype returns the "<input>_<subtype>" table for the pair, creating it the
// first time the pair is seen; created reports whether this call made it.
func (s *Sink) Subtype(input, subtype string, header table.Header) (out *Output, created bool, err error) {
	key := subtypeKey{input: input, subtype: subtype}
	if out, ok := s.subtypes[key]; ok {
		return out, false, nil
	}
	out, err = s.Create(input+"_"+subtype, header)
	if err != nil {
		return nil, false, err
	}
	s.subtypes[key] = out
	return out, true, nil
}

// Outputs lists every created table in creation order
func (s *Sink) Outputs() []*Output {
	return s.outputs
}

// TablesCreated returns the number of created tables
func (s *Sink) TablesCreated() int {
	return len(s.outputs)
}
