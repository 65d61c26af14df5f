// Package partition implements pass 2: it classifies each row against the
// pass-1 vocabulary and routes target rows into range and subtype tables.
package partition

import (
	"strings"

	"phenosplit/domain/table"
	"phenosplit/internal"
	"phenosplit/internal/columns"
	"phenosplit/internal/errors"
	"phenosplit/internal/phenotype"
	"phenosplit/internal/subtype"
	"phenosplit/ports"
)

const (
	withinSuffix  = "_CD4_FOXP3_within100"
	outsideSuffix = "_CD4_FOXP3_outside100"
)

// SkipReason explains why a table produced no outputs
type SkipReason string

const (
	SkipNone        SkipReason = ""
	SkipNoHeader    SkipReason = "no_header"
	SkipNoPhenotype SkipReason = "no_phenotype_column"
	SkipNoDistance  SkipReason = "no_distance_column"
)

// TableOutcome summarises pass 2 for one input table
type TableOutcome struct {
	Name                   string         `json:"name"`
	Skipped                bool           `json:"skipped"`
	SkipReason             SkipReason     `json:"skip_reason,omitempty"`
	DistanceColumn         string         `json:"distance_column,omitempty"`
	DistanceStrategy       string         `json:"distance_strategy,omitempty"`
	IgnoredDistanceColumns []string       `json:"ignored_distance_columns,omitempty"`
	SampleColumn           bool           `json:"sample_column"`
	Outputs                []string       `json:"outputs,omitempty"`
	WithinRows             int            `json:"within_rows"`
	OutsideRows            int            `json:"outside_rows"`
	SubtypeRows            map[string]int `json:"subtype_rows,omitempty"`

	// SkippedRows counts data rows excluded from every output
	SkippedRows int `json:"skipped_rows"`
}

// Result aggregates a pass-2 run
type Result struct {
	Tables             []TableOutcome
	TablesCreated      int
	RowsWritten        int
	SubtypeRowsWritten int
}

// Classifier runs pass 2 over one workbook
type Classifier struct {
	matcher  phenotype.Matcher
	subtypes subtype.Map
	log      *internal.Logger
}

// NewClassifier builds a classifier. An empty vocabulary switches matching to
// the dual-substring predicate.
func NewClassifier(vocab phenotype.Vocabulary, subtypes subtype.Map, log *internal.Logger) *Classifier {
	if log == nil {
		log = internal.DefaultLogger
	}
	return &Classifier{
		matcher:  phenotype.NewMatcher(vocab, phenotype.CD4FOXP3),
		subtypes: subtypes,
		log:      log,
	}
}

// MatchStrategy reports which phenotype rule is in effect
func (c *Classifier) MatchStrategy() string {
	return c.matcher.Strategy()
}

// Run streams every table of wb in order and routes target rows into sink.
// Only read/write failures and name exhaustion are returned as errors.
func (c *Classifier) Run(wb ports.Workbook, sink *Sink) (Result, error) {
	var res Result
	for _, name := range wb.TableNames() {
		c.log.Info("[Pass2] Processing sheet: %s", name)
		outcome, err := c.classifyTable(wb, name, sink)
		if err != nil {
			return res, err
		}
		res.Tables = append(res.Tables, outcome)
		res.RowsWritten += outcome.WithinRows + outcome.OutsideRows
		for _, n := range outcome.SubtypeRows {
			res.SubtypeRowsWritten += n
		}
	}
	res.TablesCreated = sink.TablesCreated()
	return res, nil
}

func (c *Classifier) classifyTable(wb ports.Workbook, name string, sink *Sink) (TableOutcome, error) {
	outcome := TableOutcome{Name: name}

	cur, err := wb.Rows(name)
	if err != nil {
		return outcome, errors.SourceRead(name, err)
	}
	defer cur.Close()

	if !cur.Next() {
		if err := cur.Err(); err != nil {
			return outcome, errors.SourceRead(name, err)
		}
		return c.skip(outcome, SkipNoHeader), nil
	}
	headerRow, err := cur.Row()
	if err != nil {
		return outcome, errors.SourceRead(name, err)
	}
	header := table.NewHeader(headerRow)

	cols := columns.Resolve(header)
	if !cols.HasPhenotype {
		return c.skip(outcome, SkipNoPhenotype), nil
	}
	if !cols.HasDistance {
		return c.skip(outcome, SkipNoDistance), nil
	}

	outcome.DistanceColumn = cols.Distance.Name
	outcome.DistanceStrategy = cols.Distance.Strategy
	outcome.IgnoredDistanceColumns = cols.Distance.Ignored
	outcome.SampleColumn = cols.HasSampleName
	c.log.Info("[Pass2]   Using distance column: %q (%s)", cols.Distance.Name, cols.Distance.Strategy)
	if len(cols.Distance.Ignored) > 0 {
		c.log.Warn("[Pass2]   %s: other distance candidates ignored: %s", name, strings.Join(cols.Distance.Ignored, ", "))
	}

	run := &tableRun{
		classifier: c,
		input:      name,
		header:     header,
		cols:       cols,
		sink:       sink,
		outcome:    &outcome,
	}
	if run.within, err = sink.Create(name+withinSuffix, header); err != nil {
		return outcome, err
	}
	if run.outside, err = sink.Create(name+outsideSuffix, header); err != nil {
		return outcome, err
	}
	outcome.Outputs = append(outcome.Outputs, run.within.Name, run.outside.Name)

	for cur.Next() {
		row, err := cur.Row()
		if err != nil {
			return outcome, errors.SourceRead(name, err)
		}
		routed, err := run.route(row)
		if err != nil {
			return outcome, err
		}
		if !routed {
			outcome.SkippedRows++
		}
	}
	if err := cur.Err(); err != nil {
		return outcome, errors.SourceRead(name, err)
	}

	c.log.Info("[Pass2]   %s: within=%d outside=%d skipped=%d", name, outcome.WithinRows, outcome.OutsideRows, outcome.SkippedRows)
	return outcome, nil
}

// tableRun holds the per-table state of pass 2
type tableRun struct {
	classifier *Classifier
	input      string
	header     table.Header
	cols       columns.Resolution
	sink       *Sink
	within     *Output
	outside    *Output
	outcome    *TableOutcome
}

// route writes one data row; it reports false when the row is skipped
func (r *tableRun) route(row table.Row) (bool, error) {
	if row.IsEmpty() {
		return false, nil
	}
	label, ok := phenotype.Label(row, r.cols.Phenotype)
	if !ok || !r.classifier.matcher.Match(label) {
		return false, nil
	}
	d, ok := ParseDistance(row.At(r.cols.Distance.Index))
	if !ok {
		return false, nil
	}

	if Within(d) {
		if err := r.within.Append(row); err != nil {
			return true, err
		}
		r.outcome.WithinRows++
	} else {
		if err := r.outside.Append(row); err != nil {
			return true, err
		}
		r.outcome.OutsideRows++
	}

	return true, r.routeSubtype(row)
}

// routeSubtype copies row to its sample's subtype table, if any
func (r *tableRun) routeSubtype(row table.Row) error {
	if !r.cols.HasSampleName {
		return nil
	}
	sample := row.At(r.cols.SampleName)
	if sample.IsNull() {
		return nil
	}
	st, ok := r.classifier.subtypes.Lookup(strings.TrimSpace(sample.String()))
	if !ok {
		return nil
	}
	out, created, err := r.sink.Subtype(r.input, st, r.header)
	if err != nil {
		return err
	}
	if created {
		r.outcome.Outputs = append(r.outcome.Outputs, out.Name)
		r.outcome.SubtypeRows = ensure(r.outcome.SubtypeRows)
	}
	if err := out.Append(row); err != nil {
		return err
	}
	r.outcome.SubtypeRows[st]++
	return nil
}

func ensure(m map[string]int) map[string]int {
	if m == nil {
		return make(map[string]int)
	}
	return m
}

func (c *Classifier) skip(outcome TableOutcome, reason SkipReason) TableOutcome {
	outcome.Skipped = true
	outcome.SkipReason = reason
	switch reason {
	case SkipNoHeader:
		c.log.Info("[Pass2]   Empty sheet, skipped.")
	case SkipNoPhenotype:
		c.log.Info("[Pass2]   No Phenotype column, skipping.")
	case SkipNoDistance:
		c.log.Info("[Pass2]   No distance column found, skipping sheet.")
	}
	return outcome
}
