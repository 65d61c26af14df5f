package phenotype

import (
	"sort"
	"strings"

	"phenosplit/domain/table"
	"phenosplit/internal"
	"phenosplit/internal/columns"
	"phenosplit/internal/errors"
	"phenosplit/ports"
)

// Vocabulary is the frozen set of distinct trimmed labels found in pass 1.
// The zero value is an empty vocabulary.
type Vocabulary struct {
	labels map[string]struct{}
}

// NewVocabulary builds a vocabulary from labels as given
func NewVocabulary(labels ...string) Vocabulary {
	m := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		m[l] = struct{}{}
	}
	return Vocabulary{labels: m}
}

// Contains reports exact, case-sensitive membership
func (v Vocabulary) Contains(label string) bool {
	_, ok := v.labels[label]
	return ok
}

// Len returns the number of labels
func (v Vocabulary) Len() int {
	return len(v.labels)
}

// Sorted returns the labels in ascending order
func (v Vocabulary) Sorted() []string {
	out := make([]string, 0, len(v.labels))
	for l := range v.labels {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// Label extracts the trimmed phenotype text of a row; ok is false for null or blank cells
func Label(row table.Row, col int) (string, bool) {
	c := row.At(col)
	if c.IsNull() {
		return "", false
	}
	s := strings.TrimSpace(c.String())
	return s, s != ""
}

// Builder runs pass 1
type Builder struct {
	marker DualMarker
	log    *internal.Logger
}

// NewBuilder creates a pass-1 builder for the given marker pair
func NewBuilder(marker DualMarker, log *internal.Logger) *Builder {
	if log == nil {
		log = internal.DefaultLogger
	}
	return &Builder{marker: marker, log: log}
}

// Build streams every table of wb and collects the distinct trimmed phenotype
// labels that contain both markers. Tables without a phenotype column are
// skipped. Case is preserved; labels differing only in case stay distinct.
func (b *Builder) Build(wb ports.Workbook) (Vocabulary, error) {
	labels := make(map[string]struct{})
	for _, name := range wb.TableNames() {
		if err := b.scanTable(wb, name, labels); err != nil {
			return Vocabulary{}, err
		}
	}
	return Vocabulary{labels: labels}, nil
}

func (b *Builder) scanTable(wb ports.Workbook, name string, labels map[string]struct{}) error {
	cur, err := wb.Rows(name)
	if err != nil {
		return errors.SourceRead(name, err)
	}
	defer cur.Close()

	if !cur.Next() {
		if err := cur.Err(); err != nil {
			return errors.SourceRead(name, err)
		}
		b.log.Debug("[Pass1] %s: empty table, skipped", name)
		return nil
	}
	headerRow, err := cur.Row()
	if err != nil {
		return errors.SourceRead(name, err)
	}
	phIdx, ok := columns.ResolvePhenotype(table.NewHeader(headerRow))
	if !ok {
		b.log.Debug("[Pass1] %s: no Phenotype column, skipped", name)
		return nil
	}

	before := len(labels)
	for cur.Next() {
		row, err := cur.Row()
		if err != nil {
			return errors.SourceRead(name, err)
		}
		label, ok := Label(row, phIdx)
		if !ok || !b.marker.Match(label) {
			continue
		}
		labels[label] = struct{}{}
	}
	if err := cur.Err(); err != nil {
		return errors.SourceRead(name, err)
	}
	b.log.Debug("[Pass1] %s: %d new labels", name, len(labels)-before)
	return nil
}
