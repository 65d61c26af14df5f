// Package pipeline runs the two passes in sequence: label discovery, then
// classification and partitioning into the output workbook.
package pipeline

import (
	"phenosplit/internal"
	"phenosplit/internal/errors"
	"phenosplit/internal/naming"
	"phenosplit/internal/partition"
	"phenosplit/internal/phenotype"
	"phenosplit/internal/subtype"
	"phenosplit/ports"
)

// Runner wires a source, a subtype map and an output writer
type Runner struct {
	source   ports.WorkbookOpener
	writer   ports.WorkbookWriter
	subtypes subtype.Map
	log      *internal.Logger

	// InputName and OutputName are recorded in the report
	InputName  string
	OutputName string
}

// NewRunner creates a runner. The caller owns writer and closes it.
func NewRunner(source ports.WorkbookOpener, writer ports.WorkbookWriter, subtypes subtype.Map, log *internal.Logger) *Runner {
	if log == nil {
		log = internal.DefaultLogger
	}
	return &Runner{source: source, writer: writer, subtypes: subtypes, log: log}
}

// DiscoverLabels runs pass 1 over a fresh pass of the source
func DiscoverLabels(source ports.WorkbookOpener, log *internal.Logger) (phenotype.Vocabulary, error) {
	wb, err := source.Open()
	if err != nil {
		return phenotype.Vocabulary{}, err
	}
	defer wb.Close()
	return phenotype.NewBuilder(phenotype.CD4FOXP3, log).Build(wb)
}

// Run executes both passes and saves the output workbook. Nothing is saved
// when either pass fails.
func (r *Runner) Run() (*Report, error) {
	report := newReport(r.InputName, r.OutputName)

	r.log.Info("[Pass1] Scanning workbook for CD4+ FOXP3+ phenotype labels")
	vocab, err := DiscoverLabels(r.source, r.log)
	if err != nil {
		return nil, errors.Wrap(err, "label discovery failed")
	}
	report.Labels = vocab.Sorted()
	r.log.Info("[Pass1] Detected %d CD4+ FOXP3+ labels", vocab.Len())
	for _, l := range report.Labels {
		r.log.Info("[Pass1]   - %s", l)
	}
	if vocab.Len() == 0 {
		r.log.Warn("[Pass1] No phenotype labels found; falling back to substring matching")
	}

	r.log.Info("[Pass2] Streaming filter and writing output")
	wb, err := r.source.Open()
	if err != nil {
		return nil, errors.Wrap(err, "reopening input for pass 2 failed")
	}
	defer wb.Close()

	sink := partition.NewSink(r.writer, naming.NewRegistry())
	classifier := partition.NewClassifier(vocab, r.subtypes, r.log)
	report.MatchStrategy = classifier.MatchStrategy()
	report.FallbackMatching = vocab.Len() == 0

	res, err := classifier.Run(wb, sink)
	if err != nil {
		return nil, errors.Wrap(err, "classification failed")
	}
	report.apply(res, sink.Outputs())

	r.log.Info("Saving output workbook: %s", r.OutputName)
	if err := r.writer.Save(); err != nil {
		return nil, errors.WithCode(errors.CodeOutputWriteError, err)
	}
	return report, nil
}
