package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"phenosplit/domain/core"
	"phenosplit/internal/partition"
)

// OutputSummary describes one written table
type OutputSummary struct {
	Name        string    `json:"name"`
	Rows        int       `json:"rows"`
	Fingerprint core.Hash `json:"fingerprint"`
}

// Report is the end-of-run tally
type Report struct {
	RunID            core.RunID               `json:"run_id"`
	StartedAt        time.Time                `json:"started_at"`
	Input            string                   `json:"input"`
	Output           string                   `json:"output"`
	Labels           []string                 `json:"labels"`
	MatchStrategy    string                   `json:"match_strategy"`
	FallbackMatching bool                     `json:"fallback_matching"`
	Tables           []partition.TableOutcome `json:"tables"`
	Outputs          []OutputSummary          `json:"outputs"`

	TablesCreated      int `json:"tables_created"`
	RowsWritten        int `json:"rows_written"`
	SubtypeRowsWritten int `json:"subtype_rows_written"`
}

var newRunID = core.NewRunID

func newReport(input, output string) *Report {
	return &Report{
		RunID:     newRunID(),
		StartedAt: time.Now().UTC(),
		Input:     input,
		Output:    output,
	}
}

func (r *Report) apply(res partition.Result, outputs []*partition.Output) {
	r.Tables = res.Tables
	r.TablesCreated = res.TablesCreated
	r.RowsWritten = res.RowsWritten
	r.SubtypeRowsWritten = res.SubtypeRowsWritten
	for _, o := range outputs {
		r.Outputs = append(r.Outputs, OutputSummary{Name: o.Name, Rows: o.Rows(), Fingerprint: o.Fingerprint()})
	}
}

// Summary is the one-line terminal tally
func (r *Report) Summary() string {
	return fmt.Sprintf("Sheets written: %d, Rows written: %d", r.TablesCreated, r.RowsWritten)
}

// Skipped lists the tables that produced no outputs
func (r *Report) Skipped() []partition.TableOutcome {
	var out []partition.TableOutcome
	for _, t := range r.Tables {
		if t.Skipped {
			out = append(out, t)
		}
	}
	return out
}

// WriteJSON encodes the report with indentation
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// SaveJSON writes the report to path
func (r *Report) SaveJSON(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	if err := r.WriteJSON(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write report: %w", err)
	}
	return f.Close()
}
