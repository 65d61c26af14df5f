package pipeline

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phenosplit/domain/core"
	"phenosplit/domain/table"
	"phenosplit/internal"
	"phenosplit/internal/errors"
	"phenosplit/internal/partition"
	"phenosplit/internal/subtype"
	"phenosplit/internal/testkit"
)

func scenario() *testkit.MemoryWorkbook {
	return testkit.NewMemoryWorkbook(
		testkit.Sheet{Name: "Sheet1", Rows: []table.Row{
			testkit.R("Phenotype", "Distance to edge (micron)", "Sample Name"),
			testkit.R("CD4/FOXP3", 50, "8F_morph"),
			testkit.R("CD4/FOXP3", -150, "9A_nod"),
			testkit.R("CD8", 10, "8F_morph"),
		}},
		testkit.Sheet{Name: "Notes", Rows: []table.Row{
			testkit.R("Comment"),
			testkit.R("CD4/FOXP3 looks odd"),
		}},
	)
}

func run(t *testing.T, wb *testkit.MemoryWorkbook) (*Report, *testkit.MemoryWriter, error) {
	t.Helper()
	w := testkit.NewMemoryWriter()
	r := NewRunner(wb, w, subtype.Default(), internal.NewDiscardLogger())
	r.InputName, r.OutputName = "in.xlsx", "out.xlsx"
	report, err := r.Run()
	return report, w, err
}

func TestRun_Scenario(t *testing.T) {
	wb := scenario()
	report, w, err := run(t, wb)
	require.NoError(t, err)

	assert.Equal(t, 2, wb.Opens, "pass 2 must re-open the source")
	assert.True(t, w.Saved)
	assert.Equal(t, []string{"CD4/FOXP3"}, report.Labels)
	assert.Equal(t, "vocabulary", report.MatchStrategy)
	assert.False(t, report.FallbackMatching)

	assert.Len(t, w.Table("Sheet1_CD4_FOXP3_within100").Rows, 1)
	assert.Len(t, w.Table("Sheet1_CD4_FOXP3_outside100").Rows, 1)
	assert.Len(t, w.Table("Sheet1_morpheaform").Rows, 1)
	assert.Nil(t, w.Table("Notes_CD4_FOXP3_within100"))

	assert.Equal(t, 4, report.TablesCreated)
	assert.Equal(t, 2, report.RowsWritten)
	assert.Equal(t, "Sheets written: 4, Rows written: 2", report.Summary())

	skipped := report.Skipped()
	require.Len(t, skipped, 1)
	assert.Equal(t, "Notes", skipped[0].Name)
	assert.Equal(t, partition.SkipNoPhenotype, skipped[0].SkipReason)
	assert.False(t, report.RunID.String() == "")
}

func TestRun_Idempotent(t *testing.T) {
	first, w1, err := run(t, scenario())
	require.NoError(t, err)
	second, w2, err := run(t, scenario())
	require.NoError(t, err)

	assert.Equal(t, w1.Names(), w2.Names())
	for _, mt := range w1.Tables {
		assert.Equal(t, mt.Rows, w2.Table(mt.Name).Rows, mt.Name)
	}
	require.Equal(t, len(first.Outputs), len(second.Outputs))
	for i := range first.Outputs {
		assert.Equal(t, first.Outputs[i], second.Outputs[i])
	}
	assert.NotEqual(t, first.RunID, second.RunID)
}

func TestRun_FallbackWhenNoLabels(t *testing.T) {
	report, w, err := run(t, testkit.NewMemoryWorkbook(testkit.Sheet{Name: "S", Rows: []table.Row{
		testkit.R("Phenotype", "Distance"),
		testkit.R("CD8", 5),
	}}))
	require.NoError(t, err)

	assert.Empty(t, report.Labels)
	assert.True(t, report.FallbackMatching)
	assert.Equal(t, "dual-substring", report.MatchStrategy)
	assert.Equal(t, []string{"S_CD4_FOXP3_within100", "S_CD4_FOXP3_outside100"}, w.Names())
}

func TestRun_CollidingTableNames(t *testing.T) {
	prefix := strings.Repeat("P", 25)
	_, w, err := run(t, testkit.NewMemoryWorkbook(
		testkit.Sheet{Name: prefix + "_a", Rows: []table.Row{testkit.R("Phenotype", "Distance")}},
		testkit.Sheet{Name: prefix + "_b", Rows: []table.Row{testkit.R("Phenotype", "Distance")}},
	))
	require.NoError(t, err)

	assert.Equal(t, []string{
		prefix + "_a_CD4",
		prefix + "_a_C_2",
		prefix + "_b_CD4",
		prefix + "_b_C_2",
	}, w.Names())
}

func TestRun_NameExhaustionIsFatal(t *testing.T) {
	prefix := strings.Repeat("N", 31)
	var sheets []testkit.Sheet
	for i := 0; i < 500; i++ {
		sheets = append(sheets, testkit.Sheet{
			Name: fmt.Sprintf("%s%03d", prefix, i),
			Rows: []table.Row{testkit.R("Phenotype", "Distance")},
		})
	}

	_, w, err := run(t, testkit.NewMemoryWorkbook(sheets...))
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, core.ErrNameExhausted))
	assert.Equal(t, errors.CodeNameExhausted, errors.GetCode(err))
	assert.False(t, w.Saved)
}

func TestRun_ReadFailureNotSaved(t *testing.T) {
	wb := scenario()
	wb.FailTable = "Sheet1"

	_, w, err := run(t, wb)
	require.Error(t, err)
	assert.Equal(t, errors.CodeSourceReadError, errors.GetCode(err))
	assert.False(t, w.Saved)
}

func TestInspect(t *testing.T) {
	found, err := Inspect(testkit.NewMemoryWorkbook(
		testkit.Sheet{Name: "Empty"},
		scenario().Sheets[0],
	))
	require.NoError(t, err)
	require.Len(t, found, 2)

	assert.True(t, found[0].Empty)
	assert.Equal(t, "Distance to edge (micron)", found[1].Resolution.Distance.Name)
	assert.True(t, found[1].Resolution.HasSampleName)
}
