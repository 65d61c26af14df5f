package phenotype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phenosplit/domain/table"
	"phenosplit/internal"
	"phenosplit/internal/errors"
	"phenosplit/internal/testkit"
)

func buildFrom(t *testing.T, wb *testkit.MemoryWorkbook) (Vocabulary, error) {
	t.Helper()
	h, err := wb.Open()
	require.NoError(t, err)
	defer h.Close()
	return NewBuilder(CD4FOXP3, internal.NewDiscardLogger()).Build(h)
}

func TestDualMarker_Match(t *testing.T) {
	assert.True(t, CD4FOXP3.Match("CD4/FOXP3"))
	assert.True(t, CD4FOXP3.Match("foxp3+ cd4+"))
	assert.True(t, CD4FOXP3.Match("CD8, CD4, FoxP3"))
	assert.False(t, CD4FOXP3.Match("CD4"))
	assert.False(t, CD4FOXP3.Match("FOXP3"))
}

func TestBuild_CollectsTrimmedDistinctLabels(t *testing.T) {
	wb := testkit.NewMemoryWorkbook(
		testkit.Sheet{Name: "A", Rows: []table.Row{
			testkit.R("Phenotype", "Distance"),
			testkit.R("  CD4/FOXP3 ", 10),
			testkit.R("CD4/FOXP3", 20),
			testkit.R("cd4/foxp3", 30),
			testkit.R("CD4", 40),
			testkit.R(nil, 50),
			testkit.R("   ", 60),
		}},
		testkit.Sheet{Name: "B", Rows: []table.Row{
			testkit.R("PHENOTYPE"),
			testkit.R("FOXP3+CD4+"),
		}},
	)

	vocab, err := buildFrom(t, wb)
	require.NoError(t, err)
	assert.Equal(t, []string{"CD4/FOXP3", "FOXP3+CD4+", "cd4/foxp3"}, vocab.Sorted())
	assert.True(t, vocab.Contains("CD4/FOXP3"))
	assert.False(t, vocab.Contains("  CD4/FOXP3 "))
}

func TestBuild_SkipsTablesWithoutPhenotype(t *testing.T) {
	wb := testkit.NewMemoryWorkbook(
		testkit.Sheet{Name: "Summary", Rows: []table.Row{
			testkit.R("Label", "Count"),
			testkit.R("CD4/FOXP3", 5),
		}},
		testkit.Sheet{Name: "Empty"},
	)

	vocab, err := buildFrom(t, wb)
	require.NoError(t, err)
	assert.Equal(t, 0, vocab.Len())
}

func TestBuild_NumericPhenotypeCell(t *testing.T) {
	wb := testkit.NewMemoryWorkbook(testkit.Sheet{Name: "N", Rows: []table.Row{
		testkit.R("Phenotype"),
		testkit.R(4),
	}})

	vocab, err := buildFrom(t, wb)
	require.NoError(t, err)
	assert.Equal(t, 0, vocab.Len())
}

func TestBuild_ReadErrorIsFatal(t *testing.T) {
	wb := testkit.NewMemoryWorkbook(testkit.Sheet{Name: "Bad", Rows: []table.Row{
		testkit.R("Phenotype"),
		testkit.R("CD4/FOXP3"),
	}})
	wb.FailTable = "Bad"

	_, err := buildFrom(t, wb)
	require.Error(t, err)
	assert.Equal(t, errors.CodeSourceReadError, errors.GetCode(err))
}

func TestNewMatcher(t *testing.T) {
	exact := NewMatcher(NewVocabulary("CD4/FOXP3"), CD4FOXP3)
	assert.Equal(t, "vocabulary", exact.Strategy())
	assert.True(t, exact.Match("CD4/FOXP3"))
	assert.False(t, exact.Match("cd4/foxp3"), "vocabulary membership is case-sensitive")
	assert.False(t, exact.Match("CD4/FOXP3 bright"))

	fallback := NewMatcher(Vocabulary{}, CD4FOXP3)
	assert.Equal(t, "dual-substring", fallback.Strategy())
	assert.True(t, fallback.Match("cd4/foxp3"))
	assert.False(t, fallback.Match("CD8"))
}
