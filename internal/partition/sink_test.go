package partition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phenosplit/domain/table"
	"phenosplit/internal/naming"
	"phenosplit/internal/testkit"
)

func TestSink_CreateWritesHeaderOnce(t *testing.T) {
	w := testkit.NewMemoryWriter()
	s := NewSink(w, naming.NewRegistry())
	header := table.Header{"Phenotype", "Distance"}

	out, err := s.Create("Sheet1_CD4_FOXP3_within100", header)
	require.NoError(t, err)
	require.NoError(t, out.Append(testkit.R("CD4/FOXP3", 5)))

	mt := w.Table("Sheet1_CD4_FOXP3_within100")
	require.NotNil(t, mt)
	assert.Equal(t, header, mt.Header)
	assert.Len(t, mt.Rows, 1)
	assert.Equal(t, 1, out.Rows())
	assert.Equal(t, 1, s.TablesCreated())
}

func TestSink_SubtypeIsLazyAndShared(t *testing.T) {
	w := testkit.NewMemoryWriter()
	s := NewSink(w, nil)
	header := table.Header{"Phenotype"}

	assert.Empty(t, w.Tables)

	a, created, err := s.Subtype("Sheet1", "nodular", header)
	require.NoError(t, err)
	assert.True(t, created)

	b, created, err := s.Subtype("Sheet1", "nodular", header)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Same(t, a, b)

	c, created, err := s.Subtype("Sheet2", "nodular", header)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotSame(t, a, c)

	assert.Equal(t, []string{"Sheet1_nodular", "Sheet2_nodular"}, w.Names())
}

func TestSink_NamesAreUniqueAcrossCalls(t *testing.T) {
	w := testkit.NewMemoryWriter()
	s := NewSink(w, naming.NewRegistry())
	header := table.Header{"Phenotype"}

	long := "AVeryLongInputSheetNameThatOverflows"
	a, err := s.Create(long+"_CD4_FOXP3_within100", header)
	require.NoError(t, err)
	b, err := s.Create(long+"_CD4_FOXP3_outside100", header)
	require.NoError(t, err)

	assert.Equal(t, "AVeryLongInputSheetNameThatOver", a.Name)
	assert.Equal(t, "AVeryLongInputSheetNameThatOv_2", b.Name)
}

func TestOutput_FingerprintTracksRows(t *testing.T) {
	w := testkit.NewMemoryWriter()
	s := NewSink(w, nil)

	a, err := s.Create("a", table.Header{"x"})
	require.NoError(t, err)
	b, err := s.Create("b", table.Header{"x"})
	require.NoError(t, err)

	require.NoError(t, a.Append(testkit.R("1")))
	require.NoError(t, b.Append(testkit.R("1")))
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())

	require.NoError(t, b.Append(testkit.R("2")))
	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
}
