package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInferCell(t *testing.T) {
	tests := []struct {
		raw  string
		kind CellKind
	}{
		{"", CellNull},
		{"50", CellNumber},
		{"-150.25", CellNumber},
		{"1e3", CellText},
		{"50.0", CellText},
		{"007", CellText},
		{"12345678901234567890", CellText},
		{" 50", CellText},
		{"NaN", CellText},
		{"Inf", CellText},
		{"0x1p-2", CellText},
		{"CD4/FOXP3", CellText},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.kind, InferCell(tt.raw).Kind)
		})
	}
}

func TestParseNumber(t *testing.T) {
	c, ok := ParseNumber("1e3")
	assert.True(t, ok)
	assert.Equal(t, 1000.0, c.Number)
	assert.Equal(t, "1e3", c.String())

	c, ok = ParseNumber("1.2345678901234567E+19")
	assert.True(t, ok)
	assert.Equal(t, CellNumber, c.Kind)

	for _, raw := range []string{"", " 5", "NaN", "1e500", "abc"} {
		_, ok := ParseNumber(raw)
		assert.False(t, ok, raw)
	}
}

func TestCell_StringKeepsLiteral(t *testing.T) {
	assert.Equal(t, "50.0", InferCell("50.0").String())
	assert.Equal(t, "50", Number(50).String())
	assert.Equal(t, "", Null().String())
	assert.Equal(t, "TRUE", Bool(true).String())
}

func TestRow_AtAndEmpty(t *testing.T) {
	r := Row{Null(), Text("x")}
	assert.Equal(t, "x", r.At(1).String())
	assert.True(t, r.At(5).IsNull())
	assert.True(t, r.At(-1).IsNull())
	assert.False(t, r.IsEmpty())
	assert.True(t, Row{Null(), Null()}.IsEmpty())
	assert.True(t, Row{}.IsEmpty())
}

func TestHeader_IndexLastWins(t *testing.T) {
	h := NewHeader(Row{Text(" Phenotype "), Null(), Text("PHENOTYPE"), Text("Sample Name")})
	assert.Equal(t, Header{"Phenotype", "", "PHENOTYPE", "Sample Name"}, h)

	idx := h.Index()
	i, ok := idx.Lookup("phenotype")
	assert.True(t, ok)
	assert.Equal(t, 2, i)

	i, ok = idx.Lookup(" sample NAME")
	assert.True(t, ok)
	assert.Equal(t, 3, i)

	_, ok = idx.Lookup("distance")
	assert.False(t, ok)
}
