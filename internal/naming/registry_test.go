package naming

import (
	stderrors "errors"
	"strconv"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phenosplit/domain/core"
	"phenosplit/internal/errors"
)

func TestAllocate_ShortNameUnchanged(t *testing.T) {
	r := NewRegistry()
	name, err := r.Allocate("Sheet1_morpheaform")
	require.NoError(t, err)
	assert.Equal(t, "Sheet1_morpheaform", name)

	again, err := r.Allocate("Sheet1_morpheaform")
	require.NoError(t, err)
	assert.Equal(t, "Sheet1_morpheaform_2", again)
}

func TestAllocate_TruncatesToLimit(t *testing.T) {
	r := NewRegistry()
	name, err := r.Allocate("Sheet1_CD4_FOXP3_outside100_extra")
	require.NoError(t, err)
	assert.Equal(t, "Sheet1_CD4_FOXP3_outside100_ext", name)
	assert.Len(t, name, MaxNameLength)
}

func TestAllocate_CollisionAfterTruncation(t *testing.T) {
	r := NewRegistry()
	base := "LongSheetNameNumberOne_CD4_FOXP3_within100"

	first, err := r.Allocate(base)
	require.NoError(t, err)
	second, err := r.Allocate(base)
	require.NoError(t, err)
	third, err := r.Allocate("LongSheetNameNumberOne_CD4_FOXP3_outside100")
	require.NoError(t, err)

	assert.Equal(t, "LongSheetNameNumberOne_CD4_FOXP", first)
	assert.Equal(t, "LongSheetNameNumberOne_CD4_FO_2", second)
	assert.Equal(t, "LongSheetNameNumberOne_CD4_FO_3", third)
	for _, n := range []string{first, second, third} {
		assert.LessOrEqual(t, utf8.RuneCountInString(n), MaxNameLength)
	}
}

func TestAllocate_SuffixWidthGrows(t *testing.T) {
	r := NewRegistry()
	base := strings.Repeat("a", 40)
	var last string
	for i := 0; i < 11; i++ {
		n, err := r.Allocate(base)
		require.NoError(t, err)
		last = n
	}
	assert.Equal(t, strings.Repeat("a", 28)+"_11", last)
}

func TestAllocate_RuneAware(t *testing.T) {
	r := NewRegistry()
	base := strings.Repeat("é", 35)
	name, err := r.Allocate(base)
	require.NoError(t, err)
	assert.Equal(t, MaxNameLength, utf8.RuneCountInString(name))
	assert.True(t, utf8.ValidString(name))
}

func TestAllocate_Exhaustion(t *testing.T) {
	r := NewRegistry()
	_, err := r.Allocate("x")
	require.NoError(t, err)
	for i := firstSuffix; i <= lastSuffix; i++ {
		n, err := r.Allocate("x")
		require.NoError(t, err)
		require.Equal(t, "x_"+strconv.Itoa(i), n)
	}

	_, err = r.Allocate("x")
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, core.ErrNameExhausted))
	assert.Equal(t, errors.CodeNameExhausted, errors.GetCode(err))

	other, err := r.Allocate("y")
	require.NoError(t, err)
	assert.Equal(t, "y", other)
}
