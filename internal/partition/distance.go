package partition

import (
	stderrors "errors"
	"math"
	"strconv"
	"strings"

	"phenosplit/domain/table"
)

// DistanceLimit bounds the inclusive within-range window [-DistanceLimit, DistanceLimit]
const DistanceLimit = 100.0

// ParseDistance reads a distance cell. Numbers are taken as-is; text is trimmed
// and parsed as a decimal; an overflowing literal reads as ±Inf. Anything else,
// or unparsable text, is rejected.
func ParseDistance(c table.Cell) (float64, bool) {
	switch c.Kind {
	case table.CellNumber:
		return c.Number, true
	case table.CellText:
		f, err := strconv.ParseFloat(strings.TrimSpace(c.Text), 64)
		if err != nil && !(stderrors.Is(err, strconv.ErrRange) && math.IsInf(f, 0)) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Within reports whether d falls in the inclusive window. NaN is never within.
func Within(d float64) bool {
	return d >= -DistanceLimit && d <= DistanceLimit
}
