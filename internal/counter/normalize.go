package counter

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/tckz/visitor-counter/internal/store"
)

// Normalize renders a store decimal for JSON output: integral values as
// integers ("3.0" -> 3), anything else as a float.
//
// Only integer deltas are ever applied, so the float branch is not reached
// through IncrementVisitor.
func Normalize(d store.Decimal) (json.Number, error) {
	v, err := decimal.NewFromString(d.String())
	if err != nil {
		return "", fmt.Errorf("malformed number %q: %w", d, err)
	}
	if v.IsInteger() {
		return json.Number(v.BigInt().String()), nil
	}
	f := v.InexactFloat64()
	if math.IsInf(f, 0) {
		return "", fmt.Errorf("number %q out of float64 range", d)
	}
	return json.Number(strconv.FormatFloat(f, 'f', -1, 64)), nil
}
