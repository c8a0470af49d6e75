package util

import (
	"encoding/json"
	"math"
	"slices"
	"strconv"
	"strings"
)

// NumericFields lists the inventory form fields the backend stores as numbers.
var NumericFields = []string{
	"carat",
	"price",
	"pricePerCarat",
	"discount",
	"depth",
	"table",
	"length",
	"width",
	"height",
	"ratio",
	"crownAngle",
	"crownHeight",
	"pavilionAngle",
	"pavilionDepth",
}

func IsNumericField(name string) bool {
	return slices.Contains(NumericFields, name)
}

// CoerceNumeric prepares a user-entered form for submission. Numeric fields are
// parsed into float64; empty or unparsable numeric values are dropped from the
// payload. Other fields pass through, strings trimmed.
func CoerceNumeric(form map[string]any) map[string]any {
	out := make(map[string]any, len(form))
	for k, v := range form {
		if !IsNumericField(k) {
			if s, ok := v.(string); ok {
				v = strings.TrimSpace(s)
			}
			out[k] = v
			continue
		}
		if f, ok := toFloat(v); ok {
			out[k] = f
		}
	}
	return out
}

func toFloat(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// StringForm widens a string form (CLI flags, url-encoded bodies) for CoerceNumeric.
func StringForm(in map[string]string) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
