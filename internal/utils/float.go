package utils

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ToFloat64 converts numeric values, json.Number and numeric strings to float64.
// Returns the converted value and true if successful, or 0 and false if conversion fails.
func ToFloat64(v interface{}) (float64, bool) {
	if v == nil {
		return 0, false
	}

	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int8:
		return float64(val), true
	case int16:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint:
		return float64(val), true
	case uint8:
		return float64(val), true
	case uint16:
		return float64(val), true
	case uint32:
		return float64(val), true
	case uint64:
		return float64(val), true
	case json.Number:
		f, err := val.Float64()
		return f, err == nil
	case string:
		// Spreadsheet exports often carry thousands separators
		f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(val), ",", ""), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// ParseValues converts every element of values to float64. It fails on the
// first element that is not numeric.
func ParseValues(values []interface{}) ([]float64, error) {
	result := make([]float64, len(values))
	for i, v := range values {
		f, ok := ToFloat64(v)
		if !ok {
			return nil, fmt.Errorf("value at index %d is not numeric: %v", i, v)
		}
		result[i] = f
	}
	return result, nil
}
