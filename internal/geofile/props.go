package geofile

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// GeoJSON properties arrive as untyped interface values; these helpers
// coerce them without being picky about how the producer encoded numbers.

// PropString returns a property as a string, or "" when absent.
func PropString(props map[string]interface{}, key string) string {
	v, ok := props[key]
	if !ok || v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	case float64:
		// Integral IDs sometimes arrive as JSON numbers.
		if s == float64(int64(s)) {
			return strconv.FormatInt(int64(s), 10)
		}
		return strconv.FormatFloat(s, 'f', -1, 64)
	case json.Number:
		return s.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// PropFloat returns a property as a float64. ok is false when the property
// is absent, null, or not numeric.
func PropFloat(props map[string]interface{}, key string) (float64, bool) {
	v, present := props[key]
	if !present || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// PropInt returns a property as an int, or 0 when absent or non-numeric.
func PropInt(props map[string]interface{}, key string) int {
	f, ok := PropFloat(props, key)
	if !ok {
		return 0
	}
	return int(f)
}
