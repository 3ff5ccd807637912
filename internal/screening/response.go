package screening

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// decodeObject parses the model reply as a JSON object. When the reply is not
// valid JSON as a whole, the text between the first '{' and the last '}' is
// tried instead, which recovers replies wrapped in prose or code fences.
func decodeObject(raw string) (map[string]any, error) {
	var data map[string]any

	firstErr := json.Unmarshal([]byte(strings.TrimSpace(raw)), &data)
	if firstErr == nil && data != nil {
		return data, nil
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return nil, newResponseParseError(raw, "no JSON object found", firstErr)
	}

	data = nil
	if err := json.Unmarshal([]byte(raw[start:end+1]), &data); err != nil {
		return nil, newResponseParseError(raw, "invalid JSON object", err)
	}
	if data == nil {
		return nil, newResponseParseError(raw, "JSON value is not an object", nil)
	}

	return data, nil
}

// roundScore rounds to one decimal on the exact binary value, ties to even,
// so 0.15 becomes 0.1 and 2.25 becomes 2.2.
func roundScore(v float64) float64 {
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 1, 64), 64)
	if err != nil {
		return v
	}
	return rounded
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return math.NaN()
		}
		return f
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		if v == nil {
			return ""
		}
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}

// coerceStrings turns a JSON list into its non-empty string items. A bare
// string becomes a single item list.
func coerceStrings(v any) []string {
	switch val := v.(type) {
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s := coerceString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		if s := strings.TrimSpace(val); s != "" {
			return []string{s}
		}
	}
	return []string{}
}
