package utils

import "strings"

// TruncateForLog flattens s onto one line and cuts it to limit characters,
// appending an ellipsis when something was dropped. Prompts and model output
// span many lines, which breaks console log output.
func TruncateForLog(s string, limit int) string {
	if limit <= 0 {
		return ""
	}

	s = strings.Join(strings.Fields(s), " ")

	cut := Truncate(s, limit)
	if len(cut) == len(s) {
		return s
	}
	return cut + "..."
}
