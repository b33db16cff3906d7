// Package small is scan corpus with nothing to report: one Go unit and
// one Python unit, no shared token runs.
package small

import "strings"

// SplitKV parses one "key=value" line, trimming surrounding space.
func SplitKV(line string) (string, string, bool) {
	key, value, found := strings.Cut(line, "=")
	if !found {
		return "", "", false
	}
	return strings.TrimSpace(key), strings.TrimSpace(value), true
}
