package catalog

import "strings"

// NormalizeTitle reduces a raw title to a simplified search key by dropping
// everything from the first ':' or '(' onward and trimming whitespace.
// Export titles are frequently over-specified with series or edition
// annotations ("Going Postal (Discworld, #33)") that hurt search match rates.
// The function is idempotent.
func NormalizeTitle(raw string) string {
	if i := strings.IndexAny(raw, ":("); i >= 0 {
		raw = raw[:i]
	}
	return strings.TrimSpace(raw)
}
