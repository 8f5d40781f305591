// Package strings holds small string-slice helpers.
package strings

import (
	"strings"
)

// NormalizeSet lowercases and trims each value, drops empties and keeps the
// first occurrence of each. Order is preserved.
//
//	NormalizeSet([]string{" Admin ", "user", "ADMIN", ""}) // []string{"admin", "user"}
func NormalizeSet(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
