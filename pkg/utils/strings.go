package utils

import "strings"

// SplitNonEmpty splits s on sep, trims every part and drops blank ones.
func SplitNonEmpty(s, sep string) []string {
	var result []string

	for _, part := range strings.Split(s, sep) {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}

	return result
}
