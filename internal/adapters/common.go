package adapters

import "strings"

func safeLine(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

func firstNonEmpty(a, b string) string {
	if strings.TrimSpace(a) != "" {
		return a
	}
	return b
}
