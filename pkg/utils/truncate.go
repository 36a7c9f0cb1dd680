package utils

// TruncateRunes returns at most n runes of s.
func TruncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// Ellipsis truncates s to n runes and marks the cut with "...".
func Ellipsis(s string, n int) string {
	cut := TruncateRunes(s, n)
	if len(cut) == len(s) {
		return s
	}
	return cut + "..."
}
