package utils

import "strings"

// SplitWords cuts text into windows of chunkSize whitespace-separated words,
// each window starting chunkSize-overlap words after the previous one.
// An overlap >= chunkSize degrades to non-overlapping windows.
// Empty or whitespace-only text yields no chunks.
func SplitWords(text string, chunkSize int, overlap int) []string {
	words := strings.Fields(text)
	if len(words) == 0 || chunkSize <= 0 {
		return nil
	}

	step := chunkSize - overlap
	if step <= 0 || overlap < 0 {
		step = chunkSize
	}

	var chunks []string
	for i := 0; i < len(words); i += step {
		end := i + chunkSize
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[i:end], " "))
		if end == len(words) {
			break
		}
	}
	return chunks
}
