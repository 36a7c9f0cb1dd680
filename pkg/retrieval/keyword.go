package retrieval

import "strings"

// keywordSearch scores each document by the share of query words that occur
// in it as substrings. Documents scoring zero are never returned.
func keywordSearch(docs []Document, query string, topK int, minScore float64) []Hit {
	words := strings.Fields(strings.ToLower(query))
	if len(words) == 0 {
		return nil
	}

	var hits []Hit
	for _, d := range docs {
		text := strings.ToLower(d.Text)
		found := 0
		for _, w := range words {
			if strings.Contains(text, w) {
				found++
			}
		}
		if found == 0 {
			continue
		}
		score := float64(found) / float64(len(words))
		if score < minScore {
			continue
		}
		hits = append(hits, Hit{Document: d, Score: score})
	}
	return rank(hits, topK)
}
