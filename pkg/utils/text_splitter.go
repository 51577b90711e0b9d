package utils

import "strings"

// DefaultChunkWords is the chunk size used when the caller passes a non-positive maxWords.
const DefaultChunkWords = 512

// SplitWords groups the whitespace-separated words of text into chunks of at most
// maxWords words, joined by a single space. Order is preserved and chunks never overlap;
// only the last chunk may be shorter. Empty or whitespace-only text yields no chunks.
func SplitWords(text string, maxWords int) []string {
	if maxWords <= 0 {
		maxWords = DefaultChunkWords
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	chunks := make([]string, 0, (len(words)+maxWords-1)/maxWords)
	for start := 0; start < len(words); start += maxWords {
		end := start + maxWords
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
	}
	return chunks
}
