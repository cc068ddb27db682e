package refine

import "strings"

const continuationNote = "\n\n[This is a continuation of the previous text. Please continue refining in the same style.]\n\n"

// splitIntoChunks splits text into pieces of at most chunkSize words,
// cutting at paragraph boundaries so no paragraph is ever split. A single
// paragraph longer than chunkSize becomes its own oversized chunk.
func splitIntoChunks(text string, chunkSize int) []string {
	paragraphs := strings.Split(text, "\n\n")

	var chunks []string
	var current []string
	words := 0

	for _, p := range paragraphs {
		n := len(strings.Fields(p))
		if words+n > chunkSize && len(current) > 0 {
			chunks = append(chunks, strings.Join(current, "\n\n"))
			current = []string{p}
			words = n
			continue
		}
		current = append(current, p)
		words += n
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, "\n\n"))
	}
	return chunks
}

func wordCount(text string) int {
	return len(strings.Fields(text))
}
