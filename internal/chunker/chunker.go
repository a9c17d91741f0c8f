// Package chunker splits raw specification text into bounded chunks
// suitable for embedding.
package chunker

import "strings"

// DefaultMaxChunkChars is the chunk size used when the caller passes a
// non-positive limit. Roughly 300 tokens at 4 chars/token, which keeps
// chunks well under every supported embedding model's input window.
const DefaultMaxChunkChars = 1200

// Chunk splits documentText into chunks of at most maxChunkChars characters.
// Paragraph boundaries (blank lines) are preferred split points; a single
// paragraph longer than maxChunkChars is hard-split on character count.
// Chunking is deterministic: the same input always yields the same output.
// Empty or whitespace-only input yields an empty slice.
func Chunk(documentText string, maxChunkChars int) []string {
	if maxChunkChars <= 0 {
		maxChunkChars = DefaultMaxChunkChars
	}

	paragraphs := splitParagraphs(documentText)
	if len(paragraphs) == 0 {
		return nil
	}

	var chunks []string
	var current []string
	currentLen := 0

	flush := func() {
		if len(current) > 0 {
			chunks = append(chunks, strings.Join(current, "\n\n"))
			current = nil
			currentLen = 0
		}
	}

	for _, para := range paragraphs {
		if len(para) > maxChunkChars {
			flush()
			chunks = append(chunks, hardSplit(para, maxChunkChars)...)
			continue
		}

		// +2 for the paragraph separator.
		if currentLen > 0 && currentLen+2+len(para) > maxChunkChars {
			flush()
		}
		current = append(current, para)
		currentLen += len(para)
		if len(current) > 1 {
			currentLen += 2
		}
	}
	flush()

	return chunks
}

// splitParagraphs breaks text into trimmed, non-empty paragraphs on blank lines.
func splitParagraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var paragraphs []string
	var current []string

	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			if len(current) > 0 {
				paragraphs = append(paragraphs, strings.TrimSpace(strings.Join(current, "\n")))
				current = nil
			}
			continue
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		paragraphs = append(paragraphs, strings.TrimSpace(strings.Join(current, "\n")))
	}

	return paragraphs
}

// hardSplit cuts an oversized paragraph into maxChars-sized pieces.
// It backtracks to the last whitespace inside the window when one exists,
// so words are kept intact where possible.
func hardSplit(text string, maxChars int) []string {
	var chunks []string
	runes := []rune(text)

	for len(runes) > 0 {
		if len(runes) <= maxChars {
			chunks = append(chunks, strings.TrimSpace(string(runes)))
			break
		}

		cut := maxChars
		for i := maxChars; i > maxChars/2; i-- {
			if runes[i-1] == ' ' || runes[i-1] == '\n' || runes[i-1] == '\t' {
				cut = i
				break
			}
		}

		piece := strings.TrimSpace(string(runes[:cut]))
		if piece != "" {
			chunks = append(chunks, piece)
		}
		runes = runes[cut:]
	}

	return chunks
}
