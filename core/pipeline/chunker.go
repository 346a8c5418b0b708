package pipeline

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// SentenceChunker creates a chunker that splits by sentences
func SentenceChunker(maxSentencesPerChunk int) ChunkFunc {
	return func(text string) ([]ChunkPiece, error) {
		if maxSentencesPerChunk <= 0 {
			return nil, fmt.Errorf("max sentences per chunk must be positive")
		}

		// Handle empty or whitespace-only text
		if strings.TrimSpace(text) == "" {
			return []ChunkPiece{}, nil
		}

		text = strings.ReplaceAll(text, "! ", "!|")
		text = strings.ReplaceAll(text, "? ", "?|")
		text = strings.ReplaceAll(text, ". ", ".|")

		var sentences []string
		for _, s := range strings.Split(text, "|") {
			s = strings.TrimSpace(s)
			if s != "" {
				sentences = append(sentences, s)
			}
		}

		var chunks []ChunkPiece
		var currentChunk []string
		chunkIdx := 0

		appendChunk := func() {
			idx := chunkIdx
			chunks = append(chunks, ChunkPiece{
				Content:    strings.Join(currentChunk, " "),
				ChunkIndex: &idx,
				Metadata:   make(map[string]interface{}),
			})
			currentChunk = nil
			chunkIdx++
		}

		for _, sentence := range sentences {
			currentChunk = append(currentChunk, sentence)

			if len(currentChunk) >= maxSentencesPerChunk {
				appendChunk()
			}
		}

		// Add remaining sentences
		if len(currentChunk) > 0 {
			appendChunk()
		}

		return chunks, nil
	}
}

// ParagraphChunker creates a chunker that splits by paragraphs
func ParagraphChunker() ChunkFunc {
	return func(text string) ([]ChunkPiece, error) {
		paragraphs := strings.Split(text, "\n\n")

		var chunks []ChunkPiece
		chunkIdx := 0

		for _, para := range paragraphs {
			para = strings.TrimSpace(para)
			if para == "" {
				continue
			}

			idx := chunkIdx
			chunks = append(chunks, ChunkPiece{
				Content:    para,
				ChunkIndex: &idx,
				Metadata:   make(map[string]interface{}),
			})
			chunkIdx++
		}

		return chunks, nil
	}
}

// DefaultChunker creates a paragraph chunker that also caps chunk length.
// Paragraphs longer than maxChars are split at sentence boundaries where
// possible, hard-split otherwise.
func DefaultChunker(maxChars int) ChunkFunc {
	return func(text string) ([]ChunkPiece, error) {
		if maxChars <= 0 {
			return nil, fmt.Errorf("max chars per chunk must be positive")
		}

		paragraphChunker := ParagraphChunker()
		paragraphs, err := paragraphChunker(text)
		if err != nil {
			return nil, err
		}

		var chunks []ChunkPiece
		chunkIdx := 0

		appendPiece := func(content string) {
			idx := chunkIdx
			chunks = append(chunks, ChunkPiece{
				Content:    content,
				ChunkIndex: &idx,
				Metadata:   make(map[string]interface{}),
			})
			chunkIdx++
		}

		for _, para := range paragraphs {
			if len(para.Content) <= maxChars {
				appendPiece(para.Content)
				continue
			}

			for _, part := range splitWithCap(para.Content, maxChars) {
				appendPiece(part)
			}
		}

		return chunks, nil
	}
}

// splitWithCap splits text into parts of at most maxChars, preferring
// sentence boundaries
func splitWithCap(text string, maxChars int) []string {
	marked := strings.ReplaceAll(text, "! ", "!|")
	marked = strings.ReplaceAll(marked, "? ", "?|")
	marked = strings.ReplaceAll(marked, ". ", ".|")

	var parts []string
	var current strings.Builder

	for _, sentence := range strings.Split(marked, "|") {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}

		// Hard-split sentences that alone exceed the cap, backing up to a
		// rune boundary so multi-byte characters stay intact
		for len(sentence) > maxChars {
			if current.Len() > 0 {
				parts = append(parts, current.String())
				current.Reset()
			}
			cut := maxChars
			for cut > 0 && !utf8.RuneStart(sentence[cut]) {
				cut--
			}
			if cut == 0 {
				// A single rune wider than the cap still has to move on
				_, cut = utf8.DecodeRuneInString(sentence)
			}
			parts = append(parts, sentence[:cut])
			sentence = sentence[cut:]
		}

		if current.Len() > 0 && current.Len()+len(sentence)+1 > maxChars {
			parts = append(parts, current.String())
			current.Reset()
		}

		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(sentence)
	}

	if current.Len() > 0 {
		parts = append(parts, current.String())
	}

	return parts
}
