package chunker

import (
	"strconv"
	"strings"

	"studyrag/internal/domain"
)

// DefaultWindowWords is the chunk size used when none is configured.
const DefaultWindowWords = 256

// WordChunker splits text into fixed windows of whitespace-separated words without overlap.
type WordChunker struct {
	windowWords int
}

func NewWordChunker(windowWords int) *WordChunker {
	if windowWords <= 0 {
		windowWords = DefaultWindowWords
	}
	return &WordChunker{windowWords: windowWords}
}

// WindowWords returns the configured window size.
func (c *WordChunker) WindowWords() int { return c.windowWords }

func (c *WordChunker) Chunk(document domain.Document) ([]domain.Chunk, error) {
	windows := SplitWords(document.Content, c.windowWords)
	if len(windows) == 0 {
		return nil, nil
	}
	chunks := make([]domain.Chunk, 0, len(windows))
	for idx, text := range windows {
		chunks = append(chunks, domain.Chunk{
			DocumentID: document.ID,
			ChunkID:    document.ID + ":" + strconv.Itoa(idx),
			Text:       text,
			Index:      idx,
		})
	}
	return chunks, nil
}

// SplitWords groups the words of text into consecutive windows of window words.
// The last window may be shorter; empty text yields nil.
func SplitWords(text string, window int) []string {
	if window <= 0 {
		window = DefaultWindowWords
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	out := make([]string, 0, (len(words)+window-1)/window)
	for i := 0; i < len(words); i += window {
		end := i + window
		if end > len(words) {
			end = len(words)
		}
		out = append(out, strings.Join(words[i:end], " "))
	}
	return out
}
