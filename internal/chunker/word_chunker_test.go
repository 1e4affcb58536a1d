package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyrag/internal/domain"
)

func TestSplitWordsExample(t *testing.T) {
	assert.Equal(t, []string{"a b", "c d", "e"}, SplitWords("a b c d e", 2))
}

func TestSplitWordsEmpty(t *testing.T) {
	assert.Empty(t, SplitWords("", 3))
	assert.Empty(t, SplitWords(" \n\t ", 3))
}

func TestSplitWordsCoversDocument(t *testing.T) {
	doc := "one  two\nthree four\tfive six seven eight nine ten eleven"
	words := strings.Fields(doc)
	for w := 1; w <= len(words)+2; w++ {
		chunks := SplitWords(doc, w)
		require.Len(t, chunks, (len(words)+w-1)/w, "window %d", w)

		var joined []string
		for i, c := range chunks {
			cw := strings.Fields(c)
			if i < len(chunks)-1 {
				assert.Len(t, cw, w)
			} else {
				assert.LessOrEqual(t, len(cw), w)
			}
			joined = append(joined, cw...)
		}
		assert.Equal(t, words, joined)
	}
}

func TestWordChunkerChunk(t *testing.T) {
	c := NewWordChunker(2)
	chunks, err := c.Chunk(domain.Document{ID: "doc", Content: "a b c d e"})
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	assert.Equal(t, "doc:2", chunks[2].ChunkID)
	assert.Equal(t, 2, chunks[2].Index)
	assert.Equal(t, "e", chunks[2].Text)

	again, err := c.Chunk(domain.Document{ID: "doc", Content: "a b c d e"})
	require.NoError(t, err)
	assert.Equal(t, chunks, again)
}

func TestWordChunkerDefaultWindow(t *testing.T) {
	assert.Equal(t, DefaultWindowWords, NewWordChunker(0).WindowWords())
}
