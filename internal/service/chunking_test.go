package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestChunkText tests the chunking pipeline
func TestChunkText(t *testing.T) {
	t.Run("returns nil for empty input", func(t *testing.T) {
		assert.Nil(t, ChunkText("", DefaultChunkConfig()))
		assert.Nil(t, ChunkText("   \n\t  ", DefaultChunkConfig()))
	})

	t.Run("returns single chunk for short input", func(t *testing.T) {
		chunks := ChunkText("hello world", DefaultChunkConfig())
		require.Len(t, chunks, 1)
		assert.Equal(t, "hello world", chunks[0])
	})

	t.Run("trims surrounding whitespace", func(t *testing.T) {
		chunks := ChunkText("  hello world  \n", DefaultChunkConfig())
		require.Len(t, chunks, 1)
		assert.Equal(t, "hello world", chunks[0])
	})

	t.Run("input exactly the chunk size stays one chunk", func(t *testing.T) {
		text := strings.Repeat("a", 1000)
		chunks := ChunkText(text, DefaultChunkConfig())
		require.Len(t, chunks, 1)
		assert.Equal(t, text, chunks[0])
	})

	t.Run("splits long text into overlapping chunks", func(t *testing.T) {
		// 2500 chars with no word boundaries: windows cut hard at 1000
		// and each next window starts 200 back.
		text := strings.Repeat("a", 2500)
		chunks := ChunkText(text, DefaultChunkConfig())
		require.Len(t, chunks, 3)
		assert.Len(t, chunks[0], 1000) // [0, 1000)
		assert.Len(t, chunks[1], 1000) // [800, 1800)
		assert.Len(t, chunks[2], 900)  // [1600, 2500)
	})

	t.Run("no chunk exceeds the configured size", func(t *testing.T) {
		text := strings.Repeat("lorem ipsum dolor sit amet ", 200)
		chunks := ChunkText(text, DefaultChunkConfig())
		require.NotEmpty(t, chunks)
		for _, chunk := range chunks {
			assert.LessOrEqual(t, len([]rune(chunk)), 1000)
		}
	})

	t.Run("backs off to a word boundary past the backoff floor", func(t *testing.T) {
		// A space at position 95 of a 100-rune window is past 80% of the
		// window, so the cut lands there instead of mid-word.
		text := strings.Repeat("b", 94) + " " + strings.Repeat("c", 60)
		chunks := ChunkText(text, ChunkConfig{Size: 100, Overlap: 10})
		require.GreaterOrEqual(t, len(chunks), 2)
		assert.Equal(t, strings.Repeat("b", 94), chunks[0])
	})

	t.Run("ignores word boundaries before the backoff floor", func(t *testing.T) {
		// The only space sits at 50% of the window, so the cut stays hard.
		text := strings.Repeat("b", 50) + " " + strings.Repeat("c", 100)
		chunks := ChunkText(text, ChunkConfig{Size: 100, Overlap: 10})
		require.GreaterOrEqual(t, len(chunks), 2)
		assert.Equal(t, 100, len([]rune(chunks[0])))
	})

	t.Run("chunking is deterministic", func(t *testing.T) {
		text := strings.Repeat("the quick brown fox jumps over the lazy dog ", 100)
		first := ChunkText(text, DefaultChunkConfig())
		second := ChunkText(text, DefaultChunkConfig())
		assert.Equal(t, first, second)
	})

	t.Run("every chunk is non-empty after trimming", func(t *testing.T) {
		text := strings.Repeat("word ", 1000)
		chunks := ChunkText(text, DefaultChunkConfig())
		require.NotEmpty(t, chunks)
		for _, chunk := range chunks {
			assert.NotEmpty(t, strings.TrimSpace(chunk))
		}
	})

	t.Run("terminates when overlap nearly equals size", func(t *testing.T) {
		text := strings.Repeat("x", 500)
		chunks := ChunkText(text, ChunkConfig{Size: 100, Overlap: 99})
		assert.NotEmpty(t, chunks)
	})

	t.Run("clamps overlap larger than size", func(t *testing.T) {
		text := strings.Repeat("x", 300)
		chunks := ChunkText(text, ChunkConfig{Size: 100, Overlap: 500})
		assert.NotEmpty(t, chunks)
	})

	t.Run("falls back to defaults for non-positive size", func(t *testing.T) {
		text := strings.Repeat("y", 1500)
		chunks := ChunkText(text, ChunkConfig{Size: 0, Overlap: 0})
		require.Len(t, chunks, 2)
		assert.Len(t, chunks[0], 1000)
	})

	t.Run("handles multibyte runes without splitting them", func(t *testing.T) {
		text := strings.Repeat("é", 1500)
		chunks := ChunkText(text, DefaultChunkConfig())
		require.Len(t, chunks, 2)
		assert.Equal(t, 1000, len([]rune(chunks[0])))
		for _, chunk := range chunks {
			assert.True(t, strings.HasPrefix(chunk, "é"))
		}
	})
}
