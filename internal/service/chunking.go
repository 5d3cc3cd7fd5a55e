package service

import (
	"strings"
	"unicode"
)

// boundaryBackoffRatio is how far into a window a space must be before we
// prefer it over a hard cut. Backing off earlier than this produces
// degenerate tiny trailing chunks.
const boundaryBackoffRatio = 0.8

// ChunkConfig controls chunking for content embeddings.
type ChunkConfig struct {
	Size    int
	Overlap int
}

// DefaultChunkConfig provides the defaults used by the indexing pipeline.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		Size:    1000,
		Overlap: 200,
	}
}

// ChunkText splits text into overlapping windows of at most cfg.Size
// runes. A window that would end inside a word is cut back to the last
// space, but only when that space lies past boundaryBackoffRatio of the
// window. Each subsequent window starts cfg.Overlap runes before the
// previous boundary. Whitespace-only chunks are dropped. The walk always
// advances, so the function terminates for any input.
func ChunkText(text string, cfg ChunkConfig) []string {
	clean := strings.TrimSpace(text)
	if clean == "" {
		return nil
	}
	if cfg.Size <= 0 {
		cfg = DefaultChunkConfig()
	}
	if cfg.Overlap < 0 {
		cfg.Overlap = 0
	}
	if cfg.Overlap >= cfg.Size {
		cfg.Overlap = cfg.Size - 1
	}

	runes := []rune(clean)
	if len(runes) <= cfg.Size {
		return []string{clean}
	}

	chunks := make([]string, 0, 8)
	start := 0
	for start < len(runes) {
		end := start + cfg.Size
		if end >= len(runes) {
			end = len(runes)
		} else {
			floor := start + int(float64(cfg.Size)*boundaryBackoffRatio)
			for i := end; i > floor; i-- {
				if unicode.IsSpace(runes[i-1]) {
					end = i
					break
				}
			}
		}

		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		if end >= len(runes) {
			break
		}

		nextStart := end - cfg.Overlap
		if nextStart <= start {
			nextStart = end
		}
		start = nextStart
	}

	return chunks
}
