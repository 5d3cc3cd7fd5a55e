package domain

import (
	"fmt"
	"time"
)

// ContentType identifies the kind of project content a chunk came from.
type ContentType string

const (
	ContentTypeConversation ContentType = "conversation"
	ContentTypeDocument     ContentType = "document"
	ContentTypePrompt       ContentType = "prompt"
)

// AllContentTypes returns every valid content type, in canonical order.
func AllContentTypes() []ContentType {
	return []ContentType{ContentTypeConversation, ContentTypeDocument, ContentTypePrompt}
}

// IsValidContentType checks if a ContentType is one of the known values.
func IsValidContentType(t ContentType) bool {
	switch t {
	case ContentTypeConversation, ContentTypeDocument, ContentTypePrompt:
		return true
	}
	return false
}

// ContentChunk is one embedded segment of a content item. Chunks for a
// given (ProjectID, ContentID) are contiguous from index 0 and are always
// replaced wholesale on re-index.
type ContentChunk struct {
	ID          string
	ProjectID   string
	ContentID   string
	ContentType ContentType
	ChunkText   string
	ChunkIndex  int
	Embedding   []float32
	Metadata    map[string]any
	CreatedAt   time.Time
}

// ValidateContentChunk validates a ContentChunk instance.
func ValidateContentChunk(c *ContentChunk) error {
	if c == nil {
		return fmt.Errorf("content chunk cannot be nil")
	}
	if c.ProjectID == "" {
		return fmt.Errorf("content chunk ProjectID is required")
	}
	if c.ContentID == "" {
		return fmt.Errorf("content chunk ContentID is required")
	}
	if !IsValidContentType(c.ContentType) {
		return fmt.Errorf("content chunk ContentType is invalid: %s", c.ContentType)
	}
	if c.ChunkText == "" {
		return fmt.Errorf("content chunk ChunkText is required")
	}
	if c.ChunkIndex < 0 {
		return fmt.Errorf("content chunk ChunkIndex cannot be negative")
	}
	if len(c.Embedding) == 0 {
		return fmt.Errorf("content chunk Embedding is required")
	}
	return nil
}
