package service

import (
	"context"
	"time"

	"github.com/craftmind/contextd/internal/domain"
)

// ConversationContent is one conversation gathered for analysis.
type ConversationContent struct {
	ID        string
	Title     string
	Text      string
	CreatedAt time.Time
}

// KnowledgeContent is one knowledge/document item gathered for analysis.
type KnowledgeContent struct {
	ID          string
	Title       string
	Description string
}

// PromptContent is one saved prompt gathered for analysis.
type PromptContent struct {
	ID           string
	Name         string
	CompiledText string
}

// ProjectContent is everything the engine gathers for a project before
// running context analysis.
type ProjectContent struct {
	Conversations []ConversationContent
	Knowledge     []KnowledgeContent
	Prompts       []PromptContent
}

// TotalItems returns the number of gathered content items across all types.
func (c *ProjectContent) TotalItems() int {
	return len(c.Conversations) + len(c.Knowledge) + len(c.Prompts)
}

// IndexableItem is one content item with its raw text resolved, ready to
// be pushed through the indexing pipeline.
type IndexableItem struct {
	ContentID   string
	ContentType domain.ContentType
	Text        string
	Metadata    map[string]any
}

// ContentSource yields a project's content from the surrounding CRUD
// application. The engine only reads through this interface; ownership of
// the underlying records stays with the collaborator.
type ContentSource interface {
	GatherProjectContent(ctx context.Context, projectID string) (*ProjectContent, error)
	ListIndexableContent(ctx context.Context, projectID string) ([]IndexableItem, error)
}
