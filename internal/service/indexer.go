package service

import (
	"context"
	"fmt"
	"time"

	"github.com/craftmind/contextd/internal/domain"
	"github.com/google/uuid"
)

// EmbeddingClient defines the interface for generating embeddings
type EmbeddingClient interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// ChunkStore defines the persistence interface for content chunks
type ChunkStore interface {
	DeleteByContent(ctx context.Context, projectID, contentID string) error
	BulkInsert(ctx context.Context, chunks []domain.ContentChunk) error
	SearchSimilar(ctx context.Context, query ChunkQuery) ([]*ChunkMatch, error)
}

// IndexInput identifies one content item and its raw text.
type IndexInput struct {
	ProjectID   string
	ContentID   string
	ContentType domain.ContentType
	Text        string
	Metadata    map[string]any
}

// IndexResult reports what one indexing pass produced.
type IndexResult struct {
	ChunksProcessed   int
	EmbeddingsCreated int
}

// IndexerService turns one content item into embedded chunks in the store.
type IndexerService struct {
	client   EmbeddingClient
	store    ChunkStore
	chunkCfg ChunkConfig
}

// NewIndexerService creates a new IndexerService instance
func NewIndexerService(client EmbeddingClient, store ChunkStore) *IndexerService {
	return NewIndexerServiceWithConfig(client, store, DefaultChunkConfig())
}

func NewIndexerServiceWithConfig(client EmbeddingClient, store ChunkStore, chunkCfg ChunkConfig) *IndexerService {
	return &IndexerService{
		client:   client,
		store:    store,
		chunkCfg: chunkCfg,
	}
}

// IndexContent re-indexes one content item: delete prior chunks, chunk the
// text, embed every chunk, bulk-insert the new rows. Deleting first makes
// the operation idempotent under retry. If embedding or insertion fails
// the prior chunks stay deleted, so the content is temporarily
// unsearchable rather than present in a mixed old/new state.
func (s *IndexerService) IndexContent(ctx context.Context, input IndexInput) (*IndexResult, error) {
	if input.ProjectID == "" || input.ContentID == "" {
		return nil, domain.ErrMissingRequiredField
	}
	if !domain.IsValidContentType(input.ContentType) {
		return nil, domain.ErrInvalidContentType
	}

	if err := s.store.DeleteByContent(ctx, input.ProjectID, input.ContentID); err != nil {
		return nil, fmt.Errorf("failed to delete existing chunks: %w", err)
	}

	texts := ChunkText(input.Text, s.chunkCfg)
	if len(texts) == 0 {
		// Empty or whitespace-only content: the delete above is the whole
		// operation.
		return &IndexResult{}, nil
	}

	embeddings, err := s.client.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed chunks: %w", err)
	}
	if len(embeddings) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: %d chunks, %d embeddings", len(texts), len(embeddings))
	}

	createdAt := time.Now().UTC()
	chunks := make([]domain.ContentChunk, 0, len(texts))
	for i, text := range texts {
		metadata := make(map[string]any, len(input.Metadata)+2)
		for k, v := range input.Metadata {
			metadata[k] = v
		}
		metadata["chunk_length"] = len(text)
		metadata["total_chunks"] = len(texts)

		chunks = append(chunks, domain.ContentChunk{
			ID:          uuid.NewString(),
			ProjectID:   input.ProjectID,
			ContentID:   input.ContentID,
			ContentType: input.ContentType,
			ChunkText:   text,
			ChunkIndex:  i,
			Embedding:   embeddings[i],
			Metadata:    metadata,
			CreatedAt:   createdAt,
		})
	}

	if err := s.store.BulkInsert(ctx, chunks); err != nil {
		return nil, fmt.Errorf("failed to insert chunks: %w", err)
	}

	return &IndexResult{
		ChunksProcessed:   len(texts),
		EmbeddingsCreated: len(embeddings),
	}, nil
}

// DeleteContent removes all chunks for a content item. Called by the
// owning collaborator when the content itself is deleted.
func (s *IndexerService) DeleteContent(ctx context.Context, projectID, contentID string) error {
	if projectID == "" || contentID == "" {
		return domain.ErrMissingRequiredField
	}
	if err := s.store.DeleteByContent(ctx, projectID, contentID); err != nil {
		return fmt.Errorf("failed to delete chunks: %w", err)
	}
	return nil
}

// ReindexProject re-indexes every indexable content item in a project.
// Items are processed sequentially; the first failure aborts the pass and
// leaves already re-indexed items in place (each item is individually
// consistent thanks to delete-then-insert).
func (s *IndexerService) ReindexProject(ctx context.Context, source ContentSource, projectID string) (*IndexResult, error) {
	if projectID == "" {
		return nil, domain.ErrMissingRequiredField
	}

	items, err := source.ListIndexableContent(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list project content: %w", err)
	}

	total := &IndexResult{}
	for _, item := range items {
		result, err := s.IndexContent(ctx, IndexInput{
			ProjectID:   projectID,
			ContentID:   item.ContentID,
			ContentType: item.ContentType,
			Text:        item.Text,
			Metadata:    item.Metadata,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to index content %s: %w", item.ContentID, err)
		}
		total.ChunksProcessed += result.ChunksProcessed
		total.EmbeddingsCreated += result.EmbeddingsCreated
	}

	return total, nil
}
