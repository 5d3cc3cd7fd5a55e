package service

import (
	"context"
	"fmt"
	"time"

	"github.com/craftmind/contextd/internal/domain"
)

const (
	// DefaultSimilarityFloor is the minimum similarity a candidate must
	// meet to be considered relevant.
	DefaultSimilarityFloor = 0.7
	// DefaultRetrieveLimit caps candidates returned by one retrieval.
	DefaultRetrieveLimit = 5
)

// ChunkQuery describes one similarity search against the chunk store.
type ChunkQuery struct {
	ProjectID     string
	Embedding     []float32
	ContentTypes  []domain.ContentType
	MinSimilarity float64
	Limit         int
}

// ChunkMatch is one raw candidate from the chunk store.
type ChunkMatch struct {
	ContentID   string
	ContentType domain.ContentType
	ChunkText   string
	ChunkIndex  int
	Similarity  float64
	Metadata    map[string]any
}

// RetrievedChunk is a candidate annotated with its relevance rank.
type RetrievedChunk struct {
	ContentID     string
	ContentType   domain.ContentType
	ChunkText     string
	Similarity    float64
	Metadata      map[string]any
	RelevanceRank float64
}

// RetrieveInput represents input for the retrieval operation.
type RetrieveInput struct {
	ProjectID    string
	Query        string
	Limit        int
	ContentTypes []domain.ContentType
}

// RetrieveOutput represents output from the retrieval operation.
// Results keep the store's similarity order; RelevanceRank annotates each
// candidate but does not reorder them. Callers wanting rank order must
// sort explicitly.
type RetrieveOutput struct {
	ProjectContext *domain.ProjectContext
	Results        []*RetrievedChunk
	QueryUsed      string
	TotalResults   int
}

// ProjectContextReader reads the persisted project context, if any.
type ProjectContextReader interface {
	GetByProjectID(ctx context.Context, projectID string) (*domain.ProjectContext, error)
}

// RetrieverService embeds a query, runs similarity search, and annotates
// candidates with a heuristic relevance rank.
type RetrieverService struct {
	client       EmbeddingClient
	store        ChunkStore
	contexts     ProjectContextReader
	floor        float64
	defaultLimit int
	now          func() time.Time
}

// NewRetrieverService creates a new RetrieverService instance
func NewRetrieverService(client EmbeddingClient, store ChunkStore, contexts ProjectContextReader) *RetrieverService {
	return &RetrieverService{
		client:       client,
		store:        store,
		contexts:     contexts,
		floor:        DefaultSimilarityFloor,
		defaultLimit: DefaultRetrieveLimit,
		now:          time.Now,
	}
}

// NewRetrieverServiceWithOptions creates a RetrieverService with explicit
// similarity floor and default limit.
func NewRetrieverServiceWithOptions(client EmbeddingClient, store ChunkStore, contexts ProjectContextReader, floor float64, defaultLimit int) *RetrieverService {
	svc := NewRetrieverService(client, store, contexts)
	if floor > 0 {
		svc.floor = floor
	}
	if defaultLimit > 0 {
		svc.defaultLimit = defaultLimit
	}
	return svc
}

// Retrieve returns the chunks most similar to the query, restricted to
// the requested content types, floored at the configured similarity.
func (s *RetrieverService) Retrieve(ctx context.Context, input RetrieveInput) (*RetrieveOutput, error) {
	if input.ProjectID == "" || input.Query == "" {
		return nil, domain.ErrMissingRequiredField
	}

	contentTypes := input.ContentTypes
	if len(contentTypes) == 0 {
		contentTypes = domain.AllContentTypes()
	}
	for _, t := range contentTypes {
		if !domain.IsValidContentType(t) {
			return nil, domain.ErrInvalidContentType
		}
	}

	limit := input.Limit
	if limit <= 0 {
		limit = s.defaultLimit
	}

	embedding, err := s.client.GenerateEmbedding(ctx, input.Query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	matches, err := s.store.SearchSimilar(ctx, ChunkQuery{
		ProjectID:     input.ProjectID,
		Embedding:     embedding,
		ContentTypes:  contentTypes,
		MinSimilarity: s.floor,
		Limit:         limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search chunks: %w", err)
	}

	results := make([]*RetrievedChunk, 0, len(matches))
	for _, m := range matches {
		if m == nil {
			continue
		}
		results = append(results, &RetrievedChunk{
			ContentID:     m.ContentID,
			ContentType:   m.ContentType,
			ChunkText:     m.ChunkText,
			Similarity:    m.Similarity,
			Metadata:      m.Metadata,
			RelevanceRank: relevanceRank(m, input.Query, s.now()),
		})
	}

	var projectContext *domain.ProjectContext
	if s.contexts != nil {
		pc, err := s.contexts.GetByProjectID(ctx, input.ProjectID)
		if err != nil && err != domain.ErrProjectContextNotFound {
			return nil, fmt.Errorf("failed to load project context: %w", err)
		}
		projectContext = pc
	}

	return &RetrieveOutput{
		ProjectContext: projectContext,
		Results:        results,
		QueryUsed:      input.Query,
		TotalResults:   len(results),
	}, nil
}
