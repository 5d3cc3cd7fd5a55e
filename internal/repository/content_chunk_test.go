//go:build integration

package repository

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/craftmind/contextd/internal/domain"
	"github.com/craftmind/contextd/internal/service"
	"github.com/craftmind/contextd/internal/testutil"
)

// axisEmbedding returns a unit vector along one axis so cosine
// similarities in tests are exact.
func axisEmbedding(axis int) []float32 {
	v := make([]float32, 1536)
	v[axis] = 1
	return v
}

// mixedEmbedding returns a unit vector in the plane of the first two
// axes with the given components.
func mixedEmbedding(a, b float32) []float32 {
	v := make([]float32, 1536)
	norm := float32(math.Sqrt(float64(a*a + b*b)))
	v[0] = a / norm
	v[1] = b / norm
	return v
}

func newChunk(projectID, contentID string, contentType domain.ContentType, index int, text string, embedding []float32) domain.ContentChunk {
	return domain.ContentChunk{
		ID:          uuid.NewString(),
		ProjectID:   projectID,
		ContentID:   contentID,
		ContentType: contentType,
		ChunkText:   text,
		ChunkIndex:  index,
		Embedding:   embedding,
		CreatedAt:   time.Now().UTC().Truncate(time.Microsecond),
	}
}

func TestContentChunkRepository_InsertAndList(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewContentChunkRepository(pool)

	first := newChunk("proj-1", "doc-1", domain.ContentTypeDocument, 0, "first chunk", axisEmbedding(0))
	first.Metadata = map[string]any{"title": "Doc One", "chunk_length": float64(11)}
	second := newChunk("proj-1", "doc-1", domain.ContentTypeDocument, 1, "second chunk", axisEmbedding(1))

	require.NoError(t, repo.BulkInsert(ctx, []domain.ContentChunk{first, second}))

	chunks, err := repo.ListByContent(ctx, "proj-1", "doc-1")
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, "first chunk", chunks[0].ChunkText)
	assert.Equal(t, 0, chunks[0].ChunkIndex)
	assert.Equal(t, "Doc One", chunks[0].Metadata["title"])
	assert.Equal(t, "second chunk", chunks[1].ChunkText)
	assert.Equal(t, 1, chunks[1].ChunkIndex)

	count, err := repo.CountByContent(ctx, "proj-1", "doc-1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestContentChunkRepository_DeleteByContent(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewContentChunkRepository(pool)

	require.NoError(t, repo.BulkInsert(ctx, []domain.ContentChunk{
		newChunk("proj-1", "doc-1", domain.ContentTypeDocument, 0, "doomed", axisEmbedding(0)),
		newChunk("proj-1", "doc-2", domain.ContentTypeDocument, 0, "survivor", axisEmbedding(1)),
	}))

	require.NoError(t, repo.DeleteByContent(ctx, "proj-1", "doc-1"))

	count, err := repo.CountByContent(ctx, "proj-1", "doc-1")
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	count, err = repo.CountByContent(ctx, "proj-1", "doc-2")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestContentChunkRepository_SearchSimilar(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewContentChunkRepository(pool)

	// exact match, a diagonal at ~0.707 similarity, and an orthogonal
	// vector at 0 similarity
	require.NoError(t, repo.BulkInsert(ctx, []domain.ContentChunk{
		newChunk("proj-1", "doc-exact", domain.ContentTypeDocument, 0, "exact match", axisEmbedding(0)),
		newChunk("proj-1", "doc-close", domain.ContentTypeConversation, 0, "close match", mixedEmbedding(1, 1)),
		newChunk("proj-1", "doc-far", domain.ContentTypeDocument, 0, "unrelated", axisEmbedding(1)),
		newChunk("proj-other", "doc-exact", domain.ContentTypeDocument, 0, "other project", axisEmbedding(0)),
	}))

	t.Run("orders by similarity and applies the floor", func(t *testing.T) {
		matches, err := repo.SearchSimilar(ctx, service.ChunkQuery{
			ProjectID:     "proj-1",
			Embedding:     axisEmbedding(0),
			ContentTypes:  domain.AllContentTypes(),
			MinSimilarity: 0.7,
			Limit:         10,
		})
		require.NoError(t, err)
		require.Len(t, matches, 2)
		assert.Equal(t, "doc-exact", matches[0].ContentID)
		assert.InDelta(t, 1.0, matches[0].Similarity, 1e-4)
		assert.Equal(t, "doc-close", matches[1].ContentID)
		assert.InDelta(t, math.Sqrt2/2, matches[1].Similarity, 1e-4)
	})

	t.Run("filters by content type", func(t *testing.T) {
		matches, err := repo.SearchSimilar(ctx, service.ChunkQuery{
			ProjectID:     "proj-1",
			Embedding:     axisEmbedding(0),
			ContentTypes:  []domain.ContentType{domain.ContentTypeConversation},
			MinSimilarity: 0.7,
			Limit:         10,
		})
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, "doc-close", matches[0].ContentID)
	})

	t.Run("caps results at the limit", func(t *testing.T) {
		matches, err := repo.SearchSimilar(ctx, service.ChunkQuery{
			ProjectID:     "proj-1",
			Embedding:     axisEmbedding(0),
			ContentTypes:  domain.AllContentTypes(),
			MinSimilarity: 0.7,
			Limit:         1,
		})
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, "doc-exact", matches[0].ContentID)
	})

	t.Run("never crosses project boundaries", func(t *testing.T) {
		matches, err := repo.SearchSimilar(ctx, service.ChunkQuery{
			ProjectID:     "proj-other",
			Embedding:     axisEmbedding(0),
			ContentTypes:  domain.AllContentTypes(),
			MinSimilarity: 0.7,
			Limit:         10,
		})
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, "other project", matches[0].ChunkText)
	})
}
