package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/craftmind/contextd/internal/domain"
	"github.com/craftmind/contextd/internal/service"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// ContentChunkRepository handles persistence of embedded content chunks.
type ContentChunkRepository struct {
	db dbtx
}

func NewContentChunkRepository(pool *pgxpool.Pool) *ContentChunkRepository {
	return &ContentChunkRepository{db: pool}
}

func NewContentChunkRepositoryWithTx(tx pgx.Tx) *ContentChunkRepository {
	return &ContentChunkRepository{db: tx}
}

// DeleteByContent removes every chunk for one content item.
func (r *ContentChunkRepository) DeleteByContent(ctx context.Context, projectID, contentID string) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM content_embeddings WHERE project_id = $1 AND content_id = $2`,
		projectID, contentID,
	)
	return err
}

// BulkInsert inserts chunk rows. Callers delete prior chunks first; the
// unique (project_id, content_id, chunk_index) index backstops that.
func (r *ContentChunkRepository) BulkInsert(ctx context.Context, chunks []domain.ContentChunk) error {
	for _, c := range chunks {
		metadata, err := json.Marshal(c.Metadata)
		if err != nil {
			return fmt.Errorf("failed to encode chunk metadata: %w", err)
		}
		createdAt := c.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		_, err = r.db.Exec(ctx,
			`INSERT INTO content_embeddings
				(id, project_id, content_id, content_type, chunk_text, chunk_index, embedding, metadata, created_at)
			 VALUES
				($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			c.ID,
			c.ProjectID,
			c.ContentID,
			c.ContentType,
			c.ChunkText,
			c.ChunkIndex,
			pgvector.NewVector(c.Embedding),
			metadata,
			createdAt,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// SearchSimilar runs a cosine similarity search restricted to the given
// content types, floored at MinSimilarity, ordered by distance, capped at
// Limit raw candidates.
func (r *ContentChunkRepository) SearchSimilar(ctx context.Context, q service.ChunkQuery) ([]*service.ChunkMatch, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = service.DefaultRetrieveLimit
	}

	types := make([]string, len(q.ContentTypes))
	for i, t := range q.ContentTypes {
		types[i] = string(t)
	}

	vec := pgvector.NewVector(q.Embedding)

	rows, err := r.db.Query(ctx,
		`SELECT content_id, content_type, chunk_text, chunk_index, metadata,
		        1 - (embedding <=> $1) AS similarity
		 FROM content_embeddings
		 WHERE project_id = $2
		   AND content_type = ANY($3)
		   AND 1 - (embedding <=> $1) >= $4
		 ORDER BY embedding <=> $1
		 LIMIT $5`,
		vec, q.ProjectID, types, q.MinSimilarity, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []*service.ChunkMatch
	for rows.Next() {
		var m service.ChunkMatch
		var contentType string
		var metadata []byte
		if err := rows.Scan(&m.ContentID, &contentType, &m.ChunkText, &m.ChunkIndex, &metadata, &m.Similarity); err != nil {
			return nil, err
		}
		m.ContentType = domain.ContentType(contentType)
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &m.Metadata); err != nil {
				return nil, fmt.Errorf("failed to decode chunk metadata: %w", err)
			}
		}
		matches = append(matches, &m)
	}

	return matches, rows.Err()
}

// ListByContent returns a content item's chunks in index order.
func (r *ContentChunkRepository) ListByContent(ctx context.Context, projectID, contentID string) ([]*domain.ContentChunk, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, project_id, content_id, content_type, chunk_text, chunk_index, metadata, created_at
		 FROM content_embeddings
		 WHERE project_id = $1 AND content_id = $2
		 ORDER BY chunk_index ASC`,
		projectID, contentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []*domain.ContentChunk
	for rows.Next() {
		var c domain.ContentChunk
		var contentType string
		var metadata []byte
		if err := rows.Scan(&c.ID, &c.ProjectID, &c.ContentID, &contentType, &c.ChunkText, &c.ChunkIndex, &metadata, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.ContentType = domain.ContentType(contentType)
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &c.Metadata); err != nil {
				return nil, fmt.Errorf("failed to decode chunk metadata: %w", err)
			}
		}
		chunks = append(chunks, &c)
	}

	return chunks, rows.Err()
}

// CountByContent returns how many chunks exist for one content item.
func (r *ContentChunkRepository) CountByContent(ctx context.Context, projectID, contentID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM content_embeddings WHERE project_id = $1 AND content_id = $2`,
		projectID, contentID,
	).Scan(&count)
	return count, err
}
