package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/craftmind/contextd/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProjectContextRepository handles persistence of synthesized project
// contexts, one row per project.
type ProjectContextRepository struct {
	db dbtx
}

func NewProjectContextRepository(pool *pgxpool.Pool) *ProjectContextRepository {
	return &ProjectContextRepository{db: pool}
}

func NewProjectContextRepositoryWithTx(tx pgx.Tx) *ProjectContextRepository {
	return &ProjectContextRepository{db: tx}
}

// Upsert atomically replaces the project's context. The version counter
// advances on every overwrite so consumers can detect staleness.
func (r *ProjectContextRepository) Upsert(ctx context.Context, pc *domain.ProjectContext) error {
	metadata, err := json.Marshal(pc.LearningMetadata)
	if err != nil {
		return fmt.Errorf("failed to encode learning metadata: %w", err)
	}

	updatedAt := pc.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	themes := pc.KeyThemes
	if themes == nil {
		themes = []string{}
	}

	return r.db.QueryRow(ctx,
		`INSERT INTO project_contexts
			(project_id, context_summary, key_themes, learning_metadata, quality_score, version, updated_at)
		 VALUES ($1, $2, $3, $4, $5, 1, $6)
		 ON CONFLICT (project_id) DO UPDATE SET
			context_summary = EXCLUDED.context_summary,
			key_themes = EXCLUDED.key_themes,
			learning_metadata = EXCLUDED.learning_metadata,
			quality_score = EXCLUDED.quality_score,
			version = project_contexts.version + 1,
			updated_at = EXCLUDED.updated_at
		 RETURNING version`,
		pc.ProjectID, pc.ContextSummary, themes, metadata, pc.QualityScore, updatedAt,
	).Scan(&pc.Version)
}

// GetByProjectID returns the project's context or
// domain.ErrProjectContextNotFound.
func (r *ProjectContextRepository) GetByProjectID(ctx context.Context, projectID string) (*domain.ProjectContext, error) {
	var pc domain.ProjectContext
	var metadata []byte
	err := r.db.QueryRow(ctx,
		`SELECT project_id, context_summary, key_themes, learning_metadata, quality_score, version, updated_at
		 FROM project_contexts WHERE project_id = $1`,
		projectID,
	).Scan(&pc.ProjectID, &pc.ContextSummary, &pc.KeyThemes, &metadata, &pc.QualityScore, &pc.Version, &pc.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProjectContextNotFound
		}
		return nil, err
	}

	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &pc.LearningMetadata); err != nil {
			return nil, fmt.Errorf("failed to decode learning metadata: %w", err)
		}
	}

	return &pc, nil
}
