//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/craftmind/contextd/internal/domain"
	"github.com/craftmind/contextd/internal/testutil"
)

func TestProjectContextRepository_Upsert(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewProjectContextRepository(pool)

	first := &domain.ProjectContext{
		ProjectID:      "proj-1",
		ContextSummary: "A project about payments",
		KeyThemes:      []string{"payments", "invoicing"},
		LearningMetadata: domain.LearningMetadata{
			JobID:                 uuid.NewString(),
			ConversationsAnalyzed: 2,
			KnowledgeAnalyzed:     1,
			PromptsAnalyzed:       1,
			AnalysisDate:          time.Now().UTC().Truncate(time.Microsecond),
		},
		QualityScore: 80,
		UpdatedAt:    time.Now().UTC().Truncate(time.Microsecond),
	}

	require.NoError(t, repo.Upsert(ctx, first))
	assert.Equal(t, 1, first.Version)

	retrieved, err := repo.GetByProjectID(ctx, "proj-1")
	require.NoError(t, err)
	assert.Equal(t, "A project about payments", retrieved.ContextSummary)
	assert.Equal(t, []string{"payments", "invoicing"}, retrieved.KeyThemes)
	assert.Equal(t, first.LearningMetadata.JobID, retrieved.LearningMetadata.JobID)
	assert.Equal(t, 2, retrieved.LearningMetadata.ConversationsAnalyzed)
	assert.Equal(t, 80, retrieved.QualityScore)
	assert.Equal(t, 1, retrieved.Version)

	second := &domain.ProjectContext{
		ProjectID:      "proj-1",
		ContextSummary: "A project about payments and refunds",
		KeyThemes:      []string{"payments", "refunds"},
		QualityScore:   60,
		UpdatedAt:      time.Now().UTC().Truncate(time.Microsecond),
	}

	require.NoError(t, repo.Upsert(ctx, second))
	assert.Equal(t, 2, second.Version)

	retrieved, err = repo.GetByProjectID(ctx, "proj-1")
	require.NoError(t, err)
	assert.Equal(t, "A project about payments and refunds", retrieved.ContextSummary)
	assert.Equal(t, []string{"payments", "refunds"}, retrieved.KeyThemes)
	assert.Equal(t, 60, retrieved.QualityScore)
	assert.Equal(t, 2, retrieved.Version)
}

func TestProjectContextRepository_Upsert_NilThemes(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewProjectContextRepository(pool)

	require.NoError(t, repo.Upsert(ctx, &domain.ProjectContext{
		ProjectID:      "proj-bare",
		ContextSummary: "Sparse project",
	}))

	retrieved, err := repo.GetByProjectID(ctx, "proj-bare")
	require.NoError(t, err)
	assert.Empty(t, retrieved.KeyThemes)
	assert.False(t, retrieved.UpdatedAt.IsZero())
}

func TestProjectContextRepository_GetByProjectID_NotFound(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewProjectContextRepository(pool)

	_, err := repo.GetByProjectID(ctx, "proj-missing")
	assert.ErrorIs(t, err, domain.ErrProjectContextNotFound)
}
