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
	"github.com/craftmind/contextd/internal/pagination"
	"github.com/craftmind/contextd/internal/testutil"
)

func newPendingJob(projectID string, createdAt time.Time) *domain.LearningJob {
	return &domain.LearningJob{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		JobType:   domain.LearningJobTypeScheduled,
		Status:    domain.LearningJobStatusPending,
		CreatedAt: createdAt.UTC().Truncate(time.Microsecond),
	}
}

func TestLearningJobRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewLearningJobRepository(pool)

	job := newPendingJob("proj-1", time.Now())
	require.NoError(t, repo.Create(ctx, job))

	retrieved, err := repo.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.ID, retrieved.ID)
	assert.Equal(t, "proj-1", retrieved.ProjectID)
	assert.Equal(t, domain.LearningJobTypeScheduled, retrieved.JobType)
	assert.Equal(t, domain.LearningJobStatusPending, retrieved.Status)
	assert.Equal(t, 0, retrieved.ProcessedItems)
	assert.Nil(t, retrieved.StartedAt)
	assert.Nil(t, retrieved.CompletedAt)
	assert.Empty(t, retrieved.ErrorDetails)
}

func TestLearningJobRepository_GetByID_NotFound(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewLearningJobRepository(pool)

	_, err := repo.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrLearningJobNotFound)
}

func TestLearningJobRepository_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewLearningJobRepository(pool)

	job := newPendingJob("proj-1", time.Now())
	require.NoError(t, repo.Create(ctx, job))

	require.NoError(t, repo.UpdateStatus(ctx, job.ID, domain.LearningJobStatusProcessing, 1, 3, ""))

	retrieved, err := repo.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LearningJobStatusProcessing, retrieved.Status)
	assert.Equal(t, 1, retrieved.ProcessedItems)
	assert.Equal(t, 3, retrieved.TotalItems)
	assert.Nil(t, retrieved.CompletedAt)

	require.NoError(t, repo.UpdateStatus(ctx, job.ID, domain.LearningJobStatusCompleted, 3, 3, ""))

	retrieved, err = repo.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LearningJobStatusCompleted, retrieved.Status)
	assert.NotNil(t, retrieved.CompletedAt)
}

func TestLearningJobRepository_UpdateStatus_TerminalIsFinal(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewLearningJobRepository(pool)

	job := newPendingJob("proj-1", time.Now())
	require.NoError(t, repo.Create(ctx, job))
	require.NoError(t, repo.UpdateStatus(ctx, job.ID, domain.LearningJobStatusFailed, 0, 3, "provider timeout"))

	err := repo.UpdateStatus(ctx, job.ID, domain.LearningJobStatusProcessing, 1, 3, "")
	assert.ErrorIs(t, err, domain.ErrLearningJobNotFound)

	retrieved, err := repo.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LearningJobStatusFailed, retrieved.Status)
	assert.Equal(t, "provider timeout", retrieved.ErrorDetails)
}

func TestLearningJobRepository_ClaimPending(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewLearningJobRepository(pool)

	base := time.Now().Add(-time.Minute)
	oldest := newPendingJob("proj-1", base)
	newer := newPendingJob("proj-1", base.Add(time.Second))
	running := newPendingJob("proj-1", base)
	running.Status = domain.LearningJobStatusProcessing

	require.NoError(t, repo.Create(ctx, oldest))
	require.NoError(t, repo.Create(ctx, newer))
	require.NoError(t, repo.Create(ctx, running))

	claimed, err := repo.ClaimPending(ctx, 1)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	assert.Equal(t, oldest.ID, claimed[0].ID)
	assert.Equal(t, domain.LearningJobStatusProcessing, claimed[0].Status)
	assert.NotNil(t, claimed[0].StartedAt)

	claimed, err = repo.ClaimPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	assert.Equal(t, newer.ID, claimed[0].ID)

	claimed, err = repo.ClaimPending(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, claimed)
}

func TestLearningJobRepository_ListByProject(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewLearningJobRepository(pool)

	base := time.Now().Add(-time.Hour)
	var ids []string
	for i := 0; i < 5; i++ {
		job := newPendingJob("proj-1", base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, repo.Create(ctx, job))
		ids = append(ids, job.ID)
	}
	require.NoError(t, repo.Create(ctx, newPendingJob("proj-other", base)))

	page, err := repo.ListByProject(ctx, "proj-1", 2, "")
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, ids[4], page.Items[0].ID)
	assert.Equal(t, ids[3], page.Items[1].ID)
	assert.True(t, page.HasMore)
	require.NotEmpty(t, page.Cursor)

	page, err = repo.ListByProject(ctx, "proj-1", 2, page.Cursor)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, ids[2], page.Items[0].ID)
	assert.Equal(t, ids[1], page.Items[1].ID)
	assert.True(t, page.HasMore)

	page, err = repo.ListByProject(ctx, "proj-1", 2, page.Cursor)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, ids[0], page.Items[0].ID)
	assert.False(t, page.HasMore)
	assert.Empty(t, page.Cursor)
}

func TestLearningJobRepository_ListByProject_InvalidCursor(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewLearningJobRepository(pool)

	_, err := repo.ListByProject(ctx, "proj-1", 10, "not-a-cursor")
	assert.ErrorIs(t, err, pagination.ErrInvalidCursor)
}
