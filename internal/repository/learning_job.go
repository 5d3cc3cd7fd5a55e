package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/craftmind/contextd/internal/domain"
	"github.com/craftmind/contextd/internal/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LearningJobRepository handles persistence of learning job records.
type LearningJobRepository struct {
	db dbtx
}

func NewLearningJobRepository(pool *pgxpool.Pool) *LearningJobRepository {
	return &LearningJobRepository{db: pool}
}

func NewLearningJobRepositoryWithTx(tx pgx.Tx) *LearningJobRepository {
	return &LearningJobRepository{db: tx}
}

func (r *LearningJobRepository) Create(ctx context.Context, job *domain.LearningJob) error {
	createdAt := job.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO learning_jobs
			(id, project_id, job_type, status, processed_items, total_items, started_at, completed_at, error_details, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		job.ID, job.ProjectID, job.JobType, job.Status,
		job.ProcessedItems, job.TotalItems,
		job.StartedAt, job.CompletedAt, nullableString(job.ErrorDetails), createdAt,
	)
	return err
}

func (r *LearningJobRepository) GetByID(ctx context.Context, id string) (*domain.LearningJob, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, project_id, job_type, status, processed_items, total_items, started_at, completed_at, error_details, created_at
		 FROM learning_jobs WHERE id = $1`,
		id,
	)
	job, err := scanLearningJob(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLearningJobNotFound
		}
		return nil, err
	}
	return job, nil
}

// UpdateStatus moves a job to the given status. Terminal rows are never
// updated again: the WHERE clause refuses to touch completed or failed
// jobs, which enforces status monotonicity at the storage layer too.
func (r *LearningJobRepository) UpdateStatus(ctx context.Context, id string, status domain.LearningJobStatus, processed, total int, errDetails string) error {
	var completedAt *time.Time
	if status.IsTerminal() {
		now := time.Now().UTC()
		completedAt = &now
	}

	cmdTag, err := r.db.Exec(ctx,
		`UPDATE learning_jobs
		 SET status = $1, processed_items = $2, total_items = $3, completed_at = $4, error_details = $5
		 WHERE id = $6 AND status NOT IN ($7, $8)`,
		status, processed, total, completedAt, nullableString(errDetails),
		id, domain.LearningJobStatusCompleted, domain.LearningJobStatusFailed,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrLearningJobNotFound
	}
	return nil
}

// ClaimPending atomically claims queued jobs for the background worker,
// moving them pending -> processing with started_at set. SKIP LOCKED
// keeps concurrent workers from claiming the same row.
func (r *LearningJobRepository) ClaimPending(ctx context.Context, limit int) ([]*domain.LearningJob, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := r.db.Query(ctx,
		`WITH cte AS (
			 SELECT id
			 FROM learning_jobs
			 WHERE status = $1
			 ORDER BY created_at ASC
			 FOR UPDATE SKIP LOCKED
			 LIMIT $2
		 )
		 UPDATE learning_jobs
		 SET status = $3,
		     started_at = NOW()
		 FROM cte
		 WHERE learning_jobs.id = cte.id
		 RETURNING learning_jobs.id, learning_jobs.project_id, learning_jobs.job_type, learning_jobs.status,
		           learning_jobs.processed_items, learning_jobs.total_items, learning_jobs.started_at,
		           learning_jobs.completed_at, learning_jobs.error_details, learning_jobs.created_at`,
		domain.LearningJobStatusPending, limit, domain.LearningJobStatusProcessing,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*domain.LearningJob
	for rows.Next() {
		job, err := scanLearningJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}

	return jobs, rows.Err()
}

// ListByProject returns a project's jobs, newest first, one cursor page
// at a time.
func (r *LearningJobRepository) ListByProject(ctx context.Context, projectID string, limit int, cursor string) (*pagination.PageResult[*domain.LearningJob], error) {
	if limit <= 0 {
		limit = 20
	}

	decoded, err := pagination.DecodeCursor(cursor)
	if err != nil {
		return nil, err
	}

	query := `SELECT id, project_id, job_type, status, processed_items, total_items, started_at, completed_at, error_details, created_at
		 FROM learning_jobs
		 WHERE project_id = $1`
	args := []any{projectID}

	if decoded != nil {
		query += ` AND (created_at, id) < ($2, $3)`
		args = append(args, decoded.Timestamp, decoded.LastID)
	}

	query += ` ORDER BY created_at DESC, id DESC LIMIT $` + strconv.Itoa(len(args)+1)
	args = append(args, limit+1)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*domain.LearningJob
	for rows.Next() {
		job, err := scanLearningJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	hasMore := len(jobs) > limit
	if hasMore {
		jobs = jobs[:limit]
	}

	result := &pagination.PageResult[*domain.LearningJob]{
		Items:   jobs,
		HasMore: hasMore,
	}
	if hasMore {
		last := jobs[len(jobs)-1]
		result.Cursor = pagination.EncodeCursor(last.ID, last.CreatedAt)
	}
	return result, nil
}

func scanLearningJob(row pgx.Row) (*domain.LearningJob, error) {
	var job domain.LearningJob
	var errDetails pgtype.Text
	if err := row.Scan(
		&job.ID, &job.ProjectID, &job.JobType, &job.Status,
		&job.ProcessedItems, &job.TotalItems,
		&job.StartedAt, &job.CompletedAt, &errDetails, &job.CreatedAt,
	); err != nil {
		return nil, err
	}
	if errDetails.Valid {
		job.ErrorDetails = errDetails.String
	}
	return &job, nil
}
