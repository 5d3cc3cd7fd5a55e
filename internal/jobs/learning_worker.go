package jobs

import (
	"context"
	"fmt"
	"log"

	"github.com/craftmind/contextd/internal/domain"
	"github.com/craftmind/contextd/internal/service"
)

const (
	// ClaimBatchSize is the maximum number of pending jobs claimed per poll
	ClaimBatchSize = 5
)

// LearningJobClaimer defines the interface for claiming queued learning jobs
type LearningJobClaimer interface {
	// ClaimPending atomically claims up to limit pending jobs and marks
	// them processing
	ClaimPending(ctx context.Context, limit int) ([]*domain.LearningJob, error)
}

// AnalysisRunner defines the interface for running a claimed learning job
type AnalysisRunner interface {
	RunJob(ctx context.Context, job *domain.LearningJob) (*service.AnalysisRunResult, error)
}

// LearningWorker processes queued learning jobs
type LearningWorker struct {
	claimer LearningJobClaimer
	runner  AnalysisRunner
}

// NewLearningWorker creates a new LearningWorker instance
func NewLearningWorker(claimer LearningJobClaimer, runner AnalysisRunner) *LearningWorker {
	return &LearningWorker{
		claimer: claimer,
		runner:  runner,
	}
}

// ProcessJobs implements the JobProcessor interface
func (w *LearningWorker) ProcessJobs(ctx context.Context) error {
	jobs, err := w.claimer.ClaimPending(ctx, ClaimBatchSize)
	if err != nil {
		return fmt.Errorf("failed to claim pending jobs: %w", err)
	}

	if len(jobs) == 0 {
		return nil
	}

	log.Printf("Processing %d pending learning jobs", len(jobs))

	for _, job := range jobs {
		log.Printf("Processing learning job %s for project %s", job.ID, job.ProjectID)
		result, err := w.runner.RunJob(ctx, job)
		if err != nil {
			// RunJob records the failed status itself; log and move on so
			// one bad project does not block the rest of the batch.
			log.Printf("Learning job %s failed: %v", job.ID, err)
			continue
		}
		if result.Empty {
			log.Printf("Learning job %s completed: no content to analyze", job.ID)
			continue
		}
		log.Printf("Learning job %s completed: %d items analyzed", job.ID, result.Job.TotalItems)
	}

	return nil
}
