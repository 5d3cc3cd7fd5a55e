package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/craftmind/contextd/internal/domain"
	"github.com/google/uuid"
)

// Analyzer defines the interface for project content analysis
type Analyzer interface {
	Analyze(ctx context.Context, content *ProjectContent) (*Analysis, error)
}

// LearningJobStore defines the persistence interface for learning jobs
type LearningJobStore interface {
	Create(ctx context.Context, job *domain.LearningJob) error
	UpdateStatus(ctx context.Context, id string, status domain.LearningJobStatus, processed, total int, errDetails string) error
}

// ProjectContextStore defines the persistence interface for project contexts
type ProjectContextStore interface {
	Upsert(ctx context.Context, pc *domain.ProjectContext) error
	GetByProjectID(ctx context.Context, projectID string) (*domain.ProjectContext, error)
}

// AnalysisRunResult is the outcome of one learning job run.
type AnalysisRunResult struct {
	Job            *domain.LearningJob
	ProjectContext *domain.ProjectContext
	Empty          bool
}

// LearningService wraps context analysis in a persisted job record with
// an explicit status state machine.
type LearningService struct {
	source   ContentSource
	analyzer Analyzer
	jobs     LearningJobStore
	contexts ProjectContextStore
	now      func() time.Time
}

// NewLearningService creates a new LearningService instance
func NewLearningService(source ContentSource, analyzer Analyzer, jobs LearningJobStore, contexts ProjectContextStore) *LearningService {
	return &LearningService{
		source:   source,
		analyzer: analyzer,
		jobs:     jobs,
		contexts: contexts,
		now:      time.Now,
	}
}

// RunAnalysis creates a learning job in processing state and runs the
// full gather/analyze/persist pass synchronously. Concurrent triggers for
// the same project are not deduplicated here; callers that need
// exactly-once analysis must serialize per project.
func (s *LearningService) RunAnalysis(ctx context.Context, projectID string, jobType domain.LearningJobType) (*AnalysisRunResult, error) {
	if projectID == "" {
		return nil, domain.ErrMissingRequiredField
	}
	if jobType == "" {
		jobType = domain.LearningJobTypeManual
	}

	startedAt := s.now().UTC()
	job := &domain.LearningJob{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		JobType:   jobType,
		Status:    domain.LearningJobStatusProcessing,
		StartedAt: &startedAt,
		CreatedAt: startedAt,
	}
	if err := domain.ValidateLearningJob(job); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid learning job", err)
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create learning job: %w", err)
	}

	return s.RunJob(ctx, job)
}

// RunJob executes the analysis pass for an already-persisted job in
// processing state. Used directly by the background worker after it
// claims a queued job.
func (s *LearningService) RunJob(ctx context.Context, job *domain.LearningJob) (*AnalysisRunResult, error) {
	content, err := s.source.GatherProjectContent(ctx, job.ProjectID)
	if err != nil {
		s.failJob(ctx, job, fmt.Errorf("failed to gather project content: %w", err))
		return nil, fmt.Errorf("failed to gather project content: %w", err)
	}

	total := content.TotalItems()
	if total == 0 {
		// Nothing to analyze is a successful outcome, distinct from a
		// failed analysis. No ProjectContext is written.
		if err := s.completeJob(ctx, job, 0, 0); err != nil {
			return nil, err
		}
		return &AnalysisRunResult{Job: job, Empty: true}, nil
	}

	analysis, err := s.analyzer.Analyze(ctx, content)
	if err != nil {
		s.failJob(ctx, job, err)
		return nil, err
	}

	pc := &domain.ProjectContext{
		ProjectID:      job.ProjectID,
		ContextSummary: analysis.Summary,
		KeyThemes:      analysis.Themes,
		LearningMetadata: domain.LearningMetadata{
			JobID:                 job.ID,
			ConversationsAnalyzed: len(content.Conversations),
			KnowledgeAnalyzed:     len(content.Knowledge),
			PromptsAnalyzed:       len(content.Prompts),
			AnalysisDate:          s.now().UTC(),
		},
		QualityScore: QualityScore(content, analysis),
		UpdatedAt:    s.now().UTC(),
	}
	if err := s.contexts.Upsert(ctx, pc); err != nil {
		wrapped := fmt.Errorf("failed to persist project context: %w", err)
		s.failJob(ctx, job, wrapped)
		return nil, wrapped
	}

	// Analysis is all-or-nothing over the gathered set, so processed
	// equals total on success.
	if err := s.completeJob(ctx, job, total, total); err != nil {
		return nil, err
	}

	return &AnalysisRunResult{Job: job, ProjectContext: pc}, nil
}

func (s *LearningService) completeJob(ctx context.Context, job *domain.LearningJob, processed, total int) error {
	if err := job.Transition(domain.LearningJobStatusCompleted); err != nil {
		return err
	}
	job.ProcessedItems = processed
	job.TotalItems = total
	if err := s.jobs.UpdateStatus(ctx, job.ID, domain.LearningJobStatusCompleted, processed, total, ""); err != nil {
		return fmt.Errorf("failed to mark job completed: %w", err)
	}
	return nil
}

// failJob transitions the job to failed as a best-effort side effect. A
// bookkeeping failure here is logged, never returned, so it cannot mask
// the original analysis error.
func (s *LearningService) failJob(ctx context.Context, job *domain.LearningJob, cause error) {
	if err := job.Transition(domain.LearningJobStatusFailed); err != nil {
		log.Printf("learning job %s: %v", job.ID, err)
		return
	}
	job.ErrorDetails = cause.Error()
	if err := s.jobs.UpdateStatus(ctx, job.ID, domain.LearningJobStatusFailed, job.ProcessedItems, job.TotalItems, cause.Error()); err != nil {
		log.Printf("failed to mark learning job %s as failed: %v", job.ID, err)
	}
}
