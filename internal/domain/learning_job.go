package domain

import (
	"fmt"
	"time"
)

// LearningJobStatus represents the status of a learning job.
type LearningJobStatus string

const (
	LearningJobStatusPending    LearningJobStatus = "pending"
	LearningJobStatusProcessing LearningJobStatus = "processing"
	LearningJobStatusCompleted  LearningJobStatus = "completed"
	LearningJobStatusFailed     LearningJobStatus = "failed"
)

// LearningJobType identifies what triggered an analysis run.
type LearningJobType string

const (
	LearningJobTypeScheduled   LearningJobType = "scheduled"
	LearningJobTypeManual      LearningJobType = "manual"
	LearningJobTypeIncremental LearningJobType = "incremental"
)

// LearningJob is one tracked context analysis run for a project.
// Status moves pending -> processing -> completed|failed and never leaves
// a terminal state.
type LearningJob struct {
	ID             string
	ProjectID      string
	JobType        LearningJobType
	Status         LearningJobStatus
	ProcessedItems int
	TotalItems     int
	StartedAt      *time.Time
	CompletedAt    *time.Time
	ErrorDetails   string
	CreatedAt      time.Time
}

// IsTerminal reports whether the status is completed or failed.
func (s LearningJobStatus) IsTerminal() bool {
	return s == LearningJobStatusCompleted || s == LearningJobStatusFailed
}

// CanTransitionTo reports whether moving from s to next is a valid
// state-machine transition.
func (s LearningJobStatus) CanTransitionTo(next LearningJobStatus) bool {
	switch s {
	case LearningJobStatusPending:
		return next == LearningJobStatusProcessing
	case LearningJobStatusProcessing:
		return next == LearningJobStatusCompleted || next == LearningJobStatusFailed
	}
	return false
}

// Transition moves the job to the next status, setting CompletedAt on
// entry into a terminal state.
func (j *LearningJob) Transition(next LearningJobStatus) error {
	if !j.Status.CanTransitionTo(next) {
		return fmt.Errorf("invalid learning job transition: %s -> %s", j.Status, next)
	}
	j.Status = next
	if next.IsTerminal() {
		now := time.Now().UTC()
		j.CompletedAt = &now
	}
	return nil
}

// ValidateLearningJob validates a LearningJob instance.
func ValidateLearningJob(j *LearningJob) error {
	if j == nil {
		return fmt.Errorf("learning job cannot be nil")
	}
	if j.ID == "" {
		return fmt.Errorf("learning job ID is required")
	}
	if j.ProjectID == "" {
		return fmt.Errorf("learning job ProjectID is required")
	}
	if !isValidLearningJobType(j.JobType) {
		return fmt.Errorf("learning job JobType is invalid: %s", j.JobType)
	}
	if !isValidLearningJobStatus(j.Status) {
		return fmt.Errorf("learning job Status is invalid: %s", j.Status)
	}
	if j.ProcessedItems < 0 || j.TotalItems < 0 {
		return fmt.Errorf("learning job item counts cannot be negative")
	}
	if j.Status.IsTerminal() && j.CompletedAt == nil {
		return fmt.Errorf("learning job in terminal status requires CompletedAt")
	}
	if !j.Status.IsTerminal() && j.CompletedAt != nil {
		return fmt.Errorf("learning job CompletedAt is only set in a terminal status")
	}
	return nil
}

func isValidLearningJobStatus(s LearningJobStatus) bool {
	switch s {
	case LearningJobStatusPending, LearningJobStatusProcessing,
		LearningJobStatusCompleted, LearningJobStatusFailed:
		return true
	}
	return false
}

func isValidLearningJobType(t LearningJobType) bool {
	switch t {
	case LearningJobTypeScheduled, LearningJobTypeManual, LearningJobTypeIncremental:
		return true
	}
	return false
}
