package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLearningJobStatus_CanTransitionTo tests the status state machine
func TestLearningJobStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from    LearningJobStatus
		to      LearningJobStatus
		allowed bool
	}{
		{LearningJobStatusPending, LearningJobStatusProcessing, true},
		{LearningJobStatusPending, LearningJobStatusCompleted, false},
		{LearningJobStatusPending, LearningJobStatusFailed, false},
		{LearningJobStatusPending, LearningJobStatusPending, false},
		{LearningJobStatusProcessing, LearningJobStatusCompleted, true},
		{LearningJobStatusProcessing, LearningJobStatusFailed, true},
		{LearningJobStatusProcessing, LearningJobStatusPending, false},
		{LearningJobStatusProcessing, LearningJobStatusProcessing, false},
		{LearningJobStatusCompleted, LearningJobStatusProcessing, false},
		{LearningJobStatusCompleted, LearningJobStatusFailed, false},
		{LearningJobStatusCompleted, LearningJobStatusPending, false},
		{LearningJobStatusFailed, LearningJobStatusProcessing, false},
		{LearningJobStatusFailed, LearningJobStatusCompleted, false},
		{LearningJobStatusFailed, LearningJobStatusPending, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

// TestLearningJobStatus_IsTerminal tests terminal state detection
func TestLearningJobStatus_IsTerminal(t *testing.T) {
	assert.False(t, LearningJobStatusPending.IsTerminal())
	assert.False(t, LearningJobStatusProcessing.IsTerminal())
	assert.True(t, LearningJobStatusCompleted.IsTerminal())
	assert.True(t, LearningJobStatusFailed.IsTerminal())
}

// TestLearningJob_Transition tests in-place transitions
func TestLearningJob_Transition(t *testing.T) {
	t.Run("entering a terminal state sets CompletedAt", func(t *testing.T) {
		job := &LearningJob{Status: LearningJobStatusProcessing}

		require.NoError(t, job.Transition(LearningJobStatusCompleted))

		assert.Equal(t, LearningJobStatusCompleted, job.Status)
		require.NotNil(t, job.CompletedAt)
		assert.WithinDuration(t, time.Now().UTC(), *job.CompletedAt, time.Minute)
	})

	t.Run("pending to processing leaves CompletedAt unset", func(t *testing.T) {
		job := &LearningJob{Status: LearningJobStatusPending}

		require.NoError(t, job.Transition(LearningJobStatusProcessing))

		assert.Equal(t, LearningJobStatusProcessing, job.Status)
		assert.Nil(t, job.CompletedAt)
	})

	t.Run("invalid transition leaves the job untouched", func(t *testing.T) {
		completedAt := time.Now().UTC()
		job := &LearningJob{Status: LearningJobStatusCompleted, CompletedAt: &completedAt}

		err := job.Transition(LearningJobStatusProcessing)

		require.Error(t, err)
		assert.Equal(t, LearningJobStatusCompleted, job.Status)
		assert.Equal(t, &completedAt, job.CompletedAt)
	})
}

// TestValidateLearningJob tests job invariants
func TestValidateLearningJob(t *testing.T) {
	now := time.Now().UTC()

	valid := func() *LearningJob {
		return &LearningJob{
			ID:        "job-1",
			ProjectID: "proj-1",
			JobType:   LearningJobTypeManual,
			Status:    LearningJobStatusProcessing,
			StartedAt: &now,
			CreatedAt: now,
		}
	}

	t.Run("accepts a valid job", func(t *testing.T) {
		assert.NoError(t, ValidateLearningJob(valid()))
	})

	t.Run("rejects nil and missing identifiers", func(t *testing.T) {
		assert.Error(t, ValidateLearningJob(nil))

		job := valid()
		job.ID = ""
		assert.Error(t, ValidateLearningJob(job))

		job = valid()
		job.ProjectID = ""
		assert.Error(t, ValidateLearningJob(job))
	})

	t.Run("rejects unknown type and status", func(t *testing.T) {
		job := valid()
		job.JobType = "cron"
		assert.Error(t, ValidateLearningJob(job))

		job = valid()
		job.Status = "running"
		assert.Error(t, ValidateLearningJob(job))
	})

	t.Run("rejects negative counts", func(t *testing.T) {
		job := valid()
		job.ProcessedItems = -1
		assert.Error(t, ValidateLearningJob(job))
	})

	t.Run("CompletedAt is set exactly in terminal states", func(t *testing.T) {
		job := valid()
		job.Status = LearningJobStatusCompleted
		assert.Error(t, ValidateLearningJob(job), "terminal without CompletedAt")

		job.CompletedAt = &now
		assert.NoError(t, ValidateLearningJob(job))

		job = valid()
		job.CompletedAt = &now
		assert.Error(t, ValidateLearningJob(job), "non-terminal with CompletedAt")
	})
}

// TestIsValidContentType tests content type validation
func TestIsValidContentType(t *testing.T) {
	assert.True(t, IsValidContentType(ContentTypeConversation))
	assert.True(t, IsValidContentType(ContentTypeDocument))
	assert.True(t, IsValidContentType(ContentTypePrompt))
	assert.False(t, IsValidContentType(ContentType("spreadsheet")))
	assert.False(t, IsValidContentType(ContentType("")))
}
