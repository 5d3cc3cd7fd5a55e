package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/craftmind/contextd/internal/api"
	"github.com/craftmind/contextd/internal/domain"
	"github.com/craftmind/contextd/internal/pagination"
)

type LearningJobReader interface {
	GetByID(ctx context.Context, id string) (*domain.LearningJob, error)
	ListByProject(ctx context.Context, projectID string, limit int, cursor string) (*pagination.PageResult[*domain.LearningJob], error)
}

type JobsHandler struct {
	jobs LearningJobReader
}

func NewJobsHandler(jobs LearningJobReader) *JobsHandler {
	return &JobsHandler{jobs: jobs}
}

type LearningJobResponse struct {
	ID             string `json:"id"`
	ProjectID      string `json:"project_id"`
	JobType        string `json:"job_type"`
	Status         string `json:"status"`
	ProcessedItems int    `json:"processed_items"`
	TotalItems     int    `json:"total_items"`
	StartedAt      string `json:"started_at,omitempty"`
	CompletedAt    string `json:"completed_at,omitempty"`
	ErrorDetails   string `json:"error_details,omitempty"`
	CreatedAt      string `json:"created_at"`
}

type JobListResponse struct {
	Jobs    []*LearningJobResponse `json:"jobs"`
	Cursor  string                 `json:"cursor,omitempty"`
	HasMore bool                   `json:"has_more"`
}

// Get returns one learning job by ID.
func (h *JobsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "jobID")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "job id is required")
		return
	}

	job, err := h.jobs.GetByID(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusOK, jobResponse(job))
}

// List returns a project's learning jobs, newest first.
func (h *JobsHandler) List(w http.ResponseWriter, r *http.Request) {
	projectID := r.URL.Query().Get("projectId")
	if projectID == "" {
		projectID = r.URL.Query().Get("project_id")
	}
	if projectID == "" {
		api.Error(w, http.StatusBadRequest, "projectId is required")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			api.Error(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	page, err := h.jobs.ListByProject(r.Context(), projectID, limit, r.URL.Query().Get("cursor"))
	if err != nil {
		if err == pagination.ErrInvalidCursor {
			api.Error(w, http.StatusBadRequest, "invalid cursor")
			return
		}
		api.HandleError(w, err)
		return
	}

	jobs := make([]*LearningJobResponse, len(page.Items))
	for i, job := range page.Items {
		jobs[i] = jobResponse(job)
	}

	api.JSON(w, http.StatusOK, JobListResponse{
		Jobs:    jobs,
		Cursor:  page.Cursor,
		HasMore: page.HasMore,
	})
}

func jobResponse(job *domain.LearningJob) *LearningJobResponse {
	resp := &LearningJobResponse{
		ID:             job.ID,
		ProjectID:      job.ProjectID,
		JobType:        string(job.JobType),
		Status:         string(job.Status),
		ProcessedItems: job.ProcessedItems,
		TotalItems:     job.TotalItems,
		ErrorDetails:   job.ErrorDetails,
		CreatedAt:      job.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if job.StartedAt != nil {
		resp.StartedAt = job.StartedAt.UTC().Format(time.RFC3339Nano)
	}
	if job.CompletedAt != nil {
		resp.CompletedAt = job.CompletedAt.UTC().Format(time.RFC3339Nano)
	}
	return resp
}
