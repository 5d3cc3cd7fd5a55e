package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/craftmind/contextd/internal/api"
	"github.com/craftmind/contextd/internal/domain"
	"github.com/craftmind/contextd/internal/service"
)

type LearningService interface {
	RunAnalysis(ctx context.Context, projectID string, jobType domain.LearningJobType) (*service.AnalysisRunResult, error)
}

type AnalyzeHandler struct {
	svc LearningService
}

func NewAnalyzeHandler(svc LearningService) *AnalyzeHandler {
	return &AnalyzeHandler{svc: svc}
}

type AnalyzeRequest struct {
	ProjectID string `json:"projectId"`
	JobType   string `json:"jobType,omitempty"`
}

type AnalyzeResponse struct {
	Success        bool     `json:"success"`
	ContextSummary string   `json:"context_summary"`
	KeyThemes      []string `json:"key_themes"`
	JobID          string   `json:"job_id"`
}

type AnalyzeEmptyResponse struct {
	Message string `json:"message"`
	JobID   string `json:"job_id"`
}

// Analyze runs a synchronous learning pass over the project's content and
// returns the refreshed project context.
func (h *AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.ProjectID == "" {
		api.Error(w, http.StatusBadRequest, "projectId is required")
		return
	}

	result, err := h.svc.RunAnalysis(r.Context(), req.ProjectID, domain.LearningJobType(req.JobType))
	if err != nil {
		api.HandleError(w, err)
		return
	}

	if result.Empty {
		api.JSON(w, http.StatusOK, AnalyzeEmptyResponse{
			Message: "No content found to analyze",
			JobID:   result.Job.ID,
		})
		return
	}

	api.JSON(w, http.StatusOK, AnalyzeResponse{
		Success:        true,
		ContextSummary: result.ProjectContext.ContextSummary,
		KeyThemes:      result.ProjectContext.KeyThemes,
		JobID:          result.Job.ID,
	})
}
