package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/craftmind/contextd/internal/api"
	"github.com/craftmind/contextd/internal/domain"
	"github.com/craftmind/contextd/internal/service"
)

type RetrieverService interface {
	Retrieve(ctx context.Context, input service.RetrieveInput) (*service.RetrieveOutput, error)
}

type RetrieveHandler struct {
	svc RetrieverService
}

func NewRetrieveHandler(svc RetrieverService) *RetrieveHandler {
	return &RetrieveHandler{svc: svc}
}

type RetrieveRequest struct {
	ProjectID    string   `json:"projectId"`
	Query        string   `json:"query"`
	Limit        int      `json:"limit,omitempty"`
	ContentTypes []string `json:"contentTypes,omitempty"`
}

type ProjectContextResponse struct {
	ContextSummary string   `json:"context_summary"`
	KeyThemes      []string `json:"key_themes"`
}

type SimilarContentResponse struct {
	ContentID     string         `json:"content_id"`
	ContentType   string         `json:"content_type"`
	ChunkText     string         `json:"chunk_text"`
	Similarity    float64        `json:"similarity"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	RelevanceRank float64        `json:"relevance_rank"`
}

type RetrieveResponse struct {
	Success        bool                      `json:"success"`
	ProjectContext *ProjectContextResponse   `json:"project_context"`
	SimilarContent []*SimilarContentResponse `json:"similar_content"`
	QueryUsed      string                    `json:"query_used"`
	TotalResults   int                       `json:"total_results"`
}

// Retrieve embeds the query and returns the most similar stored chunks,
// each annotated with a heuristic relevance rank.
func (h *RetrieveHandler) Retrieve(w http.ResponseWriter, r *http.Request) {
	var req RetrieveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.ProjectID == "" || req.Query == "" {
		api.Error(w, http.StatusBadRequest, "projectId and query are required")
		return
	}

	contentTypes := make([]domain.ContentType, 0, len(req.ContentTypes))
	for _, t := range req.ContentTypes {
		contentTypes = append(contentTypes, domain.ContentType(t))
	}

	output, err := h.svc.Retrieve(r.Context(), service.RetrieveInput{
		ProjectID:    req.ProjectID,
		Query:        req.Query,
		Limit:        req.Limit,
		ContentTypes: contentTypes,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	similar := make([]*SimilarContentResponse, len(output.Results))
	for i, result := range output.Results {
		similar[i] = &SimilarContentResponse{
			ContentID:     result.ContentID,
			ContentType:   string(result.ContentType),
			ChunkText:     result.ChunkText,
			Similarity:    result.Similarity,
			Metadata:      result.Metadata,
			RelevanceRank: result.RelevanceRank,
		}
	}

	var pc *ProjectContextResponse
	if output.ProjectContext != nil {
		pc = &ProjectContextResponse{
			ContextSummary: output.ProjectContext.ContextSummary,
			KeyThemes:      output.ProjectContext.KeyThemes,
		}
	}

	api.JSON(w, http.StatusOK, RetrieveResponse{
		Success:        true,
		ProjectContext: pc,
		SimilarContent: similar,
		QueryUsed:      output.QueryUsed,
		TotalResults:   output.TotalResults,
	})
}
