package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/craftmind/contextd/internal/api"
	"github.com/craftmind/contextd/internal/domain"
	"github.com/craftmind/contextd/internal/service"
)

type IndexerService interface {
	IndexContent(ctx context.Context, input service.IndexInput) (*service.IndexResult, error)
	DeleteContent(ctx context.Context, projectID, contentID string) error
}

type IndexHandler struct {
	svc IndexerService
}

func NewIndexHandler(svc IndexerService) *IndexHandler {
	return &IndexHandler{svc: svc}
}

type IndexRequest struct {
	ProjectID   string         `json:"projectId"`
	ContentID   string         `json:"contentId"`
	ContentType string         `json:"contentType"`
	Text        string         `json:"text"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

type IndexResponse struct {
	Success           bool `json:"success"`
	ChunksProcessed   int  `json:"chunks_processed"`
	EmbeddingsCreated int  `json:"embeddings_created"`
}

type DeleteResponse struct {
	Success bool `json:"success"`
}

// Index chunks, embeds, and stores one content item, replacing any
// previously indexed chunks for the same content.
func (h *IndexHandler) Index(w http.ResponseWriter, r *http.Request) {
	var req IndexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.ProjectID == "" || req.ContentID == "" {
		api.Error(w, http.StatusBadRequest, "projectId and contentId are required")
		return
	}

	result, err := h.svc.IndexContent(r.Context(), service.IndexInput{
		ProjectID:   req.ProjectID,
		ContentID:   req.ContentID,
		ContentType: domain.ContentType(req.ContentType),
		Text:        req.Text,
		Metadata:    req.Metadata,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusOK, IndexResponse{
		Success:           true,
		ChunksProcessed:   result.ChunksProcessed,
		EmbeddingsCreated: result.EmbeddingsCreated,
	})
}

// Delete removes every stored chunk for one content item.
func (h *IndexHandler) Delete(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")
	contentID := chi.URLParam(r, "contentID")

	if projectID == "" || contentID == "" {
		api.Error(w, http.StatusBadRequest, "projectId and contentId are required")
		return
	}

	if err := h.svc.DeleteContent(r.Context(), projectID, contentID); err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusOK, DeleteResponse{Success: true})
}
